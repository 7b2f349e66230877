package product

import (
	"fmt"
	"math"
)

// Quote is the point-in-time pricing answer for one product/variant pair.
// Order placement copies these values into line-item snapshots.
type Quote struct {
	UnitPrice       float64
	Stock           int
	VariantLabel    string
	DiscountPercent int
}

// ResolveQuote resolves the effective unit price and available stock for a
// product and an optional variant label.
//
// When the product carries variants, the label must match a variant name
// and the product-level price/stock fields are ignored. Otherwise the
// product-level fields apply and the label defaults to the product unit.
func ResolveQuote(p *Product, variantLabel string) (Quote, error) {
	if p.HasVariants() {
		for i := range p.Variants {
			v := &p.Variants[i]
			if v.Name != variantLabel {
				continue
			}
			return Quote{
				UnitPrice:       effectivePrice(v.Price, v.SalePrice),
				Stock:           v.Stock,
				VariantLabel:    v.Name,
				DiscountPercent: DiscountPercent(v.Price, v.SalePrice),
			}, nil
		}
		return Quote{}, fmt.Errorf("%w: %q of product %s", ErrVariantNotFound, variantLabel, p.Name)
	}

	label := variantLabel
	if label == "" {
		label = p.Unit
	}

	// Product-level sale prices apply whenever set. Only variants require
	// the sale price to undercut the list price.
	price := p.Price
	if p.SalePrice != nil {
		price = *p.SalePrice
	}
	return Quote{
		UnitPrice:       price,
		Stock:           p.Stock,
		VariantLabel:    label,
		DiscountPercent: DiscountPercent(p.Price, p.SalePrice),
	}, nil
}

// effectivePrice applies the sale price only when it actually undercuts
// the list price.
func effectivePrice(price float64, salePrice *float64) float64 {
	if salePrice != nil && *salePrice < price {
		return *salePrice
	}
	return price
}

// DiscountPercent is the rounded display discount, 0 when there is no
// effective sale.
func DiscountPercent(price float64, salePrice *float64) int {
	if salePrice == nil || price <= 0 || *salePrice >= price {
		return 0
	}
	return int(math.Round((price - *salePrice) / price * 100))
}
