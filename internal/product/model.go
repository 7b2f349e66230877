package product

import "time"

type Variant struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	SalePrice *float64 `json:"salePrice,omitempty"`
	Stock     int      `json:"stock"`
	SKU       string   `json:"sku"`
}

type BuyGetFree struct {
	Buy             int    `json:"buy"`
	Get             int    `json:"get"`
	FreeProductName string `json:"freeProductName"`
}

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice,omitempty"`
	Stock       int      `json:"stock"`

	// Unit is the default quantity label ("kg", "piece") used when the
	// product has no variants.
	Unit string `json:"unit"`

	Images   []string  `json:"images"`
	Variants []Variant `json:"variants,omitempty"`

	IsFeatured   bool        `json:"isFeatured"`
	IsOnSale     bool        `json:"isOnSale"`
	IsNewArrival bool        `json:"isNewArrival"`
	BuyGetFree   *BuyGetFree `json:"buyGetFree,omitempty"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasVariants reports whether pricing and stock come from the variant
// list. When true the product-level price/stock fields are ignored.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FirstImage returns the primary image or empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type ListFilter struct {
	// CategoryIDs is the pre-expanded descendant set of the requested
	// category.
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	Featured    *bool
	OnSale      *bool
	NewArrival  *bool
	Search      *string
	ActiveOnly  bool
	Limit       int32
	Page        int32
}
