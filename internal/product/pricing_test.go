package product

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestResolveQuote_Variants(t *testing.T) {
	p := &Product{
		ID:    "p1",
		Name:  "Miniket Rice",
		Price: 999, // ignored when variants exist
		Stock: 999,
		Variants: []Variant{
			{ID: "v1", Name: "1kg", Price: 100, SalePrice: f(85), Stock: 10},
			{ID: "v2", Name: "5kg", Price: 480, Stock: 4},
			{ID: "v3", Name: "10kg", Price: 950, SalePrice: f(1000), Stock: 2},
		},
	}

	t.Run("SalePriceWins", func(t *testing.T) {
		q, err := ResolveQuote(p, "1kg")
		require.NoError(t, err)
		assert.Equal(t, 85.0, q.UnitPrice)
		assert.Equal(t, 10, q.Stock)
		assert.Equal(t, "1kg", q.VariantLabel)
		assert.Equal(t, 15, q.DiscountPercent)
	})

	t.Run("NoSalePrice", func(t *testing.T) {
		q, err := ResolveQuote(p, "5kg")
		require.NoError(t, err)
		assert.Equal(t, 480.0, q.UnitPrice)
		assert.Equal(t, 0, q.DiscountPercent)
	})

	t.Run("SalePriceAboveListIgnored", func(t *testing.T) {
		q, err := ResolveQuote(p, "10kg")
		require.NoError(t, err)
		assert.Equal(t, 950.0, q.UnitPrice)
		assert.Equal(t, 0, q.DiscountPercent)
	})

	t.Run("UnknownLabel", func(t *testing.T) {
		_, err := ResolveQuote(p, "2kg")
		assert.True(t, errors.Is(err, ErrVariantNotFound))
	})

	t.Run("EmptyLabelAgainstVariants", func(t *testing.T) {
		_, err := ResolveQuote(p, "")
		assert.True(t, errors.Is(err, ErrVariantNotFound))
	})
}

func TestResolveQuote_NoVariants(t *testing.T) {
	p := &Product{
		ID:        "p2",
		Name:      "Cauliflower",
		Price:     60,
		SalePrice: f(45),
		Stock:     25,
		Unit:      "piece",
	}

	t.Run("DefaultsToProductUnit", func(t *testing.T) {
		q, err := ResolveQuote(p, "")
		require.NoError(t, err)
		assert.Equal(t, 45.0, q.UnitPrice)
		assert.Equal(t, 25, q.Stock)
		assert.Equal(t, "piece", q.VariantLabel)
		assert.Equal(t, 25, q.DiscountPercent)
	})

	t.Run("ExplicitLabelKept", func(t *testing.T) {
		q, err := ResolveQuote(p, "kg")
		require.NoError(t, err)
		assert.Equal(t, "kg", q.VariantLabel)
	})

	t.Run("SalePriceAppliesEvenAboveList", func(t *testing.T) {
		// Unlike variants, a product-level sale price is not required to
		// undercut the list price; it applies whenever set.
		markedUp := &Product{
			ID:        "p3",
			Name:      "Imported Dates",
			Price:     100,
			SalePrice: f(120),
			Stock:     8,
			Unit:      "box",
		}

		q, err := ResolveQuote(markedUp, "")
		require.NoError(t, err)
		assert.Equal(t, 120.0, q.UnitPrice)
		assert.Equal(t, 0, q.DiscountPercent)
	})

	t.Run("NoSalePriceFallsBackToList", func(t *testing.T) {
		plain := &Product{ID: "p4", Name: "Red Lentils", Price: 140, Stock: 30, Unit: "kg"}

		q, err := ResolveQuote(plain, "")
		require.NoError(t, err)
		assert.Equal(t, 140.0, q.UnitPrice)
	})
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 0, DiscountPercent(100, nil))
	assert.Equal(t, 0, DiscountPercent(100, f(100)))
	assert.Equal(t, 0, DiscountPercent(100, f(120)))
	assert.Equal(t, 0, DiscountPercent(0, f(10)))
	assert.Equal(t, 15, DiscountPercent(100, f(85)))
	assert.Equal(t, 33, DiscountPercent(150, f(100)))
	assert.Equal(t, 50, DiscountPercent(90, f(45)))
}
