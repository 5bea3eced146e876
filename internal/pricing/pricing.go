// Package pricing derives the price breakdown of a checkout from its line
// items. Computation is pure: the same item sequence always yields the same
// quote, so a stored total can be recomputed and compared at any time.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/sproutify/sproutify-platform/internal/models"
)

const (
	// Orders strictly above this items subtotal ship for free.
	FreeShippingThreshold = 1000

	// Flat shipping rate below the free-shipping cutoff.
	ShippingFlatRate = 100
)

// TaxRate is applied to the items subtotal, before shipping.
var TaxRate = decimal.NewFromFloat(0.15)

// Quote is the derived price breakdown. All fields carry at most two
// decimal places, rounded half-up at the cent boundary.
type Quote struct {
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

// Compute derives a quote from an item sequence. Items with a zero or
// negative quantity contribute nothing.
func Compute(items []models.OrderItem) Quote {

	itemsPrice := decimal.Zero

	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}

		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsPrice = itemsPrice.Add(line)
	}

	itemsPrice = itemsPrice.Round(2)

	shippingPrice := decimal.NewFromInt(ShippingFlatRate)
	if itemsPrice.GreaterThan(decimal.NewFromInt(FreeShippingThreshold)) {
		shippingPrice = decimal.Zero
	}

	taxPrice := itemsPrice.Mul(TaxRate).Round(2)

	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice)

	return Quote{
		ItemsPrice:    itemsPrice.InexactFloat64(),
		ShippingPrice: shippingPrice.InexactFloat64(),
		TaxPrice:      taxPrice.InexactFloat64(),
		TotalPrice:    totalPrice.InexactFloat64(),
	}
}
