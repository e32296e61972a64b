package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/sensorquote/internal/catalog"
)

// CalculateOptionPrice prices one add-on option. Per-inch and per-foot
// options scale with length (inches). An unknown price type, or a per-length
// type without a length, is priced as fixed.
func CalculateOptionPrice(basePrice decimal.Decimal, priceType catalog.PriceType, length *float64) decimal.Decimal {
	switch {
	case priceType == catalog.PricePerInch && length != nil:
		return basePrice.Mul(decimal.NewFromFloat(*length))
	case priceType == catalog.PricePerFoot && length != nil:
		return basePrice.Mul(decimal.NewFromFloat(*length)).Div(inchesPerFoot)
	}
	return basePrice
}
