package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/sensorquote/internal/catalog"
)

var inchesPerFoot = decimal.NewFromInt(12)

// ExtraLength returns how far length exceeds reference, or 0.
func ExtraLength(length, reference float64) float64 {
	return extraInches(length, reference).InexactFloat64()
}

// extraInches subtracts in decimal so a length like 10.1" yields exactly 0.1".
func extraInches(length, reference float64) decimal.Decimal {
	extra := decimal.NewFromFloat(length).Sub(decimal.NewFromFloat(reference))
	if !extra.IsPositive() {
		return decimal.Zero
	}
	return extra
}

// LengthAdder returns the charge for length beyond reference. The per-inch
// rate takes precedence; a material with neither rate adds nothing.
func LengthAdder(m catalog.Material, length, reference float64) decimal.Decimal {
	inches := extraInches(length, reference)
	if inches.IsZero() {
		return decimal.Zero
	}

	switch {
	case m.LengthAdderPerInch != nil:
		return inches.Mul(*m.LengthAdderPerInch)
	case m.LengthAdderPerFoot != nil:
		return inches.Mul(*m.LengthAdderPerFoot).Div(inchesPerFoot)
	}
	return decimal.Zero
}

// IsStandardLength reports whether length exactly equals one of the standard
// lengths listed for materialCode.
func IsStandardLength(cat catalog.Reader, materialCode string, length float64) (bool, error) {
	lengths, err := cat.ListStandardLengths(materialCode)
	if err != nil {
		return false, fmt.Errorf("list standard lengths: %w", err)
	}
	for _, l := range lengths {
		if l.Length == length {
			return true, nil
		}
	}
	return false, nil
}

// NonstandardSurcharge returns the material's surcharge when it has one and
// length is not a standard length, otherwise zero. A nil length matches no
// standard length.
func NonstandardSurcharge(cat catalog.Reader, m catalog.Material, length *float64) (decimal.Decimal, error) {
	if !m.HasNonstandardLengthSurcharge {
		return decimal.Zero, nil
	}
	if length == nil {
		return m.NonstandardLengthSurcharge, nil
	}

	standard, err := IsStandardLength(cat, m.Code, *length)
	if err != nil {
		return decimal.Zero, err
	}
	if standard {
		return decimal.Zero, nil
	}
	return m.NonstandardLengthSurcharge, nil
}
