package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/sensorquote/internal/catalog"
)

// ReferenceMaterialCode is the standard material (316 stainless) that
// overridden prices are re-based from.
const ReferenceMaterialCode = "S"

// ErrMaterialNotAvailable is returned when a material override is not offered
// for the variant's product type.
var ErrMaterialNotAvailable = errors.New("material not available for product type")

// LengthThreshold selects which base length extra length is measured from.
type LengthThreshold int

const (
	// MaterialBaseLength measures from Material.BaseLength.
	MaterialBaseLength LengthThreshold = iota
	// VariantBaseLength measures from ProductVariant.BaseLength (legacy rule set).
	VariantBaseLength
)

// ParseLengthThreshold accepts "material" or "variant". Empty means material.
func ParseLengthThreshold(raw string) (LengthThreshold, error) {
	switch raw {
	case "", "material":
		return MaterialBaseLength, nil
	case "variant":
		return VariantBaseLength, nil
	}
	return 0, fmt.Errorf("unknown length threshold %q", raw)
}

// Rules holds the business-rule switches of the product price calculation.
type Rules struct {
	LengthThreshold LengthThreshold
}

// DefaultRules is the canonical data-driven rule set.
var DefaultRules = Rules{LengthThreshold: MaterialBaseLength}

// Breakdown contains every component that makes up a product price.
type Breakdown struct {
	BasePrice            decimal.Decimal `json:"base_price"`
	MaterialAdjustment   decimal.Decimal `json:"material_adjustment"`
	LengthAdder          decimal.Decimal `json:"length_adder"`
	NonstandardSurcharge decimal.Decimal `json:"nonstandard_surcharge"`
}

// Totals contains roll-up values from the pricing calculation.
type Totals struct {
	Total decimal.Decimal `json:"total"`
}

// Result groups the resolved configuration with its price breakdown and totals.
type Result struct {
	VariantID    int64     `json:"variant_id"`
	ModelNumber  string    `json:"model_number"`
	ProductType  string    `json:"product_type"`
	MaterialCode string    `json:"material_code"`
	Length       *float64  `json:"length,omitempty"`
	ExtraLength  float64   `json:"extra_length"`
	Breakdown    Breakdown `json:"breakdown"`
	Totals       Totals    `json:"totals"`
}

// CalculateProductPrice prices a configured variant with DefaultRules.
// A nil length means the variant's base length; an empty materialOverride
// means the variant's default material.
func CalculateProductPrice(cat catalog.Reader, variantID int64, length *float64, materialOverride string) (decimal.Decimal, error) {
	res, err := DefaultRules.Calculate(cat, variantID, length, materialOverride)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Totals.Total, nil
}

// Calculate prices a configured variant with DefaultRules and returns the breakdown.
func Calculate(cat catalog.Reader, variantID int64, length *float64, materialOverride string) (Result, error) {
	return DefaultRules.Calculate(cat, variantID, length, materialOverride)
}

// Calculate prices a configured variant. It either fully succeeds or returns
// an error wrapping catalog.ErrNotFound or ErrMaterialNotAvailable.
func (r Rules) Calculate(cat catalog.Reader, variantID int64, length *float64, materialOverride string) (Result, error) {
	variant, err := cat.GetVariant(variantID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve product variant: %w", err)
	}

	if length == nil {
		length = variant.BaseLength
	}

	materialCode := variant.MaterialCode
	if materialOverride != "" {
		materialCode = materialOverride
	}
	overridden := materialCode != variant.MaterialCode

	material, err := cat.GetMaterial(materialCode)
	if err != nil {
		return Result{}, fmt.Errorf("resolve material: %w", err)
	}

	productType := catalog.ProductType(variant.ModelNumber)
	if overridden {
		if err := checkAvailability(cat, materialCode, productType); err != nil {
			return Result{}, err
		}
	}

	price := variant.BasePrice
	if overridden {
		sibling, err := cat.GetVariantByFamilyVoltageMaterial(variant.FamilyID, variant.Voltage, ReferenceMaterialCode)
		switch {
		case err == nil:
			price = sibling.BasePrice.Add(material.BasePriceAdder)
		case errors.Is(err, catalog.ErrNotFound):
			// No reference sibling: keep the variant's own base price.
		default:
			return Result{}, fmt.Errorf("resolve reference variant: %w", err)
		}
	}

	res := Result{
		VariantID:    variant.ID,
		ModelNumber:  variant.ModelNumber,
		ProductType:  productType,
		MaterialCode: materialCode,
		Length:       length,
		Breakdown: Breakdown{
			BasePrice:            variant.BasePrice,
			MaterialAdjustment:   price.Sub(variant.BasePrice),
			LengthAdder:          decimal.Zero,
			NonstandardSurcharge: decimal.Zero,
		},
	}

	if length != nil {
		if reference, ok := r.referenceLength(variant, material); ok {
			res.ExtraLength = ExtraLength(*length, reference)
			res.Breakdown.LengthAdder = LengthAdder(material, *length, reference)
		}
	}

	surcharge, err := NonstandardSurcharge(cat, material, length)
	if err != nil {
		return Result{}, err
	}
	res.Breakdown.NonstandardSurcharge = surcharge

	res.Totals.Total = price.
		Add(res.Breakdown.LengthAdder).
		Add(res.Breakdown.NonstandardSurcharge)

	return res, nil
}

func (r Rules) referenceLength(variant catalog.ProductVariant, material catalog.Material) (float64, bool) {
	if r.LengthThreshold == VariantBaseLength {
		if variant.BaseLength == nil {
			return 0, false
		}
		return *variant.BaseLength, true
	}
	return material.BaseLength, true
}

func checkAvailability(cat catalog.Reader, materialCode, productType string) error {
	availability, err := cat.GetAvailability(materialCode, productType)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("check material availability: %w", err)
	}
	if err != nil || !availability.IsAvailable {
		return fmt.Errorf("material %q for product type %q: %w", materialCode, productType, ErrMaterialNotAvailable)
	}
	return nil
}
