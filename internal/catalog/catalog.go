package catalog

import (
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a variant, material, family or option is absent.
var ErrNotFound = errors.New("not found")

// PriceType is the pricing mode of an add-on option.
type PriceType string

const (
	PriceFixed   PriceType = "fixed"
	PricePerInch PriceType = "per_inch"
	PricePerFoot PriceType = "per_foot"
)

// ProductFamily groups related variants, e.g. "LS2000".
type ProductFamily struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// ProductVariant is one catalog SKU within a family.
type ProductVariant struct {
	ID           int64           `json:"id"`
	FamilyID     int64           `json:"family_id"`
	ModelNumber  string          `json:"model_number"`
	Description  string          `json:"description,omitempty"`
	BasePrice    decimal.Decimal `json:"base_price"`
	BaseLength   *float64        `json:"base_length,omitempty"`
	Voltage      string          `json:"voltage"`
	MaterialCode string          `json:"material_code"`
}

// Material holds the pricing rules for one wetted-part material.
// At most one of LengthAdderPerInch and LengthAdderPerFoot is expected to be set.
type Material struct {
	Code                          string           `json:"code"`
	Name                          string           `json:"name"`
	Description                   string           `json:"description,omitempty"`
	BaseLength                    float64          `json:"base_length"`
	LengthAdderPerInch            *decimal.Decimal `json:"length_adder_per_inch,omitempty"`
	LengthAdderPerFoot            *decimal.Decimal `json:"length_adder_per_foot,omitempty"`
	HasNonstandardLengthSurcharge bool             `json:"has_nonstandard_length_surcharge"`
	NonstandardLengthSurcharge    decimal.Decimal  `json:"nonstandard_length_surcharge"`
	BasePriceAdder                decimal.Decimal  `json:"base_price_adder"`
}

// StandardLength is a length that does not trigger the non-standard surcharge.
type StandardLength struct {
	MaterialCode string  `json:"material_code"`
	Length       float64 `json:"length"`
}

// MaterialAvailability records whether a material may be substituted onto a product type.
type MaterialAvailability struct {
	MaterialCode string `json:"material_code"`
	ProductType  string `json:"product_type"`
	IsAvailable  bool   `json:"is_available"`
}

// Option is a priced add-on.
type Option struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	PriceType       PriceType       `json:"price_type"`
	ProductFamilies []string        `json:"product_families,omitempty"`
	ExcludedModels  []string        `json:"excluded_models,omitempty"`
}

// CompatibleWith reports whether the option may be attached to a variant of
// the given family and model number. An empty family list means every family.
func (o Option) CompatibleWith(familyName, modelNumber string) bool {
	if slices.Contains(o.ExcludedModels, modelNumber) {
		return false
	}
	if len(o.ProductFamilies) == 0 {
		return true
	}
	return slices.Contains(o.ProductFamilies, familyName)
}

// Reader is the read-only lookup surface the pricing engine depends on.
type Reader interface {
	GetVariant(id int64) (ProductVariant, error)
	GetMaterial(code string) (Material, error)
	GetVariantByFamilyVoltageMaterial(familyID int64, voltage, materialCode string) (ProductVariant, error)
	GetAvailability(materialCode, productType string) (MaterialAvailability, error)
	ListStandardLengths(materialCode string) ([]StandardLength, error)
}

// OptionReader adds the lookups needed to attach options to a quote item.
type OptionReader interface {
	Reader
	GetFamily(id int64) (ProductFamily, error)
	GetOption(id int64) (Option, error)
}

// Lister enumerates whole tables. It backs snapshot loading and listings.
type Lister interface {
	ListFamilies() ([]ProductFamily, error)
	ListVariants() ([]ProductVariant, error)
	ListMaterials() ([]Material, error)
	ListAllStandardLengths() ([]StandardLength, error)
	ListAvailability() ([]MaterialAvailability, error)
	ListOptions() ([]Option, error)
}

// ProductType returns the family token of a model number: everything before
// the first "-". A dual-point sub-type ("LS7000/2") is kept, deeper slash
// segments are dropped.
func ProductType(modelNumber string) string {
	token, _, _ := strings.Cut(modelNumber, "-")
	family, rest, ok := strings.Cut(token, "/")
	if !ok {
		return token
	}
	sub, _, _ := strings.Cut(rest, "/")
	return family + "/" + sub
}

// SplitList parses a comma-separated column into trimmed, non-empty values.
func SplitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
