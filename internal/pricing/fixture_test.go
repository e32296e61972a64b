package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Simplici0/sensorquote/internal/catalog"
)

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func rate(v string) *decimal.Decimal {
	d := money(v)
	return &d
}

func inches(v float64) *float64 { return &v }

func assertMoney(t *testing.T, name, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, money(want).Equal(got), "%s = %s, want %s", name, got, want)
}

// testCatalog mirrors the seeded level-switch catalog closely enough to
// exercise every pricing branch.
func testCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot(catalog.Data{
		Families: []catalog.ProductFamily{
			{ID: 1, Name: "LS2000", Category: "Level Switch"},
			{ID: 2, Name: "LS7000/2", Category: "Level Switch"},
			{ID: 3, Name: "LT9000", Category: "Transmitter"},
		},
		Materials: []catalog.Material{
			{Code: "S", Name: "316 Stainless Steel", BaseLength: 10, LengthAdderPerInch: rate("3.75")},
			{Code: "H", Name: "Halar Coated", BaseLength: 10, LengthAdderPerInch: rate("9.17")},
			{Code: "TS", Name: "Teflon Sleeve", BaseLength: 10, LengthAdderPerInch: rate("9.17")},
			{
				Code: "U", Name: "UHMWPE", BaseLength: 10, LengthAdderPerInch: rate("40"),
				HasNonstandardLengthSurcharge: true, NonstandardLengthSurcharge: money("75"),
				BasePriceAdder: money("20"),
			},
			{
				Code: "T", Name: "Teflon", BaseLength: 10, LengthAdderPerInch: rate("50"),
				HasNonstandardLengthSurcharge: true, NonstandardLengthSurcharge: money("100"),
				BasePriceAdder: money("60"),
			},
			{Code: "F", Name: "Flexible Cable", BaseLength: 12, LengthAdderPerFoot: rate("45")},
			{Code: "N", Name: "No Length Pricing", BaseLength: 10},
		},
		Variants: []catalog.ProductVariant{
			{ID: 1, FamilyID: 1, ModelNumber: `LS2000-115VAC-S-10"`, BasePrice: money("500"), BaseLength: inches(10), Voltage: "115VAC", MaterialCode: "S"},
			{ID: 2, FamilyID: 1, ModelNumber: `LS2000-115VAC-H-10"`, BasePrice: money("650"), BaseLength: inches(10), Voltage: "115VAC", MaterialCode: "H"},
			{ID: 3, FamilyID: 2, ModelNumber: `LS7000/2-24VDC-H-16"`, BasePrice: money("900"), BaseLength: inches(16), Voltage: "24VDC", MaterialCode: "H"},
			{ID: 4, FamilyID: 3, ModelNumber: `LT9000-24VDC-U-4"`, BasePrice: money("1200"), BaseLength: inches(4), Voltage: "24VDC", MaterialCode: "U"},
			{ID: 5, FamilyID: 3, ModelNumber: "LT9000-24VDC-N", BasePrice: money("800"), Voltage: "24VDC", MaterialCode: "N"},
			{ID: 6, FamilyID: 1, ModelNumber: `LS2000-24VDC-TS-10"`, BasePrice: money("700"), BaseLength: inches(10), Voltage: "24VDC", MaterialCode: "TS"},
			{ID: 7, FamilyID: 3, ModelNumber: "LT9000-24VDC-U", BasePrice: money("1000"), Voltage: "24VDC", MaterialCode: "U"},
		},
		StandardLengths: []catalog.StandardLength{
			{MaterialCode: "U", Length: 10},
			{MaterialCode: "U", Length: 12},
			{MaterialCode: "U", Length: 18},
			{MaterialCode: "U", Length: 18},
			{MaterialCode: "T", Length: 10},
			{MaterialCode: "T", Length: 12},
		},
		Availability: []catalog.MaterialAvailability{
			{MaterialCode: "S", ProductType: "LS2000", IsAvailable: true},
			{MaterialCode: "H", ProductType: "LS2000", IsAvailable: true},
			{MaterialCode: "U", ProductType: "LS2000", IsAvailable: true},
			{MaterialCode: "T", ProductType: "LS2000", IsAvailable: true},
			{MaterialCode: "S", ProductType: "LS7000/2", IsAvailable: true},
			{MaterialCode: "T", ProductType: "LS7000/2", IsAvailable: false},
			{MaterialCode: "T", ProductType: "LT9000", IsAvailable: true},
		},
	})
}
