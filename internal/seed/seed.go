package seed

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/sensorquote/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type variantRow struct {
	family string
	catalog.ProductVariant
}

func usd(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func perInch(v string) *decimal.Decimal {
	d := usd(v)
	return &d
}

func length(v float64) *float64 { return &v }

var families = []catalog.ProductFamily{
	{Name: "LS2000", Description: "Single point conductance level switch", Category: "Level Switch"},
	{Name: "LS7000", Description: "Single point RF level switch", Category: "Level Switch"},
	{Name: "LS7000/2", Description: "Dual point RF level switch", Category: "Level Switch"},
	{Name: "LT9000", Description: "Continuous RF level transmitter", Category: "Transmitter"},
}

var materials = []catalog.Material{
	{Code: "S", Name: "316 Stainless Steel", BaseLength: 10, LengthAdderPerInch: perInch("3.75")},
	{Code: "H", Name: "Halar Coated", BaseLength: 10, LengthAdderPerInch: perInch("9.17")},
	{Code: "TS", Name: "Teflon Sleeve", BaseLength: 10, LengthAdderPerInch: perInch("9.17")},
	{
		Code: "U", Name: "UHMWPE", BaseLength: 4, LengthAdderPerInch: perInch("40"),
		HasNonstandardLengthSurcharge: true, NonstandardLengthSurcharge: usd("300"),
		BasePriceAdder: usd("20"),
	},
	{
		Code: "T", Name: "Teflon", BaseLength: 4, LengthAdderPerInch: perInch("50"),
		HasNonstandardLengthSurcharge: true, NonstandardLengthSurcharge: usd("300"),
		BasePriceAdder: usd("60"),
	},
}

var standardLengths = func() []catalog.StandardLength {
	var out []catalog.StandardLength
	for _, code := range []string{"U", "T"} {
		for _, l := range []float64{4, 6, 8, 10, 12, 16, 24, 36, 48, 60, 72} {
			out = append(out, catalog.StandardLength{MaterialCode: code, Length: l})
		}
	}
	return out
}()

var availability = []catalog.MaterialAvailability{
	{MaterialCode: "S", ProductType: "LS2000", IsAvailable: true},
	{MaterialCode: "H", ProductType: "LS2000", IsAvailable: true},
	{MaterialCode: "TS", ProductType: "LS2000", IsAvailable: true},
	{MaterialCode: "U", ProductType: "LS2000", IsAvailable: true},
	{MaterialCode: "T", ProductType: "LS2000", IsAvailable: true},
	{MaterialCode: "S", ProductType: "LS7000", IsAvailable: true},
	{MaterialCode: "H", ProductType: "LS7000", IsAvailable: true},
	{MaterialCode: "TS", ProductType: "LS7000", IsAvailable: true},
	{MaterialCode: "U", ProductType: "LS7000", IsAvailable: false},
	{MaterialCode: "S", ProductType: "LS7000/2", IsAvailable: true},
	{MaterialCode: "H", ProductType: "LS7000/2", IsAvailable: true},
	{MaterialCode: "S", ProductType: "LT9000", IsAvailable: true},
	{MaterialCode: "H", ProductType: "LT9000", IsAvailable: true},
}

var variants = []variantRow{
	{"LS2000", catalog.ProductVariant{ModelNumber: `LS2000-115VAC-S-10"`, Description: "LS2000 115VAC, 316SS probe", BasePrice: usd("425"), BaseLength: length(10), Voltage: "115VAC", MaterialCode: "S"}},
	{"LS2000", catalog.ProductVariant{ModelNumber: `LS2000-24VDC-S-10"`, Description: "LS2000 24VDC, 316SS probe", BasePrice: usd("425"), BaseLength: length(10), Voltage: "24VDC", MaterialCode: "S"}},
	{"LS2000", catalog.ProductVariant{ModelNumber: `LS2000-115VAC-H-10"`, Description: "LS2000 115VAC, Halar coated probe", BasePrice: usd("535"), BaseLength: length(10), Voltage: "115VAC", MaterialCode: "H"}},
	{"LS7000", catalog.ProductVariant{ModelNumber: `LS7000-115VAC-S-10"`, Description: "LS7000 115VAC, 316SS probe", BasePrice: usd("680"), BaseLength: length(10), Voltage: "115VAC", MaterialCode: "S"}},
	{"LS7000", catalog.ProductVariant{ModelNumber: `LS7000-24VDC-H-10"`, Description: "LS7000 24VDC, Halar coated probe", BasePrice: usd("790"), BaseLength: length(10), Voltage: "24VDC", MaterialCode: "H"}},
	{"LS7000/2", catalog.ProductVariant{ModelNumber: `LS7000/2-115VAC-S-10"`, Description: "LS7000/2 115VAC, 316SS probe", BasePrice: usd("970"), BaseLength: length(10), Voltage: "115VAC", MaterialCode: "S"}},
	{"LS7000/2", catalog.ProductVariant{ModelNumber: `LS7000/2-115VAC-H-10"`, Description: "LS7000/2 115VAC, Halar coated probe", BasePrice: usd("1080"), BaseLength: length(10), Voltage: "115VAC", MaterialCode: "H"}},
	{"LT9000", catalog.ProductVariant{ModelNumber: `LT9000-24VDC-S-10"`, Description: "LT9000 loop powered, 316SS probe", BasePrice: usd("1350"), BaseLength: length(10), Voltage: "24VDC", MaterialCode: "S"}},
}

var options = []catalog.Option{
	{Name: "Stainless Steel Tag", Category: "feature", Price: usd("30"), PriceType: catalog.PriceFixed},
	{Name: "Extended Cable", Category: "feature", Price: usd("8"), PriceType: catalog.PricePerFoot},
	{Name: "Probe Insulation Sleeve", Category: "material", Price: usd("2.50"), PriceType: catalog.PricePerInch, ProductFamilies: []string{"LS2000", "LS7000"}},
	{Name: "Explosion-Proof Housing", Category: "mounting", Price: usd("350"), PriceType: catalog.PriceFixed, ProductFamilies: []string{"LS2000", "LS7000", "LS7000/2"}},
	{Name: "Local Display", Category: "feature", Price: usd("250"), PriceType: catalog.PriceFixed, ProductFamilies: []string{"LT9000"}},
	{Name: `2" Tri-Clamp Connection`, Category: "mounting", Price: usd("120"), PriceType: catalog.PriceFixed, ExcludedModels: []string{`LS7000/2-115VAC-H-10"`}},
}

// Run seeds the reference catalog in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	steps := []func(*sql.Tx, *Stats) error{
		ensureFamilies,
		ensureMaterials,
		ensureStandardLengths,
		ensureAvailability,
		ensureVariants,
		ensureOptions,
	}
	for _, step := range steps {
		if err := step(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// insertMissing runs insert unless exists reports a matching row.
func insertMissing(tx *sql.Tx, stats *Stats, what, exists string, existsArgs []any, insert string, insertArgs ...any) error {
	var found bool
	if err := tx.QueryRow(exists, existsArgs...).Scan(&found); err != nil {
		return fmt.Errorf("check %s existence: %w", what, err)
	}
	if found {
		return nil
	}

	if _, err := tx.Exec(insert, insertArgs...); err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	stats.Inserts++
	return nil
}

func ensureFamilies(tx *sql.Tx, stats *Stats) error {
	for _, f := range families {
		err := insertMissing(tx, stats, "product family "+f.Name,
			`SELECT EXISTS(SELECT 1 FROM product_families WHERE name = ? LIMIT 1)`, []any{f.Name},
			`INSERT INTO product_families (name, description, category) VALUES (?, ?, ?)`,
			f.Name, f.Description, f.Category)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range materials {
		err := insertMissing(tx, stats, "material "+m.Code,
			`SELECT EXISTS(SELECT 1 FROM materials WHERE code = ? LIMIT 1)`, []any{m.Code},
			`
			INSERT INTO materials (
				code,
				name,
				description,
				base_length,
				length_adder_per_inch,
				length_adder_per_foot,
				has_nonstandard_length_surcharge,
				nonstandard_length_surcharge,
				base_price_adder
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			m.Code, m.Name, m.Description, m.BaseLength,
			nullDecimal(m.LengthAdderPerInch), nullDecimal(m.LengthAdderPerFoot),
			m.HasNonstandardLengthSurcharge, m.NonstandardLengthSurcharge, m.BasePriceAdder)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureStandardLengths(tx *sql.Tx, stats *Stats) error {
	for _, l := range standardLengths {
		err := insertMissing(tx, stats, fmt.Sprintf("standard length %s/%g", l.MaterialCode, l.Length),
			`SELECT EXISTS(SELECT 1 FROM standard_lengths WHERE material_code = ? AND length = ? LIMIT 1)`, []any{l.MaterialCode, l.Length},
			`INSERT INTO standard_lengths (material_code, length) VALUES (?, ?)`,
			l.MaterialCode, l.Length)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAvailability(tx *sql.Tx, stats *Stats) error {
	for _, a := range availability {
		err := insertMissing(tx, stats, fmt.Sprintf("availability %s/%s", a.MaterialCode, a.ProductType),
			`SELECT EXISTS(SELECT 1 FROM material_availability WHERE material_code = ? AND product_type = ? LIMIT 1)`, []any{a.MaterialCode, a.ProductType},
			`INSERT INTO material_availability (material_code, product_type, is_available) VALUES (?, ?, ?)`,
			a.MaterialCode, a.ProductType, a.IsAvailable)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureVariants(tx *sql.Tx, stats *Stats) error {
	for _, v := range variants {
		var familyID int64
		if err := tx.QueryRow(`SELECT id FROM product_families WHERE name = ?`, v.family).Scan(&familyID); err != nil {
			return fmt.Errorf("look up product family %s: %w", v.family, err)
		}

		var baseLength sql.NullFloat64
		if v.BaseLength != nil {
			baseLength = sql.NullFloat64{Float64: *v.BaseLength, Valid: true}
		}

		err := insertMissing(tx, stats, "product variant "+v.ModelNumber,
			`SELECT EXISTS(SELECT 1 FROM product_variants WHERE model_number = ? LIMIT 1)`, []any{v.ModelNumber},
			`
			INSERT INTO product_variants (product_family_id, model_number, description, base_price, base_length, voltage, material_code)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
			familyID, v.ModelNumber, v.Description, v.BasePrice, baseLength, v.Voltage, v.MaterialCode)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureOptions(tx *sql.Tx, stats *Stats) error {
	for _, o := range options {
		err := insertMissing(tx, stats, "option "+o.Name,
			`SELECT EXISTS(SELECT 1 FROM options WHERE name = ? LIMIT 1)`, []any{o.Name},
			`
			INSERT INTO options (name, description, category, price, price_type, product_families, excluded_models)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
			o.Name, o.Description, o.Category, o.Price, string(o.PriceType),
			strings.Join(o.ProductFamilies, ","), strings.Join(o.ExcludedModels, ","))
		if err != nil {
			return err
		}
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
