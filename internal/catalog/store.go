package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Store reads the reference catalog from the SQLite database. It never writes.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	variantColumns  = `id, product_family_id, model_number, COALESCE(description, ''), base_price, base_length, voltage, material_code`
	materialColumns = `code, name, COALESCE(description, ''), base_length, length_adder_per_inch, length_adder_per_foot,
		has_nonstandard_length_surcharge, nonstandard_length_surcharge, base_price_adder`
	optionColumns = `id, name, COALESCE(description, ''), COALESCE(category, ''), price, price_type, product_families, excluded_models`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariant(row rowScanner) (ProductVariant, error) {
	var (
		v          ProductVariant
		baseLength sql.NullFloat64
	)
	if err := row.Scan(&v.ID, &v.FamilyID, &v.ModelNumber, &v.Description, &v.BasePrice, &baseLength, &v.Voltage, &v.MaterialCode); err != nil {
		return ProductVariant{}, err
	}
	if baseLength.Valid {
		l := baseLength.Float64
		v.BaseLength = &l
	}
	return v, nil
}

func scanMaterial(row rowScanner) (Material, error) {
	var (
		m       Material
		perInch decimal.NullDecimal
		perFoot decimal.NullDecimal
	)
	if err := row.Scan(&m.Code, &m.Name, &m.Description, &m.BaseLength, &perInch, &perFoot,
		&m.HasNonstandardLengthSurcharge, &m.NonstandardLengthSurcharge, &m.BasePriceAdder); err != nil {
		return Material{}, err
	}
	if perInch.Valid {
		m.LengthAdderPerInch = &perInch.Decimal
	}
	if perFoot.Valid {
		m.LengthAdderPerFoot = &perFoot.Decimal
	}
	return m, nil
}

func scanOption(row rowScanner) (Option, error) {
	var (
		o                  Option
		priceType          string
		families, excluded string
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Category, &o.Price, &priceType, &families, &excluded); err != nil {
		return Option{}, err
	}
	o.PriceType = PriceType(priceType)
	o.ProductFamilies = SplitList(families)
	o.ExcludedModels = SplitList(excluded)
	return o, nil
}

// notFound maps sql.ErrNoRows onto ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("query %s: %w", what, err)
}

func (s *Store) GetVariant(id int64) (ProductVariant, error) {
	v, err := scanVariant(s.db.QueryRow(`SELECT `+variantColumns+` FROM product_variants WHERE id = ?`, id))
	if err != nil {
		return ProductVariant{}, notFound(err, "product variant %d", id)
	}
	return v, nil
}

func (s *Store) GetMaterial(code string) (Material, error) {
	m, err := scanMaterial(s.db.QueryRow(`SELECT `+materialColumns+` FROM materials WHERE code = ?`, code))
	if err != nil {
		return Material{}, notFound(err, "material %q", code)
	}
	return m, nil
}

func (s *Store) GetVariantByFamilyVoltageMaterial(familyID int64, voltage, materialCode string) (ProductVariant, error) {
	v, err := scanVariant(s.db.QueryRow(`
		SELECT `+variantColumns+`
		FROM product_variants
		WHERE product_family_id = ? AND voltage = ? AND material_code = ?
		ORDER BY id
		LIMIT 1
	`, familyID, voltage, materialCode))
	if err != nil {
		return ProductVariant{}, notFound(err, "variant of family %d with voltage %q and material %q", familyID, voltage, materialCode)
	}
	return v, nil
}

func (s *Store) GetAvailability(materialCode, productType string) (MaterialAvailability, error) {
	a := MaterialAvailability{MaterialCode: materialCode, ProductType: productType}
	err := s.db.QueryRow(`
		SELECT is_available
		FROM material_availability
		WHERE material_code = ? AND product_type = ?
		ORDER BY is_available DESC
		LIMIT 1
	`, materialCode, productType).Scan(&a.IsAvailable)
	if err != nil {
		return MaterialAvailability{}, notFound(err, "availability of material %q for %q", materialCode, productType)
	}
	return a, nil
}

func (s *Store) ListStandardLengths(materialCode string) ([]StandardLength, error) {
	return s.listStandardLengths(`WHERE material_code = ?`, materialCode)
}

func (s *Store) ListAllStandardLengths() ([]StandardLength, error) {
	return s.listStandardLengths("")
}

func (s *Store) listStandardLengths(where string, args ...any) ([]StandardLength, error) {
	rows, err := s.db.Query(`SELECT material_code, length FROM standard_lengths `+where+` ORDER BY material_code, length`, args...)
	if err != nil {
		return nil, fmt.Errorf("query standard lengths: %w", err)
	}
	defer rows.Close()

	lengths := make([]StandardLength, 0)
	for rows.Next() {
		var l StandardLength
		if err := rows.Scan(&l.MaterialCode, &l.Length); err != nil {
			return nil, fmt.Errorf("scan standard length: %w", err)
		}
		lengths = append(lengths, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standard lengths: %w", err)
	}

	return lengths, nil
}

func (s *Store) GetFamily(id int64) (ProductFamily, error) {
	var f ProductFamily
	err := s.db.QueryRow(`
		SELECT id, name, COALESCE(description, ''), COALESCE(category, '')
		FROM product_families
		WHERE id = ?
	`, id).Scan(&f.ID, &f.Name, &f.Description, &f.Category)
	if err != nil {
		return ProductFamily{}, notFound(err, "product family %d", id)
	}
	return f, nil
}

func (s *Store) GetOption(id int64) (Option, error) {
	o, err := scanOption(s.db.QueryRow(`SELECT `+optionColumns+` FROM options WHERE id = ?`, id))
	if err != nil {
		return Option{}, notFound(err, "option %d", id)
	}
	return o, nil
}

func (s *Store) ListFamilies() ([]ProductFamily, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(description, ''), COALESCE(category, '')
		FROM product_families
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query product families: %w", err)
	}
	defer rows.Close()

	families := make([]ProductFamily, 0)
	for rows.Next() {
		var f ProductFamily
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Category); err != nil {
			return nil, fmt.Errorf("scan product family: %w", err)
		}
		families = append(families, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product families: %w", err)
	}

	return families, nil
}

func (s *Store) ListVariants() ([]ProductVariant, error) {
	return queryAll(s.db, `SELECT `+variantColumns+` FROM product_variants ORDER BY id`, "product variants", scanVariant)
}

func (s *Store) ListMaterials() ([]Material, error) {
	return queryAll(s.db, `SELECT `+materialColumns+` FROM materials ORDER BY code`, "materials", scanMaterial)
}

func (s *Store) ListOptions() ([]Option, error) {
	return queryAll(s.db, `SELECT `+optionColumns+` FROM options ORDER BY id`, "options", scanOption)
}

func (s *Store) ListAvailability() ([]MaterialAvailability, error) {
	return queryAll(s.db, `
		SELECT material_code, product_type, is_available
		FROM material_availability
		ORDER BY product_type, material_code
	`, "material availability", func(row rowScanner) (MaterialAvailability, error) {
		var a MaterialAvailability
		err := row.Scan(&a.MaterialCode, &a.ProductType, &a.IsAvailable)
		return a, err
	})
}

func queryAll[T any](db *sql.DB, query, what string, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", strings.TrimSuffix(what, "s"), err)
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return out, nil
}
