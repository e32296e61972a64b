package catalog

import "fmt"

// AvailableMaterials returns the materials that may be substituted onto productType.
func AvailableMaterials(l Lister, productType string) ([]Material, error) {
	availability, err := l.ListAvailability()
	if err != nil {
		return nil, fmt.Errorf("list material availability: %w", err)
	}
	allowed := make(map[string]bool)
	for _, a := range availability {
		if a.ProductType == productType && a.IsAvailable {
			allowed[a.MaterialCode] = true
		}
	}

	materials, err := l.ListMaterials()
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	out := make([]Material, 0, len(allowed))
	for _, m := range materials {
		if allowed[m.Code] {
			out = append(out, m)
		}
	}
	return out, nil
}

// CompatibleOptions returns the options that may be attached to variant.
func CompatibleOptions(l Lister, variant ProductVariant, family ProductFamily) ([]Option, error) {
	options, err := l.ListOptions()
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if o.CompatibleWith(family.Name, variant.ModelNumber) {
			out = append(out, o)
		}
	}
	return out, nil
}
