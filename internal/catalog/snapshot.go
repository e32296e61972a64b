package catalog

import (
	"fmt"
	"slices"
	"sort"
)

// Data is the raw content of a catalog, as loaded from a store or built by hand.
type Data struct {
	Families        []ProductFamily
	Variants        []ProductVariant
	Materials       []Material
	StandardLengths []StandardLength
	Availability    []MaterialAvailability
	Options         []Option
}

type availabilityKey struct {
	material    string
	productType string
}

// Snapshot is an immutable in-memory catalog. It is safe for concurrent use
// because nothing mutates it after NewSnapshot returns.
type Snapshot struct {
	families     map[int64]ProductFamily
	variants     map[int64]ProductVariant
	materials    map[string]Material
	lengths      map[string][]StandardLength
	availability map[availabilityKey]MaterialAvailability
	options      map[int64]Option
	data         Data
}

// NewSnapshot indexes d. The slices are copied so later changes by the caller
// do not leak into the snapshot.
func NewSnapshot(d Data) *Snapshot {
	s := &Snapshot{
		families:     make(map[int64]ProductFamily, len(d.Families)),
		variants:     make(map[int64]ProductVariant, len(d.Variants)),
		materials:    make(map[string]Material, len(d.Materials)),
		lengths:      make(map[string][]StandardLength),
		availability: make(map[availabilityKey]MaterialAvailability, len(d.Availability)),
		options:      make(map[int64]Option, len(d.Options)),
		data: Data{
			Families:        slices.Clone(d.Families),
			Variants:        slices.Clone(d.Variants),
			Materials:       slices.Clone(d.Materials),
			StandardLengths: slices.Clone(d.StandardLengths),
			Availability:    slices.Clone(d.Availability),
			Options:         slices.Clone(d.Options),
		},
	}

	sort.Slice(s.data.Variants, func(i, j int) bool { return s.data.Variants[i].ID < s.data.Variants[j].ID })

	for _, f := range s.data.Families {
		s.families[f.ID] = f
	}
	for _, v := range s.data.Variants {
		s.variants[v.ID] = v
	}
	for _, m := range s.data.Materials {
		s.materials[m.Code] = m
	}
	for _, l := range s.data.StandardLengths {
		s.lengths[l.MaterialCode] = append(s.lengths[l.MaterialCode], l)
	}
	for _, a := range s.data.Availability {
		key := availabilityKey{a.MaterialCode, a.ProductType}
		// An available row wins over an unavailable duplicate.
		if prev, ok := s.availability[key]; ok && prev.IsAvailable {
			continue
		}
		s.availability[key] = a
	}
	for _, o := range s.data.Options {
		s.options[o.ID] = o
	}

	return s
}

// Load reads every table from l into a new Snapshot.
func Load(l Lister) (*Snapshot, error) {
	var (
		d   Data
		err error
	)
	if d.Families, err = l.ListFamilies(); err != nil {
		return nil, fmt.Errorf("load families: %w", err)
	}
	if d.Variants, err = l.ListVariants(); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	if d.Materials, err = l.ListMaterials(); err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	if d.StandardLengths, err = l.ListAllStandardLengths(); err != nil {
		return nil, fmt.Errorf("load standard lengths: %w", err)
	}
	if d.Availability, err = l.ListAvailability(); err != nil {
		return nil, fmt.Errorf("load material availability: %w", err)
	}
	if d.Options, err = l.ListOptions(); err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return NewSnapshot(d), nil
}

func (s *Snapshot) GetVariant(id int64) (ProductVariant, error) {
	v, ok := s.variants[id]
	if !ok {
		return ProductVariant{}, fmt.Errorf("product variant %d: %w", id, ErrNotFound)
	}
	return v, nil
}

func (s *Snapshot) GetMaterial(code string) (Material, error) {
	m, ok := s.materials[code]
	if !ok {
		return Material{}, fmt.Errorf("material %q: %w", code, ErrNotFound)
	}
	return m, nil
}

func (s *Snapshot) GetVariantByFamilyVoltageMaterial(familyID int64, voltage, materialCode string) (ProductVariant, error) {
	for _, v := range s.data.Variants {
		if v.FamilyID == familyID && v.Voltage == voltage && v.MaterialCode == materialCode {
			return v, nil
		}
	}
	return ProductVariant{}, fmt.Errorf("variant of family %d with voltage %q and material %q: %w", familyID, voltage, materialCode, ErrNotFound)
}

func (s *Snapshot) GetAvailability(materialCode, productType string) (MaterialAvailability, error) {
	a, ok := s.availability[availabilityKey{materialCode, productType}]
	if !ok {
		return MaterialAvailability{}, fmt.Errorf("availability of material %q for %q: %w", materialCode, productType, ErrNotFound)
	}
	return a, nil
}

func (s *Snapshot) ListStandardLengths(materialCode string) ([]StandardLength, error) {
	return slices.Clone(s.lengths[materialCode]), nil
}

func (s *Snapshot) GetFamily(id int64) (ProductFamily, error) {
	f, ok := s.families[id]
	if !ok {
		return ProductFamily{}, fmt.Errorf("product family %d: %w", id, ErrNotFound)
	}
	return f, nil
}

func (s *Snapshot) GetOption(id int64) (Option, error) {
	o, ok := s.options[id]
	if !ok {
		return Option{}, fmt.Errorf("option %d: %w", id, ErrNotFound)
	}
	return o, nil
}

func (s *Snapshot) ListFamilies() ([]ProductFamily, error) {
	return slices.Clone(s.data.Families), nil
}

func (s *Snapshot) ListVariants() ([]ProductVariant, error) {
	return slices.Clone(s.data.Variants), nil
}

func (s *Snapshot) ListMaterials() ([]Material, error) {
	return slices.Clone(s.data.Materials), nil
}

func (s *Snapshot) ListOptions() ([]Option, error) {
	return slices.Clone(s.data.Options), nil
}

func (s *Snapshot) ListAllStandardLengths() ([]StandardLength, error) {
	return slices.Clone(s.data.StandardLengths), nil
}

func (s *Snapshot) ListAvailability() ([]MaterialAvailability, error) {
	return slices.Clone(s.data.Availability), nil
}
