package quote

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/sensorquote/internal/catalog"
	"github.com/Simplici0/sensorquote/internal/pricing"
)

var (
	// ErrInvalidItem is returned for a negative quantity or a discount outside 0..100.
	ErrInvalidItem = errors.New("invalid quote item")
	// ErrOptionNotCompatible is returned when an option may not be attached to the variant.
	ErrOptionNotCompatible = errors.New("option not compatible with product")
)

// StatusDraft is the status of a freshly built quote.
const StatusDraft = "draft"

// OptionRequest selects an option for a line item. Zero quantity means 1.
type OptionRequest struct {
	OptionID int64 `json:"option_id"`
	Quantity int   `json:"quantity"`
}

// ItemRequest is a product configuration to be priced into a line item.
// Zero quantity means 1.
type ItemRequest struct {
	VariantID       int64           `json:"variant_id"`
	Quantity        int             `json:"quantity"`
	Length          *float64        `json:"length,omitempty"`
	MaterialCode    string          `json:"material,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Description     string          `json:"description,omitempty"`
	Options         []OptionRequest `json:"options"`
}

// Builder prices configured products against a catalog and snapshots the
// result into quote items.
type Builder struct {
	catalog catalog.OptionReader
	rules   pricing.Rules
}

func NewBuilder(cat catalog.OptionReader, rules pricing.Rules) *Builder {
	return &Builder{catalog: cat, rules: rules}
}

// BuildItem prices req and returns the snapshotted line item.
func (b *Builder) BuildItem(req ItemRequest) (Item, error) {
	quantity, err := normalizeQuantity(req.Quantity, "quantity")
	if err != nil {
		return Item{}, err
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return Item{}, fmt.Errorf("discount_percent must be between 0 and 100: %w", ErrInvalidItem)
	}

	res, err := b.rules.Calculate(b.catalog, req.VariantID, req.Length, req.MaterialCode)
	if err != nil {
		return Item{}, err
	}

	variant, err := b.catalog.GetVariant(req.VariantID)
	if err != nil {
		return Item{}, fmt.Errorf("resolve product variant: %w", err)
	}
	family, err := b.catalog.GetFamily(variant.FamilyID)
	if err != nil {
		return Item{}, fmt.Errorf("resolve product family: %w", err)
	}

	item := Item{
		VariantID:       variant.ID,
		ModelNumber:     variant.ModelNumber,
		Description:     req.Description,
		Quantity:        quantity,
		UnitPrice:       res.Totals.Total,
		Length:          res.Length,
		MaterialCode:    res.MaterialCode,
		Voltage:         variant.Voltage,
		DiscountPercent: req.DiscountPercent,
		Options:         make([]ItemOption, 0, len(req.Options)),
	}
	if item.Description == "" {
		item.Description = variant.Description
	}

	for _, sel := range req.Options {
		opt, err := b.buildOption(sel, variant, family, res.Length)
		if err != nil {
			return Item{}, err
		}
		item.Options = append(item.Options, opt)
	}

	return item, nil
}

func (b *Builder) buildOption(req OptionRequest, variant catalog.ProductVariant, family catalog.ProductFamily, length *float64) (ItemOption, error) {
	quantity, err := normalizeQuantity(req.Quantity, "option quantity")
	if err != nil {
		return ItemOption{}, err
	}

	opt, err := b.catalog.GetOption(req.OptionID)
	if err != nil {
		return ItemOption{}, fmt.Errorf("resolve option: %w", err)
	}
	if !opt.CompatibleWith(family.Name, variant.ModelNumber) {
		return ItemOption{}, fmt.Errorf("option %q on %s: %w", opt.Name, variant.ModelNumber, ErrOptionNotCompatible)
	}

	return ItemOption{
		OptionID: opt.ID,
		Name:     opt.Name,
		Quantity: quantity,
		Price:    pricing.CalculateOptionPrice(opt.Price, opt.PriceType, length),
	}, nil
}

// BuildQuote prices every request into header's items. The first failing
// item aborts the build.
func (b *Builder) BuildQuote(header Quote, reqs []ItemRequest) (Quote, error) {
	q := header
	if q.Status == "" {
		q.Status = StatusDraft
	}
	q.Items = make([]Item, 0, len(reqs))
	for i, req := range reqs {
		item, err := b.BuildItem(req)
		if err != nil {
			return Quote{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		q.Items = append(q.Items, item)
	}
	return q, nil
}

func normalizeQuantity(q int, field string) (int, error) {
	switch {
	case q == 0:
		return 1, nil
	case q < 0:
		return 0, fmt.Errorf("%s must be positive: %w", field, ErrInvalidItem)
	}
	return q, nil
}
