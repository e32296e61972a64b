package quote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ItemOption is an add-on attached to a line item, priced when it was attached.
type ItemOption struct {
	OptionID int64           `json:"option_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Item is one quoted line. UnitPrice and option prices are snapshots taken at
// quote time and are never recomputed from the catalog.
type Item struct {
	VariantID       int64           `json:"variant_id"`
	ModelNumber     string          `json:"model_number"`
	Description     string          `json:"description,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Length          *float64        `json:"length,omitempty"`
	MaterialCode    string          `json:"material_code"`
	Voltage         string          `json:"voltage,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Options         []ItemOption    `json:"options"`
}

// OptionsTotal is Σ(option price × option quantity).
func (it Item) OptionsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, o := range it.Options {
		total = total.Add(o.Price.Mul(decimal.NewFromInt(int64(o.Quantity))))
	}
	return total
}

// Subtotal is unit price × quantity plus the options total, before discount.
func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Add(it.OptionsTotal())
}

// DiscountAmount is subtotal × discount percent / 100.
func (it Item) DiscountAmount() decimal.Decimal {
	return it.Subtotal().Mul(it.DiscountPercent).Div(hundred)
}

// Total is the line total with the discount applied.
func (it Item) Total() decimal.Decimal {
	return it.Subtotal().Sub(it.DiscountAmount())
}

// Quote is a quote header with its ordered line items.
type Quote struct {
	Number       string    `json:"number"`
	CustomerName string    `json:"customer_name,omitempty"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Items        []Item    `json:"items"`
}

// Total is the sum of line totals; zero for a quote without items.
func (q Quote) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range q.Items {
		total = total.Add(it.Total())
	}
	return total
}

// LineTotals summarises one item.
type LineTotals struct {
	OptionsTotal   decimal.Decimal `json:"options_total"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Totals summarises a whole quote.
type Totals struct {
	Lines    []LineTotals    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Summary computes per-line and quote-level totals.
func (q Quote) Summary() Totals {
	totals := Totals{
		Lines:    make([]LineTotals, 0, len(q.Items)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
	for _, it := range q.Items {
		line := LineTotals{
			OptionsTotal:   it.OptionsTotal(),
			Subtotal:       it.Subtotal(),
			DiscountAmount: it.DiscountAmount(),
			Total:          it.Total(),
		}
		totals.Lines = append(totals.Lines, line)
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.Discount = totals.Discount.Add(line.DiscountAmount)
		totals.Total = totals.Total.Add(line.Total)
	}
	return totals
}

// NewNumber formats a quote number as Q-YYYYMMDD-NNN.
func NewNumber(t time.Time, seq int) string {
	return fmt.Sprintf("Q-%s-%03d", t.Format("20060102"), seq)
}
