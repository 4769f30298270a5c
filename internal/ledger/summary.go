package ledger

import "github.com/shopspring/decimal"

// displayPlaces is the precision of amounts handed to exporters.
const displayPlaces = 2

// Snapshot is a frozen view of a ledger plus its aggregated totals. It owns
// its Items slice; later ledger mutations never show up in it.
type Snapshot struct {
	Items      []LineItem
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Summarize derives the invoice totals from items without modifying them.
// Decimal addition is exact, so the result does not depend on item order.
func Summarize(items []LineItem) Snapshot {
	s := Snapshot{
		Items:    make([]LineItem, len(items)),
		Subtotal: decimal.Zero,
		TaxTotal: decimal.Zero,
	}
	copy(s.Items, items)

	for _, it := range items {
		s.Subtotal = s.Subtotal.Add(it.Total)
		s.TaxTotal = s.TaxTotal.Add(it.Tax)
	}
	s.GrandTotal = s.Subtotal.Add(s.TaxTotal)
	return s
}

// IsEmpty reports whether the snapshot has no items.
func (s Snapshot) IsEmpty() bool { return len(s.Items) == 0 }

// Rounded returns a copy with every amount rounded half away from zero to
// two decimal places. Each total is rounded from its exact value, matching
// what the preview shows.
func (s Snapshot) Rounded() Snapshot {
	out := Snapshot{
		Items:      make([]LineItem, len(s.Items)),
		Subtotal:   s.Subtotal.Round(displayPlaces),
		TaxTotal:   s.TaxTotal.Round(displayPlaces),
		GrandTotal: s.GrandTotal.Round(displayPlaces),
	}
	for i, it := range s.Items {
		it.Rate = it.Rate.Round(displayPlaces)
		it.Total = it.Total.Round(displayPlaces)
		it.Tax = it.Tax.Round(displayPlaces)
		out.Items[i] = it
	}
	return out
}
