package export

import (
	"invoice-generator/internal/ledger"

	"github.com/shopspring/decimal"
)

// ItemView is the JSON shape of one line item. Field names follow the web
// client (qty, gst).
type ItemView struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Quantity  float64       `json:"qty"`
	Rate      float64       `json:"rate"`
	Total     float64       `json:"total"`
	Tax       float64       `json:"gst"`
	Formatted ItemFormatted `json:"formatted"`
}

type ItemFormatted struct {
	Rate  string `json:"rate"`
	Total string `json:"total"`
	Tax   string `json:"gst"`
}

// SnapshotView is the JSON shape of a snapshot, used by the preview
// endpoint and stored with every export record.
type SnapshotView struct {
	Items      []ItemView        `json:"products"`
	Subtotal   float64           `json:"subtotal"`
	TaxTotal   float64           `json:"gst_total"`
	GrandTotal float64           `json:"grand_total"`
	TaxRate    float64           `json:"gst_rate"`
	Currency   string            `json:"currency"`
	Formatted  SnapshotFormatted `json:"formatted"`
}

type SnapshotFormatted struct {
	Subtotal   string `json:"subtotal"`
	TaxTotal   string `json:"gst_total"`
	GrandTotal string `json:"grand_total"`
}

// NewSnapshotView converts snap, rounding amounts to cents. Quantities are
// kept as entered.
func NewSnapshotView(snap ledger.Snapshot, currency string) SnapshotView {
	v := SnapshotView{
		Items:      make([]ItemView, 0, len(snap.Items)),
		Subtotal:   cents(snap.Subtotal),
		TaxTotal:   cents(snap.TaxTotal),
		GrandTotal: cents(snap.GrandTotal),
		TaxRate:    ledger.TaxRate.InexactFloat64(),
		Currency:   currency,
		Formatted: SnapshotFormatted{
			Subtotal:   FormatAmount(snap.Subtotal, currency),
			TaxTotal:   FormatAmount(snap.TaxTotal, currency),
			GrandTotal: FormatAmount(snap.GrandTotal, currency),
		},
	}
	for _, it := range snap.Items {
		v.Items = append(v.Items, ItemView{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity.InexactFloat64(),
			Rate:     cents(it.Rate),
			Total:    cents(it.Total),
			Tax:      cents(it.Tax),
			Formatted: ItemFormatted{
				Rate:  FormatAmount(it.Rate, currency),
				Total: FormatAmount(it.Total, currency),
				Tax:   FormatAmount(it.Tax, currency),
			},
		})
	}
	return v
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
