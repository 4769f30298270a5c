// Package ledger holds the invoice-in-progress: an ordered set of line items
// and the totals derived from them.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.jetify.com/typeid/v2"
)

// TaxRate is the fixed tax applied to every line item total (18%).
var TaxRate = decimal.RequireFromString("0.18")

// itemPrefix is the TypeID prefix of line item ids ("item_01h...").
const itemPrefix = "item"

// LineItem is one invoice row. Total and Tax are computed when the item is
// added and never recomputed afterwards.
type LineItem struct {
	ID       string
	Name     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Total    decimal.Decimal
	Tax      decimal.Decimal
}

// Gross returns Total + Tax.
func (it LineItem) Gross() decimal.Decimal {
	return it.Total.Add(it.Tax)
}

func newLineItem(id string, in Input) LineItem {
	total := in.Quantity.Mul(in.Rate)
	return LineItem{
		ID:       id,
		Name:     in.Name,
		Quantity: in.Quantity,
		Rate:     in.Rate,
		Total:    total,
		Tax:      total.Mul(TaxRate),
	}
}

// NewItemID generates a K-sortable, globally unique line item id.
func NewItemID() string {
	tid, err := typeid.Generate(itemPrefix)
	if err != nil {
		// the prefix is a constant, so this is a programming error
		panic(fmt.Sprintf("ledger: generate item id: %v", err))
	}
	return tid.String()
}
