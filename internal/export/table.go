package export

import (
	"invoice-generator/internal/ledger"
)

// columnHeaders is shared by every tabular format.
var columnHeaders = []string{"Product", "Quantity", "Rate", "Total", "GST (" + ledger.TaxRate.Shift(2).String() + "%)"}
