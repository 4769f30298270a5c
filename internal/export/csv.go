package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
)

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter writes one row per item followed by the totals. Amounts are
// plain two-decimal numbers without currency symbols.
type CSVExporter struct{}

func (CSVExporter) Format() Format { return FormatCSV }

func (CSVExporter) Render(ctx context.Context, inv Invoice) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)

	records := [][]string{columnHeaders}
	snap := inv.Snapshot
	for _, it := range snap.Items {
		records = append(records, []string{
			csvCell(it.Name),
			FormatQuantity(it.Quantity),
			it.Rate.StringFixed(2),
			it.Total.StringFixed(2),
			it.Tax.StringFixed(2),
		})
	}
	records = append(records,
		[]string{"Subtotal", "", "", snap.Subtotal.StringFixed(2), snap.TaxTotal.StringFixed(2)},
		[]string{"Grand Total", "", "", snap.GrandTotal.StringFixed(2), ""},
	)

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return newDocument(inv, FormatCSV, buf.Bytes()), nil
}

// csvCell keeps spreadsheet applications from evaluating text as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
