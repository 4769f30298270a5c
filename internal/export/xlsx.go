package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Invoice"

// XLSXExporter writes the invoice as a single-sheet workbook. Amounts are
// stored as numbers so the sheet can be recalculated.
type XLSXExporter struct{}

func (XLSXExporter) Format() Format { return FormatXLSX }

func (XLSXExporter) Render(ctx context.Context, inv Invoice) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	set := func(cell string, v any) {
		if err == nil {
			err = f.SetCellValue(xlsxSheet, cell, v)
		}
	}

	set("A1", "INVOICE")
	set("A2", "No.")
	set("B2", inv.Number)
	set("A3", "Date")
	set("B3", inv.IssuedAt.Format("2006-01-02"))
	set("A4", "Currency")
	set("B4", inv.Currency)
	set("D1", inv.Issuer.Name)
	for i, line := range inv.Issuer.Lines {
		set(fmt.Sprintf("D%d", i+2), line)
	}
	set("A6", "Bill To")
	set("B6", inv.BillTo.Name)
	for i, line := range inv.BillTo.Lines {
		set(fmt.Sprintf("B%d", i+7), line)
	}

	head := 7 + len(inv.BillTo.Lines) + 1
	for i, h := range columnHeaders {
		set(fmt.Sprintf("%c%d", 'A'+i, head), h)
	}

	snap := inv.Snapshot
	row := head
	for _, it := range snap.Items {
		row++
		set(fmt.Sprintf("A%d", row), it.Name)
		set(fmt.Sprintf("B%d", row), it.Quantity.InexactFloat64())
		set(fmt.Sprintf("C%d", row), it.Rate.InexactFloat64())
		set(fmt.Sprintf("D%d", row), it.Total.InexactFloat64())
		set(fmt.Sprintf("E%d", row), it.Tax.InexactFloat64())
	}
	sub, grand := row+1, row+2
	set(fmt.Sprintf("A%d", sub), "Subtotal")
	set(fmt.Sprintf("D%d", sub), snap.Subtotal.InexactFloat64())
	set(fmt.Sprintf("E%d", sub), snap.TaxTotal.InexactFloat64())
	set(fmt.Sprintf("A%d", grand), "Grand Total")
	set(fmt.Sprintf("D%d", grand), snap.GrandTotal.InexactFloat64())
	if err != nil {
		return nil, fmt.Errorf("set cell: %w", err)
	}

	styles := []struct {
		from, to string
		id       int
	}{
		{"A1", "A1", bold},
		{fmt.Sprintf("A%d", head), fmt.Sprintf("E%d", head), bold},
		{fmt.Sprintf("C%d", head+1), fmt.Sprintf("E%d", grand), amount},
		{fmt.Sprintf("A%d", sub), fmt.Sprintf("A%d", grand), bold},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(xlsxSheet, s.from, s.to, s.id); err != nil {
			return nil, fmt.Errorf("set style: %w", err)
		}
	}

	widths := []struct {
		col   string
		width float64
	}{{"A", 30}, {"B", 12}, {"C", 14}, {"D", 18}, {"E", 14}}
	for _, w := range widths {
		if err := f.SetColWidth(xlsxSheet, w.col, w.col, w.width); err != nil {
			return nil, fmt.Errorf("set width: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return newDocument(inv, FormatXLSX, buf.Bytes()), nil
}
