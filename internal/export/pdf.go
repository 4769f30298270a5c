package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// column widths in mm; they add up to the printable width of A4 portrait
// with 15mm margins.
var pdfCols = []float64{70, 25, 28, 28, 29}

// PDFExporter renders an A4 invoice with gofpdf.
type PDFExporter struct{}

func (PDFExporter) Format() Format { return FormatPDF }

func (PDFExporter) Render(ctx context.Context, inv Invoice) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// header: title left, issuer right
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(90, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(90, 10, tr(inv.Issuer.Name), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	left := []string{
		"No. " + inv.Number,
		"Date: " + inv.IssuedAt.Format("2006-01-02"),
	}
	rows := max(len(left), len(inv.Issuer.Lines))
	for i := 0; i < rows; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(inv.Issuer.Lines) {
			r = inv.Issuer.Lines[i]
		}
		pdf.CellFormat(90, 5, tr(l), "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 5, tr(r), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, tr(inv.BillTo.Name), "", 1, "L", false, 0, "")
	for _, line := range inv.BillTo.Lines {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range columnHeaders {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(pdfCols[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	snap := inv.Snapshot
	for _, it := range snap.Items {
		cells := []string{
			tr(it.Name),
			FormatQuantity(it.Quantity),
			tr(FormatAmount(it.Rate, inv.Currency)),
			tr(FormatAmount(it.Total, inv.Currency)),
			tr(FormatAmount(it.Tax, inv.Currency)),
		}
		for i, v := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(pdfCols[i], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	labelW := pdfCols[0] + pdfCols[1] + pdfCols[2]
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelW, 8, "Subtotal", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfCols[3], 8, tr(FormatAmount(snap.Subtotal, inv.Currency)), "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfCols[4], 8, tr(FormatAmount(snap.TaxTotal, inv.Currency)), "1", 1, "R", true, 0, "")
	pdf.CellFormat(labelW, 8, "Grand Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfCols[3]+pdfCols[4], 8, tr(FormatAmount(snap.GrandTotal, inv.Currency)), "1", 1, "R", true, 0, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return newDocument(inv, FormatPDF, buf.Bytes()), nil
}
