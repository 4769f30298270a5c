package export

import (
	"context"
	"fmt"
	"time"

	"invoice-generator/internal/ledger"
)

// Party is one address block on the document.
type Party struct {
	Name  string
	Lines []string
}

// Invoice is everything a renderer needs: the rounded snapshot plus the
// document header.
type Invoice struct {
	Number   string
	IssuedAt time.Time
	Issuer   Party
	BillTo   Party
	Currency string
	Snapshot ledger.Snapshot
}

// FileName is "invoice_<issue date>.<format>".
func (inv Invoice) FileName(f Format) string {
	return fmt.Sprintf("invoice_%s.%s", inv.IssuedAt.Format("2006-01-02"), f)
}

// Document is a rendered file.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Exporter turns an invoice into a document of one format. Render must not
// modify inv.
type Exporter interface {
	Format() Format
	Render(ctx context.Context, inv Invoice) (*Document, error)
}

func newDocument(inv Invoice, f Format, data []byte) *Document {
	return &Document{
		FileName:    inv.FileName(f),
		ContentType: f.ContentType(),
		Data:        data,
	}
}
