package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"invoice-generator/internal/archive"
	"invoice-generator/internal/ledger"
	"invoice-generator/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Header is the fixed issuer and bill-to block printed on every document.
type Header struct {
	Issuer   Party
	BillTo   Party
	Currency string
}

// Result is the outcome of Generate. Exactly one of Document and Err is set.
type Result struct {
	Document *Document
	Record   *models.ExportRecord
	Err      error
}

// OK reports whether a document was produced.
func (r Result) OK() bool { return r.Err == nil && r.Document != nil }

// Service renders ledgers into documents and keeps the export history.
type Service struct {
	db        *gorm.DB
	exporters map[Format]Exporter
	numbers   *Numberer
	archive   archive.Archiver
	header    Header
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithExporter registers or replaces the exporter for its format.
func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporters[e.Format()] = e }
}

// WithArchive stores a copy of every generated document.
func WithArchive(a archive.Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a service with the PDF, XLSX and CSV exporters
// registered. db may be nil, in which case no history is recorded.
func NewService(db *gorm.DB, numbers *Numberer, header Header, opts ...Option) *Service {
	s := &Service{
		db: db,
		exporters: map[Format]Exporter{
			FormatPDF:  PDFExporter{},
			FormatXLSX: XLSXExporter{},
			FormatCSV:  CSVExporter{},
		},
		numbers: numbers,
		header:  header,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoice builds the document model for a snapshot without rendering it.
func (s *Service) Invoice(snap ledger.Snapshot) Invoice {
	return Invoice{
		Number:   s.numbers.Next().String(),
		IssuedAt: s.now(),
		Issuer:   s.header.Issuer,
		BillTo:   s.header.BillTo,
		Currency: s.header.Currency,
		Snapshot: snap.Rounded(),
	}
}

// Render produces a document for snap without touching any ledger or
// recording history.
func (s *Service) Render(ctx context.Context, snap ledger.Snapshot, format Format) (*Document, Invoice, error) {
	exp, ok := s.exporters[format]
	if !ok {
		return nil, Invoice{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if snap.IsEmpty() {
		return nil, Invoice{}, ErrEmptyInvoice
	}

	inv := s.Invoice(snap)
	doc, err := exp.Render(ctx, inv)
	if err != nil {
		return nil, inv, NewFailure(err)
	}
	if doc == nil {
		return nil, inv, NewFailure(nil)
	}
	return doc, inv, nil
}

// Generate exports the current contents of l for owner. The exported items
// are removed only after the document was rendered; on any error the ledger
// keeps its items so the user can retry. Items added while the document was
// rendering stay in the ledger. Archive and history failures are logged and
// do not fail the export.
func (s *Service) Generate(ctx context.Context, owner uint, l *ledger.Ledger, format Format) Result {
	snap := l.Snapshot()
	doc, inv, err := s.Render(ctx, snap, format)
	if err != nil {
		if errors.Is(err, ErrExportFailed) {
			s.logger.Warn("export failed", "user", owner, "format", format, "error", err)
		}
		return Result{Err: err}
	}

	ids := make([]string, len(snap.Items))
	for i, it := range snap.Items {
		ids[i] = it.ID
	}
	l.RemoveAll(ids)

	rec := s.record(ctx, owner, inv, format, doc)
	s.logger.Info("invoice exported",
		"user", owner, "number", inv.Number, "format", format,
		"items", len(inv.Snapshot.Items), "bytes", len(doc.Data))
	return Result{Document: doc, Record: rec}
}

func (s *Service) record(ctx context.Context, owner uint, inv Invoice, format Format, doc *Document) *models.ExportRecord {
	id := s.numbers.Next()
	snap := inv.Snapshot
	rec := &models.ExportRecord{
		ID:          id,
		UserID:      owner,
		Number:      inv.Number,
		Format:      string(format),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Size:        int64(len(doc.Data)),
		Currency:    inv.Currency,
		ItemCount:   len(snap.Items),
		Subtotal:    snap.Subtotal,
		TaxTotal:    snap.TaxTotal,
		GrandTotal:  snap.GrandTotal,
		CreatedAt:   inv.IssuedAt,
	}

	if raw, err := json.Marshal(NewSnapshotView(snap, inv.Currency)); err == nil {
		rec.Snapshot = datatypes.JSON(raw)
	} else {
		s.logger.Error("encode export snapshot", "number", inv.Number, "error", err)
	}

	if s.archive != nil {
		key, err := s.archive.Put(ctx, archive.Key(owner, inv.Number, doc.FileName), bytes.NewReader(doc.Data))
		if err != nil {
			s.logger.Error("archive document", "number", inv.Number, "error", err)
		} else {
			rec.ArchiveKey = key
		}
	}

	if s.db == nil {
		return rec
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		s.logger.Error("record export", "number", inv.Number, "error", err)
		return nil
	}
	return rec
}
