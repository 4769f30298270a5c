package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoice-generator/internal/archive"
	"invoice-generator/internal/export"
	"invoice-generator/internal/ledger"
	"invoice-generator/internal/models"
	"invoice-generator/internal/session"
	"invoice-generator/internal/util"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxRenderItems bounds the stateless render endpoint.
const maxRenderItems = 500

// InvoiceHandler previews, exports and lists invoices.
type InvoiceHandler struct {
	DB       *gorm.DB
	Sessions *session.Registry
	Export   *export.Service
	Archive  archive.Archiver
	Header   export.Header
}

func NewInvoiceHandler(db *gorm.DB, sessions *session.Registry, svc *export.Service, arch archive.Archiver, header export.Header) *InvoiceHandler {
	return &InvoiceHandler{
		DB:       db,
		Sessions: sessions,
		Export:   svc,
		Archive:  arch,
		Header:   header,
	}
}

// Preview shows the invoice exactly as it would be exported, amounts
// rounded to cents.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	sid, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	snap := h.Sessions.Ledger(sid).Snapshot().Rounded()

	util.Success(c, util.Response{
		"date":    time.Now().Format("2006-01-02"),
		"issuer":  partyJSON(h.Header.Issuer),
		"bill_to": partyJSON(h.Header.BillTo),
		"invoice": export.NewSnapshotView(snap, h.Header.Currency),
		"empty":   snap.IsEmpty(),
	})
}

// Generate exports the session ledger. On success the document is the
// response body and the ledger is emptied; on failure the ledger is kept
// and a JSON error explains why.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sid, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	res := h.Export.Generate(c.Request.Context(), user.ID, h.Sessions.Ledger(sid), format)
	if res.Err != nil {
		writeExportError(c, res.Err)
		return
	}
	if res.Record != nil {
		c.Header("X-Invoice-Id", res.Record.ID.String())
		c.Header("X-Invoice-Number", res.Record.Number)
	}
	sendDocument(c, res.Document)
}

type renderReq struct {
	Products []itemReq `json:"products"`
}

// Render exports the products in the request body without touching the
// session ledger or the history.
func (h *InvoiceHandler) Render(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var req renderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if len(req.Products) > maxRenderItems {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, fmt.Sprintf("too many products, max %d", maxRenderItems))
		return
	}

	l := ledger.New()
	for i, p := range req.Products {
		in, err := p.input()
		if err == nil {
			_, err = l.Add(in)
		}
		if err != nil {
			writeValidationError(c, err, fmt.Sprintf("products[%d].", i))
			return
		}
	}

	doc, _, err := h.Export.Render(c.Request.Context(), l.Snapshot(), format)
	if err != nil {
		writeExportError(c, err)
		return
	}
	sendDocument(c, doc)
}

type exportResp struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Format     string    `json:"format"`
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	ItemCount  int       `json:"item_count"`
	Currency   string    `json:"currency"`
	Subtotal   string    `json:"subtotal"`
	TaxTotal   string    `json:"gst_total"`
	GrandTotal string    `json:"grand_total"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListExports pages through the export history of the current user.
func (h *InvoiceHandler) ListExports(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	pg := parsePage(c, 20)

	base := h.DB.Model(&models.ExportRecord{}).Where("user_id = ?", user.ID)
	if f := c.Query("format"); f != "" {
		base = base.Where("format = ?", f)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var records []models.ExportRecord
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(pg.Size).
		Offset(pg.Offset).
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]exportResp, 0, len(records))
	for i := range records {
		r := &records[i]
		items = append(items, exportResp{
			ID:         r.ID.String(),
			Number:     r.Number,
			Format:     r.Format,
			FileName:   r.FileName,
			Size:       r.Size,
			ItemCount:  r.ItemCount,
			Currency:   r.Currency,
			Subtotal:   r.Subtotal.StringFixed(2),
			TaxTotal:   r.TaxTotal.StringFixed(2),
			GrandTotal: r.GrandTotal.StringFixed(2),
			Archived:   r.Archived() && h.Archive != nil,
			CreatedAt:  r.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  pg.Page,
		"size":  pg.Size,
	})
}

// Download returns the archived copy of an earlier export.
func (h *InvoiceHandler) Download(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var rec models.ExportRecord
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "export not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	if h.Archive == nil || !rec.Archived() {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no archived copy of this export")
		return
	}

	rc, err := h.Archive.Get(c.Request.Context(), rec.ArchiveKey)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "archived copy is missing")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read archive")
		}
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read archive")
		return
	}
	sendDocument(c, &export.Document{FileName: rec.FileName, ContentType: rec.ContentType, Data: data})
}

func writeExportError(c *gin.Context, err error) {
	var f *export.Failure
	switch {
	case errors.Is(err, export.ErrEmptyInvoice):
		util.Error(c, http.StatusUnprocessableEntity, util.CodeEmptyInvoice, "add at least one product first")
	case errors.Is(err, export.ErrUnknownFormat):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.As(err, &f):
		util.Error(c, http.StatusBadGateway, util.CodeExportFailed, f.Message)
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, export.DefaultFailureMessage)
	}
}

func sendDocument(c *gin.Context, doc *export.Document) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func partyJSON(p export.Party) gin.H {
	lines := p.Lines
	if lines == nil {
		lines = []string{}
	}
	return gin.H{"name": p.Name, "lines": lines}
}
