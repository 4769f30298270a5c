package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"invoice-generator/internal/export"
	"invoice-generator/internal/ledger"
	"invoice-generator/internal/session"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
)

// number accepts a JSON number or a string and keeps the raw text, so
// parsing and its error reasons stay with ledger.ParseInput.
type number string

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = number(s)
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return fmt.Errorf("not a number: %s", b)
		}
		*n = number(num)
	}
	return nil
}

// itemReq is one product as sent by the client. "qty" is accepted as an
// alias of "quantity".
type itemReq struct {
	Name     string `json:"name"`
	Quantity number `json:"quantity"`
	Qty      number `json:"qty"`
	Rate     number `json:"rate"`
}

func (r itemReq) input() (ledger.Input, error) {
	q := r.Quantity
	if q == "" {
		q = r.Qty
	}
	return ledger.ParseInput(r.Name, string(q), string(r.Rate))
}

// ItemHandler edits the invoice ledger of the current login session.
type ItemHandler struct {
	Sessions *session.Registry
	Currency string
}

func NewItemHandler(sessions *session.Registry, currency string) *ItemHandler {
	return &ItemHandler{Sessions: sessions, Currency: currency}
}

func (h *ItemHandler) sessionLedger(c *gin.Context) (*ledger.Ledger, bool) {
	sid, ok := sessionOrAbort(c)
	if !ok {
		return nil, false
	}
	return h.Sessions.Ledger(sid), true
}

// ListItems returns the items with their running totals.
func (h *ItemHandler) ListItems(c *gin.Context) {
	l, ok := h.sessionLedger(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"invoice": export.NewSnapshotView(l.Snapshot(), h.Currency),
	})
}

// AddItem appends one product. Invalid fields are reported per field in
// details and leave the ledger unchanged.
func (h *ItemHandler) AddItem(c *gin.Context) {
	l, ok := h.sessionLedger(c)
	if !ok {
		return
	}

	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		writeValidationError(c, err, "")
		return
	}
	item, err := l.Add(in)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidItem) {
			writeValidationError(c, err, "")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to add item")
		return
	}

	view := export.NewSnapshotView(l.Snapshot(), h.Currency)
	added := export.NewSnapshotView(ledger.Summarize([]ledger.LineItem{item}), h.Currency).Items[0]
	util.Success(c, util.Response{
		"item":    added,
		"invoice": view,
	})
}

// RemoveItem deletes one item. Unknown ids are not an error; removed tells
// whether anything changed.
func (h *ItemHandler) RemoveItem(c *gin.Context) {
	l, ok := h.sessionLedger(c)
	if !ok {
		return
	}
	removed := l.Remove(c.Param("id"))
	util.Success(c, util.Response{
		"removed": removed,
		"invoice": export.NewSnapshotView(l.Snapshot(), h.Currency),
	})
}

// ClearItems empties the ledger.
func (h *ItemHandler) ClearItems(c *gin.Context) {
	l, ok := h.sessionLedger(c)
	if !ok {
		return
	}
	n := l.Len()
	l.Clear()
	util.Success(c, util.Response{"cleared": n})
}

// writeValidationError turns a *ledger.ValidationError into a 400 with
// per-field reasons. prefix namespaces the field names, e.g. "products[2].".
func writeValidationError(c *gin.Context, err error, prefix string) {
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	details := make(map[string]string, len(verr.Fields))
	for field, reason := range verr.Fields {
		details[prefix+field] = reason
	}
	util.ErrorWithDetails(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid item", details)
}
