package handler

import (
	"net/http"
	"strings"
	"time"

	"invoice-generator/internal/models"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler lists the audit trail of the current user.
type LogHandler struct {
	DB     *gorm.DB
	Cipher *util.Cipher
}

func NewLogHandler(db *gorm.DB, cipher *util.Cipher) *LogHandler {
	return &LogHandler{DB: db, Cipher: cipher}
}

// decryptField falls back to the stored text when it cannot be decrypted,
// e.g. after the key was rotated.
func (h *LogHandler) decryptField(enc string) string {
	plain, err := h.Cipher.DecryptString(enc)
	if err != nil {
		return enc
	}
	return plain
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs pages through audit entries, optionally filtered by method and
// by a start/end date (YYYY-MM-DD, end inclusive).
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	pg := parsePage(c, 20)

	base := h.DB.Model(&models.AuditLog{}).Where("user_id = ?", user.ID)

	if s := c.Query("start"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}
	if m := strings.ToUpper(strings.TrimSpace(c.Query("method"))); m != "" {
		base = base.Where("method = ?", m)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(pg.Size).
		Offset(pg.Offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			Action:    h.decryptField(l.ActionEnc),
			Path:      h.decryptField(l.PathEnc),
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  pg.Page,
		"size":  pg.Size,
	})
}
