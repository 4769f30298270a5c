package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"invoice-generator/internal/models"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxAuditBody is the largest request body copied into the audit action.
const maxAuditBody = 2000

// AuditMiddleware stores one AuditLog row per authenticated request, with
// path and action encrypted by cipher. It must run after AuthMiddleware.
// Password fields never reach the log.
func AuditMiddleware(db *gorm.DB, cipher *util.Cipher, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil && !strings.Contains(c.FullPath(), "password") {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			rest := c.Request.Body
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(body), rest), rest}
		}

		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(body) > 0 && len(body) <= maxAuditBody {
			action += " " + string(body)
		}

		encPath, err := cipher.EncryptString(path)
		if err != nil {
			logger.Error("encrypt audit path", "error", err)
			return
		}
		encAction, err := cipher.EncryptString(action)
		if err != nil {
			logger.Error("encrypt audit action", "error", err)
			return
		}

		uid := user.ID
		entry := models.AuditLog{
			UserID:    &uid,
			PathEnc:   encPath,
			Method:    c.Request.Method,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil {
			logger.Error("write audit log", "error", err)
		}
	}
}
