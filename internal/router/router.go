package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"invoice-generator/internal/archive"
	"invoice-generator/internal/config"
	"invoice-generator/internal/export"
	"invoice-generator/internal/handler"
	"invoice-generator/internal/middleware"
	"invoice-generator/internal/models"
	"invoice-generator/internal/session"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *slog.Logger
	Cipher   *util.Cipher
	Sessions *session.Registry
	Export   *export.Service
	Archive  archive.Archiver
}

// Header returns the document header configured under invoice.
func Header(cfg config.InvoiceConfig) export.Header {
	var billTo []string
	if cfg.BillToEmail != "" {
		billTo = []string{cfg.BillToEmail}
	}
	return export.Header{
		Issuer:   export.Party{Name: cfg.IssuerName, Lines: cfg.IssuerAddress},
		BillTo:   export.Party{Name: cfg.BillToName, Lines: billTo},
		Currency: cfg.Currency,
	}
}

// ephemeralSecretLen is the length of the JWT secret generated when none is
// configured.
const ephemeralSecretLen = 48

// NewDeps builds the default collaborators from configuration. An empty
// jwt.secret is replaced by a random one.
func NewDeps(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JWT.Secret == "" {
		secret, err := util.RandomString(ephemeralSecretLen)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWT.Secret = secret
		logger.Warn("jwt.secret is empty, using a random secret; tokens will not survive a restart")
	}
	cipher, err := util.NewCipher(cfg.Security.EncryptionKey, cfg.Security.KDFSalt)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if !cipher.Enabled() {
		logger.Warn("security.encryption_key is empty, audit logs and archives are stored in plain text")
	}

	arch, err := archive.New(cfg.Archive, cipher)
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}

	numbers, err := export.NewNumberer(cfg.Invoice.NumberNode)
	if err != nil {
		return nil, err
	}

	opts := []export.Option{export.WithLogger(logger)}
	if arch != nil {
		opts = append(opts, export.WithArchive(arch))
	}

	return &Deps{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Cipher:   cipher,
		Sessions: session.NewRegistry(logger),
		Export:   export.NewService(db, numbers, Header(cfg.Invoice), opts...),
		Archive:  arch,
	}, nil
}

// sweepBatch bounds the ids per query, below sqlite's variable limit.
const sweepBatch = 500

// SweepSessions drops the ledgers of sessions that expired, were revoked or
// no longer exist, and returns how many were dropped.
func (d *Deps) SweepSessions(ctx context.Context) (int, error) {
	ids := d.Sessions.IDs()
	dropped := 0
	for start := 0; start < len(ids); start += sweepBatch {
		batch := ids[start:min(start+sweepBatch, len(ids))]

		var live []string
		err := d.DB.WithContext(ctx).Model(&models.Session{}).
			Where("id IN ? AND revoked = ? AND expires_at > ?", batch, false, time.Now()).
			Pluck("id", &live).Error
		if err != nil {
			return dropped, fmt.Errorf("load sessions: %w", err)
		}

		alive := make(map[string]bool, len(live))
		for _, id := range live {
			alive[id] = true
		}
		for _, id := range batch {
			if !alive[id] {
				d.Sessions.Drop(id)
				dropped++
			}
		}
	}
	return dropped, nil
}

// RunSessionSweeper calls SweepSessions every interval until ctx is done.
func (d *Deps) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.SweepSessions(ctx)
			if err != nil {
				d.Logger.Error("sweep session ledgers", "error", err)
				continue
			}
			if n > 0 {
				d.Logger.Info("dropped stale session ledgers", "count", n)
			}
		}
	}
}

// New configures the gin engine and all routes.
func New(d *Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "database unavailable")
			return
		}
		util.Success(c, util.Response{"status": "ok"})
	})

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(d.DB, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost, d.Sessions, d.Logger)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, d.DB),
		middleware.AuditMiddleware(d.DB, d.Cipher, d.Logger),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(d.DB))
	protected.POST("/profile/password", handler.ChangePassword(d.DB, authHandler.BcryptCost, d.Sessions))

	itemHandler := handler.NewItemHandler(d.Sessions, cfg.Invoice.Currency)
	protected.GET("/items", itemHandler.ListItems)
	protected.POST("/items", itemHandler.AddItem)
	protected.DELETE("/items", itemHandler.ClearItems)
	protected.DELETE("/items/:id", itemHandler.RemoveItem)

	invoiceHandler := handler.NewInvoiceHandler(d.DB, d.Sessions, d.Export, d.Archive, Header(cfg.Invoice))
	protected.GET("/invoice/preview", invoiceHandler.Preview)
	protected.POST("/invoices/generate", invoiceHandler.Generate)
	protected.POST("/invoices/render", invoiceHandler.Render)
	protected.GET("/invoices", invoiceHandler.ListExports)
	protected.GET("/invoices/:id/download", invoiceHandler.Download)

	logHandler := handler.NewLogHandler(d.DB, d.Cipher)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
