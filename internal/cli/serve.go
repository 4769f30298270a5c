package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoice-generator/internal/config"
	"invoice-generator/internal/database"
	"invoice-generator/internal/logging"
	"invoice-generator/internal/router"

	"github.com/google/subcommands"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

type serveCmd struct {
	configPath *string
	addr       string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API server" }
func (*serveCmd) Usage() string {
	return `serve [-addr host:port]

  Migrates the database and serves the JSON API until SIGINT or SIGTERM.
  This is the default command.
`
}

func (s *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.addr, "addr", "", "Listen address, overrides server.address and server.port.")
}

func (s *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*s.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := logging.New(cfg.Log)

	db, err := openDB(cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		return subcommands.ExitFailure
	}
	defer database.Close(db)

	deps, err := router.NewDeps(cfg, db, logger)
	if err != nil {
		logger.Error("setup router", "error", err)
		return subcommands.ExitFailure
	}
	engine := router.New(deps)

	addr := s.addr
	if addr == "" {
		addr = cfg.Addr()
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go deps.RunSessionSweeper(ctx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "db", cfg.Database.Driver, "archive", cfg.Archive.Kind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("run server", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
