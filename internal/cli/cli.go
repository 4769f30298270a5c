// Package cli holds the subcommands of the invoice-generator binary.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"invoice-generator/internal/config"
	"invoice-generator/internal/database"
	"invoice-generator/internal/export"
	"invoice-generator/internal/ledger"
	"invoice-generator/internal/router"

	"github.com/google/subcommands"
	"gorm.io/gorm"
)

// Register adds every subcommand to c. configPath is read when a command
// runs, after the top-level flags were parsed.
func Register(c *subcommands.Commander, configPath *string) {
	c.Register(&serveCmd{configPath: configPath}, "server")
	c.Register(&migrateCmd{configPath: configPath}, "server")

	c.Register(&previewCmd{configPath: configPath, out: os.Stdout}, "offline")
	c.Register(&renderCmd{configPath: configPath, out: os.Stdout}, "offline")
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// fileItem is one entry of an items file. "quantity" is accepted as an
// alias of "qty", like the HTTP API does.
type fileItem struct {
	Name     string      `json:"name"`
	Qty      json.Number `json:"qty"`
	Quantity json.Number `json:"quantity"`
	Rate     json.Number `json:"rate"`
}

// readItems decodes a JSON array of items into a new ledger, in file order.
func readItems(r io.Reader) (*ledger.Ledger, error) {
	var items []fileItem
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	l := ledger.New()
	for i, it := range items {
		q := it.Qty
		if q == "" {
			q = it.Quantity
		}
		in, err := ledger.ParseInput(it.Name, q.String(), it.Rate.String())
		if err == nil {
			_, err = l.Add(in)
		}
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return l, nil
}

// loadItems reads an items file; "-" is standard input.
func loadItems(path string) (*ledger.Ledger, error) {
	if path == "" {
		return nil, errors.New("missing -items file")
	}
	if path == "-" {
		return readItems(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readItems(f)
}

func newOfflineService(cfg *config.Config) (*export.Service, error) {
	numbers, err := export.NewNumberer(cfg.Invoice.NumberNode)
	if err != nil {
		return nil, err
	}
	return export.NewService(nil, numbers, router.Header(cfg.Invoice)), nil
}
