// Package archive keeps copies of generated invoice documents so they can
// be downloaded again from the export history.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"invoice-generator/internal/config"
	"invoice-generator/internal/util"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("archive: document not found")

// Archiver stores and retrieves document bytes. Put returns the key under
// which the document can later be fetched; it may differ from the key
// passed in.
type Archiver interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Kind() string
}

// Key is the suggested storage key of a document: "<owner>/<number>/<file>".
func Key(owner uint, number, fileName string) string {
	return fmt.Sprintf("%d/%s/%s", owner, number, fileName)
}

// New builds the archiver selected by cfg.Kind. "none" or "" returns a nil
// Archiver and no error.
func New(cfg config.ArchiveConfig, cipher *util.Cipher) (Archiver, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "local":
		l, err := NewLocal(cfg.Dir, cipher)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "s3":
		s, err := NewS3(cfg.Bucket, cfg.Region, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("archive: unknown kind %q", cfg.Kind)
	}
}
