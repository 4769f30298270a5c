package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"invoice-generator/internal/util"

	"github.com/google/uuid"
)

// Local writes documents below a directory, encrypted with AES-GCM when the
// cipher has a key. File names are random; the caller keeps the mapping.
type Local struct {
	dir    string
	cipher *util.Cipher
}

// NewLocal creates dir if needed.
func NewLocal(dir string, cipher *util.Cipher) (*Local, error) {
	if dir == "" {
		return nil, errors.New("archive: local dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Local{dir: dir, cipher: cipher}, nil
}

func (l *Local) Kind() string { return "local" }

// Put stores the document as "<first key segment>/<uuid>.bin" and returns
// that relative path.
func (l *Local) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	enc, err := l.cipher.Encrypt(raw)
	if err != nil {
		return "", fmt.Errorf("encrypt document: %w", err)
	}

	owner, _, _ := strings.Cut(key, "/")
	if owner == "" || owner == "." || owner == ".." {
		owner = "shared"
	}
	stored := path.Join(owner, uuid.New().String()+".bin")

	full := filepath.Join(l.dir, filepath.FromSlash(stored))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.WriteFile(full, enc, 0o600); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return stored, nil
}

func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	enc, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}
	raw, err := l.cipher.Decrypt(enc)
	if err != nil {
		return nil, fmt.Errorf("decrypt document: %w", err)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

// resolve rejects keys that would leave the archive directory.
func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", ErrNotFound
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}
