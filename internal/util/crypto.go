package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const kdfIterations = 100_000

// ErrCipherTooShort is returned when the sealed data is shorter than a nonce.
var ErrCipherTooShort = errors.New("util: ciphertext too short")

// RandomString returns n URL-safe random characters (secrets, file names).
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}

// DeriveKey stretches secret into a 32 byte AES-256 key with PBKDF2-SHA256.
func DeriveKey(secret, salt string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(salt), kdfIterations, 32, sha256.New)
}

// Cipher seals audit fields and archived documents with AES-256-GCM. The key
// is derived once; a Cipher built from an empty secret is disabled and
// passes data through unchanged.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives the key from secret and salt.
func NewCipher(secret, salt string) (*Cipher, error) {
	if secret == "" {
		return &Cipher{}, nil
	}
	block, err := aes.NewCipher(DeriveKey(secret, salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Enabled reports whether a key is configured.
func (c *Cipher) Enabled() bool { return c != nil && c.aead != nil }

// Encrypt returns nonce+ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	if !c.Enabled() {
		return plaintext, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if !c.Enabled() {
		return data, nil
	}
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return nil, ErrCipherTooShort
	}
	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptString encrypts plain and base64-encodes the result. Empty input
// stays empty.
func (c *Cipher) EncryptString(plain string) (string, error) {
	if plain == "" || !c.Enabled() {
		return plain, nil
	}
	b, err := c.Encrypt([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptString reverses EncryptString.
func (c *Cipher) DecryptString(enc string) (string, error) {
	if enc == "" || !c.Enabled() {
		return enc, nil
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	b, err := c.Decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
