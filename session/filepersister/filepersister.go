// Package filepersister stores session records as files in a data folder,
// optionally sealed with XChaCha20-Poly1305.
package filepersister

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrsteele09/rxadmin/session"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var _ session.Persister = (*Persister)(nil)

var ErrUnseal = errors.New("session record cannot be decrypted")

const hkdfInfo = "rxadmin session record"

type Persister struct {
	dir  string
	aead cipher.AEAD
}

// New returns a persister writing into dir. A non-empty secret seals every record.
func New(dir, secret string) (*Persister, error) {
	const op = "filepersister.New"

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &Persister{dir: dir}
	if secret == "" {
		return p, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("%s: derive key: %w", op, err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.aead = aead
	return p, nil
}

func (p *Persister) path(key string) string {
	ext := ".json"
	if p.aead != nil {
		ext = ".sealed"
	}
	return filepath.Join(p.dir, filepath.Base(key)+ext)
}

func (p *Persister) Load(key string) ([]byte, error) {
	const op = "filepersister.Load"

	data, err := os.ReadFile(p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.aead == nil {
		return data, nil
	}

	nonceSize := p.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("%s: %w", op, ErrUnseal)
	}
	plain, err := p.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnseal)
	}
	return plain, nil
}

// Save writes through a temp file and rename so a crash never leaves half a record.
func (p *Persister) Save(key string, data []byte) error {
	const op = "filepersister.Save"

	if p.aead != nil {
		nonce := make([]byte, p.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		data = p.aead.Seal(nonce, nonce, data, []byte(key))
	}

	tmp, err := os.CreateTemp(p.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), p.path(key)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Persister) Remove(key string) error {
	err := os.Remove(p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return session.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("filepersister.Remove: %w", err)
	}
	return nil
}
