// Package storage abstracts the object store that holds place images.
// The core never talks to a concrete backend: it sees this interface,
// and failures here must never block booking or availability work.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type ObjectStorage interface {
	// Save writes the object and returns its key.
	Save(r io.Reader, directory, filename string) (string, error)
	Delete(key string) error
	URL(key string) string
}

// Local stores objects on the local filesystem; the development and
// test backend.
type Local struct {
	baseDir   string
	urlPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if urlPrefix == "" {
		urlPrefix = "/static/uploads"
	}
	return &Local{baseDir: baseDir, urlPrefix: urlPrefix}
}

func (l *Local) Save(r io.Reader, directory, filename string) (string, error) {
	ext := filepath.Ext(filename)
	key := filepath.Join(directory, uuid.NewString()+ext)

	dst := filepath.Join(l.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage: write: %w", err)
	}
	return filepath.ToSlash(key), nil
}

func (l *Local) Delete(key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete: %w", err)
	}
	return nil
}

func (l *Local) URL(key string) string {
	return strings.TrimSuffix(l.urlPrefix, "/") + "/" + key
}
