package slots

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Backend persists the raw document bytes.
//
// WriteDocument must replace the document all-or-nothing: a concurrent
// ReadDocument observes either the previous or the new content, never a mix.
type Backend interface {
	Exists(ctx context.Context) (bool, error)
	ReadDocument(ctx context.Context) ([]byte, error)
	WriteDocument(ctx context.Context, data []byte) error
}

// FileBackend stores the document in a single file. Writes go to a temporary
// file in the same directory which is then renamed over the target.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the file at path. The file is not
// touched until the first Store operation.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the document location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (b *FileBackend) ReadDocument(_ context.Context) ([]byte, error) {
	return os.ReadFile(b.path)
}

func (b *FileBackend) WriteDocument(_ context.Context, data []byte) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return atomic.WriteFile(b.path, bytes.NewReader(data))
}
