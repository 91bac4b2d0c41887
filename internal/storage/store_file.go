package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// FileBackend keeps one <key>.json file per key inside dir.
type FileBackend struct {
	mu  sync.Mutex
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) GetItem(key string) ([]byte, bool, error) {
	if !validKey(key) {
		return nil, false, ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// SetItem replaces the file atomically via a temp file in the same directory.
func (b *FileBackend) SetItem(key string, value []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(key))
}

func (b *FileBackend) RemoveItem(key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
