package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// JSON-backed storage: one human-readable file per key inside a directory,
// the on-disk analogue of browser localStorage.

var validKey = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// KVStore stores each key in <dir>/<key>.json.
type KVStore struct {
	dir string
	mu  sync.Mutex
}

var _ ports.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates dir if needed.
func NewKVStore(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &KVStore{dir: dir}, nil
}

func (s *KVStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads the file for key.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

// SetMany writes each entry to a temp file and renames it into place, so a
// crash never leaves a half-written value behind.
func (s *KVStore) SetMany(_ context.Context, entries ...ports.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		p, err := s.path(e.Key)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(p, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Ping checks that the storage directory is still reachable.
func (s *KVStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *KVStore) Close() error { return nil }
