package draw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// FileStore persists the draw aggregate as one pretty-printed JSON file.
// It is the default backend when no database is configured.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

// NewFileStore constructs a FileStore writing to path.
func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrInvalidInput
	}
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{path: path, log: log}, nil
}

// Load reads the aggregate. A missing, unreadable, or unparsable file
// degrades to the empty default Draw; Load never fails toward the core.
func (s *FileStore) Load(ctx context.Context) (Draw, error) {
	if err := ctx.Err(); err != nil {
		return Draw{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("store.load.unreadable", "path", s.path, "err", err)
		}
		return Empty(), nil
	}

	var d Draw
	if err := json.Unmarshal(b, &d); err != nil {
		s.log.Warn("store.load.corrupt", "path", s.path, "err", err)
		return Empty(), nil
	}
	d.normalize()
	return d, nil
}

// Save writes the aggregate atomically: marshal, write a sibling temp
// file, then rename over the target so a crashed write never leaves a
// half-written file behind.
func (s *FileStore) Save(ctx context.Context, d Draw) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draw: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write draw: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit draw: %w", err)
	}
	return nil
}

// Close closes the store (noop for files).
func (s *FileStore) Close() error { return nil }
