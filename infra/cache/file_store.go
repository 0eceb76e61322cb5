package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pricekit/localprice/pkg/domain"
)

// FileLocationStore implements cache.LocationStore with a single JSON
// file. A missing or corrupt file is a cache miss, not an error, so a
// damaged cache can always be repaired by the next successful lookup.
type FileLocationStore struct {
	path   string
	logger *slog.Logger
}

// NewFileLocationStore creates a store writing to the given path.
func NewFileLocationStore(path string, logger *slog.Logger) *FileLocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLocationStore{path: path, logger: logger}
}

// Load reads the stored record, or (nil, nil) when absent or corrupt.
func (s *FileLocationStore) Load(_ context.Context) (*domain.LocationRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read location cache: %w", err)
	}

	var rec domain.LocationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("discarding corrupt location cache", "path", s.path, "error", err)
		return nil, nil
	}
	if !rec.CurrencyCode.IsValid() {
		s.logger.Warn("discarding location cache with invalid currency", "path", s.path)
		return nil, nil
	}
	return &rec, nil
}

// Save overwrites the stored record. The write goes through a rename
// so a crash mid-write never leaves a half-written file behind.
func (s *FileLocationStore) Save(_ context.Context, rec *domain.LocationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal location record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create location cache dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write location cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace location cache: %w", err)
	}
	return nil
}
