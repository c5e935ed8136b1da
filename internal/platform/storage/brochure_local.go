// Package storage provides the local-disk brochure store.
//
// Files end up under <baseDir>/brochures/ with deterministic names of the
// form brochure_<ownerID>_<YYYYMMDD_HHMMSS>.<ext>. Writes go through a
// staging file that is renamed into place, so a crashed write never leaves
// a partial file in the public directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	brochureDir = "brochures"
	stagingDir  = ".staging"

	timestampLayout = "20060102_150405"
)

// ErrInvalidPath is returned when a storage key tries to escape the base
// directory.
var ErrInvalidPath = errors.New("invalid storage path")

// LocalBrochureStore stores brochures on the local filesystem under a
// base directory that the HTTP layer serves publicly at /storage.
type LocalBrochureStore struct {
	baseDir string
	log     *slog.Logger

	// now is swappable in tests for deterministic filenames.
	now func() time.Time
}

// NewLocalBrochureStore creates the store and its directory layout.
func NewLocalBrochureStore(baseDir string, log *slog.Logger) (*LocalBrochureStore, error) {
	for _, dir := range []string{brochureDir, stagingDir} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}
	return &LocalBrochureStore{
		baseDir: baseDir,
		log:     log,
		now:     time.Now,
	}, nil
}

// Store writes the brochure bytes and returns the relative storage key
// (namespace + filename), not an absolute URL or filesystem path.
func (s *LocalBrochureStore) Store(ctx context.Context, r io.Reader, originalName string, size int64, ownerID uint) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	filename := fmt.Sprintf("brochure_%d_%s.%s", ownerID, s.now().Format(timestampLayout), ext)
	rel := path.Join(brochureDir, filename)

	staged := filepath.Join(s.baseDir, stagingDir, uuid.NewString()+".tmp")
	if err := s.writeStaged(staged, r); err != nil {
		return "", err
	}

	final := filepath.Join(s.baseDir, brochureDir, filename)
	if err := os.Rename(staged, final); err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("publish brochure: %w", err)
	}

	s.log.InfoContext(ctx, "brochure stored",
		"owner_id", ownerID,
		"path", rel,
		"original_name", originalName,
		"size", size,
	)
	return rel, nil
}

// Delete removes a stored brochure by its relative key. It reports whether
// a deletion occurred; a missing file is not an error.
func (s *LocalBrochureStore) Delete(ctx context.Context, rel string) (bool, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat brochure: %w", err)
	}
	if err := os.Remove(full); err != nil {
		return false, fmt.Errorf("delete brochure: %w", err)
	}
	s.log.InfoContext(ctx, "brochure deleted", "path", rel)
	return true, nil
}

// Exists reports whether the relative key refers to a stored file.
func (s *LocalBrochureStore) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (s *LocalBrochureStore) writeStaged(staged string, r io.Reader) error {
	f, err := os.Create(staged)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(staged)
		return fmt.Errorf("write brochure: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(staged)
		return fmt.Errorf("sync brochure: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("close brochure: %w", err)
	}
	return nil
}

// resolve maps a relative storage key onto the base directory, rejecting
// keys that would escape it.
func (s *LocalBrochureStore) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return filepath.Join(s.baseDir, clean), nil
}
