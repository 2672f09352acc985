// Package filestore persists override values as files, one per key, written
// atomically.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

var (
	errInvalidKey = errors.New("invalid storage key")
	keyPattern    = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// OverrideStorage stores each key in <dir>/<key>.json.
type OverrideStorage struct {
	dir string
}

var _ ports.OverrideStorage = (*OverrideStorage)(nil)

// NewOverrideStorage creates the directory if needed.
func NewOverrideStorage(dir string) (*OverrideStorage, error) {
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &OverrideStorage{dir: dir}, nil
}

func (s *OverrideStorage) path(key string) (string, error) {
	if !keyPattern.MatchString(key) || strings.Trim(key, ".") == "" {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *OverrideStorage) Get(ctx context.Context, key string) (string, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	content, err := os.ReadFile(path) //nolint:gosec // key is validated
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading overrides: %w", err)
	}
	return string(content), true, nil
}

func (s *OverrideStorage) Set(ctx context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(value)); err != nil {
		return fmt.Errorf("writing overrides: %w", err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("setting override file permissions: %w", err)
	}
	return nil
}

func (s *OverrideStorage) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing overrides: %w", err)
	}
	return nil
}

// Ping checks that the directory is still there and is a directory.
func (s *OverrideStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store directory %s is not a directory", s.dir)
	}
	return nil
}
