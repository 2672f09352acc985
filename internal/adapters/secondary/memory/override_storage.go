// Package memory provides an in-process override storage for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

// OverrideStorage keeps values in a map.
type OverrideStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ ports.OverrideStorage = (*OverrideStorage)(nil)

func NewOverrideStorage() *OverrideStorage {
	return &OverrideStorage{values: make(map[string]string)}
}

func (s *OverrideStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *OverrideStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *OverrideStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *OverrideStorage) Ping(ctx context.Context) error {
	return nil
}
