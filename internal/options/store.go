// Package options persists plugin options: named string values that are
// created or overwritten, never deleted.
package options

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when no option has the given name.
var ErrNotFound = errors.New("option not found")

// SettingPrefix namespaces every plugin option.
const SettingPrefix = "auto_load_next_post_"

// SettingName returns the option name set_setting writes for setting.
func SettingName(setting string) string {
	return SettingPrefix + setting
}

// Store reads and writes options.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
	// Set creates or overwrites name.
	Set(ctx context.Context, name, value string) error
	// List returns every option whose name starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for name, value := range s.values {
		if strings.HasPrefix(name, prefix) {
			out[name] = value
		}
	}
	return out, nil
}

// Len returns the number of stored options.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
