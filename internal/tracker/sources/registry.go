package sources

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Source)
)

// Register adds a source to the global registry. It panics if a source with
// the same ID is already registered.
func Register(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[s.ID()]; dup {
		panic(fmt.Sprintf("sources: Register called twice for source %q", s.ID()))
	}
	registry[s.ID()] = s
}

// Get returns the source registered under the given ID.
func Get(id string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("sources: unknown source %q", id)
	}
	return s, nil
}

// All returns the IDs of every registered source.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
