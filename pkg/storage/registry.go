package storage

import (
	"fmt"
	"sync"
)

// Factory constructs a Backend from configuration. Each implementation
// registers one factory under a unique name at startup; there is no
// implicit registration side effect, callers wire the backends they want.
type Factory interface {
	// Name is the registry key, e.g. "posix".
	Name() string
	// New builds a backend instance from cfg.
	New(cfg Config) (Backend, error)
}

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// Register makes f selectable by name. Registering two factories under
// the same name is a wiring bug and panics.
func Register(f Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.factories[f.Name()]; ok {
		panic(fmt.Sprintf("storage backend %q registered twice", f.Name()))
	}
	registry.factories[f.Name()] = f
}

// NewBackend constructs the backend registered under name.
func NewBackend(name string, cfg Config) (Backend, error) {
	registry.mu.RLock()
	f, ok := registry.factories[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f.New(cfg)
}
