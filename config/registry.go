package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicate     = errors.New("command type already registered")
	ErrUnknownParent = errors.New("unknown parent command type")
	ErrNotFound      = errors.New("command type not found")
	ErrCycle         = errors.New("command type inheritance cycle")
)

// Registry stores the flattened settings of named command types.
// Types are meant to be registered during setup and read many times afterwards.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	root  Settings
	types map[string]Settings
}

// NewRegistry creates a Registry whose top-level types inherit from root.
// root itself is flattened over Root().
func NewRegistry(root Settings) *Registry {
	return &Registry{
		root:  root.Inherit(Root()),
		types: make(map[string]Settings),
	}
}

// Root returns the settings top-level types inherit from.
func (r *Registry) Root() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// Register flattens s over the parent type and stores it under name.
// An empty parent means the registry root.
func (r *Registry) Register(name, parent string, s Settings) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; ok {
		return Settings{}, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	base := r.root
	if parent != "" {
		p, ok := r.types[parent]
		if !ok {
			return Settings{}, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, parent, name)
		}
		base = p
	}

	flat := s.Inherit(base)
	r.types[name] = flat
	return flat, nil
}

// Lookup returns the flattened settings of name.
func (r *Registry) Lookup(name string) (Settings, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.types[name]
	return s, ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
