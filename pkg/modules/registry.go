package modules

import (
	"sync"

	"github.com/henry232323/saffron-lang/pkg/types"
)

// Registry caches checked module types by import path, and holds the
// builtin modules that unqualified identifier lookups fall back to.
// Modules register under their path string; builtins additionally register
// under their display name.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]types.Type
	builtins map[string]types.Type
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules:  make(map[string]types.Type),
		builtins: make(map[string]types.Type),
	}
}

// Lookup returns the cached module type for path.
func (r *Registry) Lookup(path string) (types.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.modules[path]
	return t, ok
}

// Register caches a checked module type under its path.
func (r *Registry) Register(path string, t types.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[path] = t
}

// RegisterBuiltin installs a builtin module under both its path and its
// display name.
func (r *Registry) RegisterBuiltin(path, name string, t types.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[path] = t
	r.builtins[name] = t
}

// LookupBuiltin returns the builtin module registered under name.
func (r *Registry) LookupBuiltin(name string) (types.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.builtins[name]
	return t, ok
}
