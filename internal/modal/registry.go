// Package modal maps logical component keys to renderable units and decides
// how the host mounts them.
package modal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// RenderMode tells the host whether a unit brings its own overlay.
type RenderMode int

const (
	// Wrapped units are mounted inside the generic modal shell.
	Wrapped RenderMode = iota
	// Native units supply their own overlay and are mounted bare.
	Native
)

func (m RenderMode) String() string {
	switch m {
	case Wrapped:
		return "wrapped"
	case Native:
		return "native"
	}
	return fmt.Sprintf("RenderMode(%d)", int(m))
}

// MarshalText renders the mode as "native" or "wrapped".
func (m RenderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeFor converts the legacy native flag to a RenderMode.
func ModeFor(native bool) RenderMode {
	if native {
		return Native
	}
	return Wrapped
}

// Unit describes a renderable view.
type Unit struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Loader produces a unit on first use.
type Loader func() Unit

// DefaultKey names the generic detail view used for unknown keys.
const DefaultKey = "todo-detail"

// Entry is a registry row. The loader runs at most once.
type Entry struct {
	Key  string
	Mode RenderMode
	load func() Unit
}

// Load returns the unit, or false when the entry has no loader.
func (e Entry) Load() (Unit, bool) {
	if e.load == nil {
		return Unit{}, false
	}
	return e.load(), true
}

// Registry is the process-wide component table. It is filled at startup and
// only read afterwards.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	fallback Entry
	logger   *zap.Logger
}

// NewRegistry creates a registry holding only the default detail entry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		entries: make(map[string]Entry),
		logger:  logger,
	}
	r.Register(DefaultKey, func() Unit {
		return Unit{Name: "TodoDetail", Title: "待办详情"}
	}, Wrapped)
	return r
}

// Register adds or replaces the entry for key. Registering the same key twice
// leaves the last registration in place.
func (r *Registry) Register(key string, loader Loader, mode RenderMode) {
	entry := Entry{Key: key, Mode: mode}
	if loader != nil {
		entry.load = sync.OnceValue(func() Unit { return loader() })
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry
	if key == DefaultKey {
		r.fallback = entry
	}
}

// Lookup returns the entry registered for key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Resolve returns the entry for key, falling back to the default entry when
// key is empty or unregistered.
func (r *Registry) Resolve(key string) Entry {
	if entry, ok := r.Lookup(key); ok && key != "" {
		return entry
	}
	if key != "" {
		r.logger.Debug("component key unresolved", zap.String("key", key))
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Keys lists registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
