package tools

import (
	"errors"
	"fmt"
	"sync"
)

// ErrToolNotRegistered is returned by [Registry.Select] when a requested tool
// name has no registration.
var ErrToolNotRegistered = errors.New("tools: tool not registered")

// Registry collects built-in tools by name so the server can register exactly
// the configured set. It preserves registration order and is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Tool
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds tools to the registry. Registering two tools with the same
// name is an error.
func (r *Registry) Register(ts ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range ts {
		name := t.Definition.Name
		if name == "" {
			return errors.New("tools: tool has no name")
		}
		if _, dup := r.byName[name]; dup {
			return fmt.Errorf("tools: tool %q registered twice", name)
		}
		r.byName[name] = t
		r.order = append(r.order, name)
	}
	return nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every registered tool in registration order.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Select returns the tools for the given names, in the given order. A nil or
// empty name list selects every registered tool. Unknown names fail with
// [ErrToolNotRegistered].
func (r *Registry) Select(names []string) ([]Tool, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrToolNotRegistered, name)
		}
		out = append(out, t)
	}
	return out, nil
}
