package view

import (
	"errors"
	"fmt"
	"io"
)

// ErrViewExists is returned when registering a view whose name is already
// taken. Duplicate names would corrupt the persisted open-state document,
// which is keyed by name, so the registry keeps the first registration.
var ErrViewExists = errors.New("view already registered")

// Registry is the ordered collection of views. It owns every registered view
// from registration until Clear, which must run before any plugin that
// contributed views is unloaded.
type Registry struct {
	views  []View
	byName map[string]View
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]View)}
}

// Register appends a view. A view with a duplicate name is rejected and the
// first registration is retained.
func (r *Registry) Register(v View) error {
	if v == nil {
		return errors.New("nil view")
	}
	name := v.Name()
	if name == "" {
		return errors.New("view has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrViewExists, name)
	}
	r.views = append(r.views, v)
	r.byName[name] = v
	return nil
}

// ForEach visits every view in registration order. Returning false from the
// visitor stops the iteration. Menu and draw order both rely on this order
// being stable.
func (r *Registry) ForEach(visit func(View) bool) {
	for _, v := range r.views {
		if !visit(v) {
			return
		}
	}
}

// FindByName returns the view with the given name.
func (r *Registry) FindByName(name string) (View, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Len returns the number of registered views.
func (r *Registry) Len() int { return len(r.views) }

// Clear destroys every owned view and empties the registry. Views that
// implement io.Closer are closed, in registration order.
func (r *Registry) Clear() {
	for _, v := range r.views {
		if c, ok := v.(io.Closer); ok {
			_ = c.Close()
		}
	}
	r.views = nil
	r.byName = make(map[string]View)
}
