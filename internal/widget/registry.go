package widget

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// Registry maps widget names to their handles, in registration order.
// It owns the handles: Remove and Close destroy them through the renderer.
type Registry struct {
	mu       sync.RWMutex
	renderer Renderer
	entries  map[string]Entry
	order    []string
}

// NewRegistry creates an empty registry. renderer may be nil, in which case
// handles are dropped without being destroyed.
func NewRegistry(renderer Renderer) *Registry {
	return &Registry{
		renderer: renderer,
		entries:  make(map[string]Entry),
	}
}

// Register stores e. A second registration under the same name fails with
// a DUPLICATE error and leaves the first one intact.
func (r *Registry) Register(e Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New(errors.ErrValidation, "Widget name can't be empty", "")
	}
	if e.Handle == nil {
		return errors.New(errors.ErrValidation,
			"Widget '"+e.Name+"' has no chart handle",
			"Create the chart before registering it")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Name]; exists {
		return errors.NewDuplicate(e.Name)
	}
	r.entries[e.Name] = e
	r.order = append(r.order, e.Name)
	return nil
}

// Get returns the handle for name, or a NOT_FOUND error.
func (r *Registry) Get(name string) (Handle, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Handle, nil
}

// Lookup returns the full entry for name, or a NOT_FOUND error.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, errors.NewNotFound(name)
	}
	return e, nil
}

// All yields every entry in registration order. Each iteration works from
// a snapshot taken when it starts, so the sequence can be restarted and is
// unaffected by concurrent Remove calls.
func (r *Registry) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range r.snapshot() {
			if !yield(e) {
				return
			}
		}
	}
}

func (r *Registry) snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered widgets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Remove destroys and forgets name. Removing an absent name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
		r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	}
	r.mu.Unlock()

	if ok && r.renderer != nil {
		r.renderer.Destroy(e.Handle)
	}
}

// Close removes every widget, destroying handles in registration order.
func (r *Registry) Close() {
	for _, name := range r.Names() {
		r.Remove(name)
	}
}
