package ecs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/kamstrup/intmap"
)

// Factory constructs a zero-valued component ready for Deserialize.
type Factory func() Component

type registeredComponent struct {
	name    string
	factory Factory
}

// ComponentRegistry maps component names to factories. Deserialize consults it
// to materialize the concrete type behind each name in a stream. A registry may
// be shared by several stores.
type ComponentRegistry struct {
	factories *intmap.Map[uint64, registeredComponent]
	names     []string
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: intmap.New[uint64, registeredComponent](64),
	}
}

// RegisterComponent registers T under the name it declares.
// This must be called for each component type before a load can construct it.
func RegisterComponent[T any, PT interface {
	*T
	Component
}](r *ComponentRegistry) {
	r.Register(componentName[T, PT](), func() Component {
		return PT(new(T))
	})
}

// Register adds a factory under name. Registering the same name again
// replaces the factory. It panics on names that cannot be framed in a stream
// and on hash collisions between distinct names.
func (r *ComponentRegistry) Register(name string, factory Factory) {
	if err := validateName(name); err != nil {
		panic(err.Error())
	}

	key := nameKey(name)
	if existing, ok := r.factories.Get(key); ok {
		if existing.name != name {
			panic(fmt.Sprintf("component name %q collides with %q", name, existing.name))
		}
	} else {
		r.names = append(r.names, name)
	}
	r.factories.Put(key, registeredComponent{name: name, factory: factory})
}

// IsRegistered reports whether a factory exists for name.
func (r *ComponentRegistry) IsRegistered(name string) bool {
	entry, ok := r.factories.Get(nameKey(name))
	return ok && entry.name == name
}

// Names returns the registered names in registration order.
func (r *ComponentRegistry) Names() []string {
	return slices.Clone(r.names)
}

// create constructs a component for name.
func (r *ComponentRegistry) create(name string) (Component, error) {
	entry, ok := r.factories.Get(nameKey(name))
	if !ok || entry.name != name {
		return nil, fmt.Errorf("%q: %w", name, ErrUnregisteredComponent)
	}
	return entry.factory(), nil
}

func nameKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

// validateName rejects names the stream framing cannot carry.
func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("component name must not be empty")
	case strings.IndexByte(name, nameTerminator) >= 0:
		return fmt.Errorf("component name %q contains a NUL byte", name)
	case strings.IndexByte(name, frameEnd) >= 0:
		return fmt.Errorf("component name %q contains %q", name, frameEnd)
	}
	return nil
}
