package ecs

import (
	"fmt"
	"io"
	"slices"
)

// Component is the contract every attachable type satisfies. Concrete types
// embed BaseComponent and provide ComponentName; they override Serialize,
// Deserialize and OnResolveDependencies as needed.
//
// ComponentName must return the same constant for every value of the type,
// including a nil pointer, because the store calls it on a zero value to look
// up a type by name.
type Component interface {
	ComponentName() string

	// Serialize writes the component payload. Deserialize must consume exactly
	// the bytes Serialize produced: the stream does not record payload length.
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error

	// OnResolveDependencies runs after a batch of constructions completes, so a
	// component may look up siblings that did not exist when it was attached.
	OnResolveDependencies()

	base() *BaseComponent
}

// Loader is implemented by components (and systems) that need a hook when they
// are attached. Components without OnLoad get OnResolveDependencies instead.
type Loader interface {
	OnLoad()
}

// Destroyer is implemented by components and systems that release resources
// when they are removed, destroyed with their entity, or discarded by a load.
type Destroyer interface {
	OnDestroy()
}

// BaseComponent carries the non-owning back-reference to the owning entity.
type BaseComponent struct {
	store  *Store
	entity Handle
}

func (b *BaseComponent) base() *BaseComponent { return b }

// Entity returns the handle of the owning entity.
func (b *BaseComponent) Entity() Handle { return b.entity }

// Store returns the owning store, or nil when detached.
func (b *BaseComponent) Store() *Store { return b.store }

func (b *BaseComponent) Serialize(io.Writer) error   { return nil }
func (b *BaseComponent) Deserialize(io.Reader) error { return nil }
func (b *BaseComponent) OnResolveDependencies()      {}

// componentName returns the registered name of T without needing an instance.
func componentName[T any, PT interface {
	*T
	Component
}]() string {
	var zero PT
	return zero.ComponentName()
}

// NameOf returns the component name declared by T.
func NameOf[T any, PT interface {
	*T
	Component
}]() string {
	return componentName[T, PT]()
}

// AddComponent attaches c to the entity, fires its load hook and returns it.
func AddComponent[PT Component](s *Store, h Handle, c PT) (PT, error) {
	if err := s.Attach(h, c); err != nil {
		var zero PT
		return zero, err
	}
	return c, nil
}

// MustAddComponent is like AddComponent but panics on error. It is meant for
// setup code where a failure is a programming error.
func MustAddComponent[PT Component](s *Store, h Handle, c PT) PT {
	added, err := AddComponent(s, h, c)
	if err != nil {
		panic(err)
	}
	return added
}

// GetComponent returns the entity's component of type T, or nil when the
// handle is invalid or the component is absent.
func GetComponent[T any, PT interface {
	*T
	Component
}](s *Store, h Handle) PT {
	c := s.Lookup(h, componentName[T, PT]())
	if c == nil {
		return nil
	}
	typed, _ := c.(PT)
	return typed
}

// MustGetComponent is like GetComponent but panics when the component is absent.
func MustGetComponent[T any, PT interface {
	*T
	Component
}](s *Store, h Handle) PT {
	c := GetComponent[T, PT](s, h)
	if c == nil {
		panic(fmt.Sprintf("entity %s has no %s", h, componentName[T, PT]()))
	}
	return c
}

// RemoveComponent detaches and destroys the entity's component of type T.
func RemoveComponent[T any, PT interface {
	*T
	Component
}](s *Store, h Handle) error {
	return s.Detach(h, componentName[T, PT]())
}

// Has reports whether the entity has a component of type T.
func Has[T any, PT interface {
	*T
	Component
}](s *Store, h Handle) bool {
	return s.Lookup(h, componentName[T, PT]()) != nil
}

// Has2 reports whether the entity has both A and B.
func Has2[A, B any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}](s *Store, h Handle) bool {
	return s.HasComponents(h, componentName[A, PA](), componentName[B, PB]())
}

// HasAny2 reports whether the entity has A or B.
func HasAny2[A, B any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}](s *Store, h Handle) bool {
	return s.HasAnyComponent(h, componentName[A, PA](), componentName[B, PB]())
}

// Has3 reports whether the entity has A, B and C.
func Has3[A, B, C any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}, PC interface {
	*C
	Component
}](s *Store, h Handle) bool {
	return s.HasComponents(h, componentName[A, PA](), componentName[B, PB](), componentName[C, PC]())
}

// HasAny3 reports whether the entity has at least one of A, B or C.
func HasAny3[A, B, C any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}, PC interface {
	*C
	Component
}](s *Store, h Handle) bool {
	return s.HasAnyComponent(h, componentName[A, PA](), componentName[B, PB](), componentName[C, PC]())
}

// Attach is the untyped form of AddComponent.
func (s *Store) Attach(h Handle, c Component) error {
	if err := s.AssertValid(h); err != nil {
		return err
	}
	return s.attach(h, c)
}

func (s *Store) attach(h Handle, c Component) error {
	slot := &s.slots[h.Index()]
	name := c.ComponentName()
	if slot.find(name) >= 0 {
		return fmt.Errorf("add %s to entity %s: %w", name, h, ErrDuplicateComponent)
	}

	b := c.base()
	if b.store != nil {
		return fmt.Errorf("add %s to entity %s: owned by entity %s: %w", name, h, b.entity, ErrDuplicateComponent)
	}
	b.store = s
	b.entity = h
	slot.components = append(slot.components, c)

	if l, ok := c.(Loader); ok {
		l.OnLoad()
	} else {
		c.OnResolveDependencies()
	}
	return nil
}

// Detach is the untyped form of RemoveComponent.
func (s *Store) Detach(h Handle, name string) error {
	if err := s.AssertValid(h); err != nil {
		return err
	}

	slot := &s.slots[h.Index()]
	idx := slot.find(name)
	if idx < 0 {
		return fmt.Errorf("remove %s from entity %s: %w", name, h, ErrMissingComponent)
	}

	c := slot.components[idx]
	slot.components = slices.Delete(slot.components, idx, idx+1)
	release(c)
	return nil
}

// Lookup returns the named component, or nil.
func (s *Store) Lookup(h Handle, name string) Component {
	if !s.IsValid(h) {
		return nil
	}
	slot := &s.slots[h.Index()]
	if idx := slot.find(name); idx >= 0 {
		return slot.components[idx]
	}
	return nil
}

// HasComponents reports whether the entity has every named component.
func (s *Store) HasComponents(h Handle, names ...string) bool {
	if !s.IsValid(h) {
		return false
	}
	slot := &s.slots[h.Index()]
	for _, name := range names {
		if slot.find(name) < 0 {
			return false
		}
	}
	return true
}

// HasAnyComponent reports whether the entity has at least one named component.
func (s *Store) HasAnyComponent(h Handle, names ...string) bool {
	if !s.IsValid(h) {
		return false
	}
	slot := &s.slots[h.Index()]
	for _, name := range names {
		if slot.find(name) >= 0 {
			return true
		}
	}
	return false
}

// resolve runs the second construction pass over every component of the slot.
func (s *Store) resolve(h Handle) {
	for _, c := range s.slots[h.Index()].components {
		c.OnResolveDependencies()
	}
}

// release fires the destroy hook and drops the back-reference.
func release(c Component) {
	if d, ok := c.(Destroyer); ok {
		d.OnDestroy()
	}
	b := c.base()
	b.store = nil
	b.entity = 0
}
