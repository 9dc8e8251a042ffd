package ecs

import "fmt"

// Handle encodes an entity slot index (lower 16 bits) and the slot generation
// (upper 16 bits). Handles are plain values: copying one never affects the store.
type Handle uint32

// MaxEntities is the number of slots addressable by a Handle.
const MaxEntities = 1 << 16

// firstGeneration is the generation stamped on a freshly appended slot.
const firstGeneration uint16 = 1

// NewHandle creates a Handle from a slot index and generation
func NewHandle(index uint16, generation uint16) Handle {
	return Handle(uint32(generation)<<16 | uint32(index))
}

// Index extracts the slot index from the handle
func (h Handle) Index() uint16 {
	return uint16(h & 0xFFFF)
}

// Generation extracts the generation from the handle
func (h Handle) Generation() uint16 {
	return uint16(h >> 16)
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index(), h.Generation())
}

// Entity pairs a handle with the store that issued it. It is a convenience
// view; holding one does not keep the entity alive.
type Entity struct {
	store  *Store
	handle Handle
}

// Entity wraps a handle issued by this store.
func (s *Store) Entity(h Handle) Entity {
	return Entity{store: s, handle: h}
}

func (e Entity) Handle() Handle { return e.handle }
func (e Entity) Store() *Store  { return e.store }

// Valid reports whether the handle still refers to a live entity.
func (e Entity) Valid() bool {
	return e.store != nil && e.store.IsValid(e.handle)
}

// Destroy destroys the entity. A second call returns ErrInvalidHandle.
func (e Entity) Destroy() error {
	return e.store.Destroy(e.handle)
}

// Has reports whether the entity has every named component.
func (e Entity) Has(names ...string) bool {
	return e.store.HasComponents(e.handle, names...)
}

// HasAny reports whether the entity has at least one named component.
func (e Entity) HasAny(names ...string) bool {
	return e.store.HasAnyComponent(e.handle, names...)
}

// ComponentNames lists the attached component names in attachment order.
// Returns nil for an invalid handle.
func (e Entity) ComponentNames() []string {
	if !e.Valid() {
		return nil
	}
	components := e.store.slots[e.handle.Index()].components
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.ComponentName()
	}
	return names
}
