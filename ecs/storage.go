package ecs

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// slot is the per-index record of the entity table.
type slot struct {
	occupied   bool
	generation uint16
	components []Component
}

func (s *slot) find(name string) int {
	for i, c := range s.components {
		if c.ComponentName() == name {
			return i
		}
	}
	return -1
}

// Store owns the entity slot table, every component attached to it and the
// registered systems. It is not safe for concurrent use.
type Store struct {
	slots    []slot
	freeList []uint16
	registry *ComponentRegistry
	systems  *systemTable
	log      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load/save and system resolution events.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCapacity preallocates room for n entity slots.
func WithCapacity(n int) Option {
	return func(s *Store) {
		s.slots = make([]slot, 0, min(n, MaxEntities))
	}
}

// NewStore creates an empty store. The registry supplies the factories used by
// Deserialize; a nil registry gets a fresh, empty one.
func NewStore(registry *ComponentRegistry, opts ...Option) *Store {
	if registry == nil {
		registry = NewComponentRegistry()
	}
	s := &Store{
		registry: registry,
		systems:  newSystemTable(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the component registry consulted by Deserialize.
func (s *Store) Registry() *ComponentRegistry {
	return s.registry
}

// Create allocates an entity, reusing the most recently freed slot if any.
// It panics when all MaxEntities slots are live.
func (s *Store) Create() Handle {
	if n := len(s.freeList); n > 0 {
		index := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]

		sl := &s.slots[index]
		sl.occupied = true
		sl.components = sl.components[:0]
		return NewHandle(index, sl.generation)
	}

	if len(s.slots) >= MaxEntities {
		panic(fmt.Sprintf("entity store full: %d live entities", MaxEntities))
	}

	index := uint16(len(s.slots))
	s.slots = append(s.slots, slot{
		occupied:   true,
		generation: firstGeneration,
	})
	return NewHandle(index, firstGeneration)
}

// CreateWith creates an entity, attaches every component in order and then
// runs the dependency-resolution pass over all of them. On failure the entity
// is destroyed again.
func (s *Store) CreateWith(components ...Component) (Handle, error) {
	h := s.Create()
	for _, c := range components {
		if err := s.attach(h, c); err != nil {
			_ = s.Destroy(h)
			return 0, err
		}
	}
	s.resolve(h)
	return h, nil
}

// Destroy releases the entity's components, advances the slot generation and
// returns the slot to the free list.
func (s *Store) Destroy(h Handle) error {
	if err := s.AssertValid(h); err != nil {
		return err
	}

	index := h.Index()
	s.slots[index].clear()
	s.slots[index].generation = nextGeneration(s.slots[index].generation)
	s.freeList = append(s.freeList, index)
	return nil
}

// DestroyAll destroys every live entity.
func (s *Store) DestroyAll() {
	for i := range s.slots {
		if s.slots[i].occupied {
			_ = s.Destroy(NewHandle(uint16(i), s.slots[i].generation))
		}
	}
}

// IsValid reports whether h refers to a live entity of this store.
func (s *Store) IsValid(h Handle) bool {
	index := int(h.Index())
	if index >= len(s.slots) {
		return false
	}
	sl := &s.slots[index]
	return sl.occupied && sl.generation == h.Generation()
}

// AssertValid returns ErrInvalidHandle, annotated with the handle, unless h is valid.
func (s *Store) AssertValid(h Handle) error {
	if !s.IsValid(h) {
		return fmt.Errorf("entity %s: %w", h, ErrInvalidHandle)
	}
	return nil
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].occupied {
			n++
		}
	}
	return n
}

// All iterates live entities in ascending slot order.
func (s *Store) All() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for i := 0; i < len(s.slots); i++ {
			sl := &s.slots[i]
			if !sl.occupied {
				continue
			}
			if !yield(NewHandle(uint16(i), sl.generation)) {
				return
			}
		}
	}
}

// clear releases every component and marks the slot unoccupied.
func (sl *slot) clear() {
	for i, c := range sl.components {
		release(c)
		sl.components[i] = nil
	}
	sl.components = sl.components[:0]
	sl.occupied = false
}

// reset drops all allocator state, firing destroy hooks on live components.
func (s *Store) reset() {
	for i := range s.slots {
		if s.slots[i].occupied {
			s.slots[i].clear()
		}
	}
	s.slots = s.slots[:0]
	s.freeList = s.freeList[:0]
}

// nextGeneration skips zero, which only gap slots restored by a load carry.
func nextGeneration(g uint16) uint16 {
	g++
	if g == 0 {
		g = firstGeneration
	}
	return g
}
