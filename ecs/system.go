package ecs

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// System is a store-scoped singleton: at most one live instance per declared
// name. Concrete types embed BaseSystem and provide SystemName.
//
// As with components, SystemName must not depend on receiver state.
type System interface {
	SystemName() string

	// OnResolveDependencies runs from ResolveSystemDependencies, after a batch
	// of AddSystem calls, so a system can capture pointers to its collaborators
	// regardless of registration order.
	OnResolveDependencies()

	base() *BaseSystem
}

// BaseSystem carries the non-owning back-reference to the owning store.
type BaseSystem struct {
	store *Store
}

func (b *BaseSystem) base() *BaseSystem { return b }

// Store returns the owning store, or nil when not registered.
func (b *BaseSystem) Store() *Store { return b.store }

func (b *BaseSystem) OnResolveDependencies() {}

type systemTable struct {
	byName *intmap.Map[uint64, System]
	order  []System
}

func newSystemTable() *systemTable {
	return &systemTable{
		byName: intmap.New[uint64, System](16),
	}
}

func (t *systemTable) get(name string) System {
	sys, ok := t.byName.Get(nameKey(name))
	if !ok || sys.SystemName() != name {
		return nil
	}
	return sys
}

func systemName[S any, PS interface {
	*S
	System
}]() string {
	var zero PS
	return zero.SystemName()
}

// AddSystem registers sys with the store and fires its OnLoad hook, if any.
// Dependencies are not resolved until ResolveSystemDependencies runs.
func AddSystem[PS System](s *Store, sys PS) (PS, error) {
	if err := s.AddSystem(sys); err != nil {
		var zero PS
		return zero, err
	}
	return sys, nil
}

// GetSystem returns the registered system of type S, or nil.
func GetSystem[S any, PS interface {
	*S
	System
}](s *Store) PS {
	sys := s.systems.get(systemName[S, PS]())
	if sys == nil {
		return nil
	}
	typed, _ := sys.(PS)
	return typed
}

// RemoveSystem unregisters the system of type S.
func RemoveSystem[S any, PS interface {
	*S
	System
}](s *Store) error {
	return s.RemoveSystem(systemName[S, PS]())
}

// AddSystem is the untyped form of the AddSystem function.
func (s *Store) AddSystem(sys System) error {
	name := sys.SystemName()
	key := nameKey(name)
	if existing, ok := s.systems.byName.Get(key); ok {
		if existing.SystemName() != name {
			panic(fmt.Sprintf("system name %q collides with %q", name, existing.SystemName()))
		}
		return fmt.Errorf("add system %s: %w", name, ErrDuplicateSystem)
	}

	sys.base().store = s
	s.systems.byName.Put(key, sys)
	s.systems.order = append(s.systems.order, sys)

	if l, ok := sys.(Loader); ok {
		l.OnLoad()
	}
	return nil
}

// System looks a system up by name.
func (s *Store) System(name string) System {
	return s.systems.get(name)
}

// RemoveSystem unregisters the named system and fires its OnDestroy hook.
func (s *Store) RemoveSystem(name string) error {
	sys := s.systems.get(name)
	if sys == nil {
		return fmt.Errorf("remove system %s: %w", name, ErrMissingSystem)
	}

	s.systems.byName.Del(nameKey(name))
	s.systems.order = slices.DeleteFunc(s.systems.order, func(other System) bool {
		return other == sys
	})

	if d, ok := sys.(Destroyer); ok {
		d.OnDestroy()
	}
	sys.base().store = nil
	return nil
}

// Systems returns the registered systems in registration order.
func (s *Store) Systems() []System {
	return slices.Clone(s.systems.order)
}

// ResolveSystemDependencies calls OnResolveDependencies once on every
// registered system, in registration order.
func (s *Store) ResolveSystemDependencies() {
	for _, sys := range s.systems.order {
		sys.OnResolveDependencies()
	}
	s.log.Debug("system dependencies resolved", zap.Int("systems", len(s.systems.order)))
}
