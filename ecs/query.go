package ecs

// Queries visit occupied slots in ascending index order. Each call costs
// O(live entities × queried types); there is no incremental index.
//
// Adding or removing components or entities from inside a callback is not
// supported. Queue structural changes on a Commands buffer instead.

// lookup finds the component by name and asserts it to PT, yielding nil when
// absent.
func lookup[PT Component](sl *slot, name string) PT {
	if idx := sl.find(name); idx >= 0 {
		if typed, ok := sl.components[idx].(PT); ok {
			return typed
		}
	}
	var zero PT
	return zero
}

func (s *Store) each(fn func(h Handle, sl *slot)) {
	for i := 0; i < len(s.slots); i++ {
		sl := &s.slots[i]
		if sl.occupied {
			fn(NewHandle(uint16(i), sl.generation), sl)
		}
	}
}

// With calls fn for every entity that has A.
func With[A any, PA interface {
	*A
	Component
}](s *Store, fn func(Handle, PA)) {
	nameA := componentName[A, PA]()
	s.each(func(h Handle, sl *slot) {
		if a := lookup[PA](sl, nameA); a != nil {
			fn(h, a)
		}
	})
}

// With2 calls fn for every entity that has both A and B.
func With2[A, B any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}](s *Store, fn func(Handle, PA, PB)) {
	nameA, nameB := componentName[A, PA](), componentName[B, PB]()
	s.each(func(h Handle, sl *slot) {
		a := lookup[PA](sl, nameA)
		if a == nil {
			return
		}
		b := lookup[PB](sl, nameB)
		if b == nil {
			return
		}
		fn(h, a, b)
	})
}

// With3 calls fn for every entity that has A, B and C.
func With3[A, B, C any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}, PC interface {
	*C
	Component
}](s *Store, fn func(Handle, PA, PB, PC)) {
	nameA, nameB, nameC := componentName[A, PA](), componentName[B, PB](), componentName[C, PC]()
	s.each(func(h Handle, sl *slot) {
		a := lookup[PA](sl, nameA)
		if a == nil {
			return
		}
		b := lookup[PB](sl, nameB)
		if b == nil {
			return
		}
		c := lookup[PC](sl, nameC)
		if c == nil {
			return
		}
		fn(h, a, b, c)
	})
}

// Any2 calls fn for every entity that has A or B. The absent one is nil.
func Any2[A, B any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}](s *Store, fn func(Handle, PA, PB)) {
	nameA, nameB := componentName[A, PA](), componentName[B, PB]()
	s.each(func(h Handle, sl *slot) {
		a := lookup[PA](sl, nameA)
		b := lookup[PB](sl, nameB)
		if a != nil || b != nil {
			fn(h, a, b)
		}
	})
}

// Any3 calls fn for every entity that has at least one of A, B or C. Absent
// components are passed as nil.
func Any3[A, B, C any, PA interface {
	*A
	Component
}, PB interface {
	*B
	Component
}, PC interface {
	*C
	Component
}](s *Store, fn func(Handle, PA, PB, PC)) {
	nameA, nameB, nameC := componentName[A, PA](), componentName[B, PB](), componentName[C, PC]()
	s.each(func(h Handle, sl *slot) {
		a := lookup[PA](sl, nameA)
		b := lookup[PB](sl, nameB)
		c := lookup[PC](sl, nameC)
		if a != nil || b != nil || c != nil {
			fn(h, a, b, c)
		}
	})
}

// Matching returns the handles of entities that have every named component.
func (s *Store) Matching(names ...string) []Handle {
	var handles []Handle
	s.each(func(h Handle, sl *slot) {
		for _, name := range names {
			if sl.find(name) < 0 {
				return
			}
		}
		handles = append(handles, h)
	})
	return handles
}

// MatchingAny returns the handles of entities that have at least one of the
// named components.
func (s *Store) MatchingAny(names ...string) []Handle {
	var handles []Handle
	s.each(func(h Handle, sl *slot) {
		for _, name := range names {
			if sl.find(name) >= 0 {
				handles = append(handles, h)
				return
			}
		}
	})
	return handles
}
