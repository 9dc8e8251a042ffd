package main

import (
	"io"
	"math/rand/v2"

	"github.com/plus3/entstore/ecs"
)

//go:generate go run github.com/plus3/entstore/cmd/ecsgen -out components_gen.go

type Position struct {
	ecs.BaseComponent
	X, Y float32
}

func (*Position) ComponentName() string { return "Position" }

func (p *Position) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, [2]float32{p.X, p.Y})
}

func (p *Position) Deserialize(r io.Reader) error {
	var v [2]float32
	if err := ecs.ReadValue(r, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

type Velocity struct {
	ecs.BaseComponent
	DX, DY float32
}

func (*Velocity) ComponentName() string { return "Velocity" }

func (v *Velocity) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, [2]float32{v.DX, v.DY})
}

func (v *Velocity) Deserialize(r io.Reader) error {
	var d [2]float32
	if err := ecs.ReadValue(r, &d); err != nil {
		return err
	}
	v.DX, v.DY = d[0], d[1]
	return nil
}

type Health struct {
	ecs.BaseComponent
	Current, Max int32
}

func (*Health) ComponentName() string { return "Health" }

func (h *Health) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, [2]int32{h.Current, h.Max})
}

func (h *Health) Deserialize(r io.Reader) error {
	var v [2]int32
	if err := ecs.ReadValue(r, &v); err != nil {
		return err
	}
	h.Current, h.Max = v[0], v[1]
	return nil
}

type Name struct {
	ecs.BaseComponent
	Value string
}

func (*Name) ComponentName() string { return "Name" }

func (n *Name) Serialize(w io.Writer) error {
	return ecs.WriteString(w, n.Value)
}

func (n *Name) Deserialize(r io.Reader) error {
	value, err := ecs.ReadString(r)
	n.Value = value
	return err
}

// Lifetime destroys its entity once Remaining seconds have elapsed.
type Lifetime struct {
	ecs.BaseComponent
	Remaining float32
}

func (*Lifetime) ComponentName() string { return "Lifetime" }

func (l *Lifetime) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, l.Remaining)
}

func (l *Lifetime) Deserialize(r io.Reader) error {
	return ecs.ReadValue(r, &l.Remaining)
}

// Tag has no payload.
type Tag struct {
	ecs.BaseComponent
}

func (*Tag) ComponentName() string { return "Tag" }

// Steering caches its entity's Position and Velocity during dependency
// resolution, exercising the second construction pass on every load.
type Steering struct {
	ecs.BaseComponent
	position *Position
	velocity *Velocity
}

func (*Steering) ComponentName() string { return "Steering" }

func (s *Steering) OnResolveDependencies() {
	s.position = ecs.GetComponent[Position](s.Store(), s.Entity())
	s.velocity = ecs.GetComponent[Velocity](s.Store(), s.Entity())
}

// Resolved reports whether both siblings were found.
func (s *Steering) Resolved() bool {
	return s.position != nil && s.velocity != nil
}

var names = []string{"crate", "goblin", "torch", "door", "chest", "slime", "arrow"}

// componentFactories build randomized instances of every stress component.
var componentFactories = []func(r *rand.Rand) ecs.Component{
	func(r *rand.Rand) ecs.Component {
		return &Position{X: r.Float32() * 1000, Y: r.Float32() * 1000}
	},
	func(r *rand.Rand) ecs.Component {
		return &Velocity{DX: r.Float32()*20 - 10, DY: r.Float32()*20 - 10}
	},
	func(r *rand.Rand) ecs.Component {
		hp := int32(r.IntN(200) + 1)
		return &Health{Current: hp, Max: hp}
	},
	func(r *rand.Rand) ecs.Component {
		return &Name{Value: names[r.IntN(len(names))]}
	},
	func(r *rand.Rand) ecs.Component {
		return &Lifetime{Remaining: r.Float32() * 5}
	},
	func(r *rand.Rand) ecs.Component {
		return &Tag{}
	},
	func(r *rand.Rand) ecs.Component {
		return &Steering{}
	},
}

// randomComponents returns between 1 and n components of distinct types.
func randomComponents(r *rand.Rand, n int) []ecs.Component {
	count := r.IntN(min(n, len(componentFactories))) + 1
	components := make([]ecs.Component, 0, count)
	for _, i := range r.Perm(len(componentFactories))[:count] {
		components = append(components, componentFactories[i](r))
	}
	return components
}
