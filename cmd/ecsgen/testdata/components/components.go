package components

import (
	"io"

	"github.com/plus3/entstore/ecs"
)

type Position struct {
	ecs.BaseComponent
	X, Y float32
}

func (*Position) ComponentName() string { return "Position" }

func (p *Position) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, [2]float32{p.X, p.Y})
}

const armorName = "Armor"

type Armor struct {
	ecs.BaseComponent
	Rating int32
}

func (*Armor) ComponentName() string { return armorName }

// Marker has a computed name, so the generator cannot annotate it.
type Marker struct {
	ecs.BaseComponent
	kind string
}

func (m *Marker) ComponentName() string {
	name := "Marker"
	return name
}

// NotAComponent has the method but does not embed BaseComponent.
type NotAComponent struct{}

func (*NotAComponent) ComponentName() string { return "NotAComponent" }

// WrongSignature embeds BaseComponent but its method returns an int.
type WrongSignature struct {
	ecs.BaseComponent
}

func (*WrongSignature) ComponentName() int { return 0 }

type Alias = Position
