package ecs_test

import (
	"io"

	"github.com/plus3/entstore/ecs"
)

// Common test component types

type Dummy struct {
	ecs.BaseComponent
}

func (*Dummy) ComponentName() string { return "Dummy" }

type Physics struct {
	ecs.BaseComponent
}

func (*Physics) ComponentName() string { return "Physics" }

type Transform struct {
	ecs.BaseComponent
	X, Y float32
}

func (*Transform) ComponentName() string { return "Transform" }

func (t *Transform) Serialize(w io.Writer) error {
	return ecs.WriteValue(w, [2]float32{t.X, t.Y})
}

func (t *Transform) Deserialize(r io.Reader) error {
	var xy [2]float32
	if err := ecs.ReadValue(r, &xy); err != nil {
		return err
	}
	t.X, t.Y = xy[0], xy[1]
	return nil
}

type Label struct {
	ecs.BaseComponent
	Text string
}

func (*Label) ComponentName() string { return "Label" }

func (l *Label) Serialize(w io.Writer) error {
	return ecs.WriteString(w, l.Text)
}

func (l *Label) Deserialize(r io.Reader) error {
	text, err := ecs.ReadString(r)
	l.Text = text
	return err
}

// Follower captures a pointer to its sibling Transform once dependencies are
// resolved, counting how often each hook fired.
type Follower struct {
	ecs.BaseComponent
	Target        *Transform
	Loads         int
	Resolves      int
	TargetAtLoad  *Transform
	DestroyCalled int
}

func (*Follower) ComponentName() string { return "Follower" }

func (f *Follower) OnLoad() {
	f.Loads++
	f.TargetAtLoad = ecs.GetComponent[Transform](f.Store(), f.Entity())
}

func (f *Follower) OnResolveDependencies() {
	f.Resolves++
	f.Target = ecs.GetComponent[Transform](f.Store(), f.Entity())
}

func (f *Follower) OnDestroy() {
	f.DestroyCalled++
}

// Watcher has no OnLoad, so attaching it runs OnResolveDependencies directly.
type Watcher struct {
	ecs.BaseComponent
	Resolves int
}

func (*Watcher) ComponentName() string { return "Watcher" }

func (w *Watcher) OnResolveDependencies() { w.Resolves++ }

// Unregistered is never added to the test registry.
type Unregistered struct {
	ecs.BaseComponent
}

func (*Unregistered) ComponentName() string { return "Unregistered" }

// WorldStateSystem holds opaque pointers to externally owned state.
type WorldStateSystem struct {
	ecs.BaseSystem
	InputState   *byte
	NetworkState *byte
}

func (*WorldStateSystem) SystemName() string { return "WorldStateSystem" }

// GridMapSystem looks up WorldStateSystem after all systems are registered.
type GridMapSystem struct {
	ecs.BaseSystem
	WorldState *WorldStateSystem
	Loaded     bool
	Destroyed  bool
}

func (*GridMapSystem) SystemName() string { return "GridMapSystem" }

func (g *GridMapSystem) OnLoad() { g.Loaded = true }

func (g *GridMapSystem) OnResolveDependencies() {
	g.WorldState = ecs.GetSystem[WorldStateSystem](g.Store())
}

func (g *GridMapSystem) OnDestroy() { g.Destroyed = true }

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Dummy](registry)
	ecs.RegisterComponent[Physics](registry)
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Follower](registry)
	ecs.RegisterComponent[Watcher](registry)
	return registry
}

func newTestStore() *ecs.Store {
	return ecs.NewStore(newTestRegistry())
}
