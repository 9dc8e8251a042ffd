package ecs_test

import (
	"bytes"
	"testing"

	"github.com/plus3/entstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := newTestRegistry()

	assert.True(t, registry.IsRegistered("Transform"))
	assert.False(t, registry.IsRegistered("Unregistered"))
	assert.False(t, registry.IsRegistered(""))
	assert.Equal(t,
		[]string{"Dummy", "Physics", "Transform", "Label", "Follower", "Watcher"},
		registry.Names())

	// Names returns a copy.
	names := registry.Names()
	names[0] = "changed"
	assert.Equal(t, "Dummy", registry.Names()[0])
}

func TestRegistryReplacesFactory(t *testing.T) {
	registry := newTestRegistry()

	built := 0
	registry.Register("Transform", func() ecs.Component {
		built++
		return &Transform{X: 1}
	})
	assert.Len(t, registry.Names(), 6)

	store := ecs.NewStore(registry)
	_, err := store.CreateWith(&Transform{X: 9, Y: 9})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.Serialize(&buf))

	loaded := ecs.NewStore(registry)
	require.NoError(t, loaded.Deserialize(&buf))
	assert.Equal(t, 1, built)
	// The payload overwrites whatever the factory set.
	assert.Equal(t, float32(9), ecs.GetComponent[Transform](loaded, ecs.NewHandle(0, 1)).X)
}

func TestRegistryRejectsUnframeableNames(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	factory := func() ecs.Component { return &Dummy{} }

	for _, name := range []string{"", "Bad\x00Name", "Bad}Name"} {
		assert.Panics(t, func() { registry.Register(name, factory) }, "name %q", name)
	}
	assert.Empty(t, registry.Names())
}

func TestRegistrySharedByStores(t *testing.T) {
	registry := newTestRegistry()
	a := ecs.NewStore(registry)
	b := ecs.NewStore(registry)
	assert.Same(t, a.Registry(), b.Registry())

	_, err := a.CreateWith(&Label{Text: "shared"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Serialize(&buf))
	require.NoError(t, b.Deserialize(&buf))
	assert.Equal(t, []ecs.Handle{ecs.NewHandle(0, 1)}, b.Matching("Label"))
}

func TestStoreWithoutRegistryCannotLoadComponents(t *testing.T) {
	source := newTestStore()
	_, err := source.CreateWith(&Dummy{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.Serialize(&buf))

	bare := ecs.NewStore(nil)
	assert.ErrorIs(t, bare.Deserialize(&buf), ecs.ErrUnregisteredComponent)
}
