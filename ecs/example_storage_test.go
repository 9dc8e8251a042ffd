package ecs_test

import (
	"fmt"

	"github.com/plus3/entstore/ecs"
)

// ExampleStore demonstrates the basic API for managing entities and components.
// A Store hands out generational handles; a handle kept after its entity is
// destroyed never resolves to a later occupant of the same slot.
func ExampleStore() {
	store := ecs.NewStore(nil)

	player, err := store.CreateWith(&Transform{X: 10, Y: 20}, &Label{Text: "player"})
	if err != nil {
		panic(err)
	}

	transform := ecs.GetComponent[Transform](store, player)
	fmt.Printf("Player created at (%.0f, %.0f)\n", transform.X, transform.Y)

	transform.X = 15
	transform.Y = 25
	fmt.Printf("Player moved to (%.0f, %.0f)\n", transform.X, transform.Y)

	store.Destroy(player)
	fmt.Println("Player destroyed:", !store.IsValid(player))

	reused := store.Create()
	fmt.Println("Slot reused:", reused.Index() == player.Index(), "stale handle valid:", store.IsValid(player))

	// Output:
	// Player created at (10, 20)
	// Player moved to (15, 25)
	// Player destroyed: true
	// Slot reused: true stale handle valid: false
}

// ExampleStore_addRemoveComponents shows components being attached and detached
// one at a time. An entity carries at most one component per name.
func ExampleStore_addRemoveComponents() {
	store := ecs.NewStore(nil)
	entity := store.Create()

	fmt.Printf("Has transform: %v\n", ecs.Has[Transform](store, entity))

	ecs.AddComponent(store, entity, &Transform{X: 5, Y: 3})
	transform := ecs.GetComponent[Transform](store, entity)
	fmt.Printf("Has transform: %v (%.0f, %.0f)\n", transform != nil, transform.X, transform.Y)

	_, err := ecs.AddComponent(store, entity, &Transform{})
	fmt.Println("Second transform:", err)

	ecs.AddComponent(store, entity, &Label{Text: "crate"})
	fmt.Println("Components:", store.Entity(entity).ComponentNames())

	ecs.RemoveComponent[Transform](store, entity)
	fmt.Printf("Has transform: %v\n", ecs.Has[Transform](store, entity))

	// Output:
	// Has transform: false
	// Has transform: true (5, 3)
	// Second transform: add Transform to entity 0:1: component already attached
	// Components: [Transform Label]
	// Has transform: false
}
