package ecs_test

import (
	"bytes"
	"fmt"

	"github.com/plus3/entstore/ecs"
)

// ExampleStore_Serialize saves a store and loads it into a fresh one. Handles
// taken before the save refer to the same entities after the load.
func ExampleStore_Serialize() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Label](registry)

	store := ecs.NewStore(registry)
	store.Create()
	crate, _ := store.CreateWith(&Transform{X: 3, Y: 4}, &Label{Text: "crate"})
	store.Destroy(ecs.NewHandle(0, 1))

	var buf bytes.Buffer
	if err := store.Serialize(&buf); err != nil {
		panic(err)
	}
	fmt.Printf("% x\n", buf.Bytes()[:5])

	loaded := ecs.NewStore(registry)
	if err := loaded.Deserialize(&buf); err != nil {
		panic(err)
	}

	transform := ecs.GetComponent[Transform](loaded, crate)
	label := ecs.GetComponent[Label](loaded, crate)
	fmt.Printf("%s %s at (%.0f, %.0f)\n", crate, label.Text, transform.X, transform.Y)
	fmt.Println("Entities:", loaded.Len())

	// Output:
	// 7b 01 00 01 00
	// 1:1 crate at (3, 4)
	// Entities: 1
}
