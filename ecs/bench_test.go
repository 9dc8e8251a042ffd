package ecs_test

import (
	"bytes"
	"testing"

	"github.com/plus3/entstore/ecs"
)

func BenchmarkCreate(b *testing.B) {
	store := newTestStore()

	live := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if live == ecs.MaxEntities {
			b.StopTimer()
			store.DestroyAll()
			live = 0
			b.StartTimer()
		}
		store.Create()
		live++
	}
}

func BenchmarkCreateWithMultipleComponents(b *testing.B) {
	store := newTestStore()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, _ := store.CreateWith(
			&Transform{X: 1.0, Y: 2.0},
			&Velocity{DX: 0.5, DY: 0.5},
			&Health{Current: 100, Max: 100},
			&Label{Text: "Entity"},
		)
		store.Destroy(h)
	}
}

func BenchmarkCreateDestroy(b *testing.B) {
	store := newTestStore()
	for range 1000 {
		store.Create()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Destroy(store.Create())
	}
}

func BenchmarkGetComponent(b *testing.B) {
	store := newTestStore()
	h, _ := store.CreateWith(&Transform{X: 1.0, Y: 2.0}, &Velocity{DX: 0.5, DY: 0.5}, &Label{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.GetComponent[Label](store, h)
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	store := newTestStore()
	h, _ := store.CreateWith(&Transform{X: 1.0, Y: 2.0})
	velocity := &Velocity{DX: 0.5, DY: 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.AddComponent(store, h, velocity)
		ecs.RemoveComponent[Velocity](store, h)
	}
}

func populate(b *testing.B, n int) *ecs.Store {
	b.Helper()
	store := newTestStore()
	for i := range n {
		components := []ecs.Component{&Transform{X: float32(i)}}
		if i%2 == 0 {
			components = append(components, &Velocity{DX: 1, DY: 1})
		}
		if i%5 == 0 {
			components = append(components, &Label{Text: "tagged"})
		}
		if _, err := store.CreateWith(components...); err != nil {
			b.Fatal(err)
		}
	}
	return store
}

func BenchmarkWith2(b *testing.B) {
	store := populate(b, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.With2(store, func(_ ecs.Handle, transform *Transform, velocity *Velocity) {
			transform.X += velocity.DX
		})
	}
}

func BenchmarkWith2Large(b *testing.B) {
	store := populate(b, 50000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.With2(store, func(_ ecs.Handle, transform *Transform, velocity *Velocity) {
			transform.X += velocity.DX
		})
	}
}

func BenchmarkMatching(b *testing.B) {
	store := populate(b, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Matching("Transform", "Label")
	}
}

func BenchmarkSerialize(b *testing.B) {
	store := populate(b, 10000)
	var buf bytes.Buffer

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := store.Serialize(&buf); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(buf.Len()))
}

func BenchmarkDeserialize(b *testing.B) {
	var buf bytes.Buffer
	if err := populate(b, 10000).Serialize(&buf); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()
	b.SetBytes(int64(len(data)))

	registry := newTestRegistry()
	ecs.RegisterComponent[Velocity](registry)
	store := ecs.NewStore(registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := store.Deserialize(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	store := populate(b, 1000)
	ecs.AddSystem(store, &MovementSystem{})
	scheduler := ecs.NewScheduler(store)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduler.Once(0.016)
	}
}

func BenchmarkSchedulerMultipleSystems(b *testing.B) {
	store := populate(b, 1000)
	ecs.AddSystem(store, &MovementSystem{})
	ecs.AddSystem(store, &LabelCountSystem{})
	ecs.AddSystem(store, &commandSystem{name: "churn", queue: func(c *ecs.Commands) {
		c.Defer(func() {})
	}})
	scheduler := ecs.NewScheduler(store)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduler.Once(0.016)
	}
}
