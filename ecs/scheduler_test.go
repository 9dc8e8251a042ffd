package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/entstore/ecs"
)

// Velocity is a per-second displacement applied by MovementSystem.
type Velocity struct {
	ecs.BaseComponent
	DX, DY float32
}

func (*Velocity) ComponentName() string { return "Velocity" }

type MovementSystem struct {
	ecs.BaseSystem
	ExecuteCount int
}

func (*MovementSystem) SystemName() string { return "MovementSystem" }

func (s *MovementSystem) Update(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	ecs.With2(frame.Store, func(_ ecs.Handle, transform *Transform, velocity *Velocity) {
		transform.X += velocity.DX * float32(frame.DeltaTime)
		transform.Y += velocity.DY * float32(frame.DeltaTime)
	})
}

type LabelCountSystem struct {
	ecs.BaseSystem
	ExecuteCount int
	Labels       int
}

func (*LabelCountSystem) SystemName() string { return "LabelCountSystem" }

func (s *LabelCountSystem) Update(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.Labels = 0
	ecs.With(frame.Store, func(ecs.Handle, *Label) { s.Labels++ })
}

func mustAddSystem[PS ecs.System](t *testing.T, store *ecs.Store, sys PS) PS {
	t.Helper()
	added, err := ecs.AddSystem(store, sys)
	if err != nil {
		t.Fatalf("add system: %v", err)
	}
	return added
}

func TestScheduler(t *testing.T) {
	t.Run("system execution order", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		var order []string
		mustAddSystem(t, store, &commandSystem{name: "first", queue: func(*ecs.Commands) { order = append(order, "first") }})
		movement := mustAddSystem(t, store, &MovementSystem{})
		labels := mustAddSystem(t, store, &LabelCountSystem{})
		mustAddSystem(t, store, &commandSystem{name: "last", queue: func(*ecs.Commands) { order = append(order, "last") }})
		// Systems without Update are skipped.
		mustAddSystem(t, store, &WorldStateSystem{})

		store.CreateWith(&Transform{}, &Velocity{DX: 1, DY: 2})
		store.CreateWith(&Label{})

		scheduler.Once(1.0)

		if movement.ExecuteCount != 1 {
			t.Errorf("expected MovementSystem to execute once, got %d", movement.ExecuteCount)
		}
		if labels.ExecuteCount != 1 {
			t.Errorf("expected LabelCountSystem to execute once, got %d", labels.ExecuteCount)
		}

		scheduler.Once(1.0)

		if movement.ExecuteCount != 2 {
			t.Errorf("expected MovementSystem to execute twice, got %d", movement.ExecuteCount)
		}
		if len(order) != 4 || order[0] != "first" || order[1] != "last" {
			t.Errorf("unexpected execution order %v", order)
		}
	})

	t.Run("custom state persistence", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		store.CreateWith(&Label{Text: "a"})
		store.CreateWith(&Label{Text: "b"})

		labels := mustAddSystem(t, store, &LabelCountSystem{})

		scheduler.Once(1.0)
		if labels.Labels != 2 {
			t.Errorf("expected 2 labels, got %d", labels.Labels)
		}

		store.CreateWith(&Label{Text: "c"})

		scheduler.Once(1.0)
		if labels.Labels != 3 {
			t.Errorf("expected 3 labels, got %d", labels.Labels)
		}
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		movement := mustAddSystem(t, store, &MovementSystem{})

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan bool)
		go func() {
			scheduler.Run(ctx, 1*time.Millisecond)
			done <- true
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("scheduler did not stop after context cancellation")
		}

		if movement.ExecuteCount == 0 {
			t.Error("expected system to execute at least once")
		}
	})

	t.Run("delta time calculation", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		h, _ := store.CreateWith(&Transform{}, &Velocity{DX: 10, DY: 20})
		mustAddSystem(t, store, &MovementSystem{})

		scheduler.Once(0.5)

		transform := ecs.GetComponent[Transform](store, h)
		if transform.X != 5.0 || transform.Y != 10.0 {
			t.Errorf("expected position (5, 10), got (%v, %v)", transform.X, transform.Y)
		}
	})

	t.Run("commands integration", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		create := mustAddSystem(t, store, &commandSystem{name: "create", queue: func(c *ecs.Commands) {
			c.Create(&Label{})
		}})

		scheduler.Once(1.0)
		if !create.executed {
			t.Error("expected create system to execute")
		}

		labels := mustAddSystem(t, store, &LabelCountSystem{})
		scheduler.Once(1.0)

		// The label queued during this frame is not visible until the flush.
		if labels.Labels != 1 {
			t.Errorf("expected 1 label visible during the second frame, got %d", labels.Labels)
		}
		if store.Len() != 2 {
			t.Errorf("expected 2 entities after two flushes, got %d", store.Len())
		}
	})

	t.Run("removed systems stop running", func(t *testing.T) {
		store := newTestStore()
		scheduler := ecs.NewScheduler(store)

		movement := mustAddSystem(t, store, &MovementSystem{})
		scheduler.Once(1.0)

		if err := ecs.RemoveSystem[MovementSystem](store); err != nil {
			t.Fatalf("remove system: %v", err)
		}
		scheduler.Once(1.0)

		if movement.ExecuteCount != 1 {
			t.Errorf("expected removed system to stay at 1 execution, got %d", movement.ExecuteCount)
		}
	})
}
