package ecs

import (
	"testing"
	"time"
)

type statsComponent struct {
	BaseComponent
}

func (*statsComponent) ComponentName() string { return "statsComponent" }

type otherStatsComponent struct {
	BaseComponent
}

func (*otherStatsComponent) ComponentName() string { return "otherStatsComponent" }

func TestStoreStats(t *testing.T) {
	store := NewStore(nil)

	stats := store.CollectStats()
	if stats.EntityCount != 0 {
		t.Errorf("expected 0 entities, got %d", stats.EntityCount)
	}
	if stats.SlotCount != 0 {
		t.Errorf("expected 0 slots, got %d", stats.SlotCount)
	}
	if len(stats.ComponentCounts) != 0 {
		t.Errorf("expected no component counts, got %+v", stats.ComponentCounts)
	}

	store.CreateWith(&statsComponent{}, &otherStatsComponent{})
	doomed, _ := store.CreateWith(&statsComponent{})
	store.CreateWith(&statsComponent{})
	store.Create()
	store.Destroy(doomed)

	store.AddSystem(&statsSystem{name: "render"})
	store.AddSystem(&statsSystem{name: "input"})

	stats = store.CollectStats()

	if stats.EntityCount != 3 {
		t.Errorf("expected 3 entities, got %d", stats.EntityCount)
	}
	if stats.SlotCount != 4 {
		t.Errorf("expected 4 slots, got %d", stats.SlotCount)
	}
	if stats.FreeCount != 1 {
		t.Errorf("expected 1 free slot, got %d", stats.FreeCount)
	}
	if stats.SystemCount != 2 {
		t.Errorf("expected 2 systems, got %d", stats.SystemCount)
	}
	if len(stats.SystemNames) != 2 || stats.SystemNames[0] != "render" || stats.SystemNames[1] != "input" {
		t.Errorf("system names not in registration order: %v", stats.SystemNames)
	}

	expected := []ComponentCount{
		{Name: "otherStatsComponent", Count: 1},
		{Name: "statsComponent", Count: 2},
	}
	if len(stats.ComponentCounts) != len(expected) {
		t.Fatalf("component breakdown incorrect: %+v", stats.ComponentCounts)
	}
	for i, want := range expected {
		if stats.ComponentCounts[i] != want {
			t.Errorf("component count %d: expected %+v, got %+v", i, want, stats.ComponentCounts[i])
		}
	}
}

type statsSystem struct {
	BaseSystem
	name         string
	executeCount int
	sleepDur     time.Duration
}

func (s *statsSystem) SystemName() string { return s.name }

func (s *statsSystem) Update(frame *UpdateFrame) {
	s.executeCount++
	if s.sleepDur > 0 {
		time.Sleep(s.sleepDur)
	}
}

func TestSchedulerStats(t *testing.T) {
	store := NewStore(nil)
	scheduler := NewScheduler(store)

	stats := scheduler.GetStats()
	if stats.SystemCount != 0 {
		t.Errorf("expected 0 systems, got %d", stats.SystemCount)
	}
	if stats.TotalExecutions != 0 {
		t.Errorf("expected 0 total executions, got %d", stats.TotalExecutions)
	}

	sys1 := &statsSystem{name: "fast", sleepDur: 1 * time.Millisecond}
	sys2 := &statsSystem{name: "slow", sleepDur: 2 * time.Millisecond}
	store.AddSystem(sys1)
	store.AddSystem(sys2)

	scheduler.Once(0.016)
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	stats = scheduler.GetStats()

	if stats.SystemCount != 2 {
		t.Errorf("expected 2 systems, got %d", stats.SystemCount)
	}

	if stats.TotalExecutions != 6 {
		t.Errorf("expected 6 total executions (2 systems * 3 runs), got %d", stats.TotalExecutions)
	}

	if len(stats.Systems) != 2 {
		t.Fatalf("expected 2 system stats, got %d", len(stats.Systems))
	}

	for i, name := range []string{"fast", "slow"} {
		sysStats := stats.Systems[i]
		if sysStats.Name != name {
			t.Errorf("expected system name '%s', got '%s'", name, sysStats.Name)
		}

		if sysStats.ExecutionCount != 3 {
			t.Errorf("expected 3 executions, got %d", sysStats.ExecutionCount)
		}

		if sysStats.MinDuration == 0 {
			t.Errorf("expected non-zero min duration")
		}

		if sysStats.MaxDuration == 0 {
			t.Errorf("expected non-zero max duration")
		}

		if sysStats.AvgDuration == 0 {
			t.Errorf("expected non-zero avg duration")
		}

		if sysStats.LastDuration == 0 {
			t.Errorf("expected non-zero last duration")
		}

		if sysStats.TotalDuration == 0 {
			t.Errorf("expected non-zero total duration")
		}

		if sysStats.MinDuration > sysStats.AvgDuration {
			t.Errorf("min duration (%v) should be <= avg duration (%v)", sysStats.MinDuration, sysStats.AvgDuration)
		}

		if sysStats.AvgDuration > sysStats.MaxDuration {
			t.Errorf("avg duration (%v) should be <= max duration (%v)", sysStats.AvgDuration, sysStats.MaxDuration)
		}
	}

	if sys1.executeCount != 3 {
		t.Errorf("expected sys1 to execute 3 times, got %d", sys1.executeCount)
	}

	if sys2.executeCount != 3 {
		t.Errorf("expected sys2 to execute 3 times, got %d", sys2.executeCount)
	}
}
