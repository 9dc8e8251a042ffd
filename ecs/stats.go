package ecs

import "sort"

// StoreStats is a point-in-time summary of a store.
type StoreStats struct {
	EntityCount     int
	SlotCount       int
	FreeCount       int
	SystemCount     int
	ComponentCounts []ComponentCount
	SystemNames     []string
}

// ComponentCount is the number of live entities carrying one component name.
type ComponentCount struct {
	Name  string
	Count int
}

// CollectStats walks the slot table and reports entity, slot and per-component
// counts. Component counts are sorted by name.
func (s *Store) CollectStats() StoreStats {
	stats := StoreStats{
		SlotCount:   len(s.slots),
		FreeCount:   len(s.freeList),
		SystemCount: len(s.systems.order),
	}

	counts := make(map[string]int)
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.occupied {
			continue
		}
		stats.EntityCount++
		for _, c := range sl.components {
			counts[c.ComponentName()]++
		}
	}

	stats.ComponentCounts = make([]ComponentCount, 0, len(counts))
	for name, count := range counts {
		stats.ComponentCounts = append(stats.ComponentCounts, ComponentCount{Name: name, Count: count})
	}
	sort.Slice(stats.ComponentCounts, func(i, j int) bool {
		return stats.ComponentCounts[i].Name < stats.ComponentCounts[j].Name
	})

	stats.SystemNames = make([]string, len(s.systems.order))
	for i, sys := range s.systems.order {
		stats.SystemNames[i] = sys.SystemName()
	}

	return stats
}
