package ecs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Updater is implemented by systems that do per-frame work.
type Updater interface {
	Update(frame *UpdateFrame)
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler runs the store's Updater systems in registration order. Systems
// added or removed between frames are picked up on the next frame.
type Scheduler struct {
	store       *Store
	systemStats []*systemStatsInternal
	byName      map[string]*systemStatsInternal
}

// NewScheduler creates a new scheduler for the given store.
func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{
		store:  store,
		byName: make(map[string]*systemStatsInternal),
	}
}

func (s *Scheduler) statsFor(name string) *systemStatsInternal {
	stats, ok := s.byName[name]
	if !ok {
		stats = &systemStatsInternal{
			name:        name,
			minDuration: time.Duration(1<<63 - 1),
		}
		s.byName[name] = stats
		s.systemStats = append(s.systemStats, stats)
	}
	return stats
}

// Once executes every Updater once with the given delta time, then flushes the
// frame's command buffer. Flush errors are returned after all systems ran.
func (s *Scheduler) Once(dt float64) error {
	frame := newUpdateFrame(dt, s.store)

	for _, system := range s.store.Systems() {
		updater, ok := system.(Updater)
		if !ok {
			continue
		}

		start := time.Now()
		updater.Update(frame)
		duration := time.Since(start)

		stats := s.statsFor(system.SystemName())
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	return frame.Commands.Flush(s.store)
}

// Run executes all systems repeatedly at the given interval until the context
// is cancelled. Flush errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				s.store.log.Warn("frame commands failed", zap.Error(err))
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systemStats),
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
