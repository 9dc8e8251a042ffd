package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/plus3/entstore/ecs"
	"github.com/plus3/entstore/internal/snapwatch"
)

// reloader loads snapshot files into a private store whenever they change on
// disk. It runs on its own goroutine and only shares the registry, which is
// read-only once the run starts.
type reloader struct {
	registry *ecs.ComponentRegistry
	log      *zap.Logger

	loaded   atomic.Int64
	failed   atomic.Int64
	entities atomic.Int64
}

func (r *reloader) reload(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	store := ecs.NewStore(r.registry, ecs.WithLogger(r.log))
	if err := store.Deserialize(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	r.entities.Store(int64(store.Len()))
	return nil
}

// watch consumes w until it is closed.
func (r *reloader) watch(w *snapwatch.Watcher) {
	events, errs := w.Events, w.Errors
	for events != nil || errs != nil {
		select {
		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := r.reload(path); err != nil {
				r.failed.Add(1)
				r.log.Warn("snapshot reload failed", zap.Error(err))
				continue
			}
			r.loaded.Add(1)
			r.log.Debug("snapshot reloaded", zap.String("path", path), zap.Int64("entities", r.entities.Load()))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.log.Warn("snapshot watcher error", zap.Error(err))
		}
	}
}

func (r *reloader) stats() ReloadStats {
	return ReloadStats{
		Loaded:   r.loaded.Load(),
		Failed:   r.failed.Load(),
		Entities: int(r.entities.Load()),
	}
}
