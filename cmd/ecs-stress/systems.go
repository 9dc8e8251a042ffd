package main

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/entstore/ecs"
)

// MovementSystem integrates Velocity into Position.
type MovementSystem struct {
	ecs.BaseSystem
}

func (*MovementSystem) SystemName() string { return "MovementSystem" }

func (s *MovementSystem) Update(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	ecs.With2(frame.Store, func(_ ecs.Handle, p *Position, v *Velocity) {
		p.X += v.DX * dt
		p.Y += v.DY * dt
	})
}

// LifetimeSystem counts down every Lifetime and queues the destruction of
// entities whose time ran out.
type LifetimeSystem struct {
	ecs.BaseSystem
	Expired int64
}

func (*LifetimeSystem) SystemName() string { return "LifetimeSystem" }

func (s *LifetimeSystem) Update(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	ecs.With(frame.Store, func(h ecs.Handle, l *Lifetime) {
		if l.Remaining <= 0 {
			return
		}
		l.Remaining -= dt
		if l.Remaining <= 0 {
			frame.Commands.Destroy(h)
			s.Expired++
		}
	})
}

// ChurnSystem queues PerFrame random structural changes each frame so the
// free list, generations and component slices are constantly exercised.
type ChurnSystem struct {
	ecs.BaseSystem
	PerFrame      int
	MaxComponents int
	Rand          *rand.Rand

	Queued  int64
	handles []ecs.Handle
}

func (*ChurnSystem) SystemName() string { return "ChurnSystem" }

const (
	churnCreate = iota
	churnDestroy
	churnAdd
	churnRemove
	churnOps
)

func (s *ChurnSystem) Update(frame *ecs.UpdateFrame) {
	s.handles = s.handles[:0]
	for h := range frame.Store.All() {
		s.handles = append(s.handles, h)
	}

	// Leave room for everything queued this frame.
	room := ecs.MaxEntities - len(s.handles) - s.PerFrame
	for range s.PerFrame {
		op := s.Rand.IntN(churnOps)
		if len(s.handles) == 0 {
			op = churnCreate
		}

		switch op {
		case churnCreate:
			if room <= 0 {
				continue
			}
			room--
			frame.Commands.Create(randomComponents(s.Rand, s.MaxComponents)...)
		case churnDestroy:
			frame.Commands.Destroy(s.pick())
		case churnAdd:
			c := componentFactories[s.Rand.IntN(len(componentFactories))](s.Rand)
			h := s.pick()
			if frame.Store.HasComponents(h, c.ComponentName()) {
				continue
			}
			frame.Commands.AddComponent(h, c)
		case churnRemove:
			h := s.pick()
			names := frame.Store.Entity(h).ComponentNames()
			if len(names) == 0 {
				continue
			}
			frame.Commands.RemoveComponent(h, names[s.Rand.IntN(len(names))])
		}
		s.Queued++
	}
}

func (s *ChurnSystem) pick() ecs.Handle {
	return s.handles[s.Rand.IntN(len(s.handles))]
}

// SnapshotStats summarizes the save/load round-trips of a run.
type SnapshotStats struct {
	RoundTrips int64 `yaml:"round_trips"`
	Mismatches int64 `yaml:"mismatches"`
	LastBytes  int   `yaml:"last_bytes"`
	LastLen    int   `yaml:"last_entities"`
	Save       Stats `yaml:"save"`
	Load       Stats `yaml:"load"`
}

// SnapshotSystem serializes the store every Every frames, loads the stream
// into a second store and checks that saving that store reproduces the same
// bytes. When Path is set the snapshot is also written to disk.
type SnapshotSystem struct {
	ecs.BaseSystem
	Every int
	Path  string
	Log   *zap.Logger

	Stats  SnapshotStats
	frame  int
	buf    bytes.Buffer
	check  bytes.Buffer
	verify *ecs.Store
}

func (*SnapshotSystem) SystemName() string { return "SnapshotSystem" }

func (s *SnapshotSystem) Update(frame *ecs.UpdateFrame) {
	if s.Every <= 0 {
		return
	}
	s.frame++
	if s.frame%s.Every != 0 {
		return
	}
	if err := s.RoundTrip(frame.Store); err != nil {
		s.Stats.Mismatches++
		s.Log.Error("snapshot round-trip failed", zap.Int("frame", s.frame), zap.Error(err))
	}
}

// RoundTrip saves store, reloads it and compares the re-saved bytes.
func (s *SnapshotSystem) RoundTrip(store *ecs.Store) error {
	if s.verify == nil {
		s.verify = ecs.NewStore(store.Registry())
	}

	s.buf.Reset()
	start := time.Now()
	if err := store.Serialize(&s.buf); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.Stats.Save.Samples = append(s.Stats.Save.Samples, time.Since(start))

	start = time.Now()
	if err := s.verify.Deserialize(bytes.NewReader(s.buf.Bytes())); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.Stats.Load.Samples = append(s.Stats.Load.Samples, time.Since(start))

	s.check.Reset()
	if err := s.verify.Serialize(&s.check); err != nil {
		return fmt.Errorf("re-save: %w", err)
	}
	if s.verify.Len() != store.Len() {
		return fmt.Errorf("loaded %d entities, saved %d", s.verify.Len(), store.Len())
	}
	if !bytes.Equal(s.buf.Bytes(), s.check.Bytes()) {
		return fmt.Errorf("re-saved stream differs: %d bytes vs %d", s.check.Len(), s.buf.Len())
	}
	unresolved := 0
	ecs.With(s.verify, func(h ecs.Handle, st *Steering) {
		if !st.Resolved() && s.verify.HasComponents(h, "Position", "Velocity") {
			unresolved++
		}
	})
	if unresolved > 0 {
		return fmt.Errorf("%d loaded Steering components missed their siblings", unresolved)
	}

	s.Stats.RoundTrips++
	s.Stats.LastBytes = s.buf.Len()
	s.Stats.LastLen = store.Len()

	if s.Path != "" {
		if err := writeFileAtomic(s.Path, s.buf.Bytes()); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	return nil
}

// writeFileAtomic replaces path via a temporary file in the same directory so
// watchers never see a partial snapshot.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
