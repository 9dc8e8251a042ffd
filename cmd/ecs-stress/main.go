package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/plus3/entstore/ecs"
	"github.com/plus3/entstore/internal/config"
	"github.com/plus3/entstore/internal/logging"
	"github.com/plus3/entstore/internal/snapwatch"
)

func main() {
	defaults := config.Defaults()

	configPath := flag.String("config", "", "Path to a TOML config file. Flags override its values.")
	duration := flag.Duration("duration", defaults.Stress.Duration, "The total duration the test should run for.")
	entityCount := flag.Int("entities", defaults.Stress.Entities, "The initial number of entities to create.")
	churn := flag.Int("churn", defaults.Stress.ChurnPerFrame, "Random structural commands queued per frame.")
	seed := flag.Int64("seed", defaults.Stress.Seed, "Random seed, 0 for a time-based one.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", defaults.Stress.GCPauseMetrics, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", defaults.Stress.Profile, "Write a cpu or mem profile.")
	snapshotEvery := flag.Int("snapshot-every", defaults.Snapshot.Every, "Frames between save/load round-trips, 0 disables.")
	snapshotPath := flag.String("snapshot", defaults.Snapshot.Path, "Also write each snapshot to this file.")
	watch := flag.Bool("watch", defaults.Snapshot.Watch, "Reload the snapshot file whenever it changes on disk.")
	format := flag.String("format", defaults.Report.Format, "Report format, text or yaml.")
	output := flag.String("o", defaults.Report.Output, "Write the report to this file instead of stdout.")
	logLevel := flag.String("log-level", defaults.Logging.Level, "Log level.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "churn":
			cfg.Stress.ChurnPerFrame = *churn
		case "seed":
			cfg.Stress.Seed = *seed
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		case "profile":
			cfg.Stress.Profile = *profileMode
		case "snapshot-every":
			cfg.Snapshot.Every = *snapshotEvery
		case "snapshot":
			cfg.Snapshot.Path = *snapshotPath
		case "watch":
			cfg.Snapshot.Watch = *watch
		case "format":
			cfg.Report.Format = *format
		case "o":
			cfg.Report.Output = *output
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("stress test failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	switch cfg.Stress.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Stress.ProfilePath), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Stress.ProfilePath), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	seed := uint64(cfg.Stress.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	log.Info("starting ECS stress test", zap.Uint64("seed", seed))

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	store := ecs.NewStore(registry, ecs.WithLogger(log.Named("store")), ecs.WithCapacity(cfg.Stress.Entities))
	scheduler := ecs.NewScheduler(store)

	sim, err := newWorld(store, cfg, rng, log)
	if err != nil {
		return err
	}

	log.Info("populating store", zap.Int("entities", cfg.Stress.Entities))
	for range cfg.Stress.Entities {
		if _, err := store.CreateWith(randomComponents(rng, cfg.Stress.MaxComponents)...); err != nil {
			return err
		}
	}

	var reload *reloader
	if cfg.Snapshot.Watch {
		w, err := snapwatch.New(snapwatch.DefaultDebounce, cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.Snapshot.Path, err)
		}
		reload = &reloader{registry: registry, log: log.Named("reload")}
		done := make(chan struct{})
		go func() {
			defer close(done)
			reload.watch(w)
		}()
		defer func() {
			w.Close()
			<-done
		}()
	}

	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		ChurnPerFrame:  cfg.Stress.ChurnPerFrame,
		SnapshotEvery:  cfg.Snapshot.Every,
		Seed:           seed,
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			err := scheduler.Once(deltaTime.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++

			if err != nil {
				rejected := countErrors(err)
				report.Commands.Rejected += int64(rejected)
				log.Debug("frame commands rejected", zap.Int("count", rejected), zap.Error(err))
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	sim.finish(report)
	report.Final = store.CollectStats()
	report.Scheduler = scheduler.GetStats()
	if reload != nil {
		report.Reloads = reload.stats()
	}

	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Int("live", report.Final.EntityCount),
		zap.Int64("round_trips", report.Snapshot.RoundTrips))

	if err := writeReport(report, cfg.Report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if report.Snapshot.Mismatches > 0 {
		return fmt.Errorf("%d snapshot round-trips failed", report.Snapshot.Mismatches)
	}
	return nil
}

// world holds the systems whose counters feed the report.
type world struct {
	churn    *ChurnSystem
	lifetime *LifetimeSystem
	snapshot *SnapshotSystem
}

func newWorld(store *ecs.Store, cfg *config.Config, rng *rand.Rand, log *zap.Logger) (*world, error) {
	w := &world{}
	var err error
	if _, err = ecs.AddSystem(store, &MovementSystem{}); err != nil {
		return nil, err
	}
	if w.lifetime, err = ecs.AddSystem(store, &LifetimeSystem{}); err != nil {
		return nil, err
	}
	if w.churn, err = ecs.AddSystem(store, &ChurnSystem{
		PerFrame:      cfg.Stress.ChurnPerFrame,
		MaxComponents: cfg.Stress.MaxComponents,
		Rand:          rng,
	}); err != nil {
		return nil, err
	}
	if w.snapshot, err = ecs.AddSystem(store, &SnapshotSystem{
		Every: cfg.Snapshot.Every,
		Path:  cfg.Snapshot.Path,
		Log:   log.Named("snapshot"),
	}); err != nil {
		return nil, err
	}
	store.ResolveSystemDependencies()
	return w, nil
}

func (w *world) finish(report *Report) {
	report.Commands.Queued = w.churn.Queued
	report.Expired = w.lifetime.Expired
	report.Snapshot = w.snapshot.Stats
	report.Snapshot.Save.Finalize()
	report.Snapshot.Load.Finalize()
}

// countErrors reports how many failures a flush error carries.
func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	if err != nil {
		return 1
	}
	return 0
}

func writeReport(report *Report, cfg config.ReportConfig) (err error) {
	var w io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}
	return report.Write(w, cfg.Format)
}
