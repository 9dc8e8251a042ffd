package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plus3/entstore/ecs"
)

type Report struct {
	// Configuration
	Duration      time.Duration
	Entities      int
	ChurnPerFrame int
	SnapshotEvery int
	Seed          uint64

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	Commands       CommandStats
	Expired        int64
	Snapshot       SnapshotStats
	Reloads        ReloadStats
	Final          ecs.StoreStats
	Scheduler      *ecs.SchedulerStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// CommandStats counts the structural commands queued by the churn system and
// the ones the store refused at flush time.
type CommandStats struct {
	Queued   int64 `yaml:"queued"`
	Rejected int64 `yaml:"rejected"`
}

// ReloadStats counts snapshot files reloaded after a change on disk.
type ReloadStats struct {
	Loaded   int64 `yaml:"loaded"`
	Failed   int64 `yaml:"failed"`
	Entities int   `yaml:"last_entities"`
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// MarshalYAML drops the raw samples and renders durations as strings.
func (s Stats) MarshalYAML() (any, error) {
	return struct {
		Count int    `yaml:"count"`
		Avg   string `yaml:"avg"`
		Min   string `yaml:"min"`
		Max   string `yaml:"max"`
	}{len(s.Samples), s.Avg.String(), s.Min.String(), s.Max.String()}, nil
}

type memoryDelta struct {
	HeapAlloc  int64  `yaml:"heap_alloc"`
	TotalAlloc int64  `yaml:"total_alloc"`
	Sys        int64  `yaml:"sys"`
	NumGC      uint32 `yaml:"num_gc"`
	GCPause    string `yaml:"gc_pause,omitempty"`
}

type systemSummary struct {
	Name       string `yaml:"name"`
	Executions int64  `yaml:"executions"`
	Avg        string `yaml:"avg"`
	Max        string `yaml:"max"`
}

type yamlReport struct {
	Config struct {
		Duration      string `yaml:"duration"`
		Entities      int    `yaml:"entities"`
		ChurnPerFrame int    `yaml:"churn_per_frame"`
		SnapshotEvery int    `yaml:"snapshot_every"`
		Seed          uint64 `yaml:"seed"`
	} `yaml:"config"`
	TotalUpdates int64           `yaml:"total_updates"`
	TotalTime    string          `yaml:"total_time"`
	UpdateTime   Stats           `yaml:"update_time"`
	Commands     CommandStats    `yaml:"commands"`
	Expired      int64           `yaml:"expired"`
	Snapshot     SnapshotStats   `yaml:"snapshot"`
	Reloads      ReloadStats     `yaml:"reloads"`
	Live         int             `yaml:"live_entities"`
	FreeSlots    int             `yaml:"free_slots"`
	Components   map[string]int  `yaml:"components"`
	Systems      []systemSummary `yaml:"systems,omitempty"`
	Memory       memoryDelta     `yaml:"memory"`
}

func (r *Report) summary() yamlReport {
	var out yamlReport
	out.Config.Duration = r.Duration.String()
	out.Config.Entities = r.Entities
	out.Config.ChurnPerFrame = r.ChurnPerFrame
	out.Config.SnapshotEvery = r.SnapshotEvery
	out.Config.Seed = r.Seed
	out.TotalUpdates = r.TotalUpdates
	out.TotalTime = r.TotalTime.String()
	out.UpdateTime = r.UpdateTime
	out.Commands = r.Commands
	out.Expired = r.Expired
	out.Snapshot = r.Snapshot
	out.Reloads = r.Reloads
	out.Live = r.Final.EntityCount
	out.FreeSlots = r.Final.FreeCount

	out.Components = make(map[string]int, len(r.Final.ComponentCounts))
	for _, c := range r.Final.ComponentCounts {
		out.Components[c.Name] = c.Count
	}
	if r.Scheduler != nil {
		for _, s := range r.Scheduler.Systems {
			out.Systems = append(out.Systems, systemSummary{
				Name:       s.Name,
				Executions: s.ExecutionCount,
				Avg:        s.AvgDuration.String(),
				Max:        s.MaxDuration.String(),
			})
		}
	}

	out.Memory = memoryDelta{
		HeapAlloc:  bsub(r.MemStatsEnd.HeapAlloc, r.MemStatsStart.HeapAlloc),
		TotalAlloc: bsub(r.MemStatsEnd.TotalAlloc, r.MemStatsStart.TotalAlloc),
		Sys:        bsub(r.MemStatsEnd.Sys, r.MemStatsStart.Sys),
		NumGC:      r.MemStatsEnd.NumGC - r.MemStatsStart.NumGC,
	}
	if r.GCPauseMetrics {
		out.Memory.GCPause = time.Duration(r.MemStatsEnd.PauseTotalNs - r.MemStatsStart.PauseTotalNs).String()
	}
	return out
}

func bsub(a, b uint64) int64 {
	return int64(a) - int64(b)
}

// Write renders the report in the given format, "text" or "yaml".
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.summary()); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return r.Generate(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Churn Per Frame:** {{.ChurnPerFrame}}
- **Snapshot Every:** {{.SnapshotEvery}} frames
- **Seed:** {{.Seed}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
{{- with .Scheduler}}
- **Systems:**
{{- range .Systems}}
  - {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{- end}}
{{- end}}

## Store
- **Live Entities:** {{.Final.EntityCount}} ({{.Final.FreeCount}} free of {{.Final.SlotCount}} slots)
- **Commands:** {{.Commands.Queued}} queued, {{.Commands.Rejected}} rejected
- **Expired:** {{.Expired}}
{{- range .Final.ComponentCounts}}
  - {{.Name}}: {{.Count}}
{{- end}}

## Snapshots
- **Round Trips:** {{.Snapshot.RoundTrips}} ({{.Snapshot.Mismatches}} failed)
- **Last Snapshot:** {{.Snapshot.LastBytes}} bytes, {{.Snapshot.LastLen}} entities
- **Save:** avg {{.Snapshot.Save.Avg}}, max {{.Snapshot.Save.Max}}
- **Load:** avg {{.Snapshot.Load.Avg}}, max {{.Snapshot.Load.Max}}
{{- if or .Reloads.Loaded .Reloads.Failed}}
- **Reloaded From Disk:** {{.Reloads.Loaded}} ({{.Reloads.Failed}} failed)
{{- end}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": bsub,
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
