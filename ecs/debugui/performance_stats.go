package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/entstore/ecs"
)

// PerformanceStats plots frame times and shows store and scheduler counters.
type PerformanceStats struct {
	ecs.BaseSystem

	// Scheduler, when set, adds a per-system timing table.
	Scheduler *ecs.Scheduler

	historyFrames int
	frameHistory  []float32
	frameIndex    int
	recorded      int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	historyFrames = max(historyFrames, 1)
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

func (*PerformanceStats) SystemName() string { return "debugui.PerformanceStats" }

func (ps *PerformanceStats) Update(frame *ecs.UpdateFrame) {
	ps.Record(frame.DeltaTime)
	frame.Commands.Defer(ps.Render)
}

// Record adds one frame time, in seconds, to the history ring.
func (ps *PerformanceStats) Record(deltaTime float64) {
	ps.frameHistory[ps.frameIndex] = float32(deltaTime * 1000.0)
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
	ps.recorded = min(ps.recorded+1, ps.historyFrames)
}

// AverageFrameTime returns the mean of the recorded frame times in milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	if ps.recorded == 0 {
		return 0
	}
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.recorded)
}

func (ps *PerformanceStats) Render() {
	store := ps.Store()
	if store == nil {
		return
	}

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := store.CollectStats()

	imgui.Text(fmt.Sprintf("Live Entities: %d", stats.EntityCount))
	imgui.Text(fmt.Sprintf("Slots: %d (%d free)", stats.SlotCount, stats.FreeCount))
	imgui.Text(fmt.Sprintf("Systems: %d", stats.SystemCount))

	avgFrameTime := ps.AverageFrameTime()
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Component Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ComponentStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, count := range stats.ComponentCounts {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(count.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", count.Count))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("System Details") {
		if ps.Scheduler == nil {
			for _, name := range stats.SystemNames {
				imgui.BulletText(name)
			}
		} else {
			ps.renderSchedulerStats(ps.Scheduler.GetStats())
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ps *PerformanceStats) renderSchedulerStats(stats *ecs.SchedulerStats) {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Runs")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}

	imgui.EndTable()
}
