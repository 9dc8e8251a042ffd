package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/entstore/ecs"
)

// QueryDebugger lets the user tick component names and shows the entities
// carrying all of them, or any of them in match-any mode.
type QueryDebugger struct {
	ecs.BaseSystem

	selected       map[string]bool
	componentNames []string
	matchAny       bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selected: make(map[string]bool),
	}
}

func (*QueryDebugger) SystemName() string { return "debugui.QueryDebugger" }

func (qd *QueryDebugger) Update(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(qd.Render)
}

func (qd *QueryDebugger) Render() {
	store := qd.Store()
	if store == nil {
		return
	}

	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.Refresh(store)

	imgui.Text("Select Component Names:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.selected)
	}
	imgui.SameLine()
	imgui.Checkbox("Match any", &qd.matchAny)

	for _, name := range qd.componentNames {
		selected := qd.selected[name]
		if imgui.Checkbox(name, &selected) {
			qd.Toggle(name, selected)
		}
	}

	imgui.Separator()

	names := qd.Selected()
	if len(names) == 0 {
		imgui.Text("No component names selected")
		imgui.End()
		return
	}

	matching := qd.Matching(store)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matching)))

	if imgui.TreeNodeStr("Entities") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryEntityTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Handle")
			imgui.TableSetupColumn("All Components")
			imgui.TableHeadersRow()

			for _, h := range matching {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(h.String())

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", store.Entity(h).ComponentNames()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// Refresh collects the selectable names: everything registered plus anything
// attached to a live entity.
func (qd *QueryDebugger) Refresh(store *ecs.Store) {
	seen := make(map[string]bool)
	for _, name := range store.Registry().Names() {
		seen[name] = true
	}
	for _, count := range store.CollectStats().ComponentCounts {
		seen[count.Name] = true
	}

	qd.componentNames = qd.componentNames[:0]
	for name := range seen {
		qd.componentNames = append(qd.componentNames, name)
	}
	sort.Strings(qd.componentNames)
}

func (qd *QueryDebugger) Toggle(name string, on bool) {
	if on {
		qd.selected[name] = true
	} else {
		delete(qd.selected, name)
	}
}

func (qd *QueryDebugger) SetMatchAny(matchAny bool) {
	qd.matchAny = matchAny
}

// Selected returns the ticked names in sorted order.
func (qd *QueryDebugger) Selected() []string {
	names := make([]string, 0, len(qd.selected))
	for name := range qd.selected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Matching evaluates the current selection against store.
func (qd *QueryDebugger) Matching(store *ecs.Store) []ecs.Handle {
	names := qd.Selected()
	if len(names) == 0 {
		return nil
	}
	if qd.matchAny {
		return store.MatchingAny(names...)
	}
	return store.Matching(names...)
}

// ComponentNames returns the names gathered by the last Refresh.
func (qd *QueryDebugger) ComponentNames() []string {
	return qd.componentNames
}
