package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/entstore/ecs"
)

type EntityInfo struct {
	Handle         ecs.Handle
	ComponentNames []string
}

const (
	columnHandle = iota
	columnGeneration
	columnComponents
	columnCount
)

// EntityBrowser lists live entities in a sortable, filterable, paged table.
// The selected entity is shared with the ComponentInspector.
type EntityBrowser struct {
	ecs.BaseSystem

	entities           []EntityInfo
	selected           ecs.Handle
	hasSelection       bool
	filterText         string
	sortColumn         int
	sortAscending      bool
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		sortColumn:         columnHandle,
		sortAscending:      true,
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

func (*EntityBrowser) SystemName() string { return "debugui.EntityBrowser" }

func (eb *EntityBrowser) Update(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(eb.Render)
}

func (eb *EntityBrowser) Render() {
	store := eb.Store()
	if store == nil {
		return
	}

	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Refresh(store)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.SetFilter("")
	}

	filteredEntities := eb.Filtered()
	start, end := eb.pageBounds(len(filteredEntities))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Handle")
		imgui.TableSetupColumn("Generation")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			col := sortSpecs.Specs()
			eb.SetSort(int(col.ColumnIndex()), col.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, entity := range filteredEntities[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selected == entity.Handle
			if imgui.SelectableBoolV(entity.Handle.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(entity.Handle)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.Handle.Generation()))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentNames, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.ComponentNames)))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := eb.pageCount(len(filteredEntities))
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

// Refresh rebuilds the entity list from store and reapplies the current sort.
// A selection whose entity was destroyed is dropped.
func (eb *EntityBrowser) Refresh(store *ecs.Store) {
	eb.entities = eb.entities[:0]
	for h := range store.All() {
		eb.entities = append(eb.entities, EntityInfo{
			Handle:         h,
			ComponentNames: store.Entity(h).ComponentNames(),
		})
	}
	if eb.hasSelection && !store.IsValid(eb.selected) {
		eb.hasSelection = false
	}
	eb.sortEntities()
}

func (eb *EntityBrowser) SetSort(column int, ascending bool) {
	eb.sortColumn = column
	eb.sortAscending = ascending
	eb.sortEntities()
}

func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

func (eb *EntityBrowser) Select(h ecs.Handle) {
	eb.selected = h
	eb.hasSelection = true
}

// Selected returns the selected entity, if any.
func (eb *EntityBrowser) Selected() (ecs.Handle, bool) {
	return eb.selected, eb.hasSelection
}

func (eb *EntityBrowser) sortEntities() {
	sort.SliceStable(eb.entities, func(i, j int) bool {
		a, b := eb.entities[i], eb.entities[j]
		if !eb.sortAscending {
			a, b = b, a
		}

		switch eb.sortColumn {
		case columnGeneration:
			return a.Handle.Generation() < b.Handle.Generation()
		case columnComponents:
			return strings.Join(a.ComponentNames, ",") < strings.Join(b.ComponentNames, ",")
		case columnCount:
			return len(a.ComponentNames) < len(b.ComponentNames)
		default:
			return a.Handle.Index() < b.Handle.Index()
		}
	})
}

// Filtered returns the entities matching the filter text against the handle
// string or any component name, case-insensitively.
func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" {
		return eb.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.entities {
		componentsStr := strings.ToLower(strings.Join(entity.ComponentNames, " "))
		if !strings.Contains(entity.Handle.String(), filterLower) &&
			!strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}

func (eb *EntityBrowser) pageCount(n int) int {
	return max((n+eb.maxEntitiesPerPage-1)/eb.maxEntitiesPerPage, 1)
}

// pageBounds clamps the current page to the filtered list and returns its
// slice bounds.
func (eb *EntityBrowser) pageBounds(n int) (int, int) {
	eb.currentPage = min(eb.currentPage, eb.pageCount(n)-1)
	start := eb.currentPage * eb.maxEntitiesPerPage
	end := min(start+eb.maxEntitiesPerPage, n)
	return start, end
}
