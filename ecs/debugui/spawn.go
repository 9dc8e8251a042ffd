package debugui

import "github.com/plus3/entstore/ecs"

// Windows groups the inspector systems added by AddDebugUI.
type Windows struct {
	Imgui       *ImguiSystem
	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Performance *PerformanceStats
	Queries     *QueryDebugger
}

// AddDebugUI registers the ImGui system and every inspector window with store,
// then resolves system dependencies so the windows find each other.
func AddDebugUI(store *ecs.Store) (*Windows, error) {
	w := &Windows{
		Imgui:       &ImguiSystem{},
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Performance: NewPerformanceStats(120),
		Queries:     NewQueryDebugger(),
	}

	for _, sys := range []ecs.System{w.Imgui, w.Browser, w.Inspector, w.Performance, w.Queries} {
		if err := store.AddSystem(sys); err != nil {
			return nil, err
		}
	}
	store.ResolveSystemDependencies()
	return w, nil
}

// RegisterDebugUIComponents registers the component types of this package.
func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}
