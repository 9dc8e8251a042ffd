// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/plus3/entstore/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation and
// registers it with a store so game code can fetch it with ecs.GetSystem.
type ImguiBackend struct {
	ecs.BaseSystem
	*ebitenbackend.EbitenBackend
}

func (*ImguiBackend) SystemName() string { return "debugui.ImguiBackend" }

// NewImguiBackend creates the Ebiten backend and its window.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	return &ImguiBackend{EbitenBackend: backend}
}
