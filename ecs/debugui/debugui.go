// Package debugui provides immediate-mode GUI integration for entity stores using Dear ImGui.
// Every window is a system registered with the store; an ImguiSystem defers the
// render callbacks of ImguiItem components to the end of each frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/entstore/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	ecs.BaseComponent
	Render func()
}

func (*ImguiItem) ComponentName() string { return "debugui.ImguiItem" }

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers the render function of every ImguiItem and records the
// current input capture state.
type ImguiSystem struct {
	ecs.BaseSystem
	InputState ImguiInputState
}

func (*ImguiSystem) SystemName() string { return "debugui.ImguiSystem" }

// Update refreshes InputState and queues all ImGui render functions for execution.
func (i *ImguiSystem) Update(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	i.InputState.WantCaptureMouse = io.WantCaptureMouse()
	i.InputState.WantCaptureKeyboard = io.WantCaptureKeyboard()

	queueRenders(frame)
}

func queueRenders(frame *ecs.UpdateFrame) {
	ecs.With(frame.Store, func(_ ecs.Handle, item *ImguiItem) {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	})
}
