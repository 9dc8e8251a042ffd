package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/entstore/ecs"
)

// ComponentInspector shows and edits the exported fields of every component
// on the entity selected in the EntityBrowser.
type ComponentInspector struct {
	ecs.BaseSystem
	browser *EntityBrowser
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (*ComponentInspector) SystemName() string { return "debugui.ComponentInspector" }

func (ci *ComponentInspector) OnResolveDependencies() {
	ci.browser = ecs.GetSystem[EntityBrowser](ci.Store())
}

func (ci *ComponentInspector) Update(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(ci.Render)
}

func (ci *ComponentInspector) Render() {
	store := ci.Store()
	if store == nil {
		return
	}

	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if ci.browser == nil {
		imgui.Text("Entity browser not registered")
		imgui.End()
		return
	}

	selected, ok := ci.browser.Selected()
	if !ok {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !store.IsValid(selected) {
		imgui.Text(fmt.Sprintf("Entity %s no longer exists", selected))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", selected))
	imgui.Text(fmt.Sprintf("Index %d, generation %d", selected.Index(), selected.Generation()))
	imgui.Separator()

	for _, name := range store.Entity(selected).ComponentNames() {
		component := store.Lookup(selected, name)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(name) {
			ci.renderComponent(component)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(component ecs.Component) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		imgui.Text(fmt.Sprintf("%v", component))
		return
	}

	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}

		ci.renderField(field.Name, fieldVal, field)
	}
}

// renderField draws one field. Edits are written straight through the value,
// which is addressable because components are held by pointer.
func (ci *ComponentInspector) renderField(name string, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.Kind() == reflect.Ptr && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range globalReflectionCache.GetFields(val.Type()) {
				nestedVal := val.Field(nf.Index)
				if nf.IsPointer && !nestedVal.IsNil() {
					nestedVal = nestedVal.Elem()
				}
				ci.renderField(nf.Name, nestedVal, nf)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}
