package debugui

import (
	"reflect"
	"sync"

	"github.com/plus3/entstore/ecs"
)

type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
}

// ReflectionCache memoizes the inspectable fields of component struct types.
type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

var (
	baseComponentType = reflect.TypeOf(ecs.BaseComponent{})
	skippedKinds      = map[reflect.Kind]bool{reflect.Func: true, reflect.Chan: true, reflect.UnsafePointer: true}
)

// GetFields returns the exported fields of struct type t, skipping the
// embedded ecs.BaseComponent and fields that cannot be displayed.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Type == baseComponentType {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}
			if skippedKinds[fieldType.Kind()] {
				continue
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

var globalReflectionCache = NewReflectionCache()
