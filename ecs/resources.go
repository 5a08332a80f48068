package ecs

import (
	"fmt"
	"reflect"
)

// Resources is a type-keyed registry for global, non-entity state. Each
// world owns one. Last put wins per type; there are no other invariants.
type Resources struct {
	values map[reflect.Type]any
}

// NewResources creates an empty registry.
func NewResources() *Resources {
	return &Resources{values: make(map[reflect.Type]any)}
}

// Put stores value keyed by its dynamic type, replacing any previous
// value of that type.
func (r *Resources) Put(value any) {
	if value == nil {
		panic("ecs: nil resource")
	}
	r.values[reflect.TypeOf(value)] = value
}

// Get returns the value stored under t, or ErrResourceNotFound.
func (r *Resources) Get(t reflect.Type) (any, error) {
	value, ok := r.values[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, t)
	}
	return value, nil
}

// TryGet returns the value stored under t and whether it was present.
func (r *Resources) TryGet(t reflect.Type) (any, bool) {
	value, ok := r.values[t]
	return value, ok
}

// Remove drops the value stored under t, reporting whether one existed.
func (r *Resources) Remove(t reflect.Type) bool {
	if _, ok := r.values[t]; !ok {
		return false
	}
	delete(r.values, t)
	return true
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.values)
}

// Clear drops every resource.
func (r *Resources) Clear() {
	clear(r.values)
}

// PutResource stores a pointer resource of type T.
func PutResource[T any](r *Resources, value *T) {
	r.values[reflect.TypeFor[*T]()] = value
}

// GetResource returns the stored *T, or ErrResourceNotFound.
func GetResource[T any](r *Resources) (*T, error) {
	value, err := r.Get(reflect.TypeFor[*T]())
	if err != nil {
		return nil, err
	}
	return value.(*T), nil
}

// TryGetResource returns the stored *T and whether it was present.
func TryGetResource[T any](r *Resources) (*T, bool) {
	value, ok := r.values[reflect.TypeFor[*T]()]
	if !ok {
		return nil, false
	}
	return value.(*T), true
}

// RemoveResource drops the stored *T, reporting whether one existed.
func RemoveResource[T any](r *Resources) bool {
	return r.Remove(reflect.TypeFor[*T]())
}
