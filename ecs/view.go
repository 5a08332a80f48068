package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

// View is a query over entities carrying a specific combination of
// components. The type T must be a struct with pointer fields, one per
// component type; embedded fields are always required, and named fields
// can be marked optional with the `ecs:"optional"` struct tag.
//
// Each call to Iter computes the set of matching entities once (a
// consistent snapshot of the intersection of the required types' holder
// sets) but fetches component instances per entity at consumption time,
// so mutations through the yielded struct are visible in storage.
type View[T any] struct {
	world       *World
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
	required    []reflect.Type
	err         error
}

// NewView creates a view over the world for the given struct type.
func NewView[T any](w *World) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{
		world:       w,
		types:       make([]reflect.Type, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("ecs: View struct fields must be pointer types")
		}

		componentType := field.Type.Elem()
		v.types = append(v.types, componentType)
		v.fieldOffset = append(v.fieldOffset, field.Offset)

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("ecs: invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		v.optional = append(v.optional, isOptional)
		if !isOptional {
			v.required = append(v.required, componentType)
		}
	}

	return v
}

// fill writes component pointers into the struct at structPtr. Returns
// false if a required component is absent; optional fields are set to nil.
func (v *View[T]) fill(id EntityId, structPtr unsafe.Pointer) bool {
	for i, componentType := range v.types {
		component := v.world.store.Get(id, componentType)
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		// The stored instance is a pointer boxed in an interface; its data
		// word is the component pointer itself.
		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
	return true
}

// Fill populates *ptr with component pointers for the given entity.
// Returns false if the entity is missing any required component.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	return v.fill(id, unsafe.Pointer(ptr))
}

// Get returns a populated view struct for the given entity, or nil if the
// entity doesn't carry all required components.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.fill(id, unsafe.Pointer(&result)) {
		return nil
	}
	return &result
}

// Count returns the number of entities currently matching the view.
func (v *View[T]) Count() int {
	return len(v.world.store.AllOf(v.required...))
}

// Iter returns a single-pass iterator yielding (entity, struct) for every
// entity in the match set. The match set is snapshotted when Iter is
// called; component instances are fetched live as each entity is visited.
//
// Caller contract: mutating components of matched entities is fine, but
// adding or removing matching entities mid-iteration is undefined with
// respect to this pass. If a required component has been removed between
// the snapshot and the visit, the iteration aborts and Err reports
// ErrComponentNotFound.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	v.err = nil
	matches := v.world.store.AllOf(v.required...)

	return func(yield func(EntityId, T) bool) {
		var result T
		resultPtr := unsafe.Pointer(&result)

		for _, id := range matches {
			if !v.fill(id, resultPtr) {
				v.err = fmt.Errorf("%w: view aborted on entity %d", ErrComponentNotFound, id)
				return
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs, for callers that
// don't need the entity ids. Same contract as Iter.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Err returns the error that aborted the most recent Iter pass, if any.
func (v *View[T]) Err() error {
	return v.err
}
