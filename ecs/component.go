package ecs

import "reflect"

// TypeOf returns the storage key for component type T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// normalizeComponent resolves a component value to its storage key and a
// pointer-typed instance. Pointers pass through; bare values are boxed so
// the stored instance is addressable and mutable in place.
func normalizeComponent(component any) (reflect.Type, any) {
	if component == nil {
		panic("ecs: nil component")
	}

	v := reflect.ValueOf(component)
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		if v.IsNil() {
			panic("ecs: nil component pointer")
		}
		checkComponentKind(t)
		return t, component
	}

	checkComponentKind(t)
	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	return t, ptr.Interface()
}

func checkComponentKind(t reflect.Type) {
	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("ecs: components cannot be pointers, maps, channels, or functions")
	}
}
