package ecs

import (
	"fmt"
	"reflect"

	"github.com/kamstrup/intmap"
)

// Store owns all component instances, indexed three ways:
//
//   - byComponent: component type -> entity -> instance
//   - byComponentIndex: component type -> set of entities carrying it
//   - byEntityIndex: entity -> set of component types it carries
//
// The three facets are kept consistent by routing every mutation through
// attach/detach. Empty inner maps are pruned on detach so iteration cost
// tracks live data, not historical peak.
type Store struct {
	byComponent      map[reflect.Type]map[EntityId]any
	byComponentIndex map[reflect.Type]*intmap.Set[EntityId]
	byEntityIndex    map[EntityId]map[reflect.Type]struct{}
}

// NewStore creates an empty component store.
func NewStore() *Store {
	return &Store{
		byComponent:      make(map[reflect.Type]map[EntityId]any),
		byComponentIndex: make(map[reflect.Type]*intmap.Set[EntityId]),
		byEntityIndex:    make(map[EntityId]map[reflect.Type]struct{}),
	}
}

func (s *Store) attach(entity EntityId, ctype reflect.Type, instance any) {
	instances, ok := s.byComponent[ctype]
	if !ok {
		instances = make(map[EntityId]any)
		s.byComponent[ctype] = instances
	}
	instances[entity] = instance

	index, ok := s.byComponentIndex[ctype]
	if !ok {
		index = intmap.NewSet[EntityId](8)
		s.byComponentIndex[ctype] = index
	}
	index.Add(entity)

	types, ok := s.byEntityIndex[entity]
	if !ok {
		types = make(map[reflect.Type]struct{})
		s.byEntityIndex[entity] = types
	}
	types[ctype] = struct{}{}
}

func (s *Store) detach(entity EntityId, ctype reflect.Type) {
	if instances, ok := s.byComponent[ctype]; ok {
		delete(instances, entity)
		if len(instances) == 0 {
			delete(s.byComponent, ctype)
		}
	}

	if index, ok := s.byComponentIndex[ctype]; ok {
		index.Del(entity)
		if index.Len() == 0 {
			delete(s.byComponentIndex, ctype)
		}
	}

	if types, ok := s.byEntityIndex[entity]; ok {
		delete(types, ctype)
		if len(types) == 0 {
			delete(s.byEntityIndex, entity)
		}
	}
}

// Add attaches a component to entity. The component may be passed by value
// or by pointer; either way the stored instance is pointer-typed and the
// store keeps the only reference. Returns ErrComponentAlreadyExists if the
// entity already carries that type.
func (s *Store) Add(entity EntityId, component any) error {
	ctype, instance := normalizeComponent(component)
	if _, exists := s.byComponent[ctype][entity]; exists {
		return fmt.Errorf("%w: %s on entity %d", ErrComponentAlreadyExists, ctype, entity)
	}
	s.attach(entity, ctype, instance)
	return nil
}

// Upsert attaches or replaces a component unconditionally.
func (s *Store) Upsert(entity EntityId, component any) {
	ctype, instance := normalizeComponent(component)
	s.attach(entity, ctype, instance)
}

// Remove detaches a component. Returns ErrComponentNotFound if the entity
// does not carry that type.
func (s *Store) Remove(entity EntityId, ctype reflect.Type) error {
	if _, exists := s.byComponent[ctype][entity]; !exists {
		return fmt.Errorf("%w: %s on entity %d", ErrComponentNotFound, ctype, entity)
	}
	s.detach(entity, ctype)
	return nil
}

// RemoveAllFor detaches every component the entity carries and returns the
// count removed. Used during entity destruction.
func (s *Store) RemoveAllFor(entity EntityId) int {
	types := s.byEntityIndex[entity]
	if len(types) == 0 {
		return 0
	}
	ctypes := make([]reflect.Type, 0, len(types))
	for ctype := range types {
		ctypes = append(ctypes, ctype)
	}
	for _, ctype := range ctypes {
		s.detach(entity, ctype)
	}
	return len(ctypes)
}

// Get returns the stored instance for (entity, ctype), or nil if absent.
// The instance is pointer-typed; mutations through it are visible in storage.
func (s *Store) Get(entity EntityId, ctype reflect.Type) any {
	return s.byComponent[ctype][entity]
}

// Has reports whether entity carries a component of ctype.
func (s *Store) Has(entity EntityId, ctype reflect.Type) bool {
	_, ok := s.byComponent[ctype][entity]
	return ok
}

// Types returns a snapshot of the component types the entity carries.
func (s *Store) Types(entity EntityId) []reflect.Type {
	types := s.byEntityIndex[entity]
	out := make([]reflect.Type, 0, len(types))
	for ctype := range types {
		out = append(out, ctype)
	}
	return out
}

// EntitiesWith returns a snapshot of the entities carrying ctype.
func (s *Store) EntitiesWith(ctype reflect.Type) []EntityId {
	index := s.byComponentIndex[ctype]
	if index == nil {
		return nil
	}
	out := make([]EntityId, 0, index.Len())
	index.ForEach(func(id EntityId) bool {
		out = append(out, id)
		return true
	})
	return out
}

// AllOf returns a snapshot of the entities carrying every given type.
// Zero types, or any type with no holders, yields an empty result. The
// intersection walks the smallest holder set and probes the rest; result
// order is unspecified.
func (s *Store) AllOf(ctypes ...reflect.Type) []EntityId {
	if len(ctypes) == 0 {
		return nil
	}

	sets := make([]*intmap.Set[EntityId], len(ctypes))
	smallest := 0
	for i, ctype := range ctypes {
		set := s.byComponentIndex[ctype]
		if set == nil || set.Len() == 0 {
			return nil
		}
		sets[i] = set
		if set.Len() < sets[smallest].Len() {
			smallest = i
		}
	}

	out := make([]EntityId, 0, sets[smallest].Len())
	sets[smallest].ForEach(func(id EntityId) bool {
		for i, set := range sets {
			if i == smallest {
				continue
			}
			if !set.Has(id) {
				return true
			}
		}
		out = append(out, id)
		return true
	})
	return out
}

// Len returns the total number of stored component instances.
func (s *Store) Len() int {
	n := 0
	for _, instances := range s.byComponent {
		n += len(instances)
	}
	return n
}

// Clear drops every component and index entry.
func (s *Store) Clear() {
	clear(s.byComponent)
	clear(s.byComponentIndex)
	clear(s.byEntityIndex)
}
