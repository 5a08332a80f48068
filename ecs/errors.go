package ecs

import "errors"

var (
	// ErrEntityNotFound indicates an operation targeted an entity id that is
	// unknown or already destroyed.
	ErrEntityNotFound = errors.New("ecs: entity not found")
	// ErrComponentNotFound signals that a required component is absent on the entity.
	ErrComponentNotFound = errors.New("ecs: component not found")
	// ErrComponentAlreadyExists indicates a strict add on an entity that
	// already carries that component type.
	ErrComponentAlreadyExists = errors.New("ecs: component already exists")
	// ErrResourceNotFound signals lookup of a resource type that was never put.
	ErrResourceNotFound = errors.New("ecs: resource not found")
)
