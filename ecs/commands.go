package ecs

import (
	"errors"
	"reflect"
)

// Commands is a buffer for deferred world mutations. Systems queue
// structural changes here instead of applying them mid-iteration; the
// scheduler flushes the buffer after every update sweep.
type Commands struct {
	creates  []createCommand
	destroys []EntityId
	adds     []componentCommand
	upserts  []componentCommand
	removes  []removeCommand
	defers   []func(w *World)
}

func newCommands() *Commands {
	return &Commands{}
}

type createCommand struct {
	components []any
}

type componentCommand struct {
	entity    EntityId
	component any
}

type removeCommand struct {
	entity EntityId
	ctype  reflect.Type
}

// Create queues creation of a new entity carrying the given components.
func (c *Commands) Create(components ...any) {
	c.creates = append(c.creates, createCommand{components: components})
}

// Destroy queues destruction of an entity.
func (c *Commands) Destroy(entity EntityId) {
	c.destroys = append(c.destroys, entity)
}

// Add queues a strict component addition.
func (c *Commands) Add(entity EntityId, component any) {
	c.adds = append(c.adds, componentCommand{entity: entity, component: component})
}

// Upsert queues an add-or-replace component operation.
func (c *Commands) Upsert(entity EntityId, component any) {
	c.upserts = append(c.upserts, componentCommand{entity: entity, component: component})
}

// Remove queues a component removal.
func (c *Commands) Remove(entity EntityId, ctype reflect.Type) {
	c.removes = append(c.removes, removeCommand{entity: entity, ctype: ctype})
}

// Defer queues an arbitrary function to run against the world at flush time.
func (c *Commands) Defer(fn func(w *World)) {
	c.defers = append(c.defers, fn)
}

// Flush applies all queued commands to the world and resets the buffer.
// Destroys run first; component ops against entities destroyed in the same
// flush are dropped. Individual command failures do not halt the flush;
// they are joined and returned together.
func (c *Commands) Flush(w *World) error {
	var errs []error

	destroyed := make(map[EntityId]bool, len(c.destroys))
	for _, entity := range c.destroys {
		if err := w.DestroyEntity(entity); err != nil {
			errs = append(errs, err)
			continue
		}
		destroyed[entity] = true
	}

	for _, cmd := range c.removes {
		if destroyed[cmd.entity] {
			continue
		}
		if err := w.RemoveComponent(cmd.entity, cmd.ctype); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.adds {
		if destroyed[cmd.entity] {
			continue
		}
		if err := w.AddComponent(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.upserts {
		if destroyed[cmd.entity] {
			continue
		}
		if err := w.UpsertComponent(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.creates {
		entity := w.CreateEntity()
		for _, component := range cmd.components {
			if err := w.AddComponent(entity, component); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, fn := range c.defers {
		fn(w)
	}

	c.reset()
	return errors.Join(errs...)
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.destroys) + len(c.adds) +
		len(c.upserts) + len(c.removes) + len(c.defers)
}

func (c *Commands) reset() {
	c.creates = c.creates[:0]
	c.destroys = c.destroys[:0]
	c.adds = c.adds[:0]
	c.upserts = c.upserts[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
