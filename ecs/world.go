package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// World is the composition root: it owns one entity allocator, one
// component store, one scheduler, and one resource registry, and enforces
// the cross-cutting invariants between them (an entity must be alive
// before any component operation reaches storage).
type World struct {
	entities  *Allocator
	store     *Store
	scheduler *Scheduler
	resources *Resources
	commands  *Commands
	logger    *zap.Logger
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger installs a structured logger for lifecycle events. The
// default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		w.logger = logger
		w.scheduler.logger = logger
	}
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	w := &World{
		entities:  NewAllocator(),
		store:     NewStore(),
		scheduler: NewScheduler(),
		resources: NewResources(),
		commands:  newCommands(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Resources returns the world's type-keyed resource registry.
func (w *World) Resources() *Resources {
	return w.resources
}

// Commands returns the world's deferred command buffer. Systems queue
// structural mutations here; the scheduler flushes the buffer after each
// update sweep.
func (w *World) Commands() *Commands {
	return w.commands
}

// --- Lifecycle ---

// Start starts the scheduler, firing system start hooks. Idempotent.
func (w *World) Start() {
	w.scheduler.Start(w)
}

// Stop stops the scheduler, firing system stop hooks in reverse order.
// Idempotent.
func (w *World) Stop() {
	w.scheduler.Stop(w)
}

// Update runs one synchronous sweep of all systems in priority order.
func (w *World) Update(dt float64) {
	w.scheduler.Update(w, dt)
}

// Run starts the world and drives update sweeps at the given interval
// until the context is cancelled, then stops it.
func (w *World) Run(ctx context.Context, interval time.Duration) {
	w.Start()
	w.scheduler.Run(ctx, w, interval)
	w.Stop()
}

// --- Entity API ---

// CreateEntity allocates a new alive entity id.
func (w *World) CreateEntity() EntityId {
	return w.entities.Create()
}

// DestroyEntity marks the entity dead, then removes all its components.
// Returns ErrEntityNotFound if the id is unknown or already destroyed.
func (w *World) DestroyEntity(entity EntityId) error {
	if !w.entities.Destroy(entity) {
		return fmt.Errorf("%w: entity %d", ErrEntityNotFound, entity)
	}
	w.store.RemoveAllFor(entity)
	return nil
}

// IsAlive reports whether the entity has been created and not destroyed.
func (w *World) IsAlive(entity EntityId) bool {
	return w.entities.IsAlive(entity)
}

// Entities returns a snapshot of all alive entity ids.
func (w *World) Entities() []EntityId {
	return w.entities.All()
}

// EntityCount returns the number of alive entities.
func (w *World) EntityCount() int {
	return w.entities.Len()
}

func (w *World) requireAlive(entity EntityId) error {
	if !w.entities.IsAlive(entity) {
		return fmt.Errorf("%w: entity %d", ErrEntityNotFound, entity)
	}
	return nil
}

// --- Component API ---

// AddComponent attaches a component to an alive entity. Strict: returns
// ErrComponentAlreadyExists if the entity already carries that type.
func (w *World) AddComponent(entity EntityId, component any) error {
	if err := w.requireAlive(entity); err != nil {
		return err
	}
	return w.store.Add(entity, component)
}

// UpsertComponent attaches or replaces a component on an alive entity.
func (w *World) UpsertComponent(entity EntityId, component any) error {
	if err := w.requireAlive(entity); err != nil {
		return err
	}
	w.store.Upsert(entity, component)
	return nil
}

// RemoveComponent detaches a component from an alive entity. Returns
// ErrComponentNotFound if the entity does not carry that type.
func (w *World) RemoveComponent(entity EntityId, ctype reflect.Type) error {
	if err := w.requireAlive(entity); err != nil {
		return err
	}
	return w.store.Remove(entity, ctype)
}

// GetComponent returns the stored instance for (entity, ctype), or nil
// with a nil error if the entity does not carry that type. The entity
// itself must be alive.
func (w *World) GetComponent(entity EntityId, ctype reflect.Type) (any, error) {
	if err := w.requireAlive(entity); err != nil {
		return nil, err
	}
	return w.store.Get(entity, ctype), nil
}

// RequireComponent is GetComponent for callers that treat absence as a
// failure: a missing type returns ErrComponentNotFound.
func (w *World) RequireComponent(entity EntityId, ctype reflect.Type) (any, error) {
	if err := w.requireAlive(entity); err != nil {
		return nil, err
	}
	component := w.store.Get(entity, ctype)
	if component == nil {
		return nil, fmt.Errorf("%w: %s on entity %d", ErrComponentNotFound, ctype, entity)
	}
	return component, nil
}

// HasComponent reports whether an alive entity carries ctype.
func (w *World) HasComponent(entity EntityId, ctype reflect.Type) (bool, error) {
	if err := w.requireAlive(entity); err != nil {
		return false, err
	}
	return w.store.Has(entity, ctype), nil
}

// EntitiesWith returns a snapshot of the entities carrying every given
// component type.
func (w *World) EntitiesWith(ctypes ...reflect.Type) []EntityId {
	return w.store.AllOf(ctypes...)
}

// --- Systems API ---

// AddSystem registers a system with the scheduler. If the world has been
// started, the system's start hook fires immediately.
func (w *World) AddSystem(system System) {
	w.scheduler.Add(system)
}

// RemoveSystem unregisters a system, firing its stop hook if the world is
// started. Returns whether the system was present.
func (w *World) RemoveSystem(system System) bool {
	return w.scheduler.Remove(system)
}

// Stats returns scheduler execution statistics.
func (w *World) Stats() *SchedulerStats {
	return w.scheduler.Stats()
}

// FlushCommands applies all queued deferred commands against the world.
// Called by the scheduler after each update sweep; callers driving the
// world manually may call it directly.
func (w *World) FlushCommands() error {
	return w.commands.Flush(w)
}

// Clear stops the scheduler if started, strips every component from every
// alive entity, and clears the store, the resource registry, and any
// pending deferred commands. The allocator's counter and free list are
// deliberately untouched so id reuse stays deterministic across a clear.
func (w *World) Clear() {
	w.Stop()
	for _, entity := range w.entities.All() {
		w.store.RemoveAllFor(entity)
	}
	w.store.Clear()
	w.resources.Clear()
	w.commands.reset()
	w.logger.Info("world cleared", zap.Int("entities", w.entities.Len()))
}

// --- Generic component helpers ---

// Add attaches a copy of value to entity as component type T. The store
// owns the stored instance; retrieve it with Get or a View to mutate it.
func Add[T any](w *World, entity EntityId, value T) error {
	return w.AddComponent(entity, &value)
}

// Upsert attaches or replaces entity's T with a copy of value.
func Upsert[T any](w *World, entity EntityId, value T) error {
	return w.UpsertComponent(entity, &value)
}

// Remove detaches component type T from entity.
func Remove[T any](w *World, entity EntityId) error {
	return w.RemoveComponent(entity, TypeOf[T]())
}

// Get returns the live instance of entity's T, or nil with a nil error if
// the entity does not carry one.
func Get[T any](w *World, entity EntityId) (*T, error) {
	component, err := w.GetComponent(entity, TypeOf[T]())
	if err != nil || component == nil {
		return nil, err
	}
	return component.(*T), nil
}

// Require returns the live instance of entity's T, or ErrComponentNotFound.
func Require[T any](w *World, entity EntityId) (*T, error) {
	component, err := w.RequireComponent(entity, TypeOf[T]())
	if err != nil {
		return nil, err
	}
	return component.(*T), nil
}

// Has reports whether the alive entity carries component type T.
func Has[T any](w *World, entity EntityId) (bool, error) {
	return w.HasComponent(entity, TypeOf[T]())
}
