package ecs

import "github.com/kamstrup/intmap"

// EntityId is an opaque handle to an entity. Ids are strictly positive;
// 0 is never issued and can be used as an invalid sentinel.
type EntityId uint64

// Allocator issues entity ids and recycles destroyed ones. Recycling is
// LIFO: the most recently destroyed id is the first to be reused.
type Allocator struct {
	alive *intmap.Set[EntityId]
	free  []EntityId
	next  EntityId
}

// NewAllocator creates an allocator whose first minted id is 1.
func NewAllocator() *Allocator {
	return &Allocator{
		alive: intmap.NewSet[EntityId](256),
		next:  1,
	}
}

// Create returns an alive entity id, reusing the most recently destroyed
// id if one is pending, otherwise minting the next counter value.
func (a *Allocator) Create() EntityId {
	var id EntityId
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = a.next
		a.next++
	}
	a.alive.Add(id)
	return id
}

// Destroy marks id as dead and queues it for reuse. Destroying an unknown
// or already-dead id is a no-op returning false.
func (a *Allocator) Destroy(id EntityId) bool {
	if !a.alive.Has(id) {
		return false
	}
	a.alive.Del(id)
	a.free = append(a.free, id)
	return true
}

// IsAlive reports whether id has been created and not destroyed since.
func (a *Allocator) IsAlive(id EntityId) bool {
	return a.alive.Has(id)
}

// Len returns the number of currently alive entities.
func (a *Allocator) Len() int {
	return a.alive.Len()
}

// All returns a snapshot of every alive id. The slice is detached from the
// allocator, so destroying entities while ranging over it is safe.
func (a *Allocator) All() []EntityId {
	ids := make([]EntityId, 0, a.alive.Len())
	a.alive.ForEach(func(id EntityId) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
