package ecs_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertFacets checks that all three store indices agree on whether
// (entity, ctype) is attached.
func assertFacets(t *testing.T, s *ecs.Store, entity ecs.EntityId, ctype reflect.Type, want bool) {
	t.Helper()
	assert.Equal(t, want, s.Has(entity, ctype), "Has disagrees for %s on entity %d", ctype, entity)
	assert.Equal(t, want, s.Get(entity, ctype) != nil, "Get disagrees for %s on entity %d", ctype, entity)
	assert.Equal(t, want, slices.Contains(s.EntitiesWith(ctype), entity), "EntitiesWith disagrees for %s on entity %d", ctype, entity)
	assert.Equal(t, want, slices.Contains(s.Types(entity), ctype), "Types disagrees for %s on entity %d", ctype, entity)
}

func TestStoreAddAndGet(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{X: 3, Y: 4}))

	got := s.Get(1, ecs.TypeOf[Position]())
	require.NotNil(t, got)
	pos := got.(*Position)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)

	assertFacets(t, s, 1, ecs.TypeOf[Position](), true)
	assertFacets(t, s, 1, ecs.TypeOf[Velocity](), false)
}

func TestStoreAddAcceptsPointers(t *testing.T) {
	s := ecs.NewStore()

	// Value and pointer components key identically
	require.NoError(t, s.Add(1, &Position{X: 1}))
	assert.True(t, s.Has(1, ecs.TypeOf[Position]()))

	err := s.Add(1, Position{X: 2})
	assert.ErrorIs(t, err, ecs.ErrComponentAlreadyExists)
}

func TestStoreStrictAdd(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Name{Value: "first"}))

	err := s.Add(1, Name{Value: "second"})
	assert.ErrorIs(t, err, ecs.ErrComponentAlreadyExists)

	// Failed add leaves the original untouched
	name := s.Get(1, ecs.TypeOf[Name]()).(*Name)
	assert.Equal(t, "first", name.Value)
}

func TestStoreUpsertReplaces(t *testing.T) {
	s := ecs.NewStore()

	s.Upsert(1, Name{Value: "first"})
	s.Upsert(1, Name{Value: "second"})

	name := s.Get(1, ecs.TypeOf[Name]()).(*Name)
	assert.Equal(t, "second", name.Value)
	assertFacets(t, s, 1, ecs.TypeOf[Name](), true)
}

func TestStoreRemove(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{}))
	require.NoError(t, s.Remove(1, ecs.TypeOf[Position]()))
	assertFacets(t, s, 1, ecs.TypeOf[Position](), false)

	err := s.Remove(1, ecs.TypeOf[Position]())
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
}

func TestStoreRemoveAllFor(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{}))
	require.NoError(t, s.Add(1, Velocity{}))
	require.NoError(t, s.Add(1, Health{Current: 10}))
	require.NoError(t, s.Add(2, Position{}))

	assert.Equal(t, 3, s.RemoveAllFor(1))
	assert.Empty(t, s.Types(1))
	assert.Equal(t, 0, s.RemoveAllFor(1))

	// Other entities are untouched
	assertFacets(t, s, 2, ecs.TypeOf[Position](), true)
}

func TestStoreEntitiesWithIsSnapshot(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Tag("a")))
	require.NoError(t, s.Add(2, Tag("b")))

	snapshot := s.EntitiesWith(ecs.TypeOf[Tag]())
	require.NoError(t, s.Remove(1, ecs.TypeOf[Tag]()))
	assert.Len(t, snapshot, 2)

	assert.Empty(t, s.EntitiesWith(ecs.TypeOf[Score]()))
}

func TestStoreAllOf(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{}))
	require.NoError(t, s.Add(1, Velocity{}))
	require.NoError(t, s.Add(2, Position{}))
	require.NoError(t, s.Add(3, Position{}))
	require.NoError(t, s.Add(3, Velocity{}))
	require.NoError(t, s.Add(3, Health{}))

	both := s.AllOf(ecs.TypeOf[Position](), ecs.TypeOf[Velocity]())
	slices.Sort(both)
	assert.Equal(t, []ecs.EntityId{1, 3}, both)

	all3 := s.AllOf(ecs.TypeOf[Position](), ecs.TypeOf[Velocity](), ecs.TypeOf[Health]())
	assert.Equal(t, []ecs.EntityId{3}, all3)

	// Zero types yields an empty result
	assert.Empty(t, s.AllOf())

	// Any type with no holders short-circuits to empty
	assert.Empty(t, s.AllOf(ecs.TypeOf[Position](), ecs.TypeOf[Tag]()))
}

func TestStorePrunesEmptyEntries(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{}))
	require.NoError(t, s.Remove(1, ecs.TypeOf[Position]()))

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.EntitiesWith(ecs.TypeOf[Position]()))
	assert.Empty(t, s.Types(1))
}

func TestStoreMutationThroughGet(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{X: 1}))

	pos := s.Get(1, ecs.TypeOf[Position]()).(*Position)
	pos.X = 42

	again := s.Get(1, ecs.TypeOf[Position]()).(*Position)
	assert.Equal(t, 42.0, again.X)
}

func TestStoreClear(t *testing.T) {
	s := ecs.NewStore()

	require.NoError(t, s.Add(1, Position{}))
	require.NoError(t, s.Add(2, Velocity{}))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assertFacets(t, s, 1, ecs.TypeOf[Position](), false)
	assertFacets(t, s, 2, ecs.TypeOf[Velocity](), false)
}

func TestStoreInterleavedMutations(t *testing.T) {
	s := ecs.NewStore()
	posType := ecs.TypeOf[Position]()
	velType := ecs.TypeOf[Velocity]()

	require.NoError(t, s.Add(1, Position{}))
	assertFacets(t, s, 1, posType, true)

	s.Upsert(1, Velocity{DX: 1})
	assertFacets(t, s, 1, velType, true)

	require.NoError(t, s.Remove(1, posType))
	assertFacets(t, s, 1, posType, false)
	assertFacets(t, s, 1, velType, true)

	require.NoError(t, s.Add(1, Position{X: 9}))
	assertFacets(t, s, 1, posType, true)

	assert.Equal(t, 2, s.RemoveAllFor(1))
	assertFacets(t, s, 1, posType, false)
	assertFacets(t, s, 1, velType, false)
}
