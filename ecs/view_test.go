package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewIntersection(t *testing.T) {
	w := ecs.NewWorld()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()

	require.NoError(t, ecs.Add(w, e1, Position{X: 1}))
	require.NoError(t, ecs.Add(w, e1, Velocity{DX: 10}))
	require.NoError(t, ecs.Add(w, e2, Position{X: 2}))
	require.NoError(t, ecs.Add(w, e3, Position{X: 3}))
	require.NoError(t, ecs.Add(w, e3, Velocity{DX: 30}))

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	matched := make(map[ecs.EntityId]float64)
	for id, item := range view.Iter() {
		matched[id] = item.Position.X
	}
	require.NoError(t, view.Err())

	// Complete and duplicate-free: exactly e1 and e3, with paired values
	assert.Equal(t, map[ecs.EntityId]float64{e1: 1, e3: 3}, matched)
	assert.Equal(t, 2, view.Count())
}

func TestViewMutationIsLive(t *testing.T) {
	w := ecs.NewWorld()

	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, Position{X: 1}))

	view := ecs.NewView[struct {
		*Position
	}](w)

	for _, item := range view.Iter() {
		item.Position.X = 99
	}
	require.NoError(t, view.Err())

	pos, err := ecs.Get[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, 99.0, pos.X)
}

func TestViewGetAndFill(t *testing.T) {
	w := ecs.NewWorld()

	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, Position{X: 5, Y: 6}))
	require.NoError(t, ecs.Add(w, e, Name{Value: "hero"}))

	view := ecs.NewView[struct {
		*Position
		*Name
	}](w)

	item := view.Get(e)
	require.NotNil(t, item)
	assert.Equal(t, 5.0, item.Position.X)
	assert.Equal(t, "hero", item.Name.Value)

	// Entity without the full set doesn't fill
	other := w.CreateEntity()
	require.NoError(t, ecs.Add(w, other, Position{}))
	assert.Nil(t, view.Get(other))
}

func TestViewOptionalComponents(t *testing.T) {
	w := ecs.NewWorld()

	withName := w.CreateEntity()
	require.NoError(t, ecs.Add(w, withName, Position{X: 1}))
	require.NoError(t, ecs.Add(w, withName, Name{Value: "named"}))

	anonymous := w.CreateEntity()
	require.NoError(t, ecs.Add(w, anonymous, Position{X: 2}))

	view := ecs.NewView[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](w)

	names := make(map[ecs.EntityId]string)
	for id, item := range view.Iter() {
		if item.Name != nil {
			names[id] = item.Name.Value
		} else {
			names[id] = ""
		}
	}
	require.NoError(t, view.Err())

	assert.Equal(t, map[ecs.EntityId]string{withName: "named", anonymous: ""}, names)
}

func TestViewRemovalMidIterationAborts(t *testing.T) {
	w := ecs.NewWorld()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e1, Position{}))
	require.NoError(t, ecs.Add(w, e2, Position{}))

	view := ecs.NewView[struct {
		*Position
	}](w)

	visited := 0
	for id := range view.Iter() {
		visited++
		// Strip the matched component from the other entity; when the
		// iteration reaches it, the pass must abort.
		other := e1
		if id == e1 {
			other = e2
		}
		require.NoError(t, ecs.Remove[Position](w, other))
	}

	assert.Equal(t, 1, visited)
	assert.ErrorIs(t, view.Err(), ecs.ErrComponentNotFound)

	// A fresh pass over the repaired world succeeds
	require.NoError(t, ecs.Upsert(w, e1, Position{}))
	require.NoError(t, ecs.Upsert(w, e2, Position{}))
	count := 0
	for range view.Iter() {
		count++
	}
	require.NoError(t, view.Err())
	assert.Equal(t, 2, count)
}

func TestViewExcludesDestroyedEntities(t *testing.T) {
	w := ecs.NewWorld()

	keep := w.CreateEntity()
	gone := w.CreateEntity()
	require.NoError(t, ecs.Add(w, keep, Tag("keep")))
	require.NoError(t, ecs.Add(w, gone, Tag("gone")))
	require.NoError(t, w.DestroyEntity(gone))

	view := ecs.NewView[struct {
		*Tag
	}](w)

	var ids []ecs.EntityId
	for id := range view.Iter() {
		ids = append(ids, id)
	}
	require.NoError(t, view.Err())
	assert.Equal(t, []ecs.EntityId{keep}, ids)
}

func TestViewValues(t *testing.T) {
	w := ecs.NewWorld()

	for i := 1; i <= 3; i++ {
		e := w.CreateEntity()
		require.NoError(t, ecs.Add(w, e, Score(i)))
	}

	view := ecs.NewView[struct {
		*Score
	}](w)

	var scores []int32
	for item := range view.Values() {
		scores = append(scores, int32(*item.Score))
	}
	require.NoError(t, view.Err())
	slices.Sort(scores)
	assert.Equal(t, []int32{1, 2, 3}, scores)
}

func TestViewSnapshotSemantics(t *testing.T) {
	w := ecs.NewWorld()

	e1 := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e1, Score(1)))

	view := ecs.NewView[struct {
		*Score
	}](w)

	visited := 0
	for range view.Iter() {
		visited++
		// Entities added after the snapshot was taken are not part of this pass
		e := w.CreateEntity()
		require.NoError(t, ecs.Add(w, e, Score(99)))
	}
	require.NoError(t, view.Err())
	assert.Equal(t, 1, visited)
}

func TestViewRejectsNonStruct(t *testing.T) {
	w := ecs.NewWorld()
	assert.Panics(t, func() {
		ecs.NewView[int](w)
	})
}

func TestViewRejectsNonPointerFields(t *testing.T) {
	w := ecs.NewWorld()
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Position Position
		}](w)
	})
}
