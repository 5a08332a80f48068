package main

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/plus3/kiln/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Lifetime struct {
	Remaining float64
}

// Bounds is a world resource describing the simulation area.
type Bounds struct {
	Width, Height float64
}

// MovementSystem integrates velocity into position, bouncing off the
// bounds resource's edges.
type MovementSystem struct {
	view *ecs.View[struct {
		*Position
		*Velocity
	}]
}

func (s *MovementSystem) Priority() int { return 10 }

func (s *MovementSystem) Start(w *ecs.World) {
	s.view = ecs.NewView[struct {
		*Position
		*Velocity
	}](w)
}

func (s *MovementSystem) Update(w *ecs.World, dt float64) {
	bounds, err := ecs.GetResource[Bounds](w.Resources())
	if err != nil {
		return
	}

	for _, item := range s.view.Iter() {
		item.Position.X += item.Velocity.DX * dt
		item.Position.Y += item.Velocity.DY * dt

		if item.Position.X < 0 || item.Position.X > bounds.Width {
			item.Velocity.DX = -item.Velocity.DX
		}
		if item.Position.Y < 0 || item.Position.Y > bounds.Height {
			item.Velocity.DY = -item.Velocity.DY
		}
	}
}

// LifetimeSystem ticks entity lifetimes down and queues expired entities
// for destruction, respawning a replacement so the population holds steady.
type LifetimeSystem struct {
	rng  *rand.Rand
	view *ecs.View[struct {
		*Lifetime
	}]
}

func (s *LifetimeSystem) Priority() int { return 5 }

func (s *LifetimeSystem) Start(w *ecs.World) {
	s.rng = rand.New(rand.NewSource(1))
	s.view = ecs.NewView[struct {
		*Lifetime
	}](w)
}

func (s *LifetimeSystem) Update(w *ecs.World, dt float64) {
	bounds, err := ecs.GetResource[Bounds](w.Resources())
	if err != nil {
		return
	}

	for id, item := range s.view.Iter() {
		item.Lifetime.Remaining -= dt
		if item.Lifetime.Remaining <= 0 {
			w.Commands().Destroy(id)
			w.Commands().Create(randomComponents(s.rng, bounds)...)
		}
	}
}

// ReportSystem logs population and match counts once a second.
type ReportSystem struct {
	logger  *zap.Logger
	elapsed float64
}

func (s *ReportSystem) Priority() int { return -10 }

func (s *ReportSystem) Update(w *ecs.World, dt float64) {
	s.elapsed += dt
	if s.elapsed < 1.0 {
		return
	}
	s.elapsed = 0

	moving := len(w.EntitiesWith(ecs.TypeOf[Position](), ecs.TypeOf[Velocity]()))
	s.logger.Info("population",
		zap.Int("entities", w.EntityCount()),
		zap.Int("moving", moving))
}

func randomComponents(rng *rand.Rand, bounds *Bounds) []any {
	return []any{
		Position{X: rng.Float64() * bounds.Width, Y: rng.Float64() * bounds.Height},
		Velocity{DX: rng.Float64()*20 - 10, DY: rng.Float64()*20 - 10},
		Lifetime{Remaining: 5 + rng.Float64()*25},
	}
}
