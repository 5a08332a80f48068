package ecs

import (
	"cmp"
	"context"
	"reflect"
	"slices"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Priority       int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type schedulerEntry struct {
	system   System
	priority int
	stats    *systemStatsInternal
}

// Scheduler holds a priority-ordered list of systems and drives their
// lifecycle: Start fires start hooks in execution order, Update runs one
// synchronous sweep, Stop fires stop hooks in reverse order.
type Scheduler struct {
	entries []*schedulerEntry
	started bool
	world   *World
	logger  *zap.Logger
}

// NewScheduler creates an empty, not-started scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{logger: zap.NewNop()}
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Add registers a system, keeping the list sorted by priority descending.
// Equal priorities keep insertion order. If the scheduler has already been
// started, the system's start hook fires immediately.
func (s *Scheduler) Add(system System) {
	entry := &schedulerEntry{
		system:   system,
		priority: systemPriority(system),
		stats: &systemStatsInternal{
			name:        systemName(system),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	s.entries = append(s.entries, entry)
	slices.SortStableFunc(s.entries, func(a, b *schedulerEntry) int {
		return cmp.Compare(b.priority, a.priority)
	})

	s.logger.Debug("system registered",
		zap.String("system", entry.stats.name),
		zap.Int("priority", entry.priority))

	if s.started {
		if starter, ok := system.(Starter); ok {
			starter.Start(s.world)
		}
	}
}

// Remove unregisters a system, firing its stop hook first if the scheduler
// is started. Returns whether the system was present.
func (s *Scheduler) Remove(system System) bool {
	for i, entry := range s.entries {
		if entry.system == system {
			if s.started {
				if stopper, ok := system.(Stopper); ok {
					stopper.Stop(s.world)
				}
			}
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.logger.Debug("system removed", zap.String("system", entry.stats.name))
			return true
		}
	}
	return false
}

// Started reports whether the scheduler is between Start and Stop.
func (s *Scheduler) Started() bool {
	return s.started
}

// Start marks the scheduler started and fires every start hook in priority
// order. A no-op if already started.
func (s *Scheduler) Start(w *World) {
	if s.started {
		return
	}
	s.started = true
	s.world = w
	for _, entry := range s.entries {
		if starter, ok := entry.system.(Starter); ok {
			starter.Start(w)
		}
	}
	s.logger.Info("scheduler started", zap.Int("systems", len(s.entries)))
}

// Stop fires every stop hook in reverse priority order and marks the
// scheduler stopped. A no-op if not started.
func (s *Scheduler) Stop(w *World) {
	if !s.started {
		return
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if stopper, ok := s.entries[i].system.(Stopper); ok {
			stopper.Stop(w)
		}
	}
	s.started = false
	s.world = nil
	s.logger.Info("scheduler stopped")
}

// Update runs every system once, synchronously, in priority order, then
// flushes the world's deferred command buffer.
func (s *Scheduler) Update(w *World, dt float64) {
	for _, entry := range s.entries {
		start := time.Now()
		entry.system.Update(w, dt)
		duration := time.Since(start)

		stats := entry.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	if err := w.FlushCommands(); err != nil {
		s.logger.Warn("deferred command failed", zap.Error(err))
	}
}

// Run executes update sweeps repeatedly at the given interval until the
// context is cancelled, computing dt from wall-clock time between ticks.
func (s *Scheduler) Run(ctx context.Context, w *World, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Update(w, dt)
		}
	}
}

// Stats returns statistics about system execution, in current priority order.
func (s *Scheduler) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.entries),
		Systems:     make([]SystemStats, len(s.entries)),
	}

	var totalExecs int64
	for i, entry := range s.entries {
		internal := entry.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Priority:       entry.priority,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
