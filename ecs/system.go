package ecs

// System is a unit of logic run once per update sweep. The world handle is
// the data-access surface: systems call back into views, component ops, and
// the deferred command buffer.
type System interface {
	Update(w *World, dt float64)
}

// Starter is an optional system hook fired when the scheduler starts, or
// immediately when the system is added to an already-started scheduler.
type Starter interface {
	Start(w *World)
}

// Stopper is an optional system hook fired when the scheduler stops or the
// system is removed from a started scheduler.
type Stopper interface {
	Stop(w *World)
}

// Prioritized lets a system choose its execution order. Higher priorities
// run earlier; systems without a priority run at 0. Ties between equal
// priorities keep insertion order.
type Prioritized interface {
	Priority() int
}

func systemPriority(s System) int {
	if p, ok := s.(Prioritized); ok {
		return p.Priority()
	}
	return 0
}
