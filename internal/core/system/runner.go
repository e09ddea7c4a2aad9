package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and records how long
// the last full tick took.
type Runner struct {
	systems  []System
	sorted   bool
	lastTick time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 4),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once and returns the elapsed wall time.
func (r *Runner) Tick(dt time.Duration) time.Duration {
	r.ensureSorted()
	start := time.Now()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.lastTick = time.Since(start)
	return r.lastTick
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// LastTick returns the duration of the most recent Tick.
func (r *Runner) LastTick() time.Duration {
	return r.lastTick
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		// Stable keeps registration order within a phase.
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
