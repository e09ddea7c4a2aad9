package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: operator commands
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: territory logic
	PhasePersist                 // 3: flush dirty claim state
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
