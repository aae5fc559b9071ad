package system

import "time"

// Phase orders systems within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // script commands
	PhasePreUpdate               // last tick's events
	PhaseUpdate                  // controllers and bodies
	PhasePostUpdate              // reports and snapshots
	PhaseCleanup                 // destroy queued agents
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "phase?"
}

// System is implemented by every tick stage.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
