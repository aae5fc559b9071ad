package system

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/core/event"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
)

// EventDispatchSystem delivers last tick's events at the start of the
// update phases.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
