package system

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/world"
	"go.uber.org/zap"
)

// MovementSystem ticks every controller, then integrates its body.
// A controller that fails skips integration for that tick; the others
// carry on.
type MovementSystem struct {
	world   *world.State
	bus     *event.Bus
	log     *zap.Logger
	failing map[ecs.EntityID]bool // logged once per failure streak
}

func NewMovementSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *MovementSystem {
	s := &MovementSystem{
		world:   ws,
		bus:     bus,
		log:     orNop(log),
		failing: make(map[ecs.EntityID]bool),
	}
	event.Subscribe(bus, func(e event.AgentDespawned) { delete(s.failing, e.EntityID) })
	return s
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.world.Each(func(a *world.Agent) {
		if err := a.Ctrl.Tick(dt); err != nil {
			if !s.failing[a.ID] {
				s.log.Error("movement tick failed", zap.String("agent", a.Name), zap.Error(err))
				s.failing[a.ID] = true
			}
			event.Emit(s.bus, event.TickFailed{EntityID: a.ID, Err: err})
			return
		}
		if s.failing[a.ID] {
			s.log.Info("movement tick recovered", zap.String("agent", a.Name))
			delete(s.failing, a.ID)
		}
		a.Body.Integrate(dt)
	})
}
