package system

import (
	"time"

	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/world"
	"go.uber.org/zap"
)

// CommandSource yields the input commands for one tick.
// *scripting.Engine implements it.
type CommandSource interface {
	OnTick(tick uint64) []world.Command
}

// InputSystem pulls the tick's commands and applies them to the world.
// A failed command is logged and skipped.
type InputSystem struct {
	source CommandSource
	world  *world.State
	log    *zap.Logger
	tick   uint64
}

func NewInputSystem(source CommandSource, ws *world.State, log *zap.Logger) *InputSystem {
	return &InputSystem{source: source, world: ws, log: orNop(log)}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.tick++
	for _, cmd := range s.source.OnTick(s.tick) {
		if err := s.world.Apply(cmd); err != nil {
			s.log.Warn("command rejected",
				zap.Uint64("tick", s.tick),
				zap.Stringer("command", cmd),
				zap.Error(err))
		}
	}
}
