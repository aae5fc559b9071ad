package system

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: orNop(log)}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := len(s.world.FlushDestroyQueue()); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n))
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
