package system

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/world"
	"go.uber.org/zap"
)

// Stats counts the events seen by a ReportSystem.
type Stats struct {
	Spawned     int
	Despawned   int
	Queued      int
	Arrived     int
	CellChanges int
	Teleports   int
	Failures    int
}

// ReportSystem logs agent activity at debug level and keeps running
// totals. Events are recorded as they are dispatched; Update flushes the
// tick's log lines.
type ReportSystem struct {
	world *world.State
	log   *zap.Logger
	stats Stats
	lines []func()
}

func NewReportSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *ReportSystem {
	s := &ReportSystem{world: ws, log: orNop(log)}

	event.Subscribe(bus, func(e event.AgentSpawned) {
		s.stats.Spawned++
		s.note("agent spawned", zap.String("agent", e.Name), zap.Stringer("cell", e.Cell))
	})
	event.Subscribe(bus, func(e event.AgentDespawned) {
		s.stats.Despawned++
		s.note("agent despawned", zap.String("agent", e.Name))
	})
	event.Subscribe(bus, func(e event.MoveQueued) {
		s.stats.Queued++
		s.note("move queued", s.agent(e.EntityID), zap.Stringer("cell", e.Cell), zap.Int("queued", e.Queued))
	})
	event.Subscribe(bus, func(e event.MoveArrived) {
		s.stats.Arrived++
		s.note("move arrived", s.agent(e.EntityID), zap.Stringer("cell", e.Cell))
	})
	event.Subscribe(bus, func(e event.CellChanged) {
		s.stats.CellChanges++
		s.note("cell changed", s.agent(e.EntityID), zap.Stringer("from", e.From), zap.Stringer("to", e.To))
	})
	event.Subscribe(bus, func(e event.Teleported) {
		s.stats.Teleports++
		s.note("teleported", s.agent(e.EntityID), zap.Stringer("cell", e.Cell))
	})
	event.Subscribe(bus, func(e event.TickFailed) {
		s.stats.Failures++
	})
	return s
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ReportSystem) Update(_ time.Duration) {
	for _, line := range s.lines {
		line()
	}
	s.lines = s.lines[:0]
}

func (s *ReportSystem) Stats() Stats { return s.stats }

func (s *ReportSystem) note(msg string, fields ...zap.Field) {
	s.lines = append(s.lines, func() { s.log.Debug(msg, fields...) })
}

// agent names the entity if it is still live.
func (s *ReportSystem) agent(id ecs.EntityID) zap.Field {
	if a, ok := s.world.ByID(id); ok {
		return zap.String("agent", a.Name)
	}
	return zap.Uint64("entity", uint64(id))
}
