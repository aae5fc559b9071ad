package world

import (
	"errors"
	"fmt"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/physics"
	"github.com/gridwalk/gridwalk/internal/render"
	"go.uber.org/zap"
)

var (
	ErrDuplicateAgent = errors.New("agent name already in use")
	ErrUnknownAgent   = errors.New("unknown agent")
)

// State is the set of live agents on one map. Iteration follows spawn
// order so ticks are deterministic for a given seed.
// Accessed only from the tick goroutine, no locks needed.
type State struct {
	grid   *grid.Index
	bus    *event.Bus
	ecs    *ecs.World
	params movement.Params
	log    *zap.Logger

	agents *ecs.Store[Agent]
	order  []ecs.EntityID
	byName map[string]ecs.EntityID
	occ    *Occupancy
}

func NewState(idx *grid.Index, bus *event.Bus, w *ecs.World, params movement.Params, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		grid:   idx,
		bus:    bus,
		ecs:    w,
		params: params,
		log:    log,
		agents: ecs.NewStore[Agent](),
		order:  make([]ecs.EntityID, 0, 8),
		byName: make(map[string]ecs.EntityID, 8),
		occ:    NewOccupancy(),
	}
	w.Register(s)
	return s
}

func (s *State) Grid() *grid.Index { return s.grid }
func (s *State) Count() int        { return len(s.order) }

// Spawn creates an agent centered on cell, Idle with an empty queue.
func (s *State) Spawn(name string, cell grid.Cell) (*Agent, error) {
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("spawn %s: %w", name, ErrDuplicateAgent)
	}

	body := physics.NewBody(grid.WorldPoint{})
	path := render.NewPathPreview(render.DepthAgent)
	ctrl := movement.NewController(s.grid, body, path, s.params)
	if err := ctrl.Spawn(cell); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	id := s.ecs.CreateEntity()
	a := &Agent{
		ID:   id,
		Name: name,
		Body: body,
		Ctrl: ctrl,
		Path: path,
		grid: s.grid,
		bus:  s.bus,
	}
	ctrl.OnArrive(func(m movement.Move) {
		event.Emit(s.bus, event.MoveArrived{EntityID: id, Cell: m.Cell, World: m.World})
	})
	ctrl.OnCellChange(func(from, to grid.Cell) {
		s.occ.Move(id, from, to)
		event.Emit(s.bus, event.CellChanged{EntityID: id, From: from, To: to})
	})

	s.agents.Set(id, a)
	s.order = append(s.order, id)
	s.byName[name] = id
	s.occ.Add(id, cell)
	event.Emit(s.bus, event.AgentSpawned{EntityID: id, Name: name, Cell: cell})
	s.log.Debug("agent spawned", zap.String("agent", name), zap.Stringer("cell", cell))
	return a, nil
}

// Despawn queues the named agent for removal at the end of the tick.
func (s *State) Despawn(name string) error {
	id, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("despawn %s: %w", name, ErrUnknownAgent)
	}
	s.ecs.MarkForDestruction(id)
	return nil
}

// Remove drops the agent's bookkeeping. Called by the ECS world when the
// entity is destroyed.
func (s *State) Remove(id ecs.EntityID) {
	a, ok := s.agents.Get(id)
	if !ok {
		return
	}
	s.agents.Remove(id)
	delete(s.byName, a.Name)
	s.occ.Remove(id, a.Ctrl.Cell())
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	event.Emit(s.bus, event.AgentDespawned{EntityID: id, Name: a.Name})
}

func (s *State) Agent(name string) (*Agent, bool) {
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.agents.Get(id)
}

func (s *State) ByID(id ecs.EntityID) (*Agent, bool) {
	return s.agents.Get(id)
}

// Each calls fn for every live agent in spawn order.
func (s *State) Each(fn func(a *Agent)) {
	for _, id := range s.order {
		if a, ok := s.agents.Get(id); ok {
			fn(a)
		}
	}
}

// Probe reports the cell and tile under a world point. Points outside the
// map resolve to a cell but return grid.ErrOutOfBounds for the tile.
func (s *State) Probe(p grid.WorldPoint) (grid.Cell, grid.Tile, error) {
	cell, err := s.grid.WorldToCell(p)
	if err != nil {
		return grid.Cell{}, grid.Tile{}, err
	}
	tile, err := s.grid.Tiles().Get(cell)
	if err != nil {
		return cell, grid.Tile{}, err
	}
	return cell, tile, nil
}

// AgentsAt returns the agents whose tracked cell is c.
func (s *State) AgentsAt(c grid.Cell) []*Agent {
	return s.resolve(s.occ.At(c))
}

// AgentsAround returns the agents within Chebyshev distance r of c.
func (s *State) AgentsAround(c grid.Cell, r int) []*Agent {
	return s.resolve(s.occ.Around(c, r))
}

func (s *State) resolve(ids []ecs.EntityID) []*Agent {
	out := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.agents.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}
