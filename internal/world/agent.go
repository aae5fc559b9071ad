package world

import (
	"fmt"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/physics"
	"github.com/gridwalk/gridwalk/internal/render"
)

// Agent is one walking entity: its body, its controller and the preview of
// its queued path. Accessed only from the tick goroutine.
type Agent struct {
	ID   ecs.EntityID
	Name string
	Body *physics.Body
	Ctrl *movement.Controller
	Path *render.PathPreview

	grid *grid.Index
	bus  *event.Bus
}

// EnqueueRandom queues a move to a uniformly random cell. Tile
// traversability is not consulted.
func (a *Agent) EnqueueRandom() (movement.Move, error) {
	cell, err := a.grid.RandomCell()
	if err != nil {
		return movement.Move{}, fmt.Errorf("agent %s: %w", a.Name, err)
	}
	return a.EnqueueCell(cell)
}

func (a *Agent) EnqueueCell(cell grid.Cell) (movement.Move, error) {
	m, err := a.Ctrl.EnqueueCell(cell)
	if err != nil {
		return movement.Move{}, fmt.Errorf("agent %s: %w", a.Name, err)
	}
	event.Emit(a.bus, event.MoveQueued{
		EntityID: a.ID,
		Cell:     m.Cell,
		World:    m.World,
		Queued:   a.Ctrl.Queue().Count(),
	})
	return m, nil
}

func (a *Agent) TeleportCell(cell grid.Cell) error {
	if err := a.Ctrl.TeleportCell(cell); err != nil {
		return fmt.Errorf("agent %s: %w", a.Name, err)
	}
	event.Emit(a.bus, event.Teleported{EntityID: a.ID, Cell: a.Ctrl.Cell()})
	return nil
}

func (a *Agent) TeleportRandom() (grid.Cell, error) {
	cell, err := a.Ctrl.TeleportRandom()
	if err != nil {
		return grid.Cell{}, fmt.Errorf("agent %s: %w", a.Name, err)
	}
	event.Emit(a.bus, event.Teleported{EntityID: a.ID, Cell: cell})
	return cell, nil
}

func (a *Agent) Stop() { a.Ctrl.Stop() }

func (a *Agent) Start() error {
	if err := a.Ctrl.Start(); err != nil {
		return fmt.Errorf("agent %s: %w", a.Name, err)
	}
	return nil
}

// Targets returns the cells of the queued moves, head first.
func (a *Agent) Targets() []grid.Cell {
	moves := a.Ctrl.Queue().Moves()
	cells := make([]grid.Cell, len(moves))
	for i, m := range moves {
		cells[i] = m.Cell
	}
	return cells
}
