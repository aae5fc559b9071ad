package event

import (
	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/grid"
)

type AgentSpawned struct {
	EntityID ecs.EntityID
	Name     string
	Cell     grid.Cell
}

type AgentDespawned struct {
	EntityID ecs.EntityID
	Name     string
}

// CellChanged fires when an agent's tracked cell changes, including by
// teleport.
type CellChanged struct {
	EntityID ecs.EntityID
	From, To grid.Cell
}

type MoveQueued struct {
	EntityID ecs.EntityID
	Cell     grid.Cell
	World    grid.WorldPoint
	Queued   int
}

type MoveArrived struct {
	EntityID ecs.EntityID
	Cell     grid.Cell
	World    grid.WorldPoint
}

type Teleported struct {
	EntityID ecs.EntityID
	Cell     grid.Cell
}

// TickFailed reports an agent whose controller refused to tick.
type TickFailed struct {
	EntityID ecs.EntityID
	Err      error
}
