package world

import (
	"sort"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/grid"
)

// Occupancy tracks which agents stand in which cell. It follows the
// controllers' tracked cells, so it lags the body by at most one tick.
// Accessed only from the tick goroutine, no locks.
type Occupancy struct {
	cells map[grid.Cell]map[ecs.EntityID]struct{}
}

func NewOccupancy() *Occupancy {
	return &Occupancy{
		cells: make(map[grid.Cell]map[ecs.EntityID]struct{}),
	}
}

// Add places an entity in cell c.
func (o *Occupancy) Add(id ecs.EntityID, c grid.Cell) {
	set := o.cells[c]
	if set == nil {
		set = make(map[ecs.EntityID]struct{})
		o.cells[c] = set
	}
	set[id] = struct{}{}
}

// Remove takes an entity out of cell c.
func (o *Occupancy) Remove(id ecs.EntityID, c grid.Cell) {
	set := o.cells[c]
	if set == nil {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(o.cells, c)
	}
}

// Move updates an entity's cell.
func (o *Occupancy) Move(id ecs.EntityID, from, to grid.Cell) {
	if from == to {
		return
	}
	o.Remove(id, from)
	o.Add(id, to)
}

// At returns the entities in c, ordered by ID.
func (o *Occupancy) At(c grid.Cell) []ecs.EntityID {
	return sortedIDs(o.cells[c], nil)
}

// Around returns the entities within Chebyshev distance r of c, ordered
// by ID.
func (o *Occupancy) Around(c grid.Cell, r int) []ecs.EntityID {
	var out []ecs.EntityID
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for id := range o.cells[grid.Cell{X: c.X + dx, Y: c.Y + dy}] {
				out = append(out, id)
			}
		}
	}
	return sortedIDs(nil, out)
}

func sortedIDs(set map[ecs.EntityID]struct{}, ids []ecs.EntityID) []ecs.EntityID {
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
