package grid

import (
	"fmt"
	"math"
)

// Cell is a discrete map coordinate, relative to the ground layer's origin.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// WorldPoint is a continuous 2D world-space position. It carries no draw
// depth; layering is the renderer's concern (see render.Depth).
type WorldPoint struct {
	X float64
	Y float64
}

func (p WorldPoint) Add(o WorldPoint) WorldPoint { return WorldPoint{p.X + o.X, p.Y + o.Y} }
func (p WorldPoint) Sub(o WorldPoint) WorldPoint { return WorldPoint{p.X - o.X, p.Y - o.Y} }
func (p WorldPoint) Scale(k float64) WorldPoint  { return WorldPoint{p.X * k, p.Y * k} }
func (p WorldPoint) Len() float64                { return math.Hypot(p.X, p.Y) }
func (p WorldPoint) Dist(o WorldPoint) float64   { return p.Sub(o).Len() }
func (p WorldPoint) IsZero() bool                { return p.X == 0 && p.Y == 0 }

// Normalize returns the unit vector in p's direction. The zero vector
// normalizes to itself.
func (p WorldPoint) Normalize() WorldPoint {
	l := p.Len()
	if l == 0 {
		return WorldPoint{}
	}
	return WorldPoint{p.X / l, p.Y / l}
}

func (p WorldPoint) String() string {
	return fmt.Sprintf("(%.3f,%.3f)", p.X, p.Y)
}
