package render

import (
	"fmt"

	"github.com/gridwalk/gridwalk/internal/grid"
)

// Depth is the draw-order layer of a category of world elements. Lower
// values draw in front. It never enters movement math.
type Depth float64

const (
	DepthGround Depth = 0
	DepthAgent  Depth = -1
)

func (d Depth) String() string {
	switch d {
	case DepthGround:
		return "ground"
	case DepthAgent:
		return "agent"
	}
	return fmt.Sprintf("depth(%g)", float64(d))
}

// Vertex is a 2D world point lifted onto a draw layer.
type Vertex struct {
	X, Y, Z float64
}

// Lift places p on layer d.
func Lift(p grid.WorldPoint, d Depth) Vertex {
	return Vertex{X: p.X, Y: p.Y, Z: float64(d)}
}

// PathPreview is a line-strip that mirrors an agent's move queue. Every
// vertex is forced onto the preview's layer.
type PathPreview struct {
	depth    Depth
	vertices []Vertex
}

func NewPathPreview(d Depth) *PathPreview {
	return &PathPreview{depth: d}
}

func (p *PathPreview) SetVertexCount(n int) {
	if n < 0 {
		n = 0
	}
	if cap(p.vertices) < n {
		p.vertices = make([]Vertex, n)
	}
	p.vertices = p.vertices[:n]
	for i := range p.vertices {
		p.vertices[i] = Vertex{Z: float64(p.depth)}
	}
}

// SetPosition sets vertex i. Out-of-range indices are ignored, like a line
// renderer with a shorter vertex count.
func (p *PathPreview) SetPosition(i int, w grid.WorldPoint) {
	if i < 0 || i >= len(p.vertices) {
		return
	}
	p.vertices[i] = Lift(w, p.depth)
}

func (p *PathPreview) Depth() Depth { return p.depth }

// Vertices returns a copy of the strip.
func (p *PathPreview) Vertices() []Vertex {
	out := make([]Vertex, len(p.vertices))
	copy(out, p.vertices)
	return out
}
