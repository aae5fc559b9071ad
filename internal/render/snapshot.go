package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gridwalk/gridwalk/internal/grid"
)

// MarkerKind selects how a cell marker is styled.
type MarkerKind int

const (
	MarkAgent MarkerKind = iota
	MarkTarget
)

// Marker pins a glyph to a cell in a snapshot.
type Marker struct {
	Cell  grid.Cell
	Glyph rune
	Kind  MarkerKind
}

// Snapshotter draws the tile field and markers as a bordered text frame,
// row y = sizeY-1 at the top.
type Snapshotter struct {
	frame    lipgloss.Style
	ground   lipgloss.Style
	blocked  lipgloss.Style
	agent    lipgloss.Style
	target   lipgloss.Style
	maxWidth int
}

// NewSnapshotter builds styles on r. A nil renderer uses lipgloss's default.
func NewSnapshotter(r *lipgloss.Renderer) *Snapshotter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Snapshotter{
		frame:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
		ground:   r.NewStyle().Foreground(lipgloss.Color("8")),
		blocked:  r.NewStyle().Foreground(lipgloss.Color("1")),
		agent:    r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		target:   r.NewStyle().Foreground(lipgloss.Color("11")),
		maxWidth: 120,
	}
}

// Render returns one frame. Markers outside the field are skipped; when two
// markers share a cell the later one wins, except that agents always win
// over targets.
func (s *Snapshotter) Render(tiles *grid.TileField, markers []Marker) string {
	if tiles == nil {
		return s.frame.Render("(no map)")
	}
	sx, sy := tiles.Size()
	if sx > s.maxWidth {
		sx = s.maxWidth
	}

	at := make(map[grid.Cell]Marker, len(markers))
	for _, m := range markers {
		if prev, ok := at[m.Cell]; ok && prev.Kind == MarkAgent && m.Kind != MarkAgent {
			continue
		}
		at[m.Cell] = m
	}

	rows := make([]string, 0, sy)
	var b strings.Builder
	for y := sy - 1; y >= 0; y-- {
		b.Reset()
		for x := 0; x < sx; x++ {
			c := grid.Cell{X: x, Y: y}
			if m, ok := at[c]; ok {
				b.WriteString(s.styleFor(m.Kind).Render(string(m.Glyph)))
				continue
			}
			tile, err := tiles.Get(c)
			if err == nil && !tile.Traversable {
				b.WriteString(s.blocked.Render("#"))
				continue
			}
			b.WriteString(s.ground.Render("."))
		}
		rows = append(rows, b.String())
	}
	return s.frame.Render(strings.Join(rows, "\n"))
}

func (s *Snapshotter) styleFor(k MarkerKind) lipgloss.Style {
	if k == MarkAgent {
		return s.agent
	}
	return s.target
}
