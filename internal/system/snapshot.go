package system

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/render"
	"github.com/gridwalk/gridwalk/internal/world"
)

// SnapshotSystem writes a text frame of the map every n ticks.
type SnapshotSystem struct {
	world     *world.State
	snap      *render.Snapshotter
	out       io.Writer
	every     uint64
	tickCount uint64
}

// NewSnapshotSystem returns a system that writes to out every n ticks.
// n == 0 disables it.
func NewSnapshotSystem(ws *world.State, snap *render.Snapshotter, out io.Writer, every uint64) *SnapshotSystem {
	return &SnapshotSystem{world: ws, snap: snap, out: out, every: every}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.every == 0 || s.tickCount%s.every != 0 {
		return
	}
	fmt.Fprintf(s.out, "tick %d\n%s\n", s.tickCount, s.Frame())
}

// Frame renders the current map, agents and queued targets.
func (s *SnapshotSystem) Frame() string {
	var markers []render.Marker
	s.world.Each(func(a *world.Agent) {
		for _, c := range a.Targets() {
			markers = append(markers, render.Marker{Cell: c, Glyph: '*', Kind: render.MarkTarget})
		}
		markers = append(markers, render.Marker{Cell: a.Ctrl.Cell(), Glyph: glyph(a.Name), Kind: render.MarkAgent})
	})
	return s.snap.Render(s.world.Grid().Tiles(), markers)
}

func glyph(name string) rune {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return '@'
	}
	return r
}
