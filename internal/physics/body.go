package physics

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/grid"
)

// Body is a kinematic point body: no mass, no collisions. The movement
// controller sets its velocity; Integrate advances it.
type Body struct {
	pos grid.WorldPoint
	vel grid.WorldPoint
}

func NewBody(pos grid.WorldPoint) *Body {
	return &Body{pos: pos}
}

func (b *Body) Position() grid.WorldPoint     { return b.pos }
func (b *Body) Velocity() grid.WorldPoint     { return b.vel }
func (b *Body) SetPosition(p grid.WorldPoint) { b.pos = p }
func (b *Body) SetVelocity(v grid.WorldPoint) { b.vel = v }

// Integrate moves the body by velocity * dt.
func (b *Body) Integrate(dt time.Duration) {
	if b.vel.IsZero() || dt <= 0 {
		return
	}
	b.pos = b.pos.Add(b.vel.Scale(dt.Seconds()))
}

// Resting reports whether the body has no velocity.
func (b *Body) Resting() bool { return b.vel.IsZero() }
