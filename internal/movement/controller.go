package movement

import (
	"fmt"
	"math"
	"time"

	"github.com/gridwalk/gridwalk/internal/grid"
)

const (
	DefaultSpeed          = 10.0
	DefaultArrivalEpsilon = 0.1
)

// Body is the physics/transform collaborator driven by a Controller.
type Body interface {
	Position() grid.WorldPoint
	SetVelocity(v grid.WorldPoint)
	SetPosition(p grid.WorldPoint)
}

// PathRenderer draws the queue preview: vertex 0 is the entity, the rest are
// the queued destinations in order.
type PathRenderer interface {
	SetVertexCount(n int)
	SetPosition(i int, p grid.WorldPoint)
}

type State int

const (
	Idle State = iota
	Moving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Params tunes a controller. Zero fields take the defaults.
type Params struct {
	Speed          float64
	ArrivalEpsilon float64
}

// Controller steers one entity through its move queue, one tick at a time.
// Not safe for concurrent use; it is driven from the tick goroutine only.
type Controller struct {
	grid  *grid.Index
	body  Body
	path  PathRenderer
	queue *Queue

	speed   float64
	epsilon float64

	cell     grid.Cell
	position grid.WorldPoint
	current  Move
	state    State
	held     bool
	arrived  bool
	located  bool

	onArrive     func(Move)
	onCellChange func(from, to grid.Cell)
}

// NewController binds a controller to its map, body and optional preview.
// path may be nil.
func NewController(idx *grid.Index, body Body, path PathRenderer, p Params) *Controller {
	if p.Speed <= 0 {
		p.Speed = DefaultSpeed
	}
	if p.ArrivalEpsilon <= 0 {
		p.ArrivalEpsilon = DefaultArrivalEpsilon
	}
	return &Controller{
		grid:    idx,
		body:    body,
		path:    path,
		queue:   NewQueue(),
		speed:   p.Speed,
		epsilon: p.ArrivalEpsilon,
	}
}

func (c *Controller) Cell() grid.Cell           { return c.cell }
func (c *Controller) Position() grid.WorldPoint { return c.position }
func (c *Controller) CurrentMove() Move         { return c.current }
func (c *Controller) State() State              { return c.state }
func (c *Controller) Queue() *Queue             { return c.queue }
func (c *Controller) Speed() float64            { return c.speed }
func (c *Controller) ArrivalEpsilon() float64   { return c.epsilon }

// Held reports whether Stop suppressed motion.
func (c *Controller) Held() bool { return c.held }

// Parked reports whether the controller sits on its last queued move.
func (c *Controller) Parked() bool {
	return c.state == Moving && c.arrived && c.queue.Count() == 1
}

// OnArrive registers fn to run once per move when the entity reaches it.
func (c *Controller) OnArrive(fn func(Move)) { c.onArrive = fn }

// OnCellChange registers fn to run when the entity's cell differs from the
// previous tick's.
func (c *Controller) OnCellChange(fn func(from, to grid.Cell)) { c.onCellChange = fn }

// Spawn places the entity on the center of cell and resets it to Idle with
// the spawn cell as its current move.
func (c *Controller) Spawn(cell grid.Cell) error {
	world, err := c.grid.CellToWorld(cell)
	if err != nil {
		return fmt.Errorf("spawn at %s: %w", cell, err)
	}
	c.body.SetPosition(world)
	c.body.SetVelocity(grid.WorldPoint{})
	c.position = world
	c.cell = cell
	c.current = NewMove(cell, world)
	c.state = Idle
	c.arrived = false
	c.located = true
	return nil
}

// Enqueue appends m to the move queue.
func (c *Controller) Enqueue(m Move) {
	c.queue.Append(m)
}

// EnqueueCell appends a move to the center of cell.
func (c *Controller) EnqueueCell(cell grid.Cell) (Move, error) {
	world, err := c.grid.CellToWorld(cell)
	if err != nil {
		return Move{}, fmt.Errorf("enqueue %s: %w", cell, err)
	}
	m := NewMove(cell, world)
	c.queue.Append(m)
	return m, nil
}

// Stop halts motion and keeps the queue. The controller stays Idle until
// Start is called.
func (c *Controller) Stop() {
	c.held = true
	c.state = Idle
	c.body.SetVelocity(grid.WorldPoint{})
}

// Start releases a Stop and resumes toward the queue head, if any.
func (c *Controller) Start() error {
	c.held = false
	if c.queue.Count() == 0 {
		return nil
	}
	return c.promote()
}

// TeleportCell moves the entity to the center of cell instantly. The queue
// is untouched; the next tick steers from the new position.
func (c *Controller) TeleportCell(cell grid.Cell) error {
	world, err := c.grid.CellToWorld(cell)
	if err != nil {
		return fmt.Errorf("teleport to %s: %w", cell, err)
	}
	return c.TeleportWorld(world)
}

// TeleportRandom moves the entity to the center of a random cell.
func (c *Controller) TeleportRandom() (grid.Cell, error) {
	cell, err := c.grid.RandomCell()
	if err != nil {
		return grid.Cell{}, fmt.Errorf("teleport random: %w", err)
	}
	return cell, c.TeleportCell(cell)
}

// TeleportWorld moves the entity to p instantly.
func (c *Controller) TeleportWorld(p grid.WorldPoint) error {
	c.body.SetPosition(p)
	c.body.SetVelocity(grid.WorldPoint{})
	c.arrived = false
	return c.refresh()
}

// Tick runs one simulation step: track position and cell, steer toward the
// current move, advance the queue on arrival and refresh the preview.
// An Idle controller that is not held starts on the queue head as soon as
// the queue holds one move, not only when it holds more than one.
// The requested speed is capped so that one step of dt ends on the target
// instead of past it. An error aborts the step for this controller only.
func (c *Controller) Tick(dt time.Duration) error {
	if err := c.refresh(); err != nil {
		return err
	}
	err := c.steer(dt)
	c.drawPath()
	return err
}

func (c *Controller) refresh() error {
	c.position = c.body.Position()
	cell, err := c.grid.WorldToCell(c.position)
	if err != nil {
		return fmt.Errorf("locate entity: %w", err)
	}
	prev := c.cell
	c.cell = cell
	if c.located && prev != cell && c.onCellChange != nil {
		c.onCellChange(prev, cell)
	}
	c.located = true
	return nil
}

func (c *Controller) promote() error {
	head, err := c.queue.Current()
	if err != nil {
		return err
	}
	if head != c.current {
		c.arrived = false
	}
	c.current = head
	c.state = Moving
	return nil
}

func (c *Controller) steer(dt time.Duration) error {
	if c.queue.Count() == 0 {
		return nil
	}
	if c.state == Idle {
		if c.held {
			return nil
		}
		if err := c.promote(); err != nil {
			return err
		}
	}

	// An exact hit has distance 0 and is handled as an arrival, so the
	// heading below is never normalized from a zero vector.
	if d := c.position.Dist(c.current.World); d > c.epsilon {
		heading := c.current.World.Sub(c.position).Normalize()
		c.body.SetVelocity(heading.Scale(c.stepSpeed(d, dt)))
		return nil
	}

	c.body.SetVelocity(grid.WorldPoint{})
	if !c.arrived {
		c.arrived = true
		if c.onArrive != nil {
			c.onArrive(c.current)
		}
	}
	if c.queue.Count() > 1 {
		if err := c.queue.Advance(); err != nil {
			return err
		}
		next, err := c.queue.Current()
		if err != nil {
			return err
		}
		c.current = next
		c.arrived = false
	}
	return nil
}

// stepSpeed is the configured speed, lowered when a full step of dt would
// carry the entity past a target d away.
func (c *Controller) stepSpeed(d float64, dt time.Duration) float64 {
	if dt <= 0 {
		return c.speed
	}
	return math.Min(c.speed, d/dt.Seconds())
}

func (c *Controller) drawPath() {
	if c.path == nil {
		return
	}
	c.path.SetVertexCount(c.queue.Count() + 1)
	c.path.SetPosition(0, c.position)
	c.queue.each(func(i int, m Move) {
		c.path.SetPosition(i+1, m.World)
	})
}
