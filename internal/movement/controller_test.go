package movement

import (
	"math"
	"testing"
	"time"

	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTick = 10 * time.Millisecond

type squareMap struct{ x, y int }

func (m squareMap) CellSize() (float64, float64) { return 1, 1 }
func (m squareMap) Anchor() grid.WorldPoint      { return grid.WorldPoint{} }
func (m squareMap) GroundOrigin() grid.Cell      { return grid.Cell{} }
func (m squareMap) GroundSize() (int, int)       { return m.x, m.y }

type fixedRandom struct{ v int }

func (r fixedRandom) NextInt(low, high int) int {
	if r.v < low || r.v >= high {
		return low
	}
	return r.v
}

type recordingPath struct {
	count    int
	vertices map[int]grid.WorldPoint
	draws    int
}

func (p *recordingPath) SetVertexCount(n int) {
	p.count = n
	p.vertices = make(map[int]grid.WorldPoint, n)
	p.draws++
}

func (p *recordingPath) SetPosition(i int, v grid.WorldPoint) { p.vertices[i] = v }

func givenAGrid(t *testing.T) *grid.Index {
	t.Helper()
	idx := grid.NewIndex(squareMap{10, 10}, fixedRandom{v: 7}, zap.NewNop())
	require.NoError(t, idx.Initialize())
	return idx
}

func givenASpawnedController(t *testing.T, at grid.Cell) (*Controller, *physics.Body, *recordingPath) {
	t.Helper()
	body := physics.NewBody(grid.WorldPoint{})
	path := &recordingPath{}
	c := NewController(givenAGrid(t), body, path, Params{})
	require.NoError(t, c.Spawn(at))
	return c, body, path
}

// step runs one controller tick followed by one physics step.
func step(t *testing.T, c *Controller, b *physics.Body) {
	t.Helper()
	require.NoError(t, c.Tick(testTick))
	b.Integrate(testTick)
}

func TestDefaults(t *testing.T) {
	c := NewController(givenAGrid(t), physics.NewBody(grid.WorldPoint{}), nil, Params{})
	assert.Equal(t, DefaultSpeed, c.Speed())
	assert.Equal(t, DefaultArrivalEpsilon, c.ArrivalEpsilon())
	assert.Equal(t, 10.0, c.Speed())
	assert.Equal(t, 0.1, c.ArrivalEpsilon())
}

func TestSpawn(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{X: 2, Y: 3})

	assert.Equal(t, grid.WorldPoint{X: 2.5, Y: 3.5}, body.Position())
	assert.Equal(t, grid.Cell{X: 2, Y: 3}, c.Cell())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, grid.Cell{X: 2, Y: 3}, c.CurrentMove().Cell)
	assert.Equal(t, 0, c.Queue().Count())
}

func TestIdleTickTracksPosition(t *testing.T) {
	c, body, path := givenASpawnedController(t, grid.Cell{})

	body.SetPosition(grid.WorldPoint{X: 4.2, Y: 6.9})
	require.NoError(t, c.Tick(testTick))

	assert.Equal(t, grid.Cell{X: 4, Y: 6}, c.Cell())
	assert.Equal(t, grid.WorldPoint{X: 4.2, Y: 6.9}, c.Position())
	assert.Equal(t, Idle, c.State())
	assert.True(t, body.Resting())

	// the preview is refreshed even with nothing queued
	assert.Equal(t, 1, path.count)
	assert.Equal(t, grid.WorldPoint{X: 4.2, Y: 6.9}, path.vertices[0])
}

func TestSteersTowardTheHead(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	_, err := c.EnqueueCell(grid.Cell{X: 3, Y: 4})
	require.NoError(t, err)

	require.NoError(t, c.Tick(testTick))

	assert.Equal(t, Moving, c.State())
	v := body.Velocity()
	assert.InDelta(t, DefaultSpeed, v.Len(), 1e-9)
	assert.InDelta(t, 6.0, v.X, 1e-9)
	assert.InDelta(t, 8.0, v.Y, 1e-9)
}

func TestArrivalConvergence(t *testing.T) {
	for _, target := range []grid.Cell{{X: 3, Y: 0}, {X: 0, Y: 7}, {X: 5, Y: 5}, {X: 9, Y: 2}} {
		t.Run(target.String(), func(t *testing.T) {
			c, body, _ := givenASpawnedController(t, grid.Cell{})
			m, err := c.EnqueueCell(target)
			require.NoError(t, err)

			d := body.Position().Dist(m.World)
			bound := int(math.Ceil(d/(c.Speed()*testTick.Seconds()))) + 1

			ticks := 0
			for ; ticks < bound; ticks++ {
				require.NoError(t, c.Tick(testTick))
				if body.Position().Dist(m.World) <= c.ArrivalEpsilon() {
					break
				}
				body.Integrate(testTick)
			}
			require.Less(t, ticks, bound, "did not arrive within %d ticks", bound)

			// one more tick registers the arrival and parks
			require.NoError(t, c.Tick(testTick))
			assert.True(t, c.Parked())
			assert.True(t, body.Resting())
			assert.Equal(t, 1, c.Queue().Count())
		})
	}
}

func TestCoarseTicksStillArrive(t *testing.T) {
	for _, dt := range []time.Duration{20 * time.Millisecond, 50 * time.Millisecond, 250 * time.Millisecond} {
		t.Run(dt.String(), func(t *testing.T) {
			c, body, _ := givenASpawnedController(t, grid.Cell{})
			first, err := c.EnqueueCell(grid.Cell{X: 2, Y: 1})
			require.NoError(t, err)
			last, err := c.EnqueueCell(grid.Cell{X: 5, Y: 5})
			require.NoError(t, err)

			var arrived []Move
			c.OnArrive(func(m Move) { arrived = append(arrived, m) })

			for i := 0; i < 1000 && !c.Parked(); i++ {
				require.NoError(t, c.Tick(dt))
				body.Integrate(dt)
			}

			require.True(t, c.Parked(), "stuck at %s heading for %s", body.Position(), c.CurrentMove().Cell)
			assert.Equal(t, []Move{first, last}, arrived)
			assert.LessOrEqual(t, body.Position().Dist(last.World), c.ArrivalEpsilon())
			assert.Equal(t, 1, c.Queue().Count())
		})
	}
}

func TestFinalStepLandsOnTarget(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	m, err := c.EnqueueCell(grid.Cell{X: 1, Y: 0})
	require.NoError(t, err)

	// one unit away, a 250ms step at speed 10 would cover 2.5 units
	const dt = 250 * time.Millisecond
	require.NoError(t, c.Tick(dt))
	assert.InDelta(t, 4.0, body.Velocity().Len(), 1e-9)

	body.Integrate(dt)
	assert.InDelta(t, 0, body.Position().Dist(m.World), 1e-9)
}

func TestAdvanceFiresOnceForTwoMoves(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	first, err := c.EnqueueCell(grid.Cell{X: 2, Y: 0})
	require.NoError(t, err)
	second, err := c.EnqueueCell(grid.Cell{X: 2, Y: 2})
	require.NoError(t, err)

	var arrivals []Move
	c.OnArrive(func(m Move) { arrivals = append(arrivals, m) })

	for i := 0; i < 200 && !c.Parked(); i++ {
		step(t, c, body)
	}

	require.True(t, c.Parked())
	assert.Equal(t, []Move{first, second}, arrivals)
	assert.Equal(t, 1, c.Queue().Count())
	head, err := c.Queue().Current()
	require.NoError(t, err)
	assert.Equal(t, second, head)

	// parked ticks neither move nor re-announce
	for i := 0; i < 10; i++ {
		step(t, c, body)
	}
	assert.Len(t, arrivals, 2)
	assert.LessOrEqual(t, body.Position().Dist(second.World), c.ArrivalEpsilon())
}

func TestExactHitDoesNotProduceNaN(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{X: 4, Y: 4})
	_, err := c.EnqueueCell(grid.Cell{X: 4, Y: 4})
	require.NoError(t, err)

	arrived := 0
	c.OnArrive(func(Move) { arrived++ })
	require.NoError(t, c.Tick(testTick))

	v := body.Velocity()
	assert.False(t, math.IsNaN(v.X) || math.IsNaN(v.Y))
	assert.True(t, body.Resting())
	assert.Equal(t, 1, arrived)
	assert.True(t, c.Parked())
}

func TestParkedControllerPicksUpNewMoves(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	_, err := c.EnqueueCell(grid.Cell{X: 1, Y: 0})
	require.NoError(t, err)
	for i := 0; i < 100 && !c.Parked(); i++ {
		step(t, c, body)
	}
	require.True(t, c.Parked())

	next, err := c.EnqueueCell(grid.Cell{X: 1, Y: 3})
	require.NoError(t, err)

	// the arrival tick advances; the following tick steers
	require.NoError(t, c.Tick(testTick))
	assert.Equal(t, next, c.CurrentMove())
	assert.Equal(t, 1, c.Queue().Count())
	assert.True(t, body.Resting())

	require.NoError(t, c.Tick(testTick))
	assert.False(t, body.Resting())
}

func TestStopHoldsUntilStart(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	c.Stop()
	_, err := c.EnqueueCell(grid.Cell{X: 5, Y: 0})
	require.NoError(t, err)

	require.NoError(t, c.Tick(testTick))
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Held())
	assert.True(t, body.Resting())

	require.NoError(t, c.Start())
	assert.Equal(t, Moving, c.State())
	require.NoError(t, c.Tick(testTick))
	assert.False(t, body.Resting())

	c.Stop()
	assert.True(t, body.Resting())
	assert.Equal(t, 1, c.Queue().Count(), "stopping keeps the queue")
}

func TestStartOnEmptyQueue(t *testing.T) {
	c, _, _ := givenASpawnedController(t, grid.Cell{})
	c.Stop()
	require.NoError(t, c.Start())
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Held())
}

func TestPathPreview(t *testing.T) {
	c, body, path := givenASpawnedController(t, grid.Cell{})
	a, err := c.EnqueueCell(grid.Cell{X: 6, Y: 0})
	require.NoError(t, err)
	b, err := c.EnqueueCell(grid.Cell{X: 6, Y: 6})
	require.NoError(t, err)

	step(t, c, body)

	require.Equal(t, 3, path.count)
	assert.Equal(t, grid.WorldPoint{X: 0.5, Y: 0.5}, path.vertices[0])
	assert.Equal(t, a.World, path.vertices[1])
	assert.Equal(t, b.World, path.vertices[2])
}

func TestCellChangeHook(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	_, err := c.EnqueueCell(grid.Cell{X: 2, Y: 0})
	require.NoError(t, err)

	var changes [][2]grid.Cell
	c.OnCellChange(func(from, to grid.Cell) { changes = append(changes, [2]grid.Cell{from, to}) })

	for i := 0; i < 100 && !c.Parked(); i++ {
		step(t, c, body)
	}
	assert.Equal(t, [][2]grid.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: 1, Y: 0}, {X: 2, Y: 0}},
	}, changes)
}

func TestTeleport(t *testing.T) {
	c, body, _ := givenASpawnedController(t, grid.Cell{})
	_, err := c.EnqueueCell(grid.Cell{X: 9, Y: 9})
	require.NoError(t, err)
	step(t, c, body)
	require.False(t, body.Resting())

	require.NoError(t, c.TeleportCell(grid.Cell{X: 5, Y: 1}))
	assert.Equal(t, grid.WorldPoint{X: 5.5, Y: 1.5}, body.Position())
	assert.Equal(t, grid.Cell{X: 5, Y: 1}, c.Cell())
	assert.True(t, body.Resting())
	assert.Equal(t, 1, c.Queue().Count(), "teleporting keeps pending moves")

	cell, err := c.TeleportRandom()
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{X: 7, Y: 7}, cell)
	assert.Equal(t, grid.WorldPoint{X: 7.5, Y: 7.5}, body.Position())
}

func TestUnavailableGridHaltsTheTick(t *testing.T) {
	idx := grid.NewIndex(squareMap{4, 4}, nil, nil)
	body := physics.NewBody(grid.WorldPoint{X: 1, Y: 1})
	c := NewController(idx, body, nil, Params{})

	assert.ErrorIs(t, c.Tick(testTick), grid.ErrGridUnavailable)
	assert.ErrorIs(t, c.Spawn(grid.Cell{}), grid.ErrGridUnavailable)
	_, err := c.EnqueueCell(grid.Cell{})
	assert.ErrorIs(t, err, grid.ErrGridUnavailable)
	assert.Equal(t, 0, c.Queue().Count())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "moving", Moving.String())
	assert.Equal(t, "state(7)", State(7).String())
}
