package grid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSource struct {
	sizeX, sizeY float64
	anchor       grid.WorldPoint
	origin       grid.Cell
	extX, extY   int
	reads        int
}

func (s *stubSource) CellSize() (float64, float64) {
	s.reads++
	return s.sizeX, s.sizeY
}

func (s *stubSource) Anchor() grid.WorldPoint { return s.anchor }
func (s *stubSource) GroundOrigin() grid.Cell { return s.origin }
func (s *stubSource) GroundSize() (int, int)  { return s.extX, s.extY }

func givenASquareSource(extX, extY int) *stubSource {
	return &stubSource{sizeX: 1, sizeY: 1, extX: extX, extY: extY}
}

func givenAnIndex(t *testing.T, src grid.Source) *grid.Index {
	t.Helper()
	idx := grid.NewIndex(src, rng.New(99), zap.NewNop())
	require.NoError(t, idx.Initialize())
	return idx
}

func TestCellToWorld(t *testing.T) {
	t.Run("unit cells at the origin map to cell centers", func(t *testing.T) {
		idx := givenAnIndex(t, givenASquareSource(10, 10))

		p, err := idx.CellToWorld(grid.Cell{X: 3, Y: 4})
		require.NoError(t, err)
		assert.Equal(t, grid.WorldPoint{X: 3.5, Y: 4.5}, p)
	})

	t.Run("origin offset and anchor are applied", func(t *testing.T) {
		src := &stubSource{
			sizeX:  2,
			sizeY:  2,
			anchor: grid.WorldPoint{X: 100, Y: -50},
			origin: grid.Cell{X: -5, Y: -3},
			extX:   10,
			extY:   6,
		}
		idx := givenAnIndex(t, src)

		p, err := idx.CellToWorld(grid.Cell{X: 0, Y: 0})
		require.NoError(t, err)
		assert.InDelta(t, 100+(-5+0.5)*2, p.X, 1e-9)
		assert.InDelta(t, -50+(-3+0.5)*2, p.Y, 1e-9)
	})
}

func TestWorldToCell(t *testing.T) {
	idx := givenAnIndex(t, givenASquareSource(10, 10))

	cases := []struct {
		name string
		in   grid.WorldPoint
		want grid.Cell
	}{
		{"center", grid.WorldPoint{X: 2.5, Y: 7.5}, grid.Cell{X: 2, Y: 7}},
		{"lower corner belongs to the cell", grid.WorldPoint{X: 2, Y: 7}, grid.Cell{X: 2, Y: 7}},
		{"just below the upper edge", grid.WorldPoint{X: 2.999, Y: 7.999}, grid.Cell{X: 2, Y: 7}},
		{"negative positions floor downward", grid.WorldPoint{X: -0.2, Y: -1.1}, grid.Cell{X: -1, Y: -2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := idx.WorldToCell(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	sources := map[string]*stubSource{
		"unit":   givenASquareSource(12, 9),
		"offset": {sizeX: 0.32, sizeY: 0.32, anchor: grid.WorldPoint{X: -3.3, Y: 8.1}, origin: grid.Cell{X: -7, Y: 4}, extX: 20, extY: 15},
		"large":  {sizeX: 16, sizeY: 16, origin: grid.Cell{X: 3, Y: -9}, extX: 8, extY: 8},
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			idx := givenAnIndex(t, src)
			sx, sy := idx.Size()
			for x := 0; x < sx; x++ {
				for y := 0; y < sy; y++ {
					c := grid.Cell{X: x, Y: y}
					p, err := idx.CellToWorld(c)
					require.NoError(t, err)
					back, err := idx.WorldToCell(p)
					require.NoError(t, err)
					require.Equal(t, c, back)
				}
			}
		})
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	src := &stubSource{sizeX: 2, sizeY: 2, origin: grid.Cell{X: -1, Y: 2}, extX: 4, extY: 3}
	once := givenAnIndex(t, src)

	twiceSrc := *src
	twiceSrc.reads = 0
	twice := grid.NewIndex(&twiceSrc, rng.New(1), zap.NewNop())
	require.NoError(t, twice.Initialize())
	require.NoError(t, twice.Initialize())

	assert.Equal(t, once.Origin(), twice.Origin())
	assert.Equal(t, once.CellSize(), twice.CellSize())
	ox, oy := once.Size()
	tx, ty := twice.Size()
	assert.Equal(t, ox, tx)
	assert.Equal(t, oy, ty)
	assert.Equal(t, 1, twiceSrc.reads, "second Initialize must not re-read the source")
}

func TestForceInitializeRereads(t *testing.T) {
	src := givenASquareSource(3, 3)
	idx := givenAnIndex(t, src)
	src.extX = 5
	require.NoError(t, idx.ForceInitialize())
	sx, _ := idx.Size()
	assert.Equal(t, 5, sx)
	assert.Equal(t, 2, src.reads)
}

func TestAsymmetricCellSize(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &stubSource{sizeX: 1, sizeY: 2, extX: 4, extY: 4}
	idx := grid.NewIndex(src, rng.New(1), zap.New(core))

	err := idx.Initialize()
	require.ErrorIs(t, err, grid.ErrAsymmetricCellSize)
	var cfgErr *grid.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 1.0, cfgErr.SizeX)
	assert.Equal(t, 2.0, cfgErr.SizeY)

	t.Run("is reported once", func(t *testing.T) {
		require.ErrorIs(t, idx.Initialize(), grid.ErrAsymmetricCellSize)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})

	t.Run("further calls are refused", func(t *testing.T) {
		assert.False(t, idx.Initialized())

		_, err := idx.CellToWorld(grid.Cell{})
		assert.ErrorIs(t, err, grid.ErrGridUnavailable)
		assert.ErrorIs(t, err, grid.ErrAsymmetricCellSize)

		_, err = idx.WorldToCell(grid.WorldPoint{})
		assert.ErrorIs(t, err, grid.ErrGridUnavailable)

		_, err = idx.RandomCell()
		assert.ErrorIs(t, err, grid.ErrGridUnavailable)

		_, err = idx.RandomCellWorld()
		assert.ErrorIs(t, err, grid.ErrGridUnavailable)
	})
}

func TestNonPositiveCellSizeRejected(t *testing.T) {
	for _, size := range []float64{0, -1, math.NaN()} {
		idx := grid.NewIndex(&stubSource{sizeX: size, sizeY: size, extX: 1, extY: 1}, nil, nil)
		assert.ErrorIs(t, idx.Initialize(), grid.ErrAsymmetricCellSize)
	}
}

func TestUninitializedIndexRefuses(t *testing.T) {
	idx := grid.NewIndex(givenASquareSource(2, 2), rng.New(1), nil)
	_, err := idx.CellToWorld(grid.Cell{})
	assert.ErrorIs(t, err, grid.ErrGridUnavailable)
}

func TestRandomCellStaysInExtents(t *testing.T) {
	idx := givenAnIndex(t, givenASquareSource(5, 5))

	seen := make(map[grid.Cell]bool)
	for i := 0; i < 1000; i++ {
		c, err := idx.RandomCell()
		require.NoError(t, err)
		require.True(t, c.X >= 0 && c.X < 5, "x out of range: %v", c)
		require.True(t, c.Y >= 0 && c.Y < 5, "y out of range: %v", c)
		seen[c] = true
	}
	assert.Greater(t, len(seen), 20, "1000 samples should cover most of a 5x5 grid")
}

func TestRandomCellIgnoresTraversability(t *testing.T) {
	idx := givenAnIndex(t, givenASquareSource(1, 1))
	require.NoError(t, idx.Tiles().Set(grid.Cell{}, false))

	c, err := idx.RandomCell()
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{}, c)
}

func TestRandomCellWorldIsACellCenter(t *testing.T) {
	idx := givenAnIndex(t, givenASquareSource(6, 4))
	for i := 0; i < 100; i++ {
		p, err := idx.RandomCellWorld()
		require.NoError(t, err)
		assert.Equal(t, 0.5, p.X-math.Floor(p.X))
		assert.Equal(t, 0.5, p.Y-math.Floor(p.Y))
	}
}

func TestRandomCellWithoutSource(t *testing.T) {
	idx := grid.NewIndex(givenASquareSource(2, 2), nil, nil)
	require.NoError(t, idx.Initialize())
	_, err := idx.RandomCell()
	assert.ErrorIs(t, err, grid.ErrGridUnavailable)
}

func TestContains(t *testing.T) {
	idx := givenAnIndex(t, givenASquareSource(3, 2))
	assert.True(t, idx.Contains(grid.Cell{X: 2, Y: 1}))
	assert.False(t, idx.Contains(grid.Cell{X: 3, Y: 1}))
	assert.False(t, idx.Contains(grid.Cell{X: 0, Y: -1}))
}
