package grid

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Source is the tilemap collaborator queried once during initialization.
type Source interface {
	// CellSize returns the world size of one cell on each axis.
	CellSize() (x, y float64)
	// Anchor returns the world position of the grid's local (0,0) corner.
	Anchor() WorldPoint
	// GroundOrigin returns the ground layer's lowest cell, in grid-local cells.
	GroundOrigin() Cell
	// GroundSize returns the ground layer's extents in cells.
	GroundSize() (x, y int)
}

// Random is the random-number collaborator used for cell sampling.
type Random interface {
	// NextInt returns a uniform integer in [low, highExclusive).
	NextInt(low, highExclusive int) int
}

// Index converts between map cells and world positions for one map.
// It is shared read-only by every agent on the map once initialized.
// Not safe for concurrent Initialize calls; the tick loop is single-goroutine.
type Index struct {
	src Source
	rnd Random
	log *zap.Logger

	originX  int
	originY  int
	sizeX    int
	sizeY    int
	cellSize float64
	anchor   WorldPoint
	tiles    *TileField

	initialized bool
	initErr     error
}

func NewIndex(src Source, rnd Random, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{src: src, rnd: rnd, log: log}
}

// Initialize performs the one-time setup. Later calls return the first
// call's result without touching the source again.
func (g *Index) Initialize() error {
	if g.initialized {
		return g.initErr
	}
	return g.ForceInitialize()
}

// ForceInitialize re-reads the source unconditionally. The tile field and
// its terrain survive when the ground extents are unchanged.
func (g *Index) ForceInitialize() error {
	g.initialized = true
	g.initErr = nil

	if g.src == nil {
		g.initErr = fmt.Errorf("initialize grid: no source: %w", ErrGridUnavailable)
		g.log.Error("grid source missing")
		return g.initErr
	}

	sx, sy := g.src.CellSize()
	if sx != sy || sx <= 0 || math.IsNaN(sx) || math.IsInf(sx, 0) {
		g.initErr = &ConfigError{SizeX: sx, SizeY: sy}
		g.log.Error("grid cell size is not symmetric",
			zap.Float64("cell_size_x", sx),
			zap.Float64("cell_size_y", sy),
		)
		return g.initErr
	}
	g.cellSize = sx

	origin := g.src.GroundOrigin()
	g.originX, g.originY = origin.X, origin.Y
	g.sizeX, g.sizeY = g.src.GroundSize()
	g.anchor = g.src.Anchor()
	if g.tiles == nil || !g.tiles.sized(g.sizeX, g.sizeY) {
		g.tiles = NewTileField(g.sizeX, g.sizeY)
	}

	g.log.Info("grid initialized",
		zap.Stringer("origin", origin),
		zap.Int("size_x", g.sizeX),
		zap.Int("size_y", g.sizeY),
		zap.Float64("cell_size", g.cellSize),
	)
	return nil
}

// Initialized reports whether setup ran and succeeded.
func (g *Index) Initialized() bool { return g.initialized && g.initErr == nil }

// Err returns the stored initialization error, if any.
func (g *Index) Err() error { return g.initErr }

func (g *Index) ready() error {
	if !g.initialized {
		return fmt.Errorf("grid not initialized: %w", ErrGridUnavailable)
	}
	if g.initErr != nil {
		if errors.Is(g.initErr, ErrGridUnavailable) {
			return g.initErr
		}
		return fmt.Errorf("%w: %w", ErrGridUnavailable, g.initErr)
	}
	return nil
}

func (g *Index) Origin() Cell       { return Cell{g.originX, g.originY} }
func (g *Index) Size() (int, int)   { return g.sizeX, g.sizeY }
func (g *Index) CellSize() float64  { return g.cellSize }
func (g *Index) Tiles() *TileField  { return g.tiles }
func (g *Index) Anchor() WorldPoint { return g.anchor }

// Contains reports whether c lies inside the ground extents.
func (g *Index) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.sizeX && c.Y >= 0 && c.Y < g.sizeY
}

// CellToWorld returns the world position of the center of c.
func (g *Index) CellToWorld(c Cell) (WorldPoint, error) {
	if err := g.ready(); err != nil {
		return WorldPoint{}, err
	}
	return WorldPoint{
		X: g.anchor.X + (float64(c.X+g.originX)+0.5)*g.cellSize,
		Y: g.anchor.Y + (float64(c.Y+g.originY)+0.5)*g.cellSize,
	}, nil
}

// WorldToCell returns the cell containing p.
func (g *Index) WorldToCell(p WorldPoint) (Cell, error) {
	if err := g.ready(); err != nil {
		return Cell{}, err
	}
	gx := int(math.Floor((p.X - g.anchor.X) / g.cellSize))
	gy := int(math.Floor((p.Y - g.anchor.Y) / g.cellSize))
	return Cell{X: gx - g.originX, Y: gy - g.originY}, nil
}

// RandomCell samples a cell uniformly from the extents. Traversability is
// not consulted.
func (g *Index) RandomCell() (Cell, error) {
	if err := g.ready(); err != nil {
		return Cell{}, err
	}
	if g.rnd == nil {
		return Cell{}, fmt.Errorf("random cell: no random source: %w", ErrGridUnavailable)
	}
	if g.sizeX <= 0 || g.sizeY <= 0 {
		return Cell{}, fmt.Errorf("random cell in %dx%d grid: %w", g.sizeX, g.sizeY, ErrOutOfBounds)
	}
	return Cell{
		X: g.rnd.NextInt(0, g.sizeX),
		Y: g.rnd.NextInt(0, g.sizeY),
	}, nil
}

// RandomCellWorld returns the world center of a random cell.
func (g *Index) RandomCellWorld() (WorldPoint, error) {
	c, err := g.RandomCell()
	if err != nil {
		return WorldPoint{}, err
	}
	return g.CellToWorld(c)
}
