package grid

import "fmt"

// Tile holds per-cell terrain flags.
type Tile struct {
	Traversable bool
}

func (t Tile) String() string {
	return fmt.Sprintf("TILE(traversable=%t)", t.Traversable)
}

// TileField is a dense SizeX*SizeY array of tiles, stored column-major
// (tiles[x*sizeY+y]) like the map tile tables it mirrors. Movement never
// reads it.
type TileField struct {
	tiles []Tile
	sizeX int
	sizeY int
}

// NewTileField allocates a field with every tile traversable.
func NewTileField(sizeX, sizeY int) *TileField {
	if sizeX < 0 {
		sizeX = 0
	}
	if sizeY < 0 {
		sizeY = 0
	}
	tiles := make([]Tile, sizeX*sizeY)
	for i := range tiles {
		tiles[i].Traversable = true
	}
	return &TileField{tiles: tiles, sizeX: sizeX, sizeY: sizeY}
}

func (f *TileField) Size() (int, int) { return f.sizeX, f.sizeY }

func (f *TileField) sized(x, y int) bool { return f.sizeX == x && f.sizeY == y }

func (f *TileField) index(c Cell) (int, error) {
	if c.X < 0 || c.X >= f.sizeX || c.Y < 0 || c.Y >= f.sizeY {
		return 0, fmt.Errorf("tile %s in %dx%d field: %w", c, f.sizeX, f.sizeY, ErrOutOfBounds)
	}
	return c.X*f.sizeY + c.Y, nil
}

func (f *TileField) Get(c Cell) (Tile, error) {
	i, err := f.index(c)
	if err != nil {
		return Tile{}, err
	}
	return f.tiles[i], nil
}

func (f *TileField) Set(c Cell, traversable bool) error {
	i, err := f.index(c)
	if err != nil {
		return err
	}
	f.tiles[i].Traversable = traversable
	return nil
}
