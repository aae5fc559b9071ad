package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/gridwalk/gridwalk/internal/grid"
	"gopkg.in/yaml.v3"
)

// GridInfo holds the metadata of one map, loaded from grid_list.yaml.
// It is the grid.Source handed to grid.NewIndex.
type GridInfo struct {
	Name      string    `yaml:"name"`
	CellSizeX float64   `yaml:"cell_size_x"`
	CellSizeY float64   `yaml:"cell_size_y"`
	AnchorX   float64   `yaml:"anchor_x"`
	AnchorY   float64   `yaml:"anchor_y"`
	OriginX   int       `yaml:"origin_x"`
	OriginY   int       `yaml:"origin_y"`
	SizeX     int       `yaml:"size_x"`
	SizeY     int       `yaml:"size_y"`
	Blocked   []CellRef `yaml:"blocked"` // cells flagged non-traversable after init
}

// CellRef is a cell as written in data files.
type CellRef struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (c CellRef) Cell() grid.Cell { return grid.Cell{X: c.X, Y: c.Y} }

func (g *GridInfo) CellSize() (float64, float64) { return g.CellSizeX, g.CellSizeY }
func (g *GridInfo) Anchor() grid.WorldPoint      { return grid.WorldPoint{X: g.AnchorX, Y: g.AnchorY} }
func (g *GridInfo) GroundOrigin() grid.Cell      { return grid.Cell{X: g.OriginX, Y: g.OriginY} }
func (g *GridInfo) GroundSize() (int, int)       { return g.SizeX, g.SizeY }

// ApplyTerrain marks the map's blocked cells on f. Cells outside the field
// are reported, the rest are still applied.
func (g *GridInfo) ApplyTerrain(f *grid.TileField) error {
	var firstErr error
	for _, b := range g.Blocked {
		if err := f.Set(b.Cell(), false); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("map %s: %w", g.Name, err)
		}
	}
	return firstErr
}

// GridTable provides map metadata lookups by name.
type GridTable struct {
	grids map[string]*GridInfo
}

type gridListFile struct {
	Grids []GridInfo `yaml:"grids"`
}

// LoadGridList loads map metadata from YAML. Entries without a name or
// with non-positive extents are skipped; cell-size validation is left to
// grid.Index so it is reported in one place.
func LoadGridList(path string) (*GridTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid list %s: %w", path, err)
	}
	return ParseGridList(raw)
}

func ParseGridList(raw []byte) (*GridTable, error) {
	var file gridListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse grid list: %w", err)
	}

	table := &GridTable{
		grids: make(map[string]*GridInfo, len(file.Grids)),
	}
	for i := range file.Grids {
		info := file.Grids[i]
		if info.Name == "" || info.SizeX <= 0 || info.SizeY <= 0 {
			continue
		}
		table.grids[info.Name] = &info
	}
	return table, nil
}

func (t *GridTable) Count() int { return len(t.grids) }

// Get returns the named map, or nil if not found.
func (t *GridTable) Get(name string) *GridInfo {
	return t.grids[name]
}

// Names returns the loaded map names, sorted.
func (t *GridTable) Names() []string {
	names := make([]string, 0, len(t.grids))
	for n := range t.grids {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
