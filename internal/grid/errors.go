package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrAsymmetricCellSize is reported when the grid source has unequal
	// (or non-positive) cell sizes on the two axes.
	ErrAsymmetricCellSize = errors.New("grid: asymmetric cell size")

	// ErrGridUnavailable is returned by every conversion on an index that is
	// not initialized or whose initialization failed.
	ErrGridUnavailable = errors.New("grid: index unavailable")

	ErrOutOfBounds = errors.New("grid: cell out of bounds")
)

// ConfigError describes a rejected grid source.
type ConfigError struct {
	SizeX float64
	SizeY float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("grid: cell size %gx%g must be positive and equal on both axes", e.SizeX, e.SizeY)
}

func (e *ConfigError) Unwrap() error { return ErrAsymmetricCellSize }
