package forest

import (
	"errors"
	"fmt"
	"math"

	"forestfire/internal/core"
)

var (
	// ErrConfig reports invalid dimensions, probabilities or worker counts.
	ErrConfig = errors.New("forest: invalid configuration")
	// ErrOutOfBounds reports a coordinate outside the grid extent.
	ErrOutOfBounds = errors.New("forest: coordinate out of bounds")
)

// Sampler yields uniform variates in [0, 1). *rand.Rand and *core.RNG both
// satisfy it.
type Sampler interface {
	Float64() float64
}

// Grid is a fixed-size rectangle of cells stored in row-major order.
type Grid struct {
	w, h  int
	cells []Cell
}

// NewGrid creates a w*h grid where each cell independently becomes a tree
// with probability pTree. Cells are drawn in row-major order.
func NewGrid(w, h int, pTree float64, rng Sampler) (*Grid, error) {
	if err := checkProbability("p_tree", pTree); err != nil {
		return nil, err
	}
	g, err := NewBlankGrid(w, h)
	if err != nil {
		return nil, err
	}
	g.fill(pTree, rng)
	return g, nil
}

// NewBlankGrid creates a w*h grid with every cell Empty.
func NewBlankGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: grid size %dx%d must be positive", ErrConfig, w, h)
	}
	return &Grid{w: w, h: h, cells: make([]Cell, w*h)}, nil
}

func (g *Grid) fill(pTree float64, rng Sampler) {
	for i := range g.cells {
		if rng.Float64() < pTree {
			g.cells[i] = Tree
		} else {
			g.cells[i] = Empty
		}
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Size returns the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.w, H: g.h} }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.w && y >= 0 && y < g.h
}

// At returns the cell at (x, y).
func (g *Grid) At(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Empty, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, g.w, g.h)
	}
	return g.cells[g.index(x, y)], nil
}

// Set overwrites the cell at (x, y). It is meant for building grids by hand;
// a grid handed to a World must not be modified afterwards.
func (g *Grid) Set(x, y int, c Cell) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, g.w, g.h)
	}
	g.cells[g.index(x, y)] = c
	return nil
}

// Cells exposes the backing slice. Callers must treat it as read-only.
func (g *Grid) Cells() []Cell { return g.cells }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{w: g.w, h: g.h, cells: append([]Cell(nil), g.cells...)}
}

// Equal reports whether both grids have the same shape and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i, c := range g.cells {
		if o.cells[i] != c {
			return false
		}
	}
	return true
}

// Census counts the cells in each state.
func (g *Grid) Census() Census {
	var c Census
	for _, cell := range g.cells {
		switch cell {
		case Tree:
			c.Trees++
		case Burning:
			c.Burning++
		default:
			c.Empty++
		}
	}
	return c
}

func (g *Grid) index(x, y int) int { return y*g.w + x }

// Census holds per-state cell counts.
type Census struct {
	Trees   int
	Burning int
	Empty   int
}

// Total returns the number of cells counted.
func (c Census) Total() int { return c.Trees + c.Burning + c.Empty }

// TreeDensity returns the fraction of cells holding a tree.
func (c Census) TreeDensity() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Trees) / float64(total)
}

func checkProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %s=%v outside [0,1]", ErrConfig, name, p)
	}
	return nil
}
