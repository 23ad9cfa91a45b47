package ui

import "forestfire/internal/core"

// CellAt converts a screen pixel to grid coordinates for a grid drawn at the
// given scale from the origin. ok is false when the pixel is off the grid.
func CellAt(px, py, scale int, size core.Size) (x, y int, ok bool) {
	if scale <= 0 || px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y = px/scale, py/scale
	if x >= size.W || y >= size.H {
		return 0, 0, false
	}
	return x, y, true
}
