package forest

import "image/color"

var forestPalette = []color.RGBA{
	Empty:   {R: 255, G: 255, B: 255, A: 255},
	Tree:    {R: 0, G: 128, B: 0, A: 255},
	Burning: {R: 255, G: 0, B: 0, A: 255},
}

// Palette exposes the colors used to render each Cell value, indexed by the
// byte stored in Cells.
func (w *World) Palette() []color.RGBA {
	return forestPalette
}
