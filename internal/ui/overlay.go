//go:build ebiten

package ui

import (
	"image/color"

	"forestfire/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay outlines the grid cell under the cursor so clicks can be aimed at
// single trees. Key 1 toggles it.
type Overlay struct {
	sim   core.Sim
	scale int
	show  bool
	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: max(scale, 1), show: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update allows the overlay to update internal state.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.show = !o.show
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.show {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y, ok := CellAt(mx, my, o.scale, o.sim.Size())
	if !ok {
		return
	}
	s := float64(o.scale)
	left, top := float64(x)*s, float64(y)*s
	edge := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	o.rect(screen, left-1, top-1, s+2, 1, edge)
	o.rect(screen, left-1, top+s, s+2, 1, edge)
	o.rect(screen, left-1, top, 1, s, edge)
	o.rect(screen, left+s, top, 1, s, edge)
}

func (o *Overlay) rect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
