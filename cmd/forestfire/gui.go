//go:build ebiten

package main

import (
	"errors"

	"forestfire/internal/app"
	"forestfire/internal/sims/forest"

	"github.com/hajimehoshi/ebiten/v2"
)

func runGUI(world *forest.World, cfg *app.Config, seed int64) error {
	game := app.New(world, cfg, seed)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("Forest Fire")
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
