//go:build !ebiten

package main

import (
	"errors"

	"forestfire/internal/app"
	"forestfire/internal/sims/forest"
)

var errNoGUI = errors.New("the interactive view requires the ebiten build tag; re-run with `go run -tags ebiten ./cmd/forestfire` or use -m")

func runGUI(*forest.World, *app.Config, int64) error {
	return errNoGUI
}
