package forest

import (
	"forestfire/internal/core"
)

// World owns the double-buffered forest and the queue of pending ignitions.
// Step, Reset, the setters and the read accessors must be called from one
// goroutine. Ignite and PendingIgnitions may be called from any goroutine.
type World struct {
	cfg Config

	// fixed at construction; read by Ignite without synchronisation
	width, height int

	cur *Grid
	nxt *Grid

	ignitions  IgnitionQueue
	display    []uint8
	seed       int64
	generation uint64
}

// New returns a forest of the provided dimensions using the default
// parameters. It panics if w or h is not positive.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	world, err := NewWithConfig(cfg)
	if err != nil {
		panic(err)
	}
	return world
}

// NewWithConfig validates cfg and returns a world seeded with cfg.Seed.
func NewWithConfig(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cur, _ := NewBlankGrid(cfg.Width, cfg.Height)
	nxt, _ := NewBlankGrid(cfg.Width, cfg.Height)
	w := &World{
		cfg:     cfg,
		width:   cfg.Width,
		height:  cfg.Height,
		cur:     cur,
		nxt:     nxt,
		display: make([]uint8, cfg.Width*cfg.Height),
	}
	w.Reset(cfg.Seed)
	return w, nil
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "forestfire" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return w.cur.Size() }

// Cells exposes the current grid as bytes, one Cell value per position.
func (w *World) Cells() []uint8 { return w.display }

// Grid exposes the current grid. It stays valid and unchanged until the next
// Step or Reset.
func (w *World) Grid() *Grid { return w.cur }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// Generation reports how many steps have run since the last Reset.
func (w *World) Generation() uint64 { return w.generation }

// Census counts the cells of the current grid.
func (w *World) Census() Census { return w.cur.Census() }

// Reset regrows the forest from scratch. A zero seed falls back to the
// configured seed. Pending ignitions are discarded.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.seed = effective
	w.generation = 0
	w.ignitions.Drain()
	w.cur.fill(w.cfg.Params.TreeDensity, core.NewRNG(effective))
	w.rebuildDisplay()
}

// Ignite queues a forced ignition at (x, y) for the next step and reports
// whether it was queued. Requests outside the grid are dropped. Whether the
// cell is a tree is decided against the snapshot the next step reads, so a
// queued request on a cell that is no longer a tree has no effect.
func (w *World) Ignite(x, y int) bool {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return false
	}
	w.ignitions.Push(Coord{X: x, Y: y})
	return true
}

// PendingIgnitions reports how many ignition requests await the next step.
func (w *World) PendingIgnitions() int { return w.ignitions.Len() }

// Step advances the forest by one generation and publishes the result by
// swapping buffers.
func (w *World) Step() {
	opts := StepOptions{
		Workers:    w.cfg.Workers,
		Seed:       w.seed,
		Generation: w.generation,
	}
	StepInto(w.nxt, w.cur, w.cfg.Params.Rates(), w.ignitions.Drain(), opts)
	w.cur, w.nxt = w.nxt, w.cur
	w.generation++
	w.rebuildDisplay()
}

// SetRates replaces the per-step probabilities.
func (w *World) SetRates(r Rates) error {
	if err := r.Validate(); err != nil {
		return err
	}
	w.cfg.Params.FireChance = r.Fire
	w.cfg.Params.GrowChance = r.Grow
	return nil
}

// SetWorkers resizes the step worker pool; zero uses GOMAXPROCS.
func (w *World) SetWorkers(n int) error {
	cfg := w.cfg
	cfg.Workers = n
	if err := cfg.Validate(); err != nil {
		return err
	}
	w.cfg = cfg
	return nil
}

func (w *World) rebuildDisplay() {
	for i, c := range w.cur.cells {
		w.display[i] = uint8(c)
	}
}
