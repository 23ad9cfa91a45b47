package forest

import (
	"slices"
	"testing"

	"forestfire/internal/core"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 32
	cfg.Height = 24
	cfg.Seed = 99
	cfg.Workers = 3
	return cfg
}

func TestWorldImplementsSim(t *testing.T) {
	var _ core.Sim = (*World)(nil)
	var _ core.Igniter = (*World)(nil)
	var _ core.ParameterProvider = (*World)(nil)
	var _ core.FloatParameterSetter = (*World)(nil)
	var _ core.IntParameterSetter = (*World)(nil)
}

func TestResetDeterministic(t *testing.T) {
	world, err := NewWithConfig(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	initial := append([]uint8(nil), world.Cells()...)

	for i := 0; i < 5; i++ {
		world.Step()
	}
	world.Reset(0)
	if !slices.Equal(initial, world.Cells()) {
		t.Fatal("Reset with config seed not deterministic")
	}
	if world.Generation() != 0 {
		t.Fatalf("Reset left generation at %d", world.Generation())
	}

	world.Reset(777)
	seeded := append([]uint8(nil), world.Cells()...)
	world.Reset(777)
	if !slices.Equal(seeded, world.Cells()) {
		t.Fatal("Reset with explicit seed not deterministic")
	}
	if slices.Equal(initial, seeded) {
		t.Fatal("different seeds should produce different forests")
	}
}

func TestWorldRunsAreReproducible(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.FireChance = 0.05
	cfg.Params.GrowChance = 0.1
	a, _ := NewWithConfig(cfg)
	b, _ := NewWithConfig(cfg)
	for i := 0; i < 20; i++ {
		a.Step()
		b.Step()
	}
	if !a.Grid().Equal(b.Grid()) {
		t.Fatal("identical configs diverged")
	}
}

func TestWorldStepSwapsBuffers(t *testing.T) {
	world, _ := NewWithConfig(smallConfig())
	before := world.Grid()
	world.Step()
	if world.Grid() == before {
		t.Fatal("Step did not publish a new buffer")
	}
	world.Step()
	if world.Grid() != before {
		t.Fatal("second step should reuse the first buffer")
	}
	if world.Generation() != 2 {
		t.Fatalf("generation = %d", world.Generation())
	}
	if got := world.Cells(); len(got) != 32*24 {
		t.Fatalf("display buffer has %d cells", len(got))
	}
	for i, c := range world.Grid().Cells() {
		if world.Cells()[i] != uint8(c) {
			t.Fatalf("display buffer stale at %d", i)
		}
	}
}

func TestWorldIgnite(t *testing.T) {
	cfg := smallConfig()
	cfg.Params = Params{TreeDensity: 1, FireChance: 0, GrowChance: 0}
	world, _ := NewWithConfig(cfg)

	if world.Ignite(-1, 0) || world.Ignite(0, 24) || world.Ignite(32, 0) {
		t.Fatal("out-of-bounds ignition should be dropped")
	}
	if !world.Ignite(5, 5) {
		t.Fatal("ignition inside the grid should be queued")
	}
	if world.PendingIgnitions() != 1 {
		t.Fatalf("pending = %d", world.PendingIgnitions())
	}

	world.Step()
	if c, _ := world.Grid().At(5, 5); c != Burning {
		t.Fatalf("ignited cell is %v", c)
	}
	if c, _ := world.Grid().At(5, 6); c != Burning {
		t.Fatalf("neighbor of ignited cell is %v", c)
	}
	if world.PendingIgnitions() != 0 {
		t.Fatal("ignition was not consumed")
	}

	// A request on a burning cell is queued but does not change its transition.
	world.Ignite(5, 5)
	world.Step()
	if c, _ := world.Grid().At(5, 5); c != Empty {
		t.Fatalf("ignited cell should burn out, got %v", c)
	}
	world.Ignite(5, 5)
	world.Step()
	if c, _ := world.Grid().At(5, 5); c != Empty {
		t.Fatalf("ignition on an empty cell should have no effect, got %v", c)
	}
}

func TestIgniteWhileStepping(t *testing.T) {
	cfg := smallConfig()
	cfg.Params = Params{TreeDensity: 1, FireChance: 0, GrowChance: 0.2}
	world, _ := NewWithConfig(cfg)

	const requests = 500
	done := make(chan int)
	go func() {
		queued := 0
		for i := 0; i < requests; i++ {
			if world.Ignite(i%cfg.Width, (i/cfg.Width)%cfg.Height) {
				queued++
			}
		}
		done <- queued
	}()

	stepping := true
	queued := 0
	for stepping {
		select {
		case queued = <-done:
			stepping = false
		default:
		}
		world.Step()
		_ = world.PendingIgnitions()
	}
	if queued != requests {
		t.Fatalf("queued %d of %d in-bounds requests", queued, requests)
	}
	world.Step()
	if world.PendingIgnitions() != 0 {
		t.Fatal("ignitions left after the final step")
	}
	c := world.Census()
	if c.Total() != cfg.Width*cfg.Height {
		t.Fatalf("census %+v does not cover the grid", c)
	}
}

func TestResetDiscardsPendingIgnitions(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.TreeDensity = 1
	world, _ := NewWithConfig(cfg)
	world.Ignite(1, 1)
	world.Reset(0)
	if world.PendingIgnitions() != 0 {
		t.Fatal("Reset kept a stale ignition")
	}
}

func TestNewWithConfigValidates(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.FireChance = 2
	if _, err := NewWithConfig(cfg); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestSetFloatParameterClamps(t *testing.T) {
	world, _ := NewWithConfig(smallConfig())
	if !world.SetFloatParameter("p_fire", 0.25) {
		t.Fatal("expected p_fire to be adjustable")
	}
	if got := world.Config().Params.FireChance; got != 0.25 {
		t.Fatalf("p_fire = %v", got)
	}
	if !world.SetFloatParameter("p_grow", 3) {
		t.Fatal("expected setter to clamp values above max")
	}
	if got := world.Config().Params.GrowChance; got != 1 {
		t.Fatalf("p_grow = %v, want clamp to 1", got)
	}
	if world.SetFloatParameter("p_tree", 0.1) {
		t.Fatal("p_tree is fixed after creation")
	}
}

func TestSetIntParameterWorkers(t *testing.T) {
	world, _ := NewWithConfig(smallConfig())
	if !world.SetIntParameter("workers", 8) {
		t.Fatal("expected workers to be adjustable")
	}
	if world.Config().Workers != 8 {
		t.Fatalf("workers = %d", world.Config().Workers)
	}
	if !world.SetIntParameter("workers", -4) || world.Config().Workers != 0 {
		t.Fatalf("negative workers should clamp to 0, got %d", world.Config().Workers)
	}
	if world.SetIntParameter("w", 10) {
		t.Fatal("width is fixed after creation")
	}
}

func TestParametersSnapshot(t *testing.T) {
	world, _ := NewWithConfig(smallConfig())
	world.Step()
	snap := world.Parameters()
	if p, ok := snap.Lookup("p_fire"); !ok || p.Value != "0.001" {
		t.Fatalf("p_fire parameter = %+v, %v", p, ok)
	}
	if p, ok := snap.Lookup("generation"); !ok || p.Value != "1" {
		t.Fatalf("generation parameter = %+v, %v", p, ok)
	}
	if len(world.ParameterControls()) == 0 {
		t.Fatal("expected HUD controls")
	}
}

func TestPaletteCoversCells(t *testing.T) {
	world := New(4, 4)
	palette := world.Palette()
	for _, c := range []Cell{Empty, Tree, Burning} {
		if int(c) >= len(palette) {
			t.Fatalf("palette missing %v", c)
		}
	}
	if palette[Burning].R != 255 || palette[Tree].G != 128 {
		t.Fatalf("unexpected palette %v", palette)
	}
}
