package forest

import (
	"slices"
	"testing"

	"forestfire/internal/core"
)

type constDrawer float64

func (c constDrawer) Draw(int) float64 { return float64(c) }

func constDraws(v float64) DrawerFactory {
	return func(int) Drawer { return constDrawer(v) }
}

// tableDrawer hands every cell the same variate no matter which partition
// evaluates it.
type tableDrawer []float64

func (t tableDrawer) Draw(idx int) float64 { return t[idx] }

func tableDraws(t []float64) DrawerFactory {
	return func(int) Drawer { return tableDrawer(t) }
}

// countingDrawer records how many draws each cell consumed.
type countingDrawer struct {
	counts []int
}

func (c *countingDrawer) Draw(idx int) float64 {
	c.counts[idx]++
	return 0.5
}

func gridFromRows(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g, err := NewBlankGrid(len(rows[0]), len(rows))
	if err != nil {
		t.Fatal(err)
	}
	for y, row := range rows {
		for x, ch := range row {
			var c Cell
			switch ch {
			case 'T':
				c = Tree
			case 'F':
				c = Burning
			case '.':
				c = Empty
			default:
				t.Fatalf("unknown cell %q", ch)
			}
			if err := g.Set(x, y, c); err != nil {
				t.Fatal(err)
			}
		}
	}
	return g
}

func randomGrid(t *testing.T, w, h int, seed int64) *Grid {
	t.Helper()
	g, err := NewBlankGrid(w, h)
	if err != nil {
		t.Fatal(err)
	}
	rng := core.NewRNG(seed).Source()
	for i := range g.cells {
		g.cells[i] = Cell(rng.IntN(3))
	}
	return g
}

func assertRows(t *testing.T, g *Grid, rows ...string) {
	t.Helper()
	want := gridFromRows(t, rows...)
	if !g.Equal(want) {
		t.Fatalf("grid mismatch\n got: %v\nwant: %v", g.cells, want.cells)
	}
}

func TestBurningAlwaysBurnsOut(t *testing.T) {
	src := randomGrid(t, 17, 13, 3)
	for _, rates := range []Rates{{0, 0}, {1, 1}, {0.5, 0.5}} {
		next := Step(src, rates, nil, StepOptions{Workers: 4, Seed: 9})
		for i, c := range src.cells {
			if c == Burning && next.cells[i] != Empty {
				t.Fatalf("rates %+v: burning cell %d became %v", rates, i, next.cells[i])
			}
		}
	}
}

func TestTreeNextToFireIgnites(t *testing.T) {
	src := randomGrid(t, 19, 11, 5)
	next := Step(src, Rates{Fire: 0, Grow: 0}, nil, StepOptions{Workers: 3, Seed: 1})
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			idx := src.index(x, y)
			if src.cells[idx] != Tree || !burningNeighbor(src.cells, src.w, src.h, x, y) {
				continue
			}
			if next.cells[idx] != Burning {
				t.Fatalf("tree at (%d,%d) with burning neighbor became %v", x, y, next.cells[idx])
			}
		}
	}
}

func TestVonNeumannNeighborhoodOnly(t *testing.T) {
	src := gridFromRows(t,
		"T.T",
		".F.",
		"T.T",
	)
	next := Step(src, Rates{}, nil, StepOptions{Workers: 1})
	assertRows(t, next,
		"T.T",
		"...",
		"T.T",
	)

	src = gridFromRows(t,
		"TTT",
		"TFT",
		"TTT",
	)
	next = Step(src, Rates{}, nil, StepOptions{Workers: 1})
	assertRows(t, next,
		"TFT",
		"F.F",
		"TFT",
	)
}

func TestEdgesDoNotWrap(t *testing.T) {
	src := gridFromRows(t,
		"F..T",
		"....",
		"T...",
	)
	next := Step(src, Rates{}, nil, StepOptions{Workers: 1})
	assertRows(t, next,
		"...T",
		"....",
		"T...",
	)
}

func TestQuiescentForestIsFixedPoint(t *testing.T) {
	src, err := NewGrid(32, 24, 0.6, core.NewRNG(11))
	if err != nil {
		t.Fatal(err)
	}
	before := src.Clone()
	next := Step(src, Rates{}, nil, StepOptions{Workers: 4, Seed: 2})
	if !next.Equal(src) {
		t.Fatal("forest without fire changed under zero rates")
	}
	if !src.Equal(before) {
		t.Fatal("Step mutated its input")
	}
}

func TestCertainFireBurnsEveryTree(t *testing.T) {
	src := randomGrid(t, 23, 9, 8)
	next := Step(src, Rates{Fire: 1}, nil, StepOptions{Workers: 2, Seed: 4})
	for i, c := range src.cells {
		if c == Tree && next.cells[i] != Burning {
			t.Fatalf("tree %d survived p_fire=1", i)
		}
	}
}

func TestCertainGrowthFillsEveryGap(t *testing.T) {
	src := randomGrid(t, 23, 9, 12)
	next := Step(src, Rates{Grow: 1}, nil, StepOptions{Workers: 2, Seed: 4})
	for i, c := range src.cells {
		if c == Empty && next.cells[i] != Tree {
			t.Fatalf("empty cell %d stayed empty under p_grow=1", i)
		}
	}
}

func TestIgnitionOnTree(t *testing.T) {
	src := gridFromRows(t,
		"TTT.",
		"TTT.",
		"....",
	)
	next := Step(src, Rates{}, []Coord{{X: 0, Y: 0}}, StepOptions{Workers: 1})
	assertRows(t, next,
		"FFT.",
		"FTT.",
		"....",
	)
	if c, _ := src.At(0, 0); c != Tree {
		t.Fatalf("ignition leaked into the input grid: %v", c)
	}

	next = Step(next, Rates{}, nil, StepOptions{Workers: 1})
	assertRows(t, next,
		"..F.",
		".FT.",
		"....",
	)
}

func TestIgnitionIgnoredOffTree(t *testing.T) {
	src := gridFromRows(t,
		"F.T",
		"...",
	)
	ignitions := []Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: -1, Y: 0}, {X: 3, Y: 9}}
	with := Step(src, Rates{Grow: 0.5}, ignitions, StepOptions{Workers: 1, Drawers: constDraws(0.25)})
	without := Step(src, Rates{Grow: 0.5}, nil, StepOptions{Workers: 1, Drawers: constDraws(0.25)})
	if !with.Equal(without) {
		t.Fatalf("ignition on non-tree cells changed the step: %v vs %v", with.cells, without.cells)
	}
}

func TestPartitioningDoesNotChangeResult(t *testing.T) {
	src := randomGrid(t, 64, 37, 21)
	draws := make([]float64, len(src.cells))
	rng := core.NewRNG(77)
	for i := range draws {
		draws[i] = rng.Float64()
	}
	rates := Rates{Fire: 0.3, Grow: 0.4}
	ignitions := []Coord{{X: 5, Y: 5}, {X: 40, Y: 30}}

	sequential := Step(src, rates, ignitions, StepOptions{Workers: 1, Partitions: 1, Drawers: tableDraws(draws)})
	for _, tc := range []struct{ workers, parts int }{{2, 2}, {4, 4}, {3, 16}, {8, 37}, {8, 100}} {
		parallel := Step(src, rates, ignitions, StepOptions{Workers: tc.workers, Partitions: tc.parts, Drawers: tableDraws(draws)})
		if !parallel.Equal(sequential) {
			t.Fatalf("workers=%d partitions=%d diverged from sequential result", tc.workers, tc.parts)
		}
	}
}

func TestSeededStepIsDeterministic(t *testing.T) {
	src := randomGrid(t, 40, 40, 2)
	opts := StepOptions{Workers: 4, Seed: 99, Generation: 7}
	a := Step(src, Rates{Fire: 0.2, Grow: 0.2}, nil, opts)
	b := Step(src, Rates{Fire: 0.2, Grow: 0.2}, nil, opts)
	if !a.Equal(b) {
		t.Fatal("same seed, generation and partitioning produced different grids")
	}
	opts.Generation++
	c := Step(src, Rates{Fire: 0.2, Grow: 0.2}, nil, opts)
	if a.Equal(c) {
		t.Fatal("consecutive generations reused the same random streams")
	}
}

func TestDrawConsumption(t *testing.T) {
	src := gridFromRows(t,
		"TF.",
		"FT.",
	)
	counter := &countingDrawer{counts: make([]int, len(src.cells))}
	Step(src, Rates{Fire: 0.1, Grow: 0.1}, nil, StepOptions{
		Workers: 1,
		Drawers: func(int) Drawer { return counter },
	})
	want := []int{1, 0, 1, 0, 1, 1}
	if !slices.Equal(counter.counts, want) {
		t.Fatalf("draw counts %v, want %v", counter.counts, want)
	}
}

func TestPartitionRows(t *testing.T) {
	cases := []struct {
		h, n  int
		sizes []int
	}{
		{h: 10, n: 3, sizes: []int{4, 3, 3}},
		{h: 2, n: 8, sizes: []int{1, 1}},
		{h: 5, n: 0, sizes: []int{5}},
		{h: 7, n: 7, sizes: []int{1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		spans := partitionRows(tc.h, tc.n)
		if len(spans) != len(tc.sizes) {
			t.Fatalf("h=%d n=%d: got %d spans, want %d", tc.h, tc.n, len(spans), len(tc.sizes))
		}
		next := 0
		for i, s := range spans {
			if s.start != next {
				t.Fatalf("h=%d n=%d: span %d starts at %d, want %d", tc.h, tc.n, i, s.start, next)
			}
			if got := s.end - s.start; got != tc.sizes[i] {
				t.Fatalf("h=%d n=%d: span %d has %d rows, want %d", tc.h, tc.n, i, got, tc.sizes[i])
			}
			next = s.end
		}
		if next != tc.h {
			t.Fatalf("h=%d n=%d: spans cover %d rows", tc.h, tc.n, next)
		}
	}
}

func TestStepIntoRejectsAliasedBuffer(t *testing.T) {
	g := randomGrid(t, 4, 4, 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when dst aliases src")
		}
	}()
	StepInto(g, g, Rates{}, nil, StepOptions{})
}

func BenchmarkStep(b *testing.B) {
	src, err := NewGrid(512, 512, 0.5, core.NewRNG(1))
	if err != nil {
		b.Fatal(err)
	}
	dst, _ := NewBlankGrid(512, 512)
	rates := Rates{Fire: 0.001, Grow: 0.01}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		StepInto(dst, src, rates, nil, StepOptions{Seed: 1, Generation: uint64(i)})
		src, dst = dst, src
	}
}
