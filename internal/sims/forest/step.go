package forest

import (
	"fmt"
	"runtime"

	"forestfire/internal/core"

	"golang.org/x/sync/errgroup"
)

// Rates holds the per-step transition probabilities.
type Rates struct {
	Fire float64 // spontaneous ignition chance per tree
	Grow float64 // regrowth chance per empty cell
}

// Validate reports whether both probabilities lie in [0, 1].
func (r Rates) Validate() error {
	if err := checkProbability("p_fire", r.Fire); err != nil {
		return err
	}
	return checkProbability("p_grow", r.Grow)
}

// Drawer supplies the uniform variate consumed by the cell at linear index
// idx. Each partition gets its own Drawer and calls it from one goroutine.
type Drawer interface {
	Draw(idx int) float64
}

// DrawerFactory returns the Drawer for one partition of one step.
type DrawerFactory func(partition int) Drawer

// StepOptions controls how a step is split across workers.
type StepOptions struct {
	// Workers bounds the number of partitions evaluated at once. Zero means
	// GOMAXPROCS.
	Workers int
	// Partitions is the number of row ranges. Zero means one per worker.
	Partitions int
	// Drawers overrides the random source. When nil each partition draws from
	// a PCG stream derived from Seed, Generation and the partition index.
	Drawers    DrawerFactory
	Seed       int64
	Generation uint64
}

func (o StepOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o StepOptions) drawers() DrawerFactory {
	if o.Drawers != nil {
		return o.Drawers
	}
	return SeededDrawers(o.Seed, o.Generation)
}

// SeededDrawers returns the default factory: partition p of step gen draws
// from its own PCG stream of seed.
func SeededDrawers(seed int64, gen uint64) DrawerFactory {
	return func(partition int) Drawer {
		return rngDrawer{r: core.NewStream(seed, core.StreamID(gen, partition))}
	}
}

type rngDrawer struct {
	r *core.RNG
}

func (d rngDrawer) Draw(int) float64 { return d.r.Float64() }

// Step computes the grid that follows src. It never modifies src. Ignition
// requests that target a tree in src set that cell Burning in the result and
// spread to its neighbors as if it had been burning in src.
func Step(src *Grid, rates Rates, ignitions []Coord, opts StepOptions) *Grid {
	dst := &Grid{w: src.w, h: src.h, cells: make([]Cell, len(src.cells))}
	StepInto(dst, src, rates, ignitions, opts)
	return dst
}

// StepInto is Step writing into dst, which must match src in size and must
// not alias it. Every cell of dst is overwritten.
func StepInto(dst, src *Grid, rates Rates, ignitions []Coord, opts StepOptions) {
	if dst == src || dst.w != src.w || dst.h != src.h {
		panic(fmt.Sprintf("forest: StepInto needs a distinct %dx%d buffer", src.w, src.h))
	}
	snap := applyIgnitions(src, ignitions)

	workers := opts.workers()
	parts := opts.Partitions
	if parts <= 0 {
		parts = workers
	}
	spans := partitionRows(src.h, parts)
	newDrawer := opts.drawers()

	if len(spans) == 1 || workers == 1 {
		for i, span := range spans {
			evolveRows(dst, snap, rates, span, newDrawer(i))
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, span := range spans {
		d := newDrawer(i)
		g.Go(func() error {
			evolveRows(dst, snap, rates, span, d)
			return nil
		})
	}
	// Barrier: dst is complete once every partition has returned.
	_ = g.Wait()
}

type rowSpan struct {
	start, end int
}

// partitionRows splits h rows into at most n contiguous, non-empty spans
// whose sizes differ by at most one.
func partitionRows(h, n int) []rowSpan {
	if n > h {
		n = h
	}
	if n < 1 {
		n = 1
	}
	spans := make([]rowSpan, 0, n)
	base, extra := h/n, h%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		spans = append(spans, rowSpan{start: start, end: start + size})
		start += size
	}
	return spans
}

func evolveRows(dst, src *Grid, rates Rates, rows rowSpan, d Drawer) {
	w, h := src.w, src.h
	cur, nxt := src.cells, dst.cells
	for y := rows.start; y < rows.end; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			switch cur[idx] {
			case Burning:
				nxt[idx] = Empty
			case igniting:
				nxt[idx] = Burning
			case Tree:
				u := d.Draw(idx)
				if u < rates.Fire || burningNeighbor(cur, w, h, x, y) {
					nxt[idx] = Burning
				} else {
					nxt[idx] = Tree
				}
			default:
				if d.Draw(idx) < rates.Grow {
					nxt[idx] = Tree
				} else {
					nxt[idx] = Empty
				}
			}
		}
	}
}

func burningNeighbor(cells []Cell, w, h, x, y int) bool {
	idx := y*w + x
	return (x > 0 && cells[idx-1].burning()) ||
		(x < w-1 && cells[idx+1].burning()) ||
		(y > 0 && cells[idx-w].burning()) ||
		(y < h-1 && cells[idx+w].burning())
}
