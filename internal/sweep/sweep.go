// Package sweep runs the forest under many (p_fire, p_grow) pairs in parallel
// and reports the long-run tree density of each.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"forestfire/internal/sims/forest"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Scenario is one parameter pair to evaluate.
type Scenario struct {
	FireChance float64
	GrowChance float64
}

func (s Scenario) String() string {
	return fmt.Sprintf("p_fire=%g p_grow=%g", s.FireChance, s.GrowChance)
}

// Cross returns every combination of the given fire and grow chances.
func Cross(fires, grows []float64) []Scenario {
	out := make([]Scenario, 0, len(fires)*len(grows))
	for _, f := range fires {
		for _, g := range grows {
			out = append(out, Scenario{FireChance: f, GrowChance: g})
		}
	}
	return out
}

// Result summarises one scenario after burn-in.
type Result struct {
	FireChance  float64 `csv:"p_fire"`
	GrowChance  float64 `csv:"p_grow"`
	MeanDensity float64 `csv:"mean_density"`
	StdDensity  float64 `csv:"std_density"`
	MeanBurning float64 `csv:"mean_burning"`
	PeakBurning int     `csv:"peak_burning"`
	Samples     int     `csv:"samples"`
}

// Options controls a sweep.
type Options struct {
	// BurnIn steps run before sampling starts.
	BurnIn int
	// Samples is the number of steps sampled after burn-in.
	Samples int
	// Workers is the number of scenarios evaluated at once; zero uses
	// NumCPU.
	Workers int
	Logger  *slog.Logger
}

// Run evaluates every scenario on a world derived from base. Each world steps
// on a single partition since scenarios already run in parallel. Results are
// sorted by mean density, densest first.
func Run(ctx context.Context, base forest.Config, scenarios []Scenario, opts Options) ([]Result, error) {
	if opts.Samples <= 0 {
		return nil, fmt.Errorf("sweep: samples must be positive, got %d", opts.Samples)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := runScenario(ctx, base, sc, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", sc, err)
			}
			results[i] = res
			if opts.Logger != nil {
				opts.Logger.Info("scenario done",
					"p_fire", sc.FireChance,
					"p_grow", sc.GrowChance,
					"mean_density", res.MeanDensity,
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].MeanDensity > results[j].MeanDensity })
	return results, nil
}

func runScenario(ctx context.Context, base forest.Config, sc Scenario, opts Options) (Result, error) {
	cfg := base
	cfg.Workers = 1
	cfg.Params.FireChance = sc.FireChance
	cfg.Params.GrowChance = sc.GrowChance
	world, err := forest.NewWithConfig(cfg)
	if err != nil {
		return Result{}, err
	}

	for i := 0; i < opts.BurnIn; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		world.Step()
	}

	density := make([]float64, opts.Samples)
	burning := make([]float64, opts.Samples)
	peak := 0
	for i := range density {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		world.Step()
		census := world.Census()
		density[i] = census.TreeDensity()
		burning[i] = float64(census.Burning)
		peak = max(peak, census.Burning)
	}

	res := Result{
		FireChance:  sc.FireChance,
		GrowChance:  sc.GrowChance,
		MeanBurning: stat.Mean(burning, nil),
		PeakBurning: peak,
		Samples:     opts.Samples,
	}
	if len(density) > 1 {
		res.MeanDensity, res.StdDensity = stat.MeanStdDev(density, nil)
	} else {
		res.MeanDensity = density[0]
	}
	return res, nil
}

// WriteCSV writes results with a header row.
func WriteCSV(w io.Writer, results []Result) error {
	if err := gocsv.Marshal(results, w); err != nil {
		return fmt.Errorf("writing sweep results: %w", err)
	}
	return nil
}
