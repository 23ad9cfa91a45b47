// Package measure times repeated forest steps over fixed step counts.
package measure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"forestfire/internal/sims/forest"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
)

// DefaultSteps are the step counts timed when none are given.
var DefaultSteps = []int{1, 10, 100, 1000, 10000}

// Result is the timing of one run.
type Result struct {
	Steps     int     `csv:"steps"`
	Workers   int     `csv:"workers"`
	ElapsedMS int64   `csv:"elapsed_ms"`
	PerStepUS float64 `csv:"per_step_us"`
	Trees     int     `csv:"trees"`
	Burning   int     `csv:"burning"`
	Empty     int     `csv:"empty"`

	Elapsed time.Duration `csv:"-"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", r.Steps),
		slog.Int("workers", r.Workers),
		slog.Int64("elapsed_ms", r.ElapsedMS),
		slog.Float64("per_step_us", r.PerStepUS),
		slog.Int("trees", r.Trees),
		slog.Int("burning", r.Burning),
		slog.Int("empty", r.Empty),
	)
}

// Options controls a measurement.
type Options struct {
	// Steps lists the step counts to time; empty means DefaultSteps.
	Steps []int
	// Report receives one human-readable line per run. May be nil.
	Report io.Writer
	// Logger receives one structured record per run. May be nil.
	Logger *slog.Logger
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Run times each step count on a freshly seeded world built from cfg. The
// context is checked between steps; a cancelled run returns the results
// gathered so far together with the context error.
func Run(ctx context.Context, cfg forest.Config, opts Options) ([]Result, error) {
	steps := opts.Steps
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	world, err := forest.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(steps))
	for _, n := range steps {
		if n < 0 {
			return results, fmt.Errorf("measure: negative step count %d", n)
		}
		world.Reset(cfg.Seed)

		start := now()
		for s := 0; s < n; s++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			world.Step()
		}
		elapsed := now().Sub(start)

		census := world.Census()
		res := Result{
			Steps:     n,
			Workers:   cfg.Workers,
			ElapsedMS: elapsed.Milliseconds(),
			Trees:     census.Trees,
			Burning:   census.Burning,
			Empty:     census.Empty,
			Elapsed:   elapsed,
		}
		if n > 0 {
			res.PerStepUS = float64(elapsed.Microseconds()) / float64(n)
		}
		results = append(results, res)

		if opts.Report != nil {
			fmt.Fprintf(opts.Report, "Time taken for %d steps: %dms\n", n, res.ElapsedMS)
		}
		if opts.Logger != nil {
			opts.Logger.Info("measure", "run", res)
		}
	}
	return results, nil
}

// Summary aggregates per-step timings across runs.
type Summary struct {
	Runs            int
	TotalSteps      int
	TotalMS         int64
	MeanPerStepUS   float64
	StdDevPerStepUS float64
}

// Summarize computes the step-weighted mean and standard deviation of the
// per-step time. Runs with zero steps are skipped.
func Summarize(results []Result) Summary {
	var s Summary
	var xs, ws []float64
	for _, r := range results {
		s.Runs++
		s.TotalSteps += r.Steps
		s.TotalMS += r.ElapsedMS
		if r.Steps == 0 {
			continue
		}
		xs = append(xs, r.PerStepUS)
		ws = append(ws, float64(r.Steps))
	}
	switch len(xs) {
	case 0:
	case 1:
		s.MeanPerStepUS = xs[0]
	default:
		s.MeanPerStepUS, s.StdDevPerStepUS = stat.MeanStdDev(xs, ws)
	}
	return s
}

// WriteCSV writes results with a header row.
func WriteCSV(w io.Writer, results []Result) error {
	if err := gocsv.Marshal(results, w); err != nil {
		return fmt.Errorf("writing measurements: %w", err)
	}
	return nil
}

// WriteDir saves measure.csv and the effective config.yaml under dir.
func WriteDir(dir string, cfg forest.Config, results []Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := cfg.WriteYAML(filepath.Join(dir, "config.yaml")); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "measure.csv"))
	if err != nil {
		return fmt.Errorf("creating measure.csv: %w", err)
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
