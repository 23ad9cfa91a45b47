package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"forestfire/internal/sims/forest"
	"forestfire/internal/sweep"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fire-sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	burnIn := fs.Int("burn-in", 200, "steps to run before sampling each scenario")
	samples := fs.Int("samples", 300, "steps sampled per scenario after burn-in")
	workers := fs.Int("workers", runtime.NumCPU(), "scenarios evaluated at once")
	width := fs.Int("width", 128, "grid width")
	height := fs.Int("height", 128, "grid height")
	seed := fs.Int64("seed", 1337, "seed shared by every scenario")
	fires := fs.String("fires", "0.0001,0.0005,0.001,0.005,0.01", "comma-separated p_fire values")
	grows := fs.String("grows", "0.005,0.01,0.02,0.05", "comma-separated p_grow values")
	csvPath := fs.String("csv", "", "write every result to this CSV file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))

	fireList, err := parseFloats(*fires)
	if err != nil {
		logger.Error("invalid -fires", "error", err)
		return 2
	}
	growList, err := parseFloats(*grows)
	if err != nil {
		logger.Error("invalid -grows", "error", err)
		return 2
	}

	base := forest.DefaultConfig()
	base.Width = *width
	base.Height = *height
	base.Seed = *seed

	scenarios := sweep.Cross(fireList, growList)
	fmt.Fprintf(stdout, "Sweeping %d parameter sets (%d workers, %d+%d steps)\n", len(scenarios), *workers, *burnIn, *samples)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	all, err := sweep.Run(ctx, base, scenarios, sweep.Options{
		BurnIn:  *burnIn,
		Samples: *samples,
		Workers: *workers,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("sweep failed", "error", err)
		return 1
	}
	elapsed := time.Since(start)

	fmt.Fprintf(stdout, "\nTop 5 results (elapsed %s):\n", elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < 5; i++ {
		res := all[i]
		fmt.Fprintf(stdout, "%2d) density=%.4f±%.4f burning=%.1f peak=%d p_fire=%g p_grow=%g\n",
			i+1, res.MeanDensity, res.StdDensity, res.MeanBurning, res.PeakBurning, res.FireChance, res.GrowChance)
	}

	if *csvPath == "" {
		return 0
	}
	f, err := os.Create(*csvPath)
	if err != nil {
		logger.Error("failed to create csv", "error", err)
		return 1
	}
	if err := sweep.WriteCSV(f, all); err != nil {
		f.Close()
		logger.Error("failed to write csv", "error", err)
		return 1
	}
	if err := f.Close(); err != nil {
		logger.Error("failed to close csv", "error", err)
		return 1
	}
	logger.Info("results written", "path", *csvPath, "rows", len(all))
	return 0
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in %q", s)
	}
	return out, nil
}
