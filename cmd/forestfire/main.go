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
	"strconv"
	"strings"

	"forestfire/internal/app"
	"forestfire/internal/measure"
	"forestfire/internal/sims/forest"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// configFlags maps dedicated flags to forest config keys.
var configFlags = map[string]string{
	"width":   "width",
	"height":  "height",
	"seed":    "seed",
	"workers": "workers",
	"p_tree":  "p_tree",
	"p_fire":  "p_fire",
	"p_grow":  "p_grow",
}

type options struct {
	forest  forest.Config
	window  *app.Config
	measure bool
	steps   []int
	csvDir  string
	logJSON bool
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("forestfire", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage of the forest fire simulator")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	def := forest.DefaultConfig()
	opts := &options{window: app.NewConfig()}
	configPath := fs.String("config", "", "YAML config file layered over the defaults")
	fs.Int("width", def.Width, "grid width in cells")
	fs.Int("height", def.Height, "grid height in cells")
	fs.Int64("seed", def.Seed, "seed for the initial forest and step random sources")
	fs.Int("workers", def.Workers, "step worker pool size (0 = GOMAXPROCS)")
	fs.Float64("p_tree", def.Params.TreeDensity, "initial tree density")
	fs.Float64("p_fire", def.Params.FireChance, "spontaneous ignition chance per tree per step")
	fs.Float64("p_grow", def.Params.GrowChance, "regrowth chance per empty cell per step")
	var overrides kvList
	fs.Var(&overrides, "set", "config override in key=value form (repeatable)")
	fs.BoolVar(&opts.measure, "m", false, "measurement: time fixed step counts and exit")
	steps := fs.String("steps", joinInts(measure.DefaultSteps), "comma-separated step counts for -m")
	fs.StringVar(&opts.csvDir, "csv", "", "directory for measure.csv and config.yaml (-m only)")
	fs.BoolVar(&opts.logJSON, "log-json", false, "log as JSON instead of text")
	opts.window.Bind(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := forest.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		key, ok := configFlags[f.Name]
		if !ok || setErr != nil {
			return
		}
		setErr = cfg.Set(key, f.Value.String())
	})
	if setErr != nil {
		return nil, setErr
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%w: override %q is not key=value", forest.ErrConfig, kv)
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.forest = cfg

	opts.steps, err = parseInts(*steps)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid step count %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func newLogger(w io.Writer, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "forestfire:", err)
		return 2
	}

	logger := newLogger(stderr, opts.logJSON)
	slog.SetDefault(logger)

	if opts.measure {
		return runMeasure(opts, stdout, logger)
	}

	world, err := forest.NewWithConfig(opts.forest)
	if err != nil {
		logger.Error("failed to create forest", "error", err)
		return 1
	}
	logger.Info("starting forest fire",
		"width", opts.forest.Width,
		"height", opts.forest.Height,
		"seed", opts.forest.Seed,
		"workers", opts.forest.Workers,
	)
	if err := runGUI(world, opts.window, opts.forest.Seed); err != nil {
		logger.Error("window closed with error", "error", err)
		return 1
	}
	return 0
}

func runMeasure(opts *options, stdout io.Writer, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := measure.Run(ctx, opts.forest, measure.Options{
		Steps:  opts.steps,
		Report: stdout,
		Logger: logger,
	})
	if err != nil {
		logger.Error("measurement stopped", "error", err, "completed_runs", len(results))
		return 1
	}

	sum := measure.Summarize(results)
	logger.Info("measurement summary",
		"runs", sum.Runs,
		"total_steps", sum.TotalSteps,
		"total_ms", sum.TotalMS,
		"mean_step_us", sum.MeanPerStepUS,
		"stddev_step_us", sum.StdDevPerStepUS,
	)

	if opts.csvDir != "" {
		if err := measure.WriteDir(opts.csvDir, opts.forest, results); err != nil {
			logger.Error("failed to write measurements", "error", err)
			return 1
		}
		logger.Info("measurements written", "dir", opts.csvDir)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
