package forest

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Params holds the three probabilities that drive the automaton.
type Params struct {
	TreeDensity float64 `yaml:"p_tree"`
	FireChance  float64 `yaml:"p_fire"`
	GrowChance  float64 `yaml:"p_grow"`
}

// Rates returns the per-step part of the parameters.
func (p Params) Rates() Rates {
	return Rates{Fire: p.FireChance, Grow: p.GrowChance}
}

// Config controls the forest dimensions, seeding and parallelism.
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`
	// Workers is the step worker pool size; zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	Params Params `yaml:"params"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:  1024,
		Height: 1024,
		Seed:   1337,
		Params: Params{
			TreeDensity: 0.5,
			FireChance:  0.001,
			GrowChance:  0.01,
		},
	}
}

// Validate rejects non-positive dimensions, negative worker counts and
// probabilities outside [0, 1].
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid size %dx%d must be positive", ErrConfig, c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers=%d must not be negative", ErrConfig, c.Workers)
	}
	if err := checkProbability("p_tree", c.Params.TreeDensity); err != nil {
		return err
	}
	return c.Params.Rates().Validate()
}

// Set applies a single key=value override using the flag-style keys
// w, h, seed, workers, p_tree, p_fire and p_grow.
func (c *Config) Set(key, value string) error {
	switch key {
	case "w", "width":
		return setInt(&c.Width, key, value)
	case "h", "height":
		return setInt(&c.Height, key, value)
	case "workers":
		return setInt(&c.Workers, key, value)
	case "seed":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: seed=%q: %v", ErrConfig, value, err)
		}
		c.Seed = parsed
		return nil
	case "p_tree":
		return setFloat(&c.Params.TreeDensity, key, value)
	case "p_fire":
		return setFloat(&c.Params.FireChance, key, value)
	case "p_grow":
		return setFloat(&c.Params.GrowChance, key, value)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrConfig, key)
	}
}

func setInt(dst *int, key, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrConfig, key, value, err)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key, value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrConfig, key, value, err)
	}
	*dst = parsed
	return nil
}

// FromMap populates the config from a string map (flag-style key/value
// pairs) on top of the defaults and validates the result.
func FromMap(cfg map[string]string) (Config, error) {
	c := DefaultConfig()
	if err := c.Apply(cfg); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Apply sets every key in overrides. Keys are applied in sorted order so
// errors are reported deterministically.
func (c *Config) Apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig. Fields missing from
// the file keep their defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
