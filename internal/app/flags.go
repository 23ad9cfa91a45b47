package app

import "flag"

// Config represents the window parameters for the interactive view.
type Config struct {
	Scale    int
	TPS      int
	HUDWidth int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Scale: 1, TPS: 10, HUDWidth: 220}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel size of one cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation steps per second")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel in pixels (0 hides it)")
}
