package forest

import (
	"math"
	"strconv"

	"forestfire/internal/core"
)

const maxWorkers = 256

// Parameters reports the active configuration for display.
func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	census := w.Census()
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", w.cfg.Width),
				intParam("h", "Height", w.cfg.Height),
				int64Param("seed", "Seed", w.seed),
				intParam("workers", "Workers", w.cfg.Workers),
			},
		},
		{
			Name: "Fire",
			Params: []core.Parameter{
				floatParam("p_tree", "Tree density", params.TreeDensity),
				floatParam("p_fire", "Fire chance", params.FireChance),
				floatParam("p_grow", "Grow chance", params.GrowChance),
			},
		},
		{
			Name: "Census",
			Params: []core.Parameter{
				int64Param("generation", "Generation", int64(w.generation)),
				intParam("trees", "Trees", census.Trees),
				intParam("burning", "Burning", census.Burning),
				intParam("empty", "Empty", census.Empty),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values adjustable from the HUD.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "p_fire", Label: "Fire chance", Type: core.ParamTypeFloat, Step: 0.0005, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "p_grow", Label: "Grow chance", Type: core.ParamTypeFloat, Step: 0.005, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "workers", Label: "Workers", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: maxWorkers, HasMin: true, HasMax: true},
	}
}

// SetFloatParameter updates p_fire or p_grow, clamping to [0, 1].
func (w *World) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	value = math.Min(1, math.Max(0, value))
	rates := w.cfg.Params.Rates()
	switch key {
	case "p_fire":
		rates.Fire = value
	case "p_grow":
		rates.Grow = value
	default:
		return false
	}
	return w.SetRates(rates) == nil
}

// SetIntParameter updates the worker count, clamping to [0, 256].
func (w *World) SetIntParameter(key string, value int) bool {
	if key != "workers" {
		return false
	}
	value = min(maxWorkers, max(0, value))
	return w.SetWorkers(value) == nil
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
