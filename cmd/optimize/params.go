// Package main provides CMA-ES tuning of wind and leaf motion parameters.
package main

import (
	"github.com/pthm-cable/leaffall/config"
)

// ParamSpec is one tunable config field and its search bounds.
type ParamSpec struct {
	Name    string
	Path    string // yaml path, for logs
	Min     float64
	Max     float64
	Default float64

	field func(*config.Config) *float64
}

func (s ParamSpec) clamp(v float64) float64 {
	return min(max(v, s.Min), s.Max)
}

func (s ParamSpec) toUnit(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}

func (s ParamSpec) fromUnit(u float64) float64 {
	return s.Min + u*(s.Max-s.Min)
}

// ParamVector is the ordered search space.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the wind envelope and leaf motion parameters.
// Spin speed and spacing do not feed the motion statistics and stay fixed.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{Name: "wind_speed", Path: "wind.wind_speed", Min: 5, Max: 80, Default: 30,
			field: func(c *config.Config) *float64 { return &c.Wind.WindSpeed }},
		{Name: "state_length", Path: "wind.state_length", Min: 1, Max: 15, Default: 5,
			field: func(c *config.Config) *float64 { return &c.Wind.StateLength }},
		{Name: "decay_ratio", Path: "wind.decay_ratio", Min: 0.05, Max: 1.0, Default: 0.2,
			field: func(c *config.Config) *float64 { return &c.Wind.DecayRatio }},
		{Name: "epsilon", Path: "leaves.epsilon", Min: 0.05, Max: 2.0, Default: 0.5,
			field: func(c *config.Config) *float64 { return &c.Leaves.Epsilon }},
		{Name: "wobble_factor", Path: "leaves.wobble_factor", Min: 0.002, Max: 0.08, Default: 0.02,
			field: func(c *config.Config) *float64 { return &c.Leaves.WobbleFactor }},
		{Name: "wobble_decay", Path: "leaves.wobble_decay", Min: 0.9, Max: 0.999, Default: 0.99,
			field: func(c *config.Config) *float64 { return &c.Leaves.WobbleDecay }},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns each parameter's default.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.mapEach(nil, func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps raw values onto [0,1] per parameter bounds.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.mapEach(raw, ParamSpec.toUnit)
}

// Denormalize is the inverse of Normalize.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.mapEach(unit, ParamSpec.fromUnit)
}

// Clamp bounds every value to its parameter range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.mapEach(v, ParamSpec.clamp)
}

func (pv *ParamVector) mapEach(in []float64, fn func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		var v float64
		if in != nil {
			v = in[i]
		}
		out[i] = fn(s, v)
	}
	return out
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, s := range pv.Specs {
		*s.field(cfg) = s.clamp(values[i])
	}
}

// ExtractFromConfig reads the current values out of cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = *s.field(cfg)
	}
	return out
}
