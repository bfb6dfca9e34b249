// Package main provides CMA-ES optimization for slime learning parameters.
package main

import (
	"math"

	"github.com/pthm-cable/slimes/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "learning_rate", Path: "brain.learning_rate", Min: 0.0005, Max: 0.05, Default: 0.01},
			{Name: "discount_factor", Path: "brain.discount_factor", Min: 0.5, Max: 0.99, Default: 0.95},
			{Name: "epsilon_decay", Path: "brain.epsilon_decay", Min: 0.95, Max: 0.9995, Default: 0.995},
			{Name: "epsilon_min", Path: "brain.epsilon_min", Min: 0.0, Max: 0.2, Default: 0.01},
			{Name: "hidden", Path: "brain.hidden", Min: 4, Max: 64, Default: 24},
			{Name: "decision_interval", Path: "slime.decision_interval", Min: 0.1, Max: 1.0, Default: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Brain.LearningRate = clamped[0]
	cfg.Brain.DiscountFactor = clamped[1]
	cfg.Brain.EpsilonDecay = clamped[2]
	cfg.Brain.EpsilonMin = clamped[3]
	cfg.Brain.Hidden = int(math.Round(clamped[4]))
	cfg.Slime.DecisionInterval = clamped[5]

	cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Brain.LearningRate,
		cfg.Brain.DiscountFactor,
		cfg.Brain.EpsilonDecay,
		cfg.Brain.EpsilonMin,
		float64(cfg.Brain.Hidden),
		cfg.Slime.DecisionInterval,
	}
}
