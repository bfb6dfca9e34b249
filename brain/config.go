package brain

import (
	"fmt"

	"github.com/pthm-cable/slimes/encoder"
)

// Hyperparameters configures a QPolicy.
type Hyperparameters struct {
	LearningRate   float64 `yaml:"learning_rate"`
	DiscountFactor float64 `yaml:"discount_factor"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	EpsilonMin     float64 `yaml:"epsilon_min"`
}

// DefaultHyperparameters returns the settings the slimes ship with.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningRate:   0.01,
		DiscountFactor: 0.95,
		Epsilon:        1.0,
		EpsilonDecay:   0.995,
		EpsilonMin:     0.01,
	}
}

// Validate returns a ConfigurationError for out-of-range values.
func (h Hyperparameters) Validate() error {
	bad := func(field, format string, args ...any) error {
		return &encoder.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case !(h.LearningRate > 0):
		return bad("learning_rate", "must be positive, got %g", h.LearningRate)
	case !(h.DiscountFactor > 0 && h.DiscountFactor < 1):
		return bad("discount_factor", "must be in (0,1), got %g", h.DiscountFactor)
	case !(h.EpsilonMin >= 0 && h.EpsilonMin <= 1):
		return bad("epsilon_min", "must be in [0,1], got %g", h.EpsilonMin)
	case !(h.Epsilon >= h.EpsilonMin && h.Epsilon <= 1):
		return bad("epsilon", "must be in [epsilon_min,1], got %g", h.Epsilon)
	case !(h.EpsilonDecay > 0 && h.EpsilonDecay <= 1):
		return bad("epsilon_decay", "must be in (0,1], got %g", h.EpsilonDecay)
	}
	return nil
}
