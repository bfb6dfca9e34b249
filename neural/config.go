package neural

import "fmt"

// AdamConfig holds optimizer settings for MLP.Fit.
type AdamConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Beta1        float64 `yaml:"beta1"`
	Beta2        float64 `yaml:"beta2"`
	Epsilon      float64 `yaml:"epsilon"`
}

// DefaultAdam returns the usual Adam settings with the given learning rate.
func DefaultAdam(learningRate float64) AdamConfig {
	return AdamConfig{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// Validate checks the optimizer settings.
func (c AdamConfig) Validate() error {
	if !(c.LearningRate > 0) {
		return fmt.Errorf("neural: learning rate must be positive, got %g", c.LearningRate)
	}
	if c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1 {
		return fmt.Errorf("neural: adam betas must be in [0,1), got %g/%g", c.Beta1, c.Beta2)
	}
	if !(c.Epsilon > 0) {
		return fmt.Errorf("neural: adam epsilon must be positive, got %g", c.Epsilon)
	}
	return nil
}
