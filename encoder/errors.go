package encoder

import "fmt"

// ConfigurationError reports setup that can never produce a valid agent:
// bad arena bounds, mismatched state sizes or out-of-range hyperparameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// CheckSize returns a ConfigurationError when got differs from want.
func CheckSize(field string, got, want int) error {
	if got != want {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf("size %d, want %d", got, want)}
	}
	return nil
}
