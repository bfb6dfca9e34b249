package brain

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Train after the policy was closed.
var ErrClosed = errors.New("brain: policy closed")

// ErrNonFiniteTarget marks a bootstrap target that is NaN or Inf.
var ErrNonFiniteTarget = errors.New("brain: non-finite target")

// TrainingError reports a failed update. The experience is lost but the
// policy stays usable.
type TrainingError struct {
	Action Action
	Reward float64
	Err    error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training step (action %s, reward %g): %v", e.Action, e.Reward, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}
