// Package encoder turns raw arena observations into the fixed-size state
// vectors consumed by the agent brains.
package encoder

import (
	"fmt"
	"math"
)

// StateSize is the length of a state vector without presence bits:
// (selfX, selfY, appleX, appleY, kiwiX, kiwiY).
const StateSize = 6

// StateSizeWithPresence is the length of a state vector when each target
// slot carries an extra presence bit.
const StateSizeWithPresence = StateSize + 2

// StateVector is a normalized observation. All entries are in [0,1] for
// agents inside the arena.
type StateVector []float64

// Clone returns an independent copy of the vector.
func (s StateVector) Clone() StateVector {
	if s == nil {
		return nil
	}
	out := make(StateVector, len(s))
	copy(out, s)
	return out
}

// Position is a point in arena coordinates.
type Position struct {
	X, Y float64
}

// Bounds holds the arena dimensions.
type Bounds struct {
	Width, Height float64
}

// Validate reports a ConfigurationError when either dimension is not a
// positive finite number.
func (b Bounds) Validate() error {
	if !(b.Width > 0) || !(b.Height > 0) || math.IsInf(b.Width, 0) || math.IsInf(b.Height, 0) {
		return &ConfigurationError{Field: "arena bounds", Reason: fmt.Sprintf("width and height must be positive, got %gx%g", b.Width, b.Height)}
	}
	return nil
}

// Encoder converts observations to state vectors.
//
// With PresenceBits off the output matches the classic 6-value layout where a
// missing target is encoded as the origin. With PresenceBits on, a 1/0 flag
// follows each target's coordinates so "absent" and "at origin" differ.
type Encoder struct {
	PresenceBits bool
}

// Size returns the length of the vectors this encoder produces.
func (e Encoder) Size() int {
	if e.PresenceBits {
		return StateSizeWithPresence
	}
	return StateSize
}

// Labels names each component of the vectors this encoder produces.
func (e Encoder) Labels() []string {
	if e.PresenceBits {
		return []string{"self x", "self y", "apple x", "apple y", "apple?", "kiwi x", "kiwi y", "kiwi?"}
	}
	return []string{"self x", "self y", "apple x", "apple y", "kiwi x", "kiwi y"}
}

// Encode builds a state vector from the agent position and the nearest
// reward and penalty targets. A nil target is encoded as (0, 0).
func (e Encoder) Encode(self Position, reward, penalty *Position, bounds Bounds) (StateVector, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	s := make(StateVector, 0, e.Size())
	s = append(s, norm(self.X, bounds.Width), norm(self.Y, bounds.Height))
	s = e.appendTarget(s, reward, bounds)
	s = e.appendTarget(s, penalty, bounds)
	return s, nil
}

func (e Encoder) appendTarget(s StateVector, target *Position, bounds Bounds) StateVector {
	if target == nil {
		s = append(s, 0, 0)
		if e.PresenceBits {
			s = append(s, 0)
		}
		return s
	}
	s = append(s, norm(target.X, bounds.Width), norm(target.Y, bounds.Height))
	if e.PresenceBits {
		s = append(s, 1)
	}
	return s
}

// Encode is the default (parity) encoding.
func Encode(self Position, reward, penalty *Position, bounds Bounds) (StateVector, error) {
	return Encoder{}.Encode(self, reward, penalty, bounds)
}

// norm divides v by extent. Non-finite coordinates collapse to 0 so the
// vector never carries NaN or Inf into the approximator.
func norm(v, extent float64) float64 {
	r := v / extent
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
