package agent

import "github.com/pthm-cable/slimes/components"

// Rewards maps events to training rewards.
type Rewards struct {
	Step     float64                           // every decision that did not end the episode
	Terminal map[components.TargetKind]float64 // episode-ending overlaps
}

// DefaultRewards returns +100 for apples, -100 for kiwis and -0.1 per step.
func DefaultRewards() Rewards {
	return Rewards{
		Step: -0.1,
		Terminal: map[components.TargetKind]float64{
			components.TargetApple: 100,
			components.TargetKiwi:  -100,
		},
	}
}

// For returns the terminal reward for kind.
func (r Rewards) For(kind components.TargetKind) (float64, bool) {
	v, ok := r.Terminal[kind]
	return v, ok
}
