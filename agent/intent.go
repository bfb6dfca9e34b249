package agent

import "github.com/pthm-cable/slimes/brain"

// MovementIntent is the velocity an agent asks the world to apply.
type MovementIntent struct {
	VX, VY float64
}

// IntentFor converts an action to a fixed-speed velocity along one axis.
// Y grows downward, so up is negative.
func IntentFor(a brain.Action, speed float64) MovementIntent {
	switch a {
	case brain.ActionUp:
		return MovementIntent{VY: -speed}
	case brain.ActionDown:
		return MovementIntent{VY: speed}
	case brain.ActionLeft:
		return MovementIntent{VX: -speed}
	case brain.ActionRight:
		return MovementIntent{VX: speed}
	}
	return MovementIntent{}
}
