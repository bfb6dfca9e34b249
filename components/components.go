// Package components defines ECS components for the arena.
package components

// AgentKind tags a slime with its temperament. It is fixed at construction.
type AgentKind uint8

const (
	KindPassive AgentKind = iota
	KindAggressive
)

// String returns the display name for an AgentKind.
func (k AgentKind) String() string {
	switch k {
	case KindPassive:
		return "passive"
	case KindAggressive:
		return "aggressive"
	}
	return "unknown"
}

// AgentKinds lists every agent kind in index order.
func AgentKinds() []AgentKind {
	return []AgentKind{KindPassive, KindAggressive}
}

// TargetKind identifies a consumable the agents can perceive and eat.
type TargetKind uint8

const (
	TargetApple TargetKind = iota // reward-bearing
	TargetKiwi                    // penalty-bearing
)

// NumTargetKinds is the number of target kinds the arena knows about.
const NumTargetKinds = 2

// String returns the display name for a TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetApple:
		return "apple"
	case TargetKiwi:
		return "kiwi"
	}
	return "unknown"
}
