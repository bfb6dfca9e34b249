package components

// Slime bundles identity and movement state of one agent.
type Slime struct {
	ID              uint32    `inspect:"label"`
	Kind            AgentKind `inspect:"label"`
	SpeedMultiplier float32   `inspect:"bar"` // shrinks with every kiwi eaten
	Alive           bool      `inspect:"bool"`
	ApplesEaten     int       `inspect:"label"`
	KiwisEaten      int       `inspect:"label"`
}

// Fruit marks a consumable target entity.
type Fruit struct {
	Kind TargetKind
}
