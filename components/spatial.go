package components

// Position represents an entity's arena position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in arena units per second.
type Velocity struct {
	X, Y float32
}
