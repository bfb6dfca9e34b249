package brain

// Action is a discrete movement choice. Its value is the index of the
// matching approximator output.
type Action uint8

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
)

// NumActions is the size of the action set.
const NumActions = 4

// Valid reports whether a indexes into the action set.
func (a Action) Valid() bool {
	return a < NumActions
}

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	}
	return "invalid"
}

// Actions lists every action in index order.
func Actions() []Action {
	return []Action{ActionUp, ActionDown, ActionLeft, ActionRight}
}
