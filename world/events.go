package world

import "github.com/pthm-cable/slimes/components"

// EventKind identifies what an overlap resolved to.
type EventKind uint8

const (
	// EventAte: a slime started overlapping a fruit and ate it.
	EventAte EventKind = iota
	// EventFight: two slimes of different kinds met and one was destroyed.
	EventFight
)

func (k EventKind) String() string {
	if k == EventFight {
		return "fight"
	}
	return "ate"
}

// Event is one overlap outcome produced by Arena.Step. Each physical
// overlap produces at most one event, on the step the overlap begins.
type Event struct {
	Kind    EventKind
	SlimeID uint32                // eater, or the loser of a fight
	Target  components.TargetKind // fruit eaten (EventAte)
	OtherID uint32                // winner of a fight (EventFight)
}
