package agent

import (
	"errors"
	"time"

	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
)

// ErrMissingWorldData is reported when the world cannot yet answer the
// queries a decision needs. Callers treat it as a skipped step.
var ErrMissingWorldData = errors.New("agent: world data unavailable")

// World is the read side of the arena an agent perceives.
type World interface {
	// Ready reports whether target groups exist yet.
	Ready() bool
	// Position returns the agent's current position.
	Position(id uint32) (encoder.Position, bool)
	// NearestOf returns the nearest live target of kind.
	NearestOf(kind components.TargetKind, from encoder.Position) (encoder.Position, bool)
	ArenaBounds() encoder.Bounds
}

// Handle identifies a repeating registration.
type Handle uint64

// Scheduler runs callbacks on a fixed cadence owned by the driver.
type Scheduler interface {
	RegisterRepeating(interval time.Duration, fn func()) Handle
	Cancel(h Handle)
}
