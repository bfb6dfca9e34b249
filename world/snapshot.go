package world

import (
	"math"

	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
)

// Snapshot is an immutable copy of the positions agents observe. It is
// safe for concurrent readers while the arena itself is not touched.
type Snapshot struct {
	ready  bool
	bounds encoder.Bounds
	slimes map[uint32]encoder.Position
	fruit  [components.NumTargetKinds][]encoder.Position
}

// Snapshot captures the current arena state.
func (a *Arena) Snapshot() *Snapshot {
	s := &Snapshot{
		ready:  a.ready,
		bounds: a.ArenaBounds(),
		slimes: make(map[uint32]encoder.Position, len(a.ids)),
	}

	sq := a.slimeFilter.Query()
	for sq.Next() {
		pos, _, _, slime := sq.Get()
		s.slimes[slime.ID] = encoder.Position{X: float64(pos.X), Y: float64(pos.Y)}
	}
	fq := a.fruitFilter.Query()
	for fq.Next() {
		pos, _, fruit := fq.Get()
		if int(fruit.Kind) < len(s.fruit) {
			s.fruit[fruit.Kind] = append(s.fruit[fruit.Kind], encoder.Position{X: float64(pos.X), Y: float64(pos.Y)})
		}
	}
	return s
}

func (s *Snapshot) Ready() bool { return s.ready }

func (s *Snapshot) Position(id uint32) (encoder.Position, bool) {
	p, ok := s.slimes[id]
	return p, ok
}

func (s *Snapshot) NearestOf(kind components.TargetKind, from encoder.Position) (encoder.Position, bool) {
	if int(kind) >= len(s.fruit) {
		return encoder.Position{}, false
	}
	best := math.Inf(1)
	var out encoder.Position
	found := false
	for _, p := range s.fruit[kind] {
		if d := distSq(from, p); d < best {
			best, out, found = d, p, true
		}
	}
	return out, found
}

func (s *Snapshot) ArenaBounds() encoder.Bounds { return s.bounds }
