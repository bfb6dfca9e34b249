// Package world owns the arena: slimes and fruit as ECS entities, movement,
// wall clamping and overlap events.
package world

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
)

// Options configures an Arena.
type Options struct {
	Width, Height    float32
	SlimeRadius      float32
	FruitRadius      float32
	CellSize         float32
	KiwiSpeedPenalty float32 // speed multiplier applied per kiwi eaten
	Fights           bool
	FightChance      float64
	FirstID          uint32 // slime IDs start after this value
}

// contact is an overlapping pair seen during one step. For slime pairs
// slime is the lower ID.
type contact struct {
	slime uint32
	other ecs.Entity
}

// Arena is the playfield. It implements agent.World for the simulation
// thread; parallel readers use a Snapshot.
type Arena struct {
	world *ecs.World
	rng   *rand.Rand
	opts  Options

	slimeMapper *ecs.Map4[components.Position, components.Velocity, components.Body, components.Slime]
	fruitMapper *ecs.Map3[components.Position, components.Body, components.Fruit]
	slimeFilter *ecs.Filter4[components.Position, components.Velocity, components.Body, components.Slime]
	fruitFilter *ecs.Filter3[components.Position, components.Body, components.Fruit]

	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	bodyMap  *ecs.Map1[components.Body]
	slimeMap *ecs.Map1[components.Slime]
	fruitMap *ecs.Map1[components.Fruit]

	grid     *SpatialGrid
	ids      map[uint32]ecs.Entity
	nextID   uint32
	ready    bool
	touching map[contact]struct{}

	// scratch buffers reused across steps
	neighbors []Neighbor
	contacts  []contact
}

// NewArena creates an empty arena.
func NewArena(opts Options, rng *rand.Rand) *Arena {
	if opts.CellSize <= 0 {
		opts.CellSize = 64
	}
	w := ecs.NewWorld()
	return &Arena{
		world:       w,
		rng:         rng,
		opts:        opts,
		slimeMapper: ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Slime](w),
		fruitMapper: ecs.NewMap3[components.Position, components.Body, components.Fruit](w),
		slimeFilter: ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Slime](w),
		fruitFilter: ecs.NewFilter3[components.Position, components.Body, components.Fruit](w),
		posMap:      ecs.NewMap1[components.Position](w),
		velMap:      ecs.NewMap1[components.Velocity](w),
		bodyMap:     ecs.NewMap1[components.Body](w),
		slimeMap:    ecs.NewMap1[components.Slime](w),
		fruitMap:    ecs.NewMap1[components.Fruit](w),
		grid:        NewSpatialGrid(opts.Width, opts.Height, opts.CellSize),
		ids:         make(map[uint32]ecs.Entity),
		touching:    make(map[contact]struct{}),
		nextID:      opts.FirstID,
	}
}

// SetReady marks whether the arena has been populated. Until then
// observers treat world data as unavailable.
func (a *Arena) SetReady(ready bool) { a.ready = ready }

// LastID returns the most recently assigned slime ID.
func (a *Arena) LastID() uint32 { return a.nextID }

// SpawnSlime adds a slime at (x, y) and returns its ID.
func (a *Arena) SpawnSlime(kind components.AgentKind, x, y float32) uint32 {
	a.nextID++
	id := a.nextID
	pos := a.clamp(components.Position{X: x, Y: y}, a.opts.SlimeRadius)
	vel := components.Velocity{}
	body := components.Body{Radius: a.opts.SlimeRadius}
	slime := components.Slime{ID: id, Kind: kind, SpeedMultiplier: 1, Alive: true}
	a.ids[id] = a.slimeMapper.NewEntity(&pos, &vel, &body, &slime)
	return id
}

// SpawnFruit adds a fruit at (x, y).
func (a *Arena) SpawnFruit(kind components.TargetKind, x, y float32) ecs.Entity {
	pos := a.clamp(components.Position{X: x, Y: y}, a.opts.FruitRadius)
	body := components.Body{Radius: a.opts.FruitRadius}
	fruit := components.Fruit{Kind: kind}
	return a.fruitMapper.NewEntity(&pos, &body, &fruit)
}

// RandomPosition returns a uniformly random point at least margin away
// from every wall.
func (a *Arena) RandomPosition(margin float32) (float32, float32) {
	w := max(a.opts.Width-2*margin, 0)
	h := max(a.opts.Height-2*margin, 0)
	return margin + a.rng.Float32()*w, margin + a.rng.Float32()*h
}

// RemoveSlime deletes a slime. It must not be called during Step.
func (a *Arena) RemoveSlime(id uint32) bool {
	e, ok := a.ids[id]
	if !ok {
		return false
	}
	delete(a.ids, id)
	for c := range a.touching {
		if c.slime == id || c.other == e {
			delete(a.touching, c)
		}
	}
	if a.world.Alive(e) {
		a.slimeMapper.Remove(e)
	}
	return true
}

// SetVelocity sets a slime's velocity, scaled by its speed multiplier.
func (a *Arena) SetVelocity(id uint32, vx, vy float64) bool {
	e, ok := a.ids[id]
	if !ok {
		return false
	}
	m := a.slimeMap.Get(e).SpeedMultiplier
	vel := a.velMap.Get(e)
	vel.X = float32(vx) * m
	vel.Y = float32(vy) * m
	return true
}

// Step advances physics by dt seconds and returns the overlap events that
// began during the step. Fruit eaten is relocated and fight losers are
// removed before Step returns.
func (a *Arena) Step(dt float32) []Event {
	a.integrate(dt)
	a.rebuildGrid()

	contacts := a.findContacts()
	var events []Event
	var losers []uint32
	eaten := make(map[ecs.Entity]bool)
	var eatenOrder []ecs.Entity
	lost := make(map[uint32]bool)
	current := make(map[contact]struct{}, len(contacts))

	for _, c := range contacts {
		current[c] = struct{}{}
		if _, seen := a.touching[c]; seen {
			continue
		}
		if lost[c.slime] {
			continue
		}
		self := a.slimeMap.Get(a.ids[c.slime])

		if a.fruitMap.HasAll(c.other) {
			if eaten[c.other] {
				continue
			}
			eaten[c.other] = true
			eatenOrder = append(eatenOrder, c.other)
			kind := a.fruitMap.Get(c.other).Kind
			a.eat(self, kind)
			events = append(events, Event{Kind: EventAte, SlimeID: c.slime, Target: kind})
			continue
		}

		other := a.slimeMap.Get(c.other)
		if lost[other.ID] || other.Kind == self.Kind || !a.opts.Fights {
			continue
		}
		if a.rng.Float64() >= a.opts.FightChance {
			continue
		}
		loser, winner := self, other
		if other.Kind == components.KindPassive {
			loser, winner = other, self
		}
		loser.Alive = false
		lost[loser.ID] = true
		losers = append(losers, loser.ID)
		events = append(events, Event{Kind: EventFight, SlimeID: loser.ID, OtherID: winner.ID})
	}

	// Relocate eaten fruit and remove losers after the queries are done.
	// Relocation draws from rng, so it follows contact order.
	for _, e := range eatenOrder {
		pos := a.posMap.Get(e)
		pos.X, pos.Y = a.RandomPosition(a.opts.FruitRadius)
	}
	a.touching = current
	for c := range a.touching {
		if eaten[c.other] {
			delete(a.touching, c)
		}
	}
	for _, id := range losers {
		a.RemoveSlime(id)
	}
	return events
}

func (a *Arena) eat(s *components.Slime, kind components.TargetKind) {
	switch kind {
	case components.TargetApple:
		s.ApplesEaten++
	case components.TargetKiwi:
		s.KiwisEaten++
		if a.opts.KiwiSpeedPenalty > 0 {
			s.SpeedMultiplier *= a.opts.KiwiSpeedPenalty
		}
	}
}

// integrate moves slimes and clamps them inside the walls.
func (a *Arena) integrate(dt float32) {
	query := a.slimeFilter.Query()
	for query.Next() {
		pos, vel, body, _ := query.Get()
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		*pos = a.clamp(*pos, body.Radius)
	}
}

func (a *Arena) rebuildGrid() {
	a.grid.Clear()
	sq := a.slimeFilter.Query()
	for sq.Next() {
		pos, _, _, _ := sq.Get()
		a.grid.Insert(sq.Entity(), pos.X, pos.Y)
	}
	fq := a.fruitFilter.Query()
	for fq.Next() {
		pos, _, _ := fq.Get()
		a.grid.Insert(fq.Entity(), pos.X, pos.Y)
	}
}

// findContacts lists overlapping slime-fruit and slime-slime pairs in
// query order.
func (a *Arena) findContacts() []contact {
	a.contacts = a.contacts[:0]
	reach := a.opts.SlimeRadius + max(a.opts.SlimeRadius, a.opts.FruitRadius)

	query := a.slimeFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _, body, slime := query.Get()

		a.neighbors = a.grid.QueryRadiusInto(a.neighbors[:0], pos.X, pos.Y, reach, e, a.posMap)
		for _, n := range a.neighbors {
			r := body.Radius + a.bodyMap.Get(n.E).Radius
			if n.DistSq >= r*r {
				continue
			}
			if a.slimeMap.HasAll(n.E) && a.slimeMap.Get(n.E).ID < slime.ID {
				continue // pair recorded from the other side
			}
			a.contacts = append(a.contacts, contact{slime: slime.ID, other: n.E})
		}
	}
	return a.contacts
}

func (a *Arena) clamp(p components.Position, radius float32) components.Position {
	p.X = min(max(p.X, radius), max(a.opts.Width-radius, radius))
	p.Y = min(max(p.Y, radius), max(a.opts.Height-radius, radius))
	return p
}

// Ready reports whether the arena is populated.
func (a *Arena) Ready() bool { return a.ready }

// Position returns the position of a live slime.
func (a *Arena) Position(id uint32) (encoder.Position, bool) {
	e, ok := a.ids[id]
	if !ok {
		return encoder.Position{}, false
	}
	p := a.posMap.Get(e)
	return encoder.Position{X: float64(p.X), Y: float64(p.Y)}, true
}

// NearestOf returns the closest fruit of kind to from.
func (a *Arena) NearestOf(kind components.TargetKind, from encoder.Position) (encoder.Position, bool) {
	best := math.Inf(1)
	var out encoder.Position
	found := false

	query := a.fruitFilter.Query()
	for query.Next() {
		pos, _, fruit := query.Get()
		if fruit.Kind != kind {
			continue
		}
		p := encoder.Position{X: float64(pos.X), Y: float64(pos.Y)}
		if d := distSq(from, p); d < best {
			best, out, found = d, p, true
		}
	}
	return out, found
}

// ArenaBounds returns the arena size.
func (a *Arena) ArenaBounds() encoder.Bounds {
	return encoder.Bounds{Width: float64(a.opts.Width), Height: float64(a.opts.Height)}
}

// Slime returns a copy of a live slime's state.
func (a *Arena) Slime(id uint32) (components.Slime, bool) {
	e, ok := a.ids[id]
	if !ok {
		return components.Slime{}, false
	}
	return *a.slimeMap.Get(e), true
}

// SlimeCount returns the number of live slimes.
func (a *Arena) SlimeCount() int { return len(a.ids) }

// SlimeView is the render view of a slime.
type SlimeView struct {
	ID     uint32
	Kind   components.AgentKind
	X, Y   float32
	VX, VY float32
	Radius float32
}

// FruitView is the render view of a fruit.
type FruitView struct {
	Kind   components.TargetKind
	X, Y   float32
	Radius float32
}

// Slimes appends every live slime to dst.
func (a *Arena) Slimes(dst []SlimeView) []SlimeView {
	query := a.slimeFilter.Query()
	for query.Next() {
		pos, vel, body, s := query.Get()
		dst = append(dst, SlimeView{ID: s.ID, Kind: s.Kind, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y, Radius: body.Radius})
	}
	return dst
}

// Fruits appends every fruit to dst.
func (a *Arena) Fruits(dst []FruitView) []FruitView {
	query := a.fruitFilter.Query()
	for query.Next() {
		pos, body, f := query.Get()
		dst = append(dst, FruitView{Kind: f.Kind, X: pos.X, Y: pos.Y, Radius: body.Radius})
	}
	return dst
}

// SlimeAt returns the slime whose body contains (x, y).
func (a *Arena) SlimeAt(x, y float32) (uint32, bool) {
	query := a.slimeFilter.Query()
	for query.Next() {
		pos, _, body, s := query.Get()
		dx, dy := pos.X-x, pos.Y-y
		if dx*dx+dy*dy <= body.Radius*body.Radius {
			id := s.ID
			query.Close()
			return id, true
		}
	}
	return 0, false
}

func distSq(a, b encoder.Position) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
