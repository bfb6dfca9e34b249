package sim

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/brain"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/neural"
	"github.com/pthm-cable/slimes/world"
)

// populate builds a fresh arena and scheduler and spawns the configured
// fruit and slimes.
func (s *Sim) populate() error {
	cfg := s.cfg

	// IDs stay unique for the whole run so telemetry rows never collide.
	var firstID uint32
	if s.arena != nil {
		firstID = s.arena.LastID()
	}

	s.arena = world.NewArena(world.Options{
		Width:            cfg.Derived.ArenaW32,
		Height:           cfg.Derived.ArenaH32,
		SlimeRadius:      float32(cfg.Slime.Radius),
		FruitRadius:      float32(cfg.Fruit.Radius),
		CellSize:         float32(cfg.Physics.GridCellSize),
		KiwiSpeedPenalty: float32(cfg.Slime.KiwiSpeedPenalty),
		Fights:           cfg.Slime.Fights,
		FightChance:      cfg.Slime.FightChance,
		FirstID:          firstID,
	}, s.rng)
	s.sched = world.NewScheduler()

	fruitRadius := float32(cfg.Fruit.Radius)
	for i := 0; i < cfg.Fruit.Apples; i++ {
		x, y := s.arena.RandomPosition(fruitRadius)
		s.arena.SpawnFruit(components.TargetApple, x, y)
	}
	for i := 0; i < cfg.Fruit.Kiwis; i++ {
		x, y := s.arena.RandomPosition(fruitRadius)
		s.arena.SpawnFruit(components.TargetKiwi, x, y)
	}

	counts := map[components.AgentKind]int{
		components.KindPassive:    cfg.Slime.Passive,
		components.KindAggressive: cfg.Slime.Aggressive,
	}
	for _, kind := range components.AgentKinds() {
		for i := 0; i < counts[kind]; i++ {
			if _, err := s.SpawnRandom(kind); err != nil {
				return err
			}
		}
	}

	s.arena.SetReady(true)
	return nil
}

// SpawnRandom creates an agent of kind at a random position.
func (s *Sim) SpawnRandom(kind components.AgentKind) (*agent.Controller, error) {
	x, y := s.arena.RandomPosition(float32(s.cfg.Slime.Radius))
	return s.CreateAgent(kind, x, y)
}

// CreateAgent spawns a slime with a fresh brain at (x, y) and starts its
// decision timer. The returned controller is the agent's handle.
func (s *Sim) CreateAgent(kind components.AgentKind, x, y float32) (*agent.Controller, error) {
	enc := s.Encoder()

	// Each brain owns its random source so parallel decisions never share one.
	policy, err := s.newPolicy(rand.New(rand.NewSource(s.rng.Int63())), enc.Size())
	if err != nil {
		return nil, fmt.Errorf("creating brain: %w", err)
	}

	id := s.arena.SpawnSlime(kind, x, y)
	ctrl := agent.NewController(id, kind, policy, agent.Options{
		Encoder: enc,
		Rewards: s.rewards(),
		Speed:   s.cfg.Slime.Speed,
		Logger:  s.logger,
	})
	ctrl.Schedule(s.sched, s.cfg.Derived.DecisionInterval, func() {
		s.due = append(s.due, id)
	})

	s.agents[id] = ctrl
	s.lifetimes.Register(id, kind, s.tick)
	s.collector.RecordSpawn()
	s.totals.spawns++
	return ctrl, nil
}

func (s *Sim) newPolicy(rng *rand.Rand, stateSize int) (*brain.QPolicy, error) {
	b := s.cfg.Brain
	hp := brain.Hyperparameters{
		LearningRate:   b.LearningRate,
		DiscountFactor: b.DiscountFactor,
		Epsilon:        b.Epsilon,
		EpsilonDecay:   b.EpsilonDecay,
		EpsilonMin:     b.EpsilonMin,
	}
	adam := neural.AdamConfig{
		LearningRate: b.LearningRate,
		Beta1:        b.AdamBeta1,
		Beta2:        b.AdamBeta2,
		Epsilon:      b.AdamEpsilon,
	}
	return brain.NewMLPPolicy(rng, hp, adam, stateSize, b.Hidden)
}

func (s *Sim) rewards() agent.Rewards {
	r := s.cfg.Rewards
	return agent.Rewards{
		Step: r.Step,
		Terminal: map[components.TargetKind]float64{
			components.TargetApple: r.Apple,
			components.TargetKiwi:  r.Kiwi,
		},
	}
}
