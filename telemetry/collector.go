package telemetry

import "github.com/pthm-cable/slimes/components"

// AgentTotals are cumulative learning counters summed over agents. The
// collector turns them into per-window deltas.
type AgentTotals struct {
	Decisions      int
	Trainings      int
	TrainingErrors int
	DroppedTicks   int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	runID               string
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32
	lastTotals      AgentTotals

	// Event counters for current window
	apples  int
	kiwis   int
	fights  int
	spawns  int
	rewards []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(runID string, windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		runID:               runID,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEat records a fruit eaten.
func (c *Collector) RecordEat(kind components.TargetKind) {
	if kind == components.TargetApple {
		c.apples++
	} else {
		c.kiwis++
	}
}

// RecordFight records a fight that removed a slime.
func (c *Collector) RecordFight() {
	c.fights++
}

// RecordSpawn records a slime added to the arena.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordEpisode records the total reward of a finished episode.
func (c *Collector) RecordEpisode(reward float64) {
	c.rewards = append(c.rewards, reward)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller must provide:
// - currentTick: the current simulation tick
// - passive, aggressive: current population counts
// - epsilons: exploration rates of live agents
// - totals: cumulative agent counters, including removed agents
func (c *Collector) Flush(currentTick int32, passive, aggressive int, epsilons []float64, totals AgentTotals) WindowStats {
	var appleRate float64
	if eaten := c.apples + c.kiwis; eaten > 0 {
		appleRate = float64(c.apples) / float64(eaten)
	}
	rewardMean, rewardStd := MeanStd(c.rewards)
	epsMean, epsP10, epsP50, epsP90 := ComputeDistribution(epsilons)

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		PassiveCount:    passive,
		AggressiveCount: aggressive,

		ApplesEaten: c.apples,
		KiwisEaten:  c.kiwis,
		Fights:      c.fights,
		Spawns:      c.spawns,

		Decisions:      totals.Decisions - c.lastTotals.Decisions,
		Trainings:      totals.Trainings - c.lastTotals.Trainings,
		TrainingErrors: totals.TrainingErrors - c.lastTotals.TrainingErrors,
		DroppedTicks:   totals.DroppedTicks - c.lastTotals.DroppedTicks,
		Episodes:       len(c.rewards),

		RewardMean: rewardMean,
		RewardStd:  rewardStd,
		AppleRate:  appleRate,

		EpsilonMean: epsMean,
		EpsilonP10:  epsP10,
		EpsilonP50:  epsP50,
		EpsilonP90:  epsP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.lastTotals = totals
	c.apples = 0
	c.kiwis = 0
	c.fights = 0
	c.spawns = 0
	c.rewards = c.rewards[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// RunID returns the identifier stamped on every window.
func (c *Collector) RunID() string {
	return c.runID
}
