package telemetry

import "github.com/pthm-cable/slimes/components"

// Removal causes recorded in LifetimeStats.Cause.
const (
	CauseFight   = "fight"
	CauseRemoved = "removed"
	CauseRunEnd  = "run_end"
)

// LifetimeStats tracks per-slime statistics over its lifetime.
type LifetimeStats struct {
	RunID           string  `csv:"run_id"`
	SlimeID         uint32  `csv:"slime_id"`
	Kind            string  `csv:"kind"`
	BirthTick       int32   `csv:"birth_tick"`
	DeathTick       int32   `csv:"death_tick"`
	SurvivalTimeSec float32 `csv:"survival_sec"`
	Cause           string  `csv:"cause"`

	ApplesEaten int `csv:"apples"`
	KiwisEaten  int `csv:"kiwis"`
	Fights      int `csv:"fights_won"`

	Episodes     int     `csv:"episodes"`
	BestEpisode  float64 `csv:"best_episode"`
	FinalEpsilon float64 `csv:"final_epsilon"`
}

// LifetimeTracker manages per-slime lifetime statistics.
type LifetimeTracker struct {
	runID string
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker(runID string) *LifetimeTracker {
	return &LifetimeTracker{
		runID: runID,
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new slime.
func (lt *LifetimeTracker) Register(id uint32, kind components.AgentKind, birthTick int32) {
	lt.stats[id] = &LifetimeStats{
		RunID:     lt.runID,
		SlimeID:   id,
		Kind:      kind.String(),
		BirthTick: birthTick,
	}
}

// Get returns the lifetime stats for a slime, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// RecordEat increments the fruit count for kind.
func (lt *LifetimeTracker) RecordEat(id uint32, kind components.TargetKind) {
	s := lt.stats[id]
	if s == nil {
		return
	}
	if kind == components.TargetApple {
		s.ApplesEaten++
	} else {
		s.KiwisEaten++
	}
}

// RecordFightWon increments the fight count of the winner.
func (lt *LifetimeTracker) RecordFightWon(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Fights++
	}
}

// RecordEpisode counts a finished episode and tracks the best reward.
func (lt *LifetimeTracker) RecordEpisode(id uint32, reward float64) {
	s := lt.stats[id]
	if s == nil {
		return
	}
	if s.Episodes == 0 || reward > s.BestEpisode {
		s.BestEpisode = reward
	}
	s.Episodes++
}

// Remove closes a slime's record and returns it.
func (lt *LifetimeTracker) Remove(id uint32, tick int32, dt float32, cause string, epsilon float64) *LifetimeStats {
	s := lt.stats[id]
	if s == nil {
		return nil
	}
	delete(lt.stats, id)
	s.DeathTick = tick
	s.SurvivalTimeSec = float32(tick-s.BirthTick) * dt
	s.Cause = cause
	s.FinalEpsilon = epsilon
	return s
}

// Count returns the number of tracked slimes.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
