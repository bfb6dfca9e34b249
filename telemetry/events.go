package telemetry

import "github.com/pthm-cable/slimes/components"

// EpisodeRecord is one finished episode, written to episodes.csv.
type EpisodeRecord struct {
	RunID      string  `csv:"run_id"`
	Tick       int32   `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`
	SlimeID    uint32  `csv:"slime_id"`
	Kind       string  `csv:"kind"`
	Outcome    string  `csv:"outcome"`
	Reward     float64 `csv:"reward"`
	Epsilon    float64 `csv:"epsilon"`
}

// NewEpisodeRecord creates an episode record for a terminal outcome.
func NewEpisodeRecord(runID string, tick int32, dt float32, id uint32, kind components.AgentKind, outcome components.TargetKind, reward, epsilon float64) EpisodeRecord {
	return EpisodeRecord{
		RunID:      runID,
		Tick:       tick,
		SimTimeSec: float64(tick) * float64(dt),
		SlimeID:    id,
		Kind:       kind.String(),
		Outcome:    outcome.String(),
		Reward:     reward,
		Epsilon:    epsilon,
	}
}
