package sim

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary describes a run so far.
type Summary struct {
	RunID       string
	Ticks       int32
	SimTime     time.Duration
	Alive       int
	Timers      int // pending decision timers
	Spawned     int
	Apples      int
	Kiwis       int
	Fights      int
	Episodes    int
	Decisions   int
	Trainings   int
	TrainErrors int
}

// Summary returns whole-run counters.
func (s *Sim) Summary() Summary {
	t := s.agentTotals()
	return Summary{
		RunID:       s.runID,
		Ticks:       s.tick,
		SimTime:     s.sched.Now(),
		Alive:       len(s.agents),
		Timers:      s.sched.Len(),
		Spawned:     s.totals.spawns,
		Apples:      s.totals.apples,
		Kiwis:       s.totals.kiwis,
		Fights:      s.totals.fights,
		Episodes:    s.totals.episodes,
		Decisions:   t.Decisions,
		Trainings:   t.Trainings,
		TrainErrors: t.TrainingErrors,
	}
}

// LogValue implements slog.LogValuer with human-readable counts.
func (m Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run", m.RunID),
		slog.String("ticks", humanize.Comma(int64(m.Ticks))),
		slog.String("sim_time", m.SimTime.Round(time.Second).String()),
		slog.Int("alive", m.Alive),
		slog.Int("timers", m.Timers),
		slog.Int("spawned", m.Spawned),
		slog.String("apples", humanize.Comma(int64(m.Apples))),
		slog.String("kiwis", humanize.Comma(int64(m.Kiwis))),
		slog.Int("fights", m.Fights),
		slog.String("episodes", humanize.Comma(int64(m.Episodes))),
		slog.String("decisions", humanize.Comma(int64(m.Decisions))),
		slog.String("trainings", humanize.Comma(int64(m.Trainings))),
		slog.Int("training_errors", m.TrainErrors),
	)
}

// LogSummary logs the run summary.
func (s *Sim) LogSummary() {
	s.logger.Info("run summary", "summary", s.Summary())
}
