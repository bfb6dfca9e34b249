package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	PassiveCount    int `csv:"passive"`
	AggressiveCount int `csv:"aggressive"`

	// Events during window
	ApplesEaten int `csv:"apples"`
	KiwisEaten  int `csv:"kiwis"`
	Fights      int `csv:"fights"`
	Spawns      int `csv:"spawns"`

	// Learning activity during window
	Decisions      int `csv:"decisions"`
	Trainings      int `csv:"trainings"`
	TrainingErrors int `csv:"training_errors"`
	DroppedTicks   int `csv:"dropped_ticks"`
	Episodes       int `csv:"episodes"`

	// Episode rewards of episodes that ended during the window
	RewardMean float64 `csv:"reward_mean"`
	RewardStd  float64 `csv:"reward_std"`
	AppleRate  float64 `csv:"apple_rate"` // apples / (apples + kiwis)

	// Exploration rate across live agents (sampled at window end)
	EpsilonMean float64 `csv:"epsilon_mean"`
	EpsilonP10  float64 `csv:"epsilon_p10"`
	EpsilonP50  float64 `csv:"epsilon_p50"`
	EpsilonP90  float64 `csv:"epsilon_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)
	return mean, std
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("passive", s.PassiveCount),
		slog.Int("aggressive", s.AggressiveCount),
		slog.Int("apples", s.ApplesEaten),
		slog.Int("kiwis", s.KiwisEaten),
		slog.Int("fights", s.Fights),
		slog.Int("spawns", s.Spawns),
		slog.Int("decisions", s.Decisions),
		slog.Int("trainings", s.Trainings),
		slog.Int("training_errors", s.TrainingErrors),
		slog.Int("dropped_ticks", s.DroppedTicks),
		slog.Int("episodes", s.Episodes),
		slog.Float64("reward_mean", s.RewardMean),
		slog.Float64("reward_std", s.RewardStd),
		slog.Float64("apple_rate", s.AppleRate),
		slog.Float64("epsilon_mean", s.EpsilonMean),
		slog.Float64("epsilon_p10", s.EpsilonP10),
		slog.Float64("epsilon_p50", s.EpsilonP50),
		slog.Float64("epsilon_p90", s.EpsilonP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"passive", s.PassiveCount,
		"aggressive", s.AggressiveCount,
		"apples", s.ApplesEaten,
		"kiwis", s.KiwisEaten,
		"fights", s.Fights,
		"decisions", s.Decisions,
		"trainings", s.Trainings,
		"training_errors", s.TrainingErrors,
		"dropped_ticks", s.DroppedTicks,
		"episodes", s.Episodes,
		"reward_mean", s.RewardMean,
		"apple_rate", s.AppleRate,
		"epsilon_mean", s.EpsilonMean,
		"epsilon_p50", s.EpsilonP50,
	)
}
