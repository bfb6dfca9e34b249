package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/slimes/config"
	"github.com/pthm-cable/slimes/sim"
	"github.com/pthm-cable/slimes/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	bestSummary sim.Summary
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		bestFitness: math.Inf(1),
	}
}

// BestSummary returns the run summary of the best seed so far.
func (fe *FitnessEvaluator) BestSummary() sim.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSummary
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windowStats []telemetry.WindowStats
	summary     sim.Summary
	failed      bool
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated learning quality averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	best := -1.0
	var bestSummary sim.Summary
	for _, r := range results {
		q := 0.0
		if !r.failed {
			q = computeQuality(r.windowStats)
		}
		total += q
		if q > best {
			best = q
			bestSummary = r.summary
		}
	}

	quality := total / float64(len(fe.seeds))
	fitness := -quality

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestSummary = bestSummary
	}
	fe.lastQuality = quality
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless simulation run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	s, err := sim.New(cfg, sim.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Logger:         slog.New(slog.DiscardHandler),
	})
	if err != nil {
		slog.Warn("evaluation failed", "seed", seed, "error", err)
		result.failed = true
		return result
	}
	s.SetStatsCallback(func(stats telemetry.WindowStats) {
		result.windowStats = append(result.windowStats, stats)
	})

	for s.Tick() < fe.maxTicks {
		s.Step()
	}
	result.summary = s.Summary()
	if err := s.Close(); err != nil {
		slog.Warn("closing evaluation", "seed", seed, "error", err)
	}
	return result
}

// Quality component weights.
const (
	qualityWeightApples   = 0.7
	qualityWeightActivity = 0.3

	qualityWarmupFraction = 0.5 // score only the later part of the run
)

// computeQuality scores learning ∈ [0, 1] from window stats: how often
// finished episodes ended on an apple, and how quickly episodes finish.
func computeQuality(windows []telemetry.WindowStats) float64 {
	start := int(float64(len(windows)) * qualityWarmupFraction)
	late := windows[start:]

	var appleRates, appleWeights []float64
	var episodesPerAgent []float64
	for _, w := range late {
		pop := w.PassiveCount + w.AggressiveCount
		if pop == 0 {
			continue
		}
		episodesPerAgent = append(episodesPerAgent, float64(w.Episodes)/float64(pop))
		if w.Episodes > 0 {
			appleRates = append(appleRates, w.AppleRate)
			appleWeights = append(appleWeights, float64(w.Episodes))
		}
	}
	if len(appleRates) == 0 {
		return 0
	}

	appleScore := stat.Mean(appleRates, appleWeights)
	activityScore := 1.0 - math.Exp(-stat.Mean(episodesPerAgent, nil)/2.0)

	return clamp01(qualityWeightApples*appleScore + qualityWeightActivity*activityScore)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
