package sim

import (
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	passive, aggressive, epsilons := s.samplePopulation()
	stats := s.collector.Flush(s.tick, passive, aggressive, epsilons, s.agentTotals())
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		s.logger.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		s.logger.Error("failed to write perf", "error", err)
	}
	if s.store != nil {
		if err := s.store.SaveWindow(s.ctx, stats); err != nil {
			s.logger.Error("failed to store window", "error", err)
		}
	}
}

// samplePopulation counts live agents per kind and collects their epsilons.
func (s *Sim) samplePopulation() (passive, aggressive int, epsilons []float64) {
	epsilons = make([]float64, 0, len(s.agents))
	for _, ctrl := range s.agents {
		if ctrl.Kind() == components.KindPassive {
			passive++
		} else {
			aggressive++
		}
		epsilons = append(epsilons, ctrl.Policy().Epsilon())
	}
	return passive, aggressive, epsilons
}

// agentTotals sums counters over live and retired agents.
func (s *Sim) agentTotals() telemetry.AgentTotals {
	t := s.retired
	for _, ctrl := range s.agents {
		st := ctrl.Stats()
		t.Decisions += st.Decisions
		t.Trainings += st.Trainings
		t.TrainingErrors += st.TrainingErrors
		t.DroppedTicks += st.DroppedTicks
	}
	return t
}
