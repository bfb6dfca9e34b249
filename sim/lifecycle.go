package sim

import (
	"errors"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/telemetry"
)

// RemoveAgent disposes a slime's controller, removes its body if it is
// still in the arena and closes its lifetime record.
func (s *Sim) RemoveAgent(id uint32, cause string) bool {
	ctrl, ok := s.agents[id]
	if !ok {
		return false
	}
	delete(s.agents, id)
	s.arena.RemoveSlime(id)

	epsilon := ctrl.Policy().Epsilon()
	ctrl.Dispose()
	s.retire(ctrl.Stats())

	life := s.lifetimes.Remove(id, s.tick, s.cfg.Derived.DT32, cause, epsilon)
	if err := s.output.WriteLifetime(life); err != nil {
		s.logger.Error("failed to write lifetime", "error", err)
	}
	if s.store != nil && life != nil {
		if err := s.store.SaveLifetime(s.ctx, life); err != nil {
			s.logger.Error("failed to store lifetime", "error", err)
		}
	}
	return true
}

// retire folds a removed agent's counters into the run totals.
func (s *Sim) retire(st agent.Stats) {
	s.retired.Decisions += st.Decisions
	s.retired.Trainings += st.Trainings
	s.retired.TrainingErrors += st.TrainingErrors
	s.retired.DroppedTicks += st.DroppedTicks
}

// removeAll disposes every agent.
func (s *Sim) removeAll(cause string) {
	for _, id := range s.AgentIDs() {
		s.RemoveAgent(id, cause)
	}
}

// Reset removes every agent and repopulates a fresh arena. Brains start
// from new weights; telemetry keeps accumulating under the same run.
func (s *Sim) Reset() error {
	s.removeAll(telemetry.CauseRemoved)
	s.due = s.due[:0]
	return s.populate()
}

// Close disposes all agents, flushes outputs and stops the worker pool.
func (s *Sim) Close() error {
	if s.cancel == nil {
		return nil
	}
	if s.arena != nil {
		s.removeAll(telemetry.CauseRunEnd)
	}
	s.cancel()
	s.cancel = nil
	s.parallel.stopWorkers()

	var errs []error
	if s.cfg.Telemetry.Chart {
		errs = append(errs, s.output.WriteChart())
	}
	errs = append(errs, s.output.Close())
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
