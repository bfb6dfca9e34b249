package sim

import (
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/telemetry"
	"github.com/pthm-cable/slimes/world"
)

// handleEvents routes overlap events from the arena to agents and telemetry.
func (s *Sim) handleEvents(events []world.Event) {
	for _, ev := range events {
		if s.eventCallback != nil {
			s.eventCallback(ev)
		}
		switch ev.Kind {
		case world.EventAte:
			s.collector.RecordEat(ev.Target)
			s.lifetimes.RecordEat(ev.SlimeID, ev.Target)
			if ev.Target == components.TargetApple {
				s.totals.apples++
			} else {
				s.totals.kiwis++
			}
			s.deliverOutcome(ev)

		case world.EventFight:
			s.collector.RecordFight()
			s.lifetimes.RecordFightWon(ev.OtherID)
			s.totals.fights++
			s.logger.Debug("slime lost a fight", "loser", ev.SlimeID, "winner", ev.OtherID)
			// The arena already removed the loser's body.
			s.RemoveAgent(ev.SlimeID, telemetry.CauseFight)
		}
	}
}

// deliverOutcome ends the eater's episode and records it when a pending
// decision was trained.
func (s *Sim) deliverOutcome(ev world.Event) {
	ctrl, ok := s.agents[ev.SlimeID]
	if !ok {
		return
	}

	before := ctrl.Stats().Episodes
	if !ctrl.OnTerminalOutcome(s.ctx, ev.Target, s.arena) {
		return
	}
	st := ctrl.Stats()
	if st.Episodes == before {
		return
	}

	s.totals.episodes++
	s.collector.RecordEpisode(st.LastEpisodeReward)
	s.lifetimes.RecordEpisode(ev.SlimeID, st.LastEpisodeReward)

	rec := telemetry.NewEpisodeRecord(s.runID, s.tick, s.cfg.Derived.DT32, ev.SlimeID, ctrl.Kind(), ev.Target, st.LastEpisodeReward, ctrl.Policy().Epsilon())
	if err := s.output.WriteEpisode(rec); err != nil {
		s.logger.Error("failed to write episode", "error", err)
	}
}
