package telemetry

import (
	"testing"

	"github.com/pthm-cable/slimes/components"
)

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker("run")
	lt.Register(7, components.KindAggressive, 100)

	lt.RecordEat(7, components.TargetApple)
	lt.RecordEat(7, components.TargetKiwi)
	lt.RecordEat(7, components.TargetApple)
	lt.RecordFightWon(7)
	lt.RecordEpisode(7, -100.5)
	lt.RecordEpisode(7, 99.2)
	lt.RecordEpisode(7, 10)
	lt.RecordEat(8, components.TargetApple) // unknown slime is ignored

	s := lt.Remove(7, 160, 0.5, CauseRunEnd, 0.3)
	if s == nil {
		t.Fatal("Remove returned nil")
	}
	if s.Kind != "aggressive" || s.RunID != "run" {
		t.Errorf("identity = %+v", s)
	}
	if s.ApplesEaten != 2 || s.KiwisEaten != 1 || s.Fights != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Episodes != 3 || s.BestEpisode != 99.2 {
		t.Errorf("episodes = %d best = %v", s.Episodes, s.BestEpisode)
	}
	if s.SurvivalTimeSec != 30 || s.DeathTick != 160 || s.Cause != CauseRunEnd || s.FinalEpsilon != 0.3 {
		t.Errorf("removal = %+v", s)
	}
	if lt.Count() != 0 || lt.Remove(7, 0, 1, CauseRemoved, 0) != nil {
		t.Error("slime still tracked after Remove")
	}
}

func TestLifetimeBestEpisodeNegative(t *testing.T) {
	lt := NewLifetimeTracker("")
	lt.Register(1, components.KindPassive, 0)
	lt.RecordEpisode(1, -120)
	lt.RecordEpisode(1, -130)

	if got := lt.Get(1).BestEpisode; got != -120 {
		t.Errorf("BestEpisode = %v, want -120", got)
	}
}
