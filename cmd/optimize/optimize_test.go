package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/slimes/config"
	"github.com/pthm-cable/slimes/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-9 {
			t.Errorf("%s: config %v, spec default %v", spec.Path, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{1, 0, 2, -1, 100.4, 0.25})

	if cfg.Brain.LearningRate != 0.05 {
		t.Errorf("learning rate = %v, want 0.05", cfg.Brain.LearningRate)
	}
	if cfg.Brain.DiscountFactor != 0.5 {
		t.Errorf("discount = %v, want 0.5", cfg.Brain.DiscountFactor)
	}
	if cfg.Brain.EpsilonMin != 0 {
		t.Errorf("epsilon min = %v, want 0", cfg.Brain.EpsilonMin)
	}
	if cfg.Brain.Hidden != 64 {
		t.Errorf("hidden = %d, want 64", cfg.Brain.Hidden)
	}
	if cfg.Derived.DecisionInterval.Milliseconds() != 250 {
		t.Errorf("derived interval = %v, want 250ms", cfg.Derived.DecisionInterval)
	}
}

func TestComputeQuality(t *testing.T) {
	window := func(episodes int, appleRate float64) telemetry.WindowStats {
		return telemetry.WindowStats{PassiveCount: 2, AggressiveCount: 2, Episodes: episodes, AppleRate: appleRate}
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		min     float64
		max     float64
	}{
		{"empty", nil, 0, 0},
		{"no episodes", []telemetry.WindowStats{window(0, 0), window(0, 0)}, 0, 0},
		{"all kiwis", []telemetry.WindowStats{window(0, 0), window(8, 0)}, 0.15, 0.25},
		{"all apples", []telemetry.WindowStats{window(0, 0), window(8, 1)}, 0.85, 0.95},
		// warmup half is ignored
		{"warmup ignored", []telemetry.WindowStats{window(8, 1), window(8, 0)}, 0.15, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.windows)
			if q < tt.min || q > tt.max {
				t.Errorf("quality = %v, want [%v, %v]", q, tt.min, tt.max)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(65e9); got != "1m05s" {
		t.Errorf("formatDuration = %q", got)
	}
}
