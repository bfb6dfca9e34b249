package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/telemetry"
)

func TestOverlayExclusivity(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.SetEnabled(OverlayStats, true)
	if !reg.Toggle(OverlayPerf) {
		t.Fatal("Toggle(perf) should enable it")
	}
	if reg.IsEnabled(OverlayStats) {
		t.Error("enabling perf should disable stats")
	}

	reg.SetEnabled(OverlayStats, true)
	if reg.IsEnabled(OverlayPerf) {
		t.Error("enabling stats should disable perf")
	}
	if reg.Toggle("missing") {
		t.Error("unknown overlays cannot be enabled")
	}
}

func TestOverlayKeys(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyV)
	if !ok || id != OverlayVelocity || !on {
		t.Errorf("HandleKeyPress(V) = %q, %v, %v", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("Z is not bound")
	}

	got := reg.EnabledOverlays()
	if len(got) != 1 || got[0] != OverlayVelocity {
		t.Errorf("EnabledOverlays = %v", got)
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()

	want := []string{"arena", "panels", "debug"}
	got := reg.Categories()
	if len(got) != len(want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d = %q, want %q", i, got[i], want[i])
		}
	}
	if n := len(reg.ByCategory("debug")); n != 2 {
		t.Errorf("debug overlays = %d, want 2", n)
	}
}

func TestPanelPosition(t *testing.T) {
	tests := []struct {
		anchor PanelAnchor
		x, y   int32
	}{
		{AnchorTopLeft, 10, 10},
		{AnchorTopRight, 590, 10},
		{AnchorBottomLeft, 10, 490},
		{AnchorBottomRight, 590, 490},
		{AnchorCenter, 300, 250},
	}
	for _, tt := range tests {
		x, y := PanelPosition(tt.anchor, 200, 100, 800, 600, 10)
		if x != tt.x || y != tt.y {
			t.Errorf("anchor %d: got (%d, %d), want (%d, %d)", tt.anchor, x, y, tt.x, tt.y)
		}
	}
}

func TestStatsPanelHeight(t *testing.T) {
	r := NewRenderer()

	quiet := &telemetry.WindowStats{}
	busy := &telemetry.WindowStats{Episodes: 3, RewardMean: 40, TrainingErrors: 1}

	hQuiet := r.PanelHeight(StatsPanel, quiet)
	hBusy := r.PanelHeight(StatsPanel, busy)

	// The episode section and the error line only appear when there is
	// something to show.
	episodes := r.Theme.LineHeight + 4 + r.Theme.LineHeight + r.Theme.LineHeight + 2
	errors := r.Theme.LineHeight
	if hBusy-hQuiet != episodes+errors {
		t.Errorf("height grew by %d, want %d", hBusy-hQuiet, episodes+errors)
	}

	// Missing data falls back to an empty window.
	if r.PanelHeight(StatsPanel, nil) != hQuiet {
		t.Error("nil data should render like an empty window")
	}
}
