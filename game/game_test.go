package game

import (
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/slimes/camera"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/config"
	"github.com/pthm-cable/slimes/inspector"
	"github.com/pthm-cable/slimes/renderer"
	"github.com/pthm-cable/slimes/sim"
	"github.com/pthm-cable/slimes/ui"
	"github.com/pthm-cable/slimes/world"
)

// newHeadlessGame builds the window-independent parts of a Game.
func newHeadlessGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.Chart = false
	s, err := sim.New(cfg, sim.Options{Seed: 3, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cam := camera.New(800, 600, cfg.Derived.ArenaW32, cfg.Derived.ArenaH32)
	return &Game{
		sim:       s,
		camera:    cam,
		effects:   renderer.NewEffectRenderer(cam),
		inspector: inspector.NewInspector(800, 600, s.Encoder().Labels()),
		overlays:  ui.NewOverlayRegistry(),
		pending:   ui.ControlsAction{Speed: s.Speed()},
	}
}

func TestApplyControls(t *testing.T) {
	g := newHeadlessGame(t)
	before := len(g.sim.AgentIDs())

	g.pending = ui.ControlsAction{TogglePause: true, Speed: 4, AddPassive: true, AddAggressive: true}
	g.applyControls()

	if !g.sim.Paused() {
		t.Error("expected paused")
	}
	if g.sim.Speed() != 4 {
		t.Errorf("speed = %d, want 4", g.sim.Speed())
	}
	if got := len(g.sim.AgentIDs()); got != before+2 {
		t.Errorf("agents = %d, want %d", got, before+2)
	}

	// Pending actions are consumed
	g.applyControls()
	if !g.sim.Paused() || len(g.sim.AgentIDs()) != before+2 {
		t.Error("actions applied twice")
	}
}

func TestResetClearsSelection(t *testing.T) {
	g := newHeadlessGame(t)
	g.inspector.Select(g.sim.AgentIDs()[0])
	g.effects.Spawn(renderer.EffectApple, 10, 10)

	g.pending = ui.ControlsAction{Reset: true, Speed: g.sim.Speed()}
	g.applyControls()

	if _, ok := g.inspector.Selected(); ok {
		t.Error("selection survived reset")
	}
	if g.effects.Len() != 0 {
		t.Errorf("effects = %d after reset", g.effects.Len())
	}
}

func TestOnEventSpawnsEffect(t *testing.T) {
	g := newHeadlessGame(t)
	id := g.sim.AgentIDs()[0]

	g.onEvent(world.Event{Kind: world.EventAte, SlimeID: id, Target: components.TargetKiwi})
	g.onEvent(world.Event{Kind: world.EventFight, SlimeID: id})
	// Unknown slimes have no position
	g.onEvent(world.Event{Kind: world.EventAte, SlimeID: 9999})

	if g.effects.Len() != 2 {
		t.Errorf("effects = %d, want 2", g.effects.Len())
	}
}
