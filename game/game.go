// Package game is the interactive front-end: it owns the window-side
// state (camera, renderers, panels, inspector) around a running sim.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/camera"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/inspector"
	"github.com/pthm-cable/slimes/renderer"
	"github.com/pthm-cable/slimes/sim"
	"github.com/pthm-cable/slimes/telemetry"
	"github.com/pthm-cable/slimes/ui"
	"github.com/pthm-cable/slimes/world"
)

// Game holds the interactive state around a simulation.
type Game struct {
	sim *sim.Sim

	// Rendering
	camera        *camera.Camera
	arenaRenderer *renderer.ArenaRenderer
	effects       *renderer.EffectRenderer
	inspector     *inspector.Inspector

	// UI
	uiRenderer *ui.Renderer
	overlays   *ui.OverlayRegistry
	controls   *ui.ControlsPanel
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	lastWindow *telemetry.WindowStats
	pending    ui.ControlsAction

	views []world.SlimeView

	screenWidth, screenHeight float32
}

// New wires a window front-end to s. rl.InitWindow must have been called.
func New(s *sim.Sim) *Game {
	cfg := s.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())

	cam := camera.New(w, h, cfg.Derived.ArenaW32, cfg.Derived.ArenaH32)
	palette := renderer.NewPalette()

	g := &Game{
		sim:           s,
		camera:        cam,
		arenaRenderer: renderer.NewArenaRenderer(cam, palette),
		effects:       renderer.NewEffectRenderer(cam),
		inspector:     inspector.NewInspector(int32(w), int32(h), s.Encoder().Labels()),
		uiRenderer:    ui.NewRenderer(),
		overlays:      ui.NewOverlayRegistry(),
		controls:      ui.NewControlsPanel(10, 10, 200),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(10, int32(h)-260),
		screenWidth:   w,
		screenHeight:  h,
	}
	g.pending.Speed = s.Speed()

	s.SetEventCallback(g.onEvent)
	s.SetStatsCallback(func(ws telemetry.WindowStats) {
		g.lastWindow = &ws
	})
	return g
}

// onEvent spawns a visual cue where an outcome happened. It runs before
// the sim removes a fight's loser, so positions are still available.
func (g *Game) onEvent(ev world.Event) {
	pos, ok := g.sim.Arena().Position(ev.SlimeID)
	if !ok {
		return
	}
	kind := renderer.EffectFight
	if ev.Kind == world.EventAte {
		kind = renderer.EffectApple
		if ev.Target == components.TargetKiwi {
			kind = renderer.EffectKiwi
		}
	}
	g.effects.Spawn(kind, float32(pos.X), float32(pos.Y))
}

// Update handles input and advances the simulation.
func (g *Game) Update() {
	g.applyControls()
	g.handleInput()

	g.sim.Update()
	if !g.sim.Paused() {
		g.effects.Update(rl.GetFrameTime() * float32(g.sim.Speed()))
	}
}

// applyControls performs the control panel actions of the last frame.
func (g *Game) applyControls() {
	a := g.pending
	g.pending = ui.ControlsAction{Speed: g.sim.Speed()}

	if a.TogglePause {
		g.sim.SetPaused(!g.sim.Paused())
	}
	if a.Speed != g.sim.Speed() {
		g.sim.SetSpeed(a.Speed)
	}
	if a.AddPassive {
		g.spawn(components.KindPassive)
	}
	if a.AddAggressive {
		g.spawn(components.KindAggressive)
	}
	if a.Reset {
		if err := g.sim.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
		g.effects.Clear()
		g.inspector.Deselect()
		g.lastWindow = nil
	}
}

func (g *Game) spawn(kind components.AgentKind) {
	if _, err := g.sim.SpawnRandom(kind); err != nil {
		slog.Error("spawn failed", "kind", kind, "error", err)
	}
}

// Tick returns the simulation tick.
func (g *Game) Tick() int32 { return g.sim.Tick() }

// Unload releases the simulation.
func (g *Game) Unload() error {
	return g.sim.Close()
}
