package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/renderer"
	"github.com/pthm-cable/slimes/ui"
)

const controlsLegend = "[Space] pause  [,/.] speed  [arrows/wheel] camera  [Home] reset view  [click] inspect"

// Draw renders one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 24, G: 26, B: 20, A: 255})

	selected, hasSelected := g.inspector.Selected()
	g.arenaRenderer.Draw(g.sim.Arena(), renderer.DrawOptions{
		Selected:    selected,
		HasSelected: hasSelected,
		Velocity:    g.overlays.IsEnabled(ui.OverlayVelocity),
		Targets:     g.overlays.IsEnabled(ui.OverlayTargets),
		Grid:        g.overlays.IsEnabled(ui.OverlayGrid),
		GridSize:    float32(g.sim.Config().Physics.GridCellSize),
	})
	g.effects.Draw()

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders panels on top of the arena.
func (g *Game) drawUI() {
	w, h := int32(g.screenWidth), int32(g.screenHeight)

	g.pending = g.controls.Draw(ui.ControlsState{Paused: g.sim.Paused(), Speed: g.sim.Speed()}, g.overlays)
	g.hud.Draw(g.hudData(), w)
	g.hud.DrawControls(w, h, controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayStats) && g.lastWindow != nil {
		g.uiRenderer.DrawPanelDescriptor(ui.StatsPanel, g.lastWindow, w, h)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.sim.Perf())
	}

	g.inspector.Draw(g.sim.Arena(), g.sim)
}

// hudData gathers the counters shown in the HUD.
func (g *Game) hudData() ui.HUDData {
	sum := g.sim.Summary()
	data := ui.HUDData{
		Title:    "Slimes",
		Apples:   sum.Apples,
		Kiwis:    sum.Kiwis,
		Fights:   sum.Fights,
		Episodes: sum.Episodes,
		Tick:     sum.Ticks,
		SimTime:  sum.SimTime,
		Speed:    g.sim.Speed(),
		FPS:      rl.GetFPS(),
		Paused:   g.sim.Paused(),
	}

	g.views = g.sim.Arena().Slimes(g.views[:0])
	for _, v := range g.views {
		if v.Kind == components.KindAggressive {
			data.Aggressive++
		} else {
			data.Passive++
		}
	}
	return data
}
