package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Passive    int
	Aggressive int
	Apples     int
	Kiwis      int
	Fights     int
	Episodes   int
	Tick       int32
	SimTime    time.Duration
	Speed      int
	FPS        int32
	Paused     bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the top-right corner, clear of the controls.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	lines := []string{
		fmt.Sprintf("Passive: %d | Aggressive: %d", data.Passive, data.Aggressive),
		fmt.Sprintf("Apples: %d | Kiwis: %d | Fights: %d", data.Apples, data.Kiwis, data.Fights),
		fmt.Sprintf("Episodes: %d", data.Episodes),
		fmt.Sprintf("Time: %s | Speed: %dx | FPS: %d", data.SimTime.Round(time.Second), data.Speed, data.FPS),
	}

	width := rl.MeasureText(data.Title, 20)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, 14))
	}
	x := screenWidth - width - 10

	rl.DrawText(data.Title, x, 10, 20, rl.White)
	y := int32(35)
	for _, l := range lines {
		rl.DrawText(l, x, y, 14, rl.RayWhite)
		y += 18
	}

	// Status
	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.DarkGray)
}

// PerfPanel renders the simulation phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders phase timings in execution order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	height := int32(len(telemetry.Phases))*14 + 56 + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, 260, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 18

	for _, name := range telemetry.Phases {
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
