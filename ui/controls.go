package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel shows.
type ControlsState struct {
	Paused bool
	Speed  int
}

// ControlsAction reports which controls were used this frame.
type ControlsAction struct {
	TogglePause   bool
	Speed         int // requested steps per update
	AddPassive    bool
	AddAggressive bool
	Reset         bool
}

// ControlsPanel renders the left-side panel with simulation buttons and
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls on the panel, so clicks on
// it are not treated as arena selections.
func (c *ControlsPanel) Contains(x, y float32, overlays *OverlayRegistry) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.height(overlays))
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	r := c.renderer
	items := 0
	for _, cat := range overlays.Categories() {
		items += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	buttons := int32(3*28 + 2*r.Theme.LineHeight + 8)
	return buttons + int32(items)*r.Theme.LineHeight + r.Theme.Padding*3 + r.Theme.LineHeight
}

// Draw renders the panel and returns the actions taken this frame.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsAction {
	action := ControlsAction{Speed: state.Speed}
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := float32(c.y + padding)

	rl.DrawText("Simulation", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight + 4)

	half := (inner - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: y, Width: half, Height: 24}, "Reset") {
		action.Reset = true
	}
	y += 28

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "+ Passive") {
		action.AddPassive = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: y, Width: half, Height: 24}, "+ Aggressive") {
		action.AddAggressive = true
	}
	y += 28

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(lineHeight)
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 12, Y: y, Width: inner - 24, Height: 16},
		"1", "10",
		float32(state.Speed), 1, 10,
	)
	action.Speed = int(speed + 0.5)
	y += float32(lineHeight + 12)

	// Overlays by category
	yi := int32(y)
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, yi, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		yi += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, yi, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			yi += lineHeight
		}
	}

	return action
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "arena":
		return "Arena"
	case "panels":
		return "Panels"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
