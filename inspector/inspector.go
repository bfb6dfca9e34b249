// Package inspector shows the internals of one selected slime: its body,
// its learning counters, the Q-values behind its last decision and the
// network that produced them.
package inspector

import (
	"fmt"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/brain"
	"github.com/pthm-cable/slimes/camera"
	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/neural"
	"github.com/pthm-cable/slimes/world"
)

// Panel dimensions
const (
	PanelWidth    = 320
	PanelPadding  = 10
	HeaderHeight  = 30
	NetworkHeight = 180
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Agents looks up live controllers by slime ID.
type Agents interface {
	Agent(id uint32) (*agent.Controller, bool)
}

// valuePolicy is a policy that can explain its choices.
type valuePolicy interface {
	QValues(state encoder.StateVector) []float64
	Capture(state encoder.StateVector) (*neural.Activations, bool)
}

// describedPolicy exposes its size and settings.
type describedPolicy interface {
	ParamCount() int
	Hyperparameters() brain.Hyperparameters
}

// Inspector manages slime selection and panel rendering.
type Inspector struct {
	selected     uint32
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
	height       int32 // last drawn panel height
	labels       []string
}

// NewInspector creates a new inspector instance. labels name the state
// vector components.
func NewInspector(screenWidth, screenHeight int32, labels []string) *Inspector {
	ins := &Inspector{labels: labels}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize moves the panel to the right edge of a new screen size.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// HandleInput processes click selection. It returns true when the click
// was consumed by the inspector.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, arena *world.Arena, cam *camera.Camera) bool {
	// Right click or Escape to deselect
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return true
	}

	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return false
	}
	return ins.Click(mouseX, mouseY, arena, cam)
}

// Click handles a left click at a screen position.
func (ins *Inspector) Click(mouseX, mouseY float32, arena *world.Arena, cam *camera.Camera) bool {
	if ins.hasSelected {
		if ins.overClose(mouseX, mouseY) {
			ins.Deselect()
			return true
		}
		if ins.overPanel(mouseX, mouseY) {
			return true
		}
	}

	wx, wy := cam.ScreenToWorld(mouseX, mouseY)
	if id, ok := arena.SlimeAt(wx, wy); ok {
		ins.Select(id)
		return true
	}
	return false
}

func (ins *Inspector) overClose(x, y float32) bool {
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	return int32(x) >= closeX && int32(x) <= closeX+20 &&
		int32(y) >= closeY && int32(y) <= closeY+20
}

func (ins *Inspector) overPanel(x, y float32) bool {
	return int32(x) >= ins.panelX && int32(x) <= ins.panelX+PanelWidth &&
		int32(y) >= ins.panelY && int32(y) <= ins.panelY+ins.height
}

// Select makes id the inspected slime.
func (ins *Inspector) Select(id uint32) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.height = 0
}

// Selected returns the currently selected slime.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the inspector panel if a live slime is selected. A slime
// that was removed since the last frame clears the selection.
func (ins *Inspector) Draw(arena *world.Arena, agents Agents) {
	if !ins.hasSelected {
		return
	}

	slime, ok := arena.Slime(ins.selected)
	ctrl, hasCtrl := agents.Agent(ins.selected)
	if !ok || !hasCtrl {
		ins.Deselect()
		return
	}
	pos, _ := arena.Position(ins.selected)

	slimeFields := ExtractFields(&slime)
	statFields := ExtractFields(ctrl.Stats())
	memory := ctrl.Memory()

	var qValues []float64
	var act *neural.Activations
	if vp, ok := ctrl.Policy().(valuePolicy); ok && memory.Set {
		qValues = vp.QValues(memory.State)
		act, _ = vp.Capture(memory.State)
	}

	extra := fieldsHeight(slimeFields) + fieldsHeight(statFields)
	panelHeight := ins.panelHeight(extra)
	ins.height = panelHeight

	// Draw panel background
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	// Draw header
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	// Draw close button
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	// Content area
	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  Kind: %s", slime.ID, slime.Kind), x, y, 14, ColorHeaderText)
	y += 22
	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.0f, %.0f)", pos.X, pos.Y), nil)
	for _, f := range slimeFields {
		y += DrawField(x, y, f)
	}
	y = ins.separator(x, y)

	// Learning section
	ins.drawSectionHeader(x, y, "LEARNING")
	y += 20
	y += DrawLabel(x, y, "State", ctrl.State().String(), nil)
	y += DrawBar(x, y, "Epsilon", float32(ctrl.Policy().Epsilon()), nil)
	for _, f := range statFields {
		y += DrawField(x, y, f)
	}
	y = ins.separator(x, y)

	// Last decision
	ins.drawSectionHeader(x, y, "LAST DECISION")
	y += 20
	if !memory.Set {
		rl.DrawText("(waiting for next decision)", x, y, 12, ColorLabelDim)
		return
	}
	y += DrawBarGroup(x, y, "State", toFloat32(memory.State), map[string]string{"labels": shortLabels(ins.labels)})
	y += DrawQValues(x, y, actionLabels(), qValues, int(memory.Action))
	y = ins.separator(x, y)

	// Network
	ins.drawSectionHeader(x, y, networkTitle(ctrl.Policy()))
	y += 20
	DrawNetworkDiagram(x, y, PanelWidth-2*PanelPadding, NetworkHeight, act, ins.labels, actionLabels(), int(memory.Action))
}

func (ins *Inspector) separator(x, y int32) int32 {
	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	return y + 8
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight computes the panel height given the reflected fields'
// height.
func (ins *Inspector) panelHeight(fields int32) int32 {
	height := int32(HeaderHeight + PanelPadding) // header
	height += 22                                 // ID line
	height += 20                                 // position
	height += 12                                 // separator
	height += 20                                 // learning header
	height += 20                                 // state
	height += 18                                 // epsilon
	height += 12                                 // separator
	height += 20                                 // decision header
	height += 44                                 // state vector
	height += 18 * brain.NumActions              // q-values
	height += 12                                 // separator
	height += 20                                 // network header
	height += NetworkHeight
	height += PanelPadding
	return height + fields
}

func fieldsHeight(fields []Field) int32 {
	var h int32
	for _, f := range fields {
		h += FieldHeight(f)
	}
	return h
}

// networkTitle names the network section, with parameter count and
// learning settings when the policy reports them.
func networkTitle(p any) string {
	dp, ok := p.(describedPolicy)
	if !ok || dp.ParamCount() == 0 {
		return "Q-NETWORK"
	}
	hp := dp.Hyperparameters()
	return fmt.Sprintf("Q-NETWORK  %s params  lr %.3g  g %.2f",
		humanize.Comma(int64(dp.ParamCount())), hp.LearningRate, hp.DiscountFactor)
}

func actionLabels() []string {
	out := make([]string, 0, brain.NumActions)
	for _, a := range brain.Actions() {
		out = append(out, a.String())
	}
	return out
}

// shortLabels joins state labels into the comma list DrawBarGroup reads,
// keeping the last word of each ("apple x" -> "x").
func shortLabels(labels []string) string {
	var out string
	for i, l := range labels {
		if i > 0 {
			out += ","
		}
		for j := len(l) - 1; j >= 0; j-- {
			if l[j] == ' ' {
				l = l[j+1:]
				break
			}
		}
		out += l
	}
	return out
}

func toFloat32(s encoder.StateVector) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = float32(v)
	}
	return out
}
