// Package renderer draws the arena and its inhabitants with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/camera"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/world"
)

// DrawOptions selects optional layers.
type DrawOptions struct {
	Selected    uint32
	HasSelected bool
	Velocity    bool    // velocity arrows on every slime
	Targets     bool    // lines from the selected slime to the fruit it senses
	Grid        bool    // spatial grid cells
	GridSize    float32 // cell size for the grid layer
}

// ArenaRenderer draws fruit and slimes through a camera.
type ArenaRenderer struct {
	palette *Palette
	cam     *camera.Camera

	stage, wall, apple, kiwi rl.Color
	aggressive, passive      rl.Color
	arrow, gridLine          rl.Color

	// Reused between frames
	slimes []world.SlimeView
	fruits []world.FruitView
}

// NewArenaRenderer creates a renderer drawing through cam.
func NewArenaRenderer(cam *camera.Camera, palette *Palette) *ArenaRenderer {
	return &ArenaRenderer{
		palette:    palette,
		cam:        cam,
		stage:      palette.MustColor("stageColor"),
		wall:       rl.Color{R: 60, G: 66, B: 10, A: 255},
		apple:      rl.Color{R: 214, G: 48, B: 49, A: 255},
		kiwi:       rl.Color{R: 120, G: 150, B: 40, A: 255},
		aggressive: palette.MustColor("carrot"),
		passive:    palette.MustColor("black"),
		arrow:      rl.Color{R: 255, G: 255, B: 255, A: 160},
		gridLine:   rl.Color{R: 0, G: 0, B: 0, A: 30},
	}
}

// Draw renders the arena. It must run between BeginDrawing and EndDrawing.
func (r *ArenaRenderer) Draw(a *world.Arena, opts DrawOptions) {
	r.drawStage(a.ArenaBounds())
	if opts.Grid && opts.GridSize > 0 {
		r.drawGrid(a.ArenaBounds(), opts.GridSize)
	}

	r.fruits = a.Fruits(r.fruits[:0])
	for i := range r.fruits {
		r.drawFruit(&r.fruits[i])
	}

	if opts.HasSelected && opts.Targets {
		r.drawTargets(a, opts.Selected)
	}

	r.slimes = a.Slimes(r.slimes[:0])
	for i := range r.slimes {
		s := &r.slimes[i]
		if !r.cam.IsVisible(s.X, s.Y, s.Radius) {
			continue
		}
		r.drawSlime(s, opts.HasSelected && s.ID == opts.Selected)
		if opts.Velocity {
			r.drawVelocity(s)
		}
	}
}

func (r *ArenaRenderer) drawStage(b encoder.Bounds) {
	x0, y0 := r.cam.WorldToScreen(0, 0)
	x1, y1 := r.cam.WorldToScreen(float32(b.Width), float32(b.Height))
	rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawRectangleRec(rect, r.stage)
	rl.DrawRectangleLinesEx(rect, 2, r.wall)
}

func (r *ArenaRenderer) drawGrid(b encoder.Bounds, cell float32) {
	w, h := float32(b.Width), float32(b.Height)
	for x := cell; x < w; x += cell {
		sx, sy0 := r.cam.WorldToScreen(x, 0)
		_, sy1 := r.cam.WorldToScreen(x, h)
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy0}, rl.Vector2{X: sx, Y: sy1}, r.gridLine)
	}
	for y := cell; y < h; y += cell {
		sx0, sy := r.cam.WorldToScreen(0, y)
		sx1, _ := r.cam.WorldToScreen(w, y)
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy}, rl.Vector2{X: sx1, Y: sy}, r.gridLine)
	}
}

func (r *ArenaRenderer) drawFruit(f *world.FruitView) {
	sx, sy := r.cam.WorldToScreen(f.X, f.Y)
	radius := r.cam.Scale(f.Radius)
	center := rl.Vector2{X: sx, Y: sy}

	switch f.Kind {
	case components.TargetApple:
		rl.DrawCircleV(center, radius, r.apple)
		// Stalk
		rl.DrawLineEx(rl.Vector2{X: sx, Y: sy - radius}, rl.Vector2{X: sx + radius*0.3, Y: sy - radius*1.4}, 2, r.wall)
	case components.TargetKiwi:
		rl.DrawCircleV(center, radius, r.kiwi)
		rl.DrawCircleV(center, radius*0.6, rl.Color{R: 170, G: 205, B: 80, A: 255})
		rl.DrawCircleV(center, radius*0.2, rl.Color{R: 240, G: 240, B: 210, A: 255})
	}
}

// drawSlime draws a squashed blob with eyes. Aggressive slimes carry an
// orange rim.
func (r *ArenaRenderer) drawSlime(s *world.SlimeView, selected bool) {
	sx, sy := r.cam.WorldToScreen(s.X, s.Y)
	radius := r.cam.Scale(s.Radius)
	center := rl.Vector2{X: sx, Y: sy}

	rim := r.passive
	rimWidth := float32(1.5)
	if s.Kind == components.KindAggressive {
		rim = r.aggressive
		rimWidth = 3
	}

	rl.DrawEllipse(int32(sx), int32(sy+radius*0.15), radius, radius*0.85, r.palette.Tint(s.ID))
	rl.DrawRing(center, radius-rimWidth, radius, 0, 360, 32, rim)

	// Eyes look where the slime is heading
	lookX, lookY := float32(0), float32(0)
	if speed := float32(math.Hypot(float64(s.VX), float64(s.VY))); speed > 0 {
		lookX, lookY = s.VX/speed*radius*0.12, s.VY/speed*radius*0.12
	}
	eye := radius * 0.18
	for _, side := range []float32{-1, 1} {
		ex := sx + side*radius*0.35
		ey := sy - radius*0.1
		rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, eye, rl.White)
		rl.DrawCircleV(rl.Vector2{X: ex + lookX, Y: ey + lookY}, eye*0.5, rl.Black)
	}

	if selected {
		rl.DrawCircleLinesV(center, radius+4, rl.Yellow)
	}
}

func (r *ArenaRenderer) drawVelocity(s *world.SlimeView) {
	if s.VX == 0 && s.VY == 0 {
		return
	}
	sx, sy := r.cam.WorldToScreen(s.X, s.Y)
	// Half a second of travel
	ex, ey := r.cam.WorldToScreen(s.X+s.VX*0.5, s.Y+s.VY*0.5)
	rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 2, r.arrow)
	rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 3, r.arrow)
}

// drawTargets draws what the selected slime's encoder sees.
func (r *ArenaRenderer) drawTargets(a *world.Arena, id uint32) {
	pos, ok := a.Position(id)
	if !ok {
		return
	}
	from := r.screen(pos)
	if p, ok := a.NearestOf(components.TargetApple, pos); ok {
		rl.DrawLineEx(from, r.screen(p), 1.5, r.apple)
	}
	if p, ok := a.NearestOf(components.TargetKiwi, pos); ok {
		rl.DrawLineEx(from, r.screen(p), 1.5, r.kiwi)
	}
}

func (r *ArenaRenderer) screen(p encoder.Position) rl.Vector2 {
	x, y := r.cam.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: x, Y: y}
}
