package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/camera"
)

// EffectKind identifies a short-lived visual cue.
type EffectKind uint8

const (
	EffectApple EffectKind = iota
	EffectKiwi
	EffectFight
)

// Effect is one expanding ring.
type Effect struct {
	Kind    EffectKind
	X, Y    float32
	Life    float32 // seconds remaining
	MaxLife float32
}

// EffectRenderer renders fading rings where fruit was eaten or a fight
// happened.
type EffectRenderer struct {
	cam     *camera.Camera
	effects []Effect
}

// NewEffectRenderer creates a new effect renderer.
func NewEffectRenderer(cam *camera.Camera) *EffectRenderer {
	return &EffectRenderer{cam: cam}
}

// Spawn adds an effect at world position (x, y).
func (r *EffectRenderer) Spawn(kind EffectKind, x, y float32) {
	r.effects = append(r.effects, Effect{Kind: kind, X: x, Y: y, Life: 0.6, MaxLife: 0.6})
}

// Update ages effects by dt seconds and drops expired ones.
func (r *EffectRenderer) Update(dt float32) {
	live := r.effects[:0]
	for _, e := range r.effects {
		e.Life -= dt
		if e.Life > 0 {
			live = append(live, e)
		}
	}
	r.effects = live
}

// Len returns the number of live effects.
func (r *EffectRenderer) Len() int { return len(r.effects) }

// Clear drops all effects.
func (r *EffectRenderer) Clear() { r.effects = r.effects[:0] }

// Draw renders all effects.
func (r *EffectRenderer) Draw() {
	for i := range r.effects {
		e := &r.effects[i]

		// Calculate life ratio for fade
		lifeRatio := e.Life / e.MaxLife

		var color rl.Color
		switch e.Kind {
		case EffectApple:
			color = rl.Color{R: 255, G: 90, B: 90, A: uint8(lifeRatio * 220)}
		case EffectKiwi:
			color = rl.Color{R: 140, G: 200, B: 60, A: uint8(lifeRatio * 220)}
		case EffectFight:
			color = rl.Color{R: 255, G: 165, B: 0, A: uint8(lifeRatio * 255)}
		}

		sx, sy := r.cam.WorldToScreen(e.X, e.Y)
		radius := r.cam.Scale(12 + 30*(1-lifeRatio))
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, radius, color)
	}
}
