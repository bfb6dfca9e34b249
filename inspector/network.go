package inspector

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/neural"
)

// NetworkColors for activation visualization.
var (
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// DrawNetworkDiagram renders every layer of a Q-network as a column of
// nodes coloured by activation. Edges carry the signal of their source
// node. Outputs are normalised to the largest Q-value so they stay
// readable at reward scale.
func DrawNetworkDiagram(x, y, width, height int32, act *neural.Activations, inLabels, outLabels []string, chosen int) {
	if act == nil {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	layers := make([][]float64, 0, len(act.Hidden)+2)
	layers = append(layers, act.Inputs)
	layers = append(layers, act.Hidden...)
	layers = append(layers, normalise(act.Outputs))

	// Leave room for labels on both sides
	left := float32(x) + 50
	right := float32(x+width) - 40
	colStep := (right - left) / float32(len(layers)-1)

	nodes := make([][]rl.Vector2, len(layers))
	for li, layer := range layers {
		nodes[li] = columnPositions(left+float32(li)*colStep, float32(y)+10, float32(height-20), len(layer))
	}

	// Edges first so nodes draw on top
	for li := 0; li+1 < len(layers); li++ {
		for i, from := range nodes[li] {
			signal := float32(layers[li][i])
			if absFloat(signal) < 0.05 {
				continue
			}
			for _, to := range nodes[li+1] {
				drawEdge(from, to, signal)
			}
		}
	}

	for li, layer := range layers {
		radius := nodeRadius(len(layer))
		for i, v := range layer {
			pos := nodes[li][i]
			drawNode(pos, radius, float32(v))

			switch {
			case li == 0 && i < len(inLabels):
				labelWidth := rl.MeasureText(inLabels[i], 10)
				rl.DrawText(inLabels[i], int32(pos.X-radius)-labelWidth-4, int32(pos.Y)-5, 10, ColorLabelDim)
			case li == len(layers)-1 && i < len(outLabels):
				color := ColorLabelDim
				if i == chosen {
					color = ColorHighlight
				}
				rl.DrawText(outLabels[i], int32(pos.X+radius+6), int32(pos.Y)-5, 10, color)
			}
		}
	}
}

// columnPositions spreads n nodes evenly over a column of the given height.
func columnPositions(cx, top, height float32, n int) []rl.Vector2 {
	out := make([]rl.Vector2, n)
	spacing := height / float32(n)
	for i := range out {
		out[i] = rl.Vector2{X: cx, Y: top + spacing*(float32(i)+0.5)}
	}
	return out
}

// nodeRadius shrinks nodes in crowded layers.
func nodeRadius(n int) float32 {
	return float32(math.Max(2.5, math.Min(6, 90/float64(n))))
}

// normalise scales values into [-1, 1] by their largest magnitude.
func normalise(values []float64) []float64 {
	scale := 0.0
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	out := make([]float64, len(values))
	if scale == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / scale
	}
	return out
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius, activation float32) {
	color := activationColor(activation)
	rl.DrawCircleV(pos, radius, color)
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection carrying signal.
func drawEdge(from, to rl.Vector2, signal float32) {
	strength := min(absFloat(signal), 1)

	color := ColorEdgePositive
	if signal < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(10 + strength*60)

	rl.DrawLineEx(from, to, 0.5+strength, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float32) rl.Color {
	if activation > 0 {
		t := activation
		if t > 1 {
			t = 1
		}
		return rl.Color{
			R: uint8(60 + t*195),
			G: uint8(60 - t*30),
			B: uint8(60 - t*30),
			A: 255,
		}
	} else {
		t := -activation
		if t > 1 {
			t = 1
		}
		return rl.Color{
			R: uint8(60 - t*30),
			G: uint8(60 - t*30),
			B: uint8(60 + t*195),
			A: 255,
		}
	}
}

func absFloat(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
