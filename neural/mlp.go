// Package neural provides the small dense networks used as Q-value
// approximators by the agent brains.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Activation selects the non-linearity applied after a layer.
type Activation uint8

const (
	Linear Activation = iota
	ReLU
)

// ErrNonFinite is returned when a fit step produces NaN or Inf.
var ErrNonFinite = errors.New("neural: non-finite value")

// Layer is one dense layer: out = act(W*in + B).
type Layer struct {
	W   *mat.Dense    // out x in
	B   *mat.VecDense // out
	Act Activation

	// Adam moments, same shapes as W and B.
	mW, vW *mat.Dense
	mB, vB *mat.VecDense
}

// MLP is a fully connected feedforward network trained with Adam on mean
// squared error, one sample at a time.
type MLP struct {
	Layers []*Layer
	opt    AdamConfig
	step   int
}

// NewMLP creates a network with ReLU hidden layers and a linear output.
// sizes lists the width of every layer including input and output,
// e.g. {6, 24, 24, 4}.
func NewMLP(rng *rand.Rand, sizes []int, opt AdamConfig) (*MLP, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("neural: need at least input and output sizes, got %v", sizes)
	}
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("neural: layer sizes must be positive, got %v", sizes)
		}
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	nn := &MLP{opt: opt}
	for i := 1; i < len(sizes); i++ {
		in, out := sizes[i-1], sizes[i]
		act := ReLU
		if i == len(sizes)-1 {
			act = Linear
		}

		// He initialization for the ReLU stack
		scale := math.Sqrt(2.0 / float64(in))
		w := make([]float64, out*in)
		for j := range w {
			w[j] = rng.NormFloat64() * scale
		}

		nn.Layers = append(nn.Layers, &Layer{
			W:   mat.NewDense(out, in, w),
			B:   mat.NewVecDense(out, nil),
			Act: act,
			mW:  mat.NewDense(out, in, nil),
			vW:  mat.NewDense(out, in, nil),
			mB:  mat.NewVecDense(out, nil),
			vB:  mat.NewVecDense(out, nil),
		})
	}
	return nn, nil
}

// InputSize returns the expected input length.
func (nn *MLP) InputSize() int {
	_, c := nn.Layers[0].W.Dims()
	return c
}

// OutputSize returns the number of outputs.
func (nn *MLP) OutputSize() int {
	r, _ := nn.Layers[len(nn.Layers)-1].W.Dims()
	return r
}

// Predict computes the network output for one input vector.
func (nn *MLP) Predict(inputs []float64) []float64 {
	act := nn.forward(inputs, nil)
	out := make([]float64, act.Len())
	copy(out, act.RawVector().Data)
	return out
}

// forward runs the network. When trace is non-nil it receives the input
// vector followed by every layer's pre-activation and activation.
func (nn *MLP) forward(inputs []float64, trace *[]*mat.VecDense) *mat.VecDense {
	in := make([]float64, len(inputs))
	copy(in, inputs)
	a := mat.NewVecDense(len(in), in)
	if trace != nil {
		*trace = append(*trace, a)
	}

	for _, l := range nn.Layers {
		r, _ := l.W.Dims()
		z := mat.NewVecDense(r, nil)
		z.MulVec(l.W, a)
		z.AddVec(z, l.B)

		next := mat.NewVecDense(r, nil)
		next.CopyVec(z)
		if l.Act == ReLU {
			data := next.RawVector().Data
			for i, v := range data {
				if v < 0 {
					data[i] = 0
				}
			}
		}
		if trace != nil {
			*trace = append(*trace, z, next)
		}
		a = next
	}
	return a
}

// Fit performs a single Adam step toward target on squared error and
// returns the loss measured before the update. Parameters are left
// untouched when the step would introduce a non-finite value.
func (nn *MLP) Fit(inputs, target []float64) (float64, error) {
	if len(inputs) != nn.InputSize() {
		return 0, fmt.Errorf("neural: input size %d, want %d", len(inputs), nn.InputSize())
	}
	if len(target) != nn.OutputSize() {
		return 0, fmt.Errorf("neural: target size %d, want %d", len(target), nn.OutputSize())
	}
	if floats.HasNaN(target) || hasInf(target) {
		return 0, fmt.Errorf("target %v: %w", target, ErrNonFinite)
	}

	var trace []*mat.VecDense
	y := nn.forward(inputs, &trace)

	n := float64(len(target))
	diff := make([]float64, len(target))
	floats.SubTo(diff, y.RawVector().Data, target)
	loss := floats.Dot(diff, diff) / n

	// dL/dy for mean squared error
	floats.Scale(2/n, diff)
	delta := mat.NewVecDense(len(diff), diff)

	gradsW := make([]*mat.Dense, len(nn.Layers))
	gradsB := make([]*mat.VecDense, len(nn.Layers))
	for li := len(nn.Layers) - 1; li >= 0; li-- {
		l := nn.Layers[li]
		z := trace[1+2*li]
		prev := trace[2*li]

		if l.Act == ReLU {
			dz := delta.RawVector().Data
			for i, v := range z.RawVector().Data {
				if v <= 0 {
					dz[i] = 0
				}
			}
		}

		r, c := l.W.Dims()
		gw := mat.NewDense(r, c, nil)
		gw.Outer(1, delta, prev)
		gb := mat.NewVecDense(r, nil)
		gb.CopyVec(delta)
		gradsW[li] = gw
		gradsB[li] = gb

		if li > 0 {
			back := mat.NewVecDense(c, nil)
			back.MulVec(l.W.T(), delta)
			delta = back
		}
	}

	for li := range gradsW {
		if floats.HasNaN(gradsW[li].RawMatrix().Data) || hasInf(gradsW[li].RawMatrix().Data) ||
			floats.HasNaN(gradsB[li].RawVector().Data) || hasInf(gradsB[li].RawVector().Data) {
			return loss, fmt.Errorf("gradient of layer %d: %w", li, ErrNonFinite)
		}
	}

	nn.step++
	for li, l := range nn.Layers {
		nn.adam(l.W.RawMatrix().Data, gradsW[li].RawMatrix().Data, l.mW.RawMatrix().Data, l.vW.RawMatrix().Data)
		nn.adam(l.B.RawVector().Data, gradsB[li].RawVector().Data, l.mB.RawVector().Data, l.vB.RawVector().Data)
	}
	return loss, nil
}

// adam applies one bias-corrected Adam update in place.
func (nn *MLP) adam(param, grad, m, v []float64) {
	o := nn.opt
	c1 := 1 - math.Pow(o.Beta1, float64(nn.step))
	c2 := 1 - math.Pow(o.Beta2, float64(nn.step))
	for i, g := range grad {
		m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
		v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
		mHat := m[i] / c1
		vHat := v[i] / c2
		param[i] -= o.LearningRate * mHat / (math.Sqrt(vHat) + o.Epsilon)
	}
}

// Activations holds captured intermediate layer values.
type Activations struct {
	Inputs  []float64
	Hidden  [][]float64
	Outputs []float64
}

// PredictWithCapture computes the output and captures every layer's
// activations for visualization.
func (nn *MLP) PredictWithCapture(inputs []float64) ([]float64, *Activations) {
	var trace []*mat.VecDense
	y := nn.forward(inputs, &trace)

	act := &Activations{
		Inputs:  append([]float64(nil), trace[0].RawVector().Data...),
		Outputs: append([]float64(nil), y.RawVector().Data...),
	}
	for li := 0; li < len(nn.Layers)-1; li++ {
		act.Hidden = append(act.Hidden, append([]float64(nil), trace[2+2*li].RawVector().Data...))
	}
	return act.Outputs, act
}

// ParamCount returns the number of trainable parameters.
func (nn *MLP) ParamCount() int {
	n := 0
	for _, l := range nn.Layers {
		r, c := l.W.Dims()
		n += r*c + r
	}
	return n
}

func hasInf(s []float64) bool {
	for _, v := range s {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
