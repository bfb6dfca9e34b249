package brain

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/neural"
)

// fakeNet returns fixed outputs per state and records fit targets.
type fakeNet struct {
	outputs   map[float64][]float64 // keyed by state[0]
	fallback  []float64
	predicts  int
	fitStates [][]float64
	fitTarget [][]float64
	fitErr    error

	// When set, Fit signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeNet) Predict(state []float64) []float64 {
	f.predicts++
	out := f.fallback
	if o, ok := f.outputs[state[0]]; ok {
		out = o
	}
	return append([]float64(nil), out...)
}

func (f *fakeNet) Fit(state, target []float64) (float64, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.fitErr != nil {
		return 0, f.fitErr
	}
	f.fitStates = append(f.fitStates, append([]float64(nil), state...))
	f.fitTarget = append(f.fitTarget, append([]float64(nil), target...))
	return 1, nil
}

func (f *fakeNet) InputSize() int  { return encoder.StateSize }
func (f *fakeNet) OutputSize() int { return NumActions }

func state(first float64) encoder.StateVector {
	return encoder.StateVector{first, 0.5, 0.5, 0.5, 0.5, 0.5}
}

func newFakePolicy(t *testing.T, net *fakeNet, hp Hyperparameters) *QPolicy {
	t.Helper()
	p, err := NewQPolicy(net, hp, encoder.StateSize, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewQPolicy: %v", err)
	}
	return p
}

func greedyHP() Hyperparameters {
	hp := DefaultHyperparameters()
	hp.Epsilon = 0
	hp.EpsilonMin = 0
	return hp
}

func TestChooseActionExploresUniformly(t *testing.T) {
	net := &fakeNet{fallback: []float64{0, 0, 0, 100}}
	p := newFakePolicy(t, net, DefaultHyperparameters())

	const n = 10000
	var counts [NumActions]float64
	for i := 0; i < n; i++ {
		a := p.ChooseAction(state(0.1))
		if !a.Valid() {
			t.Fatalf("invalid action %d", a)
		}
		counts[a]++
	}
	if net.predicts != 0 {
		t.Errorf("approximator invoked %d times with epsilon=1", net.predicts)
	}

	expected := float64(n) / NumActions
	var chi2 float64
	for _, c := range counts {
		d := c - expected
		chi2 += d * d / expected
	}
	pValue := distuv.ChiSquared{K: NumActions - 1}.Survival(chi2)
	if pValue <= 0.01 {
		t.Errorf("action distribution %v not uniform: chi2=%.2f p=%.4f", counts, chi2, pValue)
	}
}

func TestChooseActionGreedy(t *testing.T) {
	tests := []struct {
		name    string
		outputs []float64
		want    Action
	}{
		{"max last", []float64{0, 1, 2, 3}, ActionRight},
		{"max first", []float64{5, 1, 2, 3}, ActionUp},
		{"negative values", []float64{-4, -1, -2, -3}, ActionDown},
		{"tie lowest index", []float64{1, 7, 7, 0}, ActionDown},
		{"all equal", []float64{2, 2, 2, 2}, ActionUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := &fakeNet{fallback: tt.outputs}
			p := newFakePolicy(t, net, greedyHP())
			for i := 0; i < 50; i++ {
				if got := p.ChooseAction(state(0.1)); got != tt.want {
					t.Fatalf("ChooseAction = %s, want %s", got, tt.want)
				}
			}
		})
	}
}

func TestChooseActionDoesNotDecay(t *testing.T) {
	p := newFakePolicy(t, &fakeNet{fallback: []float64{0, 0, 0, 0}}, DefaultHyperparameters())
	for i := 0; i < 100; i++ {
		p.ChooseAction(state(0.1))
	}
	if p.Epsilon() != 1 {
		t.Errorf("epsilon = %v after ChooseAction, want 1", p.Epsilon())
	}
}

func TestTrainTerminalTarget(t *testing.T) {
	net := &fakeNet{
		outputs: map[float64][]float64{
			0.1: {1, 2, 3, 4},
			0.9: {10, 20, 30, 40},
		},
	}
	p := newFakePolicy(t, net, DefaultHyperparameters())

	err := p.Train(context.Background(), Experience{
		State: state(0.1), Action: ActionLeft, Reward: 100, NextState: state(0.9), Terminal: true,
	})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(net.fitTarget) != 1 {
		t.Fatalf("fit calls = %d, want 1", len(net.fitTarget))
	}
	want := []float64{1, 2, 100, 4}
	for i, v := range want {
		if net.fitTarget[0][i] != v {
			t.Errorf("target[%d] = %v, want %v", i, net.fitTarget[0][i], v)
		}
	}
	if net.fitStates[0][0] != 0.1 {
		t.Errorf("fit on state %v, want the experience state", net.fitStates[0])
	}
}

func TestTrainBootstrapTarget(t *testing.T) {
	net := &fakeNet{
		outputs: map[float64][]float64{
			0.1: {1, 2, 3, 4},
			0.9: {10, -20, 30, 5},
		},
	}
	hp := DefaultHyperparameters()
	p := newFakePolicy(t, net, hp)

	err := p.Train(context.Background(), Experience{
		State: state(0.1), Action: ActionUp, Reward: -0.1, NextState: state(0.9), Terminal: false,
	})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	wantTarget := -0.1 + hp.DiscountFactor*30
	got := net.fitTarget[0]
	if math.Abs(got[0]-wantTarget) > 1e-12 {
		t.Errorf("target[0] = %v, want %v", got[0], wantTarget)
	}
	for i, v := range []float64{2, 3, 4} {
		if got[i+1] != v {
			t.Errorf("target[%d] = %v, want unchanged %v", i+1, got[i+1], v)
		}
	}
}

func TestTrainEpsilonDecayFloor(t *testing.T) {
	hp := DefaultHyperparameters()
	hp.EpsilonDecay = 0.5
	hp.EpsilonMin = 0.1
	p := newFakePolicy(t, &fakeNet{fallback: []float64{0, 0, 0, 0}}, hp)

	exp := Experience{State: state(0.1), Action: ActionUp, Reward: 1, NextState: state(0.2)}
	prev := p.Epsilon()
	for i := 0; i < 50; i++ {
		if err := p.Train(context.Background(), exp); err != nil {
			t.Fatalf("Train: %v", err)
		}
		want := math.Max(hp.EpsilonMin, prev*hp.EpsilonDecay)
		if got := p.Epsilon(); got != want {
			t.Fatalf("step %d: epsilon = %v, want %v", i, got, want)
		}
		if p.Epsilon() < hp.EpsilonMin {
			t.Fatalf("epsilon %v below floor", p.Epsilon())
		}
		prev = p.Epsilon()
	}
	if p.Steps() != 50 {
		t.Errorf("Steps = %d, want 50", p.Steps())
	}
}

func TestTrainFitFailure(t *testing.T) {
	net := &fakeNet{fallback: []float64{0, 0, 0, 0}, fitErr: errors.New("boom")}
	p := newFakePolicy(t, net, DefaultHyperparameters())

	err := p.Train(context.Background(), Experience{State: state(0.1), Action: ActionDown, Reward: 1, NextState: state(0.2)})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("err = %v, want *TrainingError", err)
	}
	if p.Epsilon() != 1 {
		t.Errorf("epsilon decayed after failed fit: %v", p.Epsilon())
	}
}

func TestTrainNonFiniteTarget(t *testing.T) {
	net := &fakeNet{fallback: []float64{0, 0, 0, 0}}
	p := newFakePolicy(t, net, DefaultHyperparameters())

	err := p.Train(context.Background(), Experience{State: state(0.1), Action: ActionDown, Reward: math.Inf(1), Terminal: true})
	if !errors.Is(err, ErrNonFiniteTarget) {
		t.Fatalf("err = %v, want ErrNonFiniteTarget", err)
	}
	if len(net.fitTarget) != 0 {
		t.Error("fit called with non-finite target")
	}
}

func TestTrainInvalidAction(t *testing.T) {
	p := newFakePolicy(t, &fakeNet{fallback: []float64{0, 0, 0, 0}}, DefaultHyperparameters())
	err := p.Train(context.Background(), Experience{State: state(0.1), Action: Action(9), Terminal: true})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("err = %v, want *TrainingError", err)
	}
}

func TestTrainAfterClose(t *testing.T) {
	net := &fakeNet{fallback: []float64{0, 0, 0, 0}}
	p := newFakePolicy(t, net, DefaultHyperparameters())
	p.Close()

	err := p.Train(context.Background(), Experience{State: state(0.1), Action: ActionUp, Terminal: true})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if len(net.fitTarget) != 0 || p.Epsilon() != 1 {
		t.Error("closed policy was mutated")
	}
}

func TestCloseDuringFit(t *testing.T) {
	net := &fakeNet{
		fallback: []float64{0, 0, 0, 0},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	p := newFakePolicy(t, net, DefaultHyperparameters())

	done := make(chan error, 1)
	go func() {
		done <- p.Train(context.Background(), Experience{State: state(0.1), Action: ActionUp, Reward: 100, Terminal: true})
	}()

	<-net.entered
	p.Close()
	close(net.release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("Train = %v, want ErrClosed", err)
	}
	if p.Epsilon() != 1 {
		t.Errorf("epsilon = %v, want 1", p.Epsilon())
	}
	if p.Steps() != 0 {
		t.Errorf("steps = %d, want 0", p.Steps())
	}
	if p.LastLoss() != 0 {
		t.Errorf("last loss = %v, want 0", p.LastLoss())
	}
}

func TestTrainCancelledContext(t *testing.T) {
	net := &fakeNet{fallback: []float64{0, 0, 0, 0}}
	p := newFakePolicy(t, net, DefaultHyperparameters())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Train(ctx, Experience{State: state(0.1), Action: ActionUp, Terminal: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(net.fitTarget) != 0 {
		t.Error("fit ran on cancelled context")
	}
}

func TestNewQPolicyValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := &fakeNet{fallback: []float64{0, 0, 0, 0}}

	tests := []struct {
		name   string
		mutate func(*Hyperparameters)
		size   int
	}{
		{"gamma one", func(h *Hyperparameters) { h.DiscountFactor = 1 }, encoder.StateSize},
		{"gamma zero", func(h *Hyperparameters) { h.DiscountFactor = 0 }, encoder.StateSize},
		{"epsilon above one", func(h *Hyperparameters) { h.Epsilon = 1.5 }, encoder.StateSize},
		{"epsilon below min", func(h *Hyperparameters) { h.Epsilon = 0.001 }, encoder.StateSize},
		{"zero decay", func(h *Hyperparameters) { h.EpsilonDecay = 0 }, encoder.StateSize},
		{"zero learning rate", func(h *Hyperparameters) { h.LearningRate = 0 }, encoder.StateSize},
		{"state size mismatch", func(h *Hyperparameters) {}, encoder.StateSizeWithPresence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp := DefaultHyperparameters()
			tt.mutate(&hp)
			_, err := NewQPolicy(net, hp, tt.size, rng)
			var cfgErr *encoder.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *encoder.ConfigurationError", err)
			}
		})
	}
}

func TestMLPPolicyLearnsTerminalReward(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hp := greedyHP()
	p, err := NewMLPPolicy(rng, hp, neural.DefaultAdam(hp.LearningRate), encoder.StateSize, 24)
	if err != nil {
		t.Fatalf("NewMLPPolicy: %v", err)
	}

	s := encoder.StateVector{0.9, 0.9, 1, 1, 0, 0}
	before := p.QValues(s)[ActionRight]
	for i := 0; i < 20; i++ {
		if err := p.Train(context.Background(), Experience{State: s, Action: ActionRight, Reward: 100, Terminal: true}); err != nil {
			t.Fatalf("Train: %v", err)
		}
	}
	after := p.QValues(s)[ActionRight]
	if after <= before {
		t.Errorf("Q(right) did not increase: before %v, after %v", before, after)
	}
	if p.LastLoss() < 0 {
		t.Errorf("negative loss %v", p.LastLoss())
	}
}

func TestCapture(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hp := greedyHP()
	p, err := NewMLPPolicy(rng, hp, neural.DefaultAdam(hp.LearningRate), encoder.StateSize, 8)
	if err != nil {
		t.Fatalf("NewMLPPolicy: %v", err)
	}

	s := state(0.25)
	act, ok := p.Capture(s)
	if !ok {
		t.Fatal("Capture failed on an MLP policy")
	}
	if len(act.Inputs) != encoder.StateSize || len(act.Hidden) != 2 || len(act.Outputs) != NumActions {
		t.Fatalf("unexpected shapes: %d inputs, %d hidden, %d outputs", len(act.Inputs), len(act.Hidden), len(act.Outputs))
	}
	q := p.QValues(s)
	for i := range q {
		if math.Abs(q[i]-act.Outputs[i]) > 1e-12 {
			t.Errorf("output %d = %v, QValues gives %v", i, act.Outputs[i], q[i])
		}
	}

	if _, ok := p.Capture(encoder.StateVector{1}); ok {
		t.Error("Capture accepted a short state")
	}
	fake := newFakePolicy(t, &fakeNet{fallback: make([]float64, NumActions)}, hp)
	if _, ok := fake.Capture(s); ok {
		t.Error("Capture succeeded without an MLP")
	}
}

func TestParamCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hp := greedyHP()
	p, err := NewMLPPolicy(rng, hp, neural.DefaultAdam(hp.LearningRate), encoder.StateSize, 8)
	if err != nil {
		t.Fatalf("NewMLPPolicy: %v", err)
	}
	if got, want := p.ParamCount(), 6*8+8+8*8+8+8*4+4; got != want {
		t.Errorf("ParamCount = %d, want %d", got, want)
	}
	fake := newFakePolicy(t, &fakeNet{fallback: make([]float64, NumActions)}, hp)
	if got := fake.ParamCount(); got != 0 {
		t.Errorf("ParamCount without an MLP = %d, want 0", got)
	}
}
