// Package brain implements the epsilon-greedy Q-learning policy that drives
// a single agent.
package brain

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/neural"
)

// Approximator maps a state vector to one value estimate per action and can
// be nudged toward a target vector.
type Approximator interface {
	Predict(state []float64) []float64
	Fit(state, target []float64) (float64, error)
	InputSize() int
	OutputSize() int
}

// Experience is one transition handed to Train. It is not retained.
type Experience struct {
	State     encoder.StateVector
	Action    Action
	Reward    float64
	NextState encoder.StateVector
	Terminal  bool
}

// QPolicy owns one approximator and the exploration schedule. Brains are
// never shared between agents.
type QPolicy struct {
	mu       sync.Mutex // serializes Predict/Fit and guards the fields below
	net      Approximator
	hp       Hyperparameters
	epsilon  float64
	rng      *rand.Rand
	lastLoss float64
	steps    int

	closed atomic.Bool
}

// NewQPolicy wraps net. The approximator must accept stateSize inputs and
// produce NumActions outputs.
func NewQPolicy(net Approximator, hp Hyperparameters, stateSize int, rng *rand.Rand) (*QPolicy, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	if err := encoder.CheckSize("approximator inputs", net.InputSize(), stateSize); err != nil {
		return nil, err
	}
	if err := encoder.CheckSize("approximator outputs", net.OutputSize(), NumActions); err != nil {
		return nil, err
	}
	return &QPolicy{
		net:     net,
		hp:      hp,
		epsilon: hp.Epsilon,
		rng:     rng,
	}, nil
}

// NewMLPPolicy builds a policy backed by a fresh stateSize -> hidden ->
// hidden -> NumActions network.
func NewMLPPolicy(rng *rand.Rand, hp Hyperparameters, adam neural.AdamConfig, stateSize, hidden int) (*QPolicy, error) {
	adam.LearningRate = hp.LearningRate
	net, err := neural.NewMLP(rng, []int{stateSize, hidden, hidden, NumActions}, adam)
	if err != nil {
		return nil, &encoder.ConfigurationError{Field: "brain", Reason: err.Error()}
	}
	return NewQPolicy(net, hp, stateSize, rng)
}

// ChooseAction picks an action epsilon-greedily. With probability epsilon
// it returns a uniformly random action without consulting the
// approximator; otherwise it returns the highest valued action, ties going
// to the lowest index.
func (p *QPolicy) ChooseAction(state encoder.StateVector) Action {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() <= p.epsilon || len(state) != p.net.InputSize() {
		return Action(p.rng.Intn(NumActions))
	}
	return Action(floats.MaxIdx(p.net.Predict(state)))
}

// Train applies one Q-learning update for exp and then decays epsilon.
//
// Only the estimate of the taken action is corrected: its target is the
// reward for terminal transitions and reward + gamma*max(Q(next)) otherwise.
// A failed fit returns a *TrainingError and leaves epsilon unchanged.
func (p *QPolicy) Train(ctx context.Context, exp Experience) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed.Load() {
		return ErrClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fail := func(err error) error {
		return &TrainingError{Action: exp.Action, Reward: exp.Reward, Err: err}
	}
	if !exp.Action.Valid() {
		return fail(fmt.Errorf("action index %d out of range", exp.Action))
	}
	n := p.net.InputSize()
	if len(exp.State) != n || (!exp.Terminal && len(exp.NextState) != n) {
		return fail(fmt.Errorf("state sizes %d/%d, want %d", len(exp.State), len(exp.NextState), n))
	}

	current := p.net.Predict(exp.State)

	target := exp.Reward
	if !exp.Terminal {
		next := p.net.Predict(exp.NextState)
		target = exp.Reward + p.hp.DiscountFactor*floats.Max(next)
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return fail(ErrNonFiniteTarget)
	}

	targets := make([]float64, len(current))
	copy(targets, current)
	targets[exp.Action] = target

	loss, err := p.net.Fit(exp.State, targets)
	if err != nil {
		return fail(err)
	}

	// The policy may have been closed while the fit ran.
	if p.closed.Load() {
		return ErrClosed
	}
	p.lastLoss = loss
	p.steps++
	p.epsilon = math.Max(p.hp.EpsilonMin, p.epsilon*p.hp.EpsilonDecay)
	return nil
}

// Epsilon returns the current exploration probability.
func (p *QPolicy) Epsilon() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epsilon
}

// QValues returns the approximator's estimates for state.
func (p *QPolicy) QValues(state encoder.StateVector) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.net.Predict(state)
}

// Capture returns every layer's activations for state when the policy is
// backed by an MLP.
func (p *QPolicy) Capture(state encoder.StateVector) (*neural.Activations, bool) {
	mlp, ok := p.net.(*neural.MLP)
	if !ok || len(state) != mlp.InputSize() {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, act := mlp.PredictWithCapture(state)
	return act, true
}

// LastLoss returns the loss of the most recent successful fit.
func (p *QPolicy) LastLoss() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLoss
}

// Steps returns the number of successful training steps.
func (p *QPolicy) Steps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps
}

// ParamCount returns the number of trainable approximator parameters,
// or 0 when the approximator is not an MLP.
func (p *QPolicy) ParamCount() int {
	if mlp, ok := p.net.(*neural.MLP); ok {
		return mlp.ParamCount()
	}
	return 0
}

// Hyperparameters returns the settings the policy was built with.
func (p *QPolicy) Hyperparameters() Hyperparameters {
	return p.hp
}

// Close marks the policy as disposed. Training that is already running
// finishes its fit but no longer touches epsilon.
func (p *QPolicy) Close() {
	p.closed.Store(true)
}
