package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/slimes/brain"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/neural"
)

// stubWorld is a single-agent world with optional targets.
type stubWorld struct {
	ready   bool
	self    encoder.Position
	targets map[components.TargetKind]encoder.Position
	bounds  encoder.Bounds
}

func newStubWorld() *stubWorld {
	return &stubWorld{
		ready:   true,
		targets: map[components.TargetKind]encoder.Position{},
		bounds:  encoder.Bounds{Width: 800, Height: 600},
	}
}

func (w *stubWorld) Ready() bool { return w.ready }

func (w *stubWorld) Position(id uint32) (encoder.Position, bool) {
	return w.self, id == 1
}

func (w *stubWorld) NearestOf(kind components.TargetKind, _ encoder.Position) (encoder.Position, bool) {
	p, ok := w.targets[kind]
	return p, ok
}

func (w *stubWorld) ArenaBounds() encoder.Bounds { return w.bounds }

// recordingPolicy returns scripted actions and records training calls.
type recordingPolicy struct {
	actions []brain.Action
	next    int
	trained []brain.Experience
	err     error
	epsilon float64
	closed  bool

	started chan struct{}
	release chan struct{}
}

func (p *recordingPolicy) ChooseAction(encoder.StateVector) brain.Action {
	if len(p.actions) == 0 {
		return brain.ActionUp
	}
	a := p.actions[p.next%len(p.actions)]
	p.next++
	return a
}

func (p *recordingPolicy) Train(_ context.Context, exp brain.Experience) error {
	if p.started != nil {
		p.started <- struct{}{}
		<-p.release
	}
	if p.err != nil {
		return p.err
	}
	p.trained = append(p.trained, exp)
	p.epsilon *= 0.5
	return nil
}

func (p *recordingPolicy) Epsilon() float64 { return p.epsilon }
func (p *recordingPolicy) Close()           { p.closed = true }

type stubScheduler struct {
	registered int
	cancelled  []Handle
}

func (s *stubScheduler) RegisterRepeating(time.Duration, func()) Handle {
	s.registered++
	return Handle(s.registered)
}

func (s *stubScheduler) Cancel(h Handle) { s.cancelled = append(s.cancelled, h) }

func newTestController(p Policy) *Controller {
	return NewController(1, components.KindPassive, p, Options{Speed: 100})
}

func TestFirstTickDoesNotTrain(t *testing.T) {
	p := &recordingPolicy{actions: []brain.Action{brain.ActionRight}, epsilon: 1}
	c := newTestController(p)
	w := newStubWorld()
	w.self = encoder.Position{X: 400, Y: 300}

	intent, ok := c.Tick(context.Background(), w)
	if !ok {
		t.Fatal("Tick returned false")
	}
	if intent != (MovementIntent{VX: 100}) {
		t.Errorf("intent = %+v, want right at speed 100", intent)
	}
	if len(p.trained) != 0 {
		t.Errorf("trained %d times on first tick", len(p.trained))
	}
	if c.State() != AwaitingOutcome {
		t.Errorf("state = %s, want awaiting_outcome", c.State())
	}
	m := c.Memory()
	if !m.Set || m.Action != brain.ActionRight || len(m.State) != encoder.StateSize {
		t.Errorf("memory = %+v", m)
	}
}

func TestSecondTickTrainsStepReward(t *testing.T) {
	p := &recordingPolicy{actions: []brain.Action{brain.ActionDown, brain.ActionLeft}, epsilon: 1}
	c := newTestController(p)
	w := newStubWorld()
	w.self = encoder.Position{X: 400, Y: 300}

	c.Tick(context.Background(), w)
	w.self = encoder.Position{X: 400, Y: 350}
	c.Tick(context.Background(), w)

	if len(p.trained) != 1 {
		t.Fatalf("trained %d times, want 1", len(p.trained))
	}
	exp := p.trained[0]
	if exp.Terminal || exp.Reward != -0.1 || exp.Action != brain.ActionDown {
		t.Errorf("experience = %+v, want non-terminal -0.1 for down", exp)
	}
	if exp.State[1] != 0.5 || exp.NextState[1] != 350.0/600.0 {
		t.Errorf("states = %v -> %v", exp.State, exp.NextState)
	}
	if m := c.Memory(); m.Action != brain.ActionLeft {
		t.Errorf("memory action = %s, want left", m.Action)
	}
}

func TestTerminalOutcomeTrainsAndResets(t *testing.T) {
	tests := []struct {
		kind components.TargetKind
		want float64
	}{
		{components.TargetApple, 100},
		{components.TargetKiwi, -100},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p := &recordingPolicy{actions: []brain.Action{brain.ActionUp}, epsilon: 1}
			c := newTestController(p)
			w := newStubWorld()

			c.Tick(context.Background(), w)
			if !c.OnTerminalOutcome(context.Background(), tt.kind, w) {
				t.Fatal("OnTerminalOutcome returned false")
			}

			if len(p.trained) != 1 {
				t.Fatalf("trained %d times, want 1", len(p.trained))
			}
			if exp := p.trained[0]; !exp.Terminal || exp.Reward != tt.want {
				t.Errorf("experience = %+v, want terminal %v", exp, tt.want)
			}
			if c.State() != Idle {
				t.Errorf("state = %s, want idle", c.State())
			}
			if m := c.Memory(); m.Set || m.State != nil {
				t.Errorf("memory not cleared: %+v", m)
			}
			if st := c.Stats(); st.Episodes != 1 || st.LastEpisodeReward != tt.want {
				t.Errorf("stats = %+v", st)
			}
		})
	}
}

func TestTerminalOutcomeWhileIdle(t *testing.T) {
	p := &recordingPolicy{epsilon: 1}
	c := newTestController(p)

	if !c.OnTerminalOutcome(context.Background(), components.TargetApple, newStubWorld()) {
		t.Fatal("OnTerminalOutcome returned false")
	}
	if len(p.trained) != 0 {
		t.Errorf("trained %d times while idle", len(p.trained))
	}
	if p.Epsilon() != 1 {
		t.Errorf("epsilon = %v, want unchanged", p.Epsilon())
	}
}

func TestTickAfterTerminalStartsFreshChain(t *testing.T) {
	p := &recordingPolicy{actions: []brain.Action{brain.ActionUp}, epsilon: 1}
	c := newTestController(p)
	w := newStubWorld()

	c.Tick(context.Background(), w)
	c.OnTerminalOutcome(context.Background(), components.TargetApple, w)
	c.Tick(context.Background(), w)

	if len(p.trained) != 1 {
		t.Fatalf("trained %d times, want only the terminal step", len(p.trained))
	}
	if c.State() != AwaitingOutcome {
		t.Errorf("state = %s, want awaiting_outcome", c.State())
	}
}

func TestMissingWorldDataIsNoop(t *testing.T) {
	p := &recordingPolicy{epsilon: 1}
	c := newTestController(p)
	w := newStubWorld()
	w.ready = false

	if _, ok := c.Tick(context.Background(), w); ok {
		t.Error("Tick acted without world data")
	}
	if c.OnTerminalOutcome(context.Background(), components.TargetApple, w) {
		t.Error("OnTerminalOutcome acted without world data")
	}
	if _, ok := c.Tick(context.Background(), nil); ok {
		t.Error("Tick acted on nil world")
	}
	if c.State() != Idle || len(p.trained) != 0 {
		t.Error("missing world data changed controller state")
	}
}

func TestInvalidBoundsSkipsStep(t *testing.T) {
	p := &recordingPolicy{epsilon: 1}
	c := newTestController(p)
	w := newStubWorld()
	w.bounds = encoder.Bounds{}

	if _, ok := c.Tick(context.Background(), w); ok {
		t.Error("Tick acted with zero arena bounds")
	}
}

func TestTrainingErrorKeepsAgentActing(t *testing.T) {
	p := &recordingPolicy{
		actions: []brain.Action{brain.ActionLeft},
		epsilon: 1,
		err:     &brain.TrainingError{Err: errors.New("diverged")},
	}
	c := newTestController(p)
	w := newStubWorld()

	for i := 0; i < 3; i++ {
		if _, ok := c.Tick(context.Background(), w); !ok {
			t.Fatalf("tick %d returned false", i)
		}
	}
	st := c.Stats()
	if st.TrainingErrors != 2 || st.Trainings != 0 || st.Decisions != 3 {
		t.Errorf("stats = %+v", st)
	}
	if c.State() != AwaitingOutcome {
		t.Errorf("state = %s, want awaiting_outcome", c.State())
	}
}

func TestDispose(t *testing.T) {
	p := &recordingPolicy{epsilon: 1}
	c := newTestController(p)
	s := &stubScheduler{}
	c.Schedule(s, 500*time.Millisecond, func() {})

	c.Dispose()
	c.Dispose()

	if !p.closed {
		t.Error("policy not closed")
	}
	if len(s.cancelled) != 1 || s.cancelled[0] != 1 {
		t.Errorf("cancelled = %v, want [1]", s.cancelled)
	}
	if _, ok := c.Tick(context.Background(), newStubWorld()); ok {
		t.Error("Tick acted after Dispose")
	}
	if c.OnTerminalOutcome(context.Background(), components.TargetApple, newStubWorld()) {
		t.Error("OnTerminalOutcome acted after Dispose")
	}

	c.Schedule(s, time.Second, func() {})
	if s.registered != 1 {
		t.Error("Schedule registered after Dispose")
	}
}

func TestTickDroppedWhileTraining(t *testing.T) {
	p := &recordingPolicy{
		actions: []brain.Action{brain.ActionUp},
		epsilon: 1,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newTestController(p)
	w := newStubWorld()

	// No training on the first tick, so it does not block.
	c.Tick(context.Background(), w)

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background(), w)
		close(done)
	}()
	<-p.started

	if _, ok := c.Tick(context.Background(), w); ok {
		t.Error("tick ran while a training step was in flight")
	}

	close(p.release)
	<-done

	if got := c.Stats().DroppedTicks; got != 1 {
		t.Errorf("DroppedTicks = %d, want 1", got)
	}
}

// scriptedPolicy chooses scripted actions but trains a real brain.
type scriptedPolicy struct {
	*brain.QPolicy
	script []brain.Action
	next   int
}

func (p *scriptedPolicy) ChooseAction(encoder.StateVector) brain.Action {
	a := p.script[p.next%len(p.script)]
	p.next++
	return a
}

func TestEndToEndRewardedActionGainsValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hp := brain.DefaultHyperparameters()
	q, err := brain.NewMLPPolicy(rng, hp, neural.DefaultAdam(hp.LearningRate), encoder.StateSize, 24)
	if err != nil {
		t.Fatalf("NewMLPPolicy: %v", err)
	}

	// 12 x (right, down) then 4 x right walks (0,0) to (800,600) in steps of 50.
	var script []brain.Action
	for i := 0; i < 12; i++ {
		script = append(script, brain.ActionRight, brain.ActionDown)
	}
	for i := 0; i < 4; i++ {
		script = append(script, brain.ActionRight)
	}
	policy := &scriptedPolicy{QPolicy: q, script: script}

	c := NewController(1, components.KindPassive, policy, Options{Speed: 100})
	w := newStubWorld()
	w.targets[components.TargetApple] = encoder.Position{X: 800, Y: 600}
	const dt = 0.5

	probe, err := encoder.Encode(encoder.Position{X: 750, Y: 600}, &encoder.Position{X: 800, Y: 600}, nil, w.bounds)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	before := q.QValues(probe)[brain.ActionRight]

	for episode := 0; episode < 30; episode++ {
		w.self = encoder.Position{}
		for step := 0; step < len(script); step++ {
			intent, ok := c.Tick(context.Background(), w)
			if !ok {
				t.Fatal("Tick returned false")
			}
			w.self.X += intent.VX * dt
			w.self.Y += intent.VY * dt
		}
		if w.self != (encoder.Position{X: 800, Y: 600}) {
			t.Fatalf("episode %d ended at %+v", episode, w.self)
		}
		c.OnTerminalOutcome(context.Background(), components.TargetApple, w)
	}

	after := q.QValues(probe)[brain.ActionRight]
	if after <= before {
		t.Errorf("Q(right) near apple did not increase: before %.3f, after %.3f", before, after)
	}
	if q.Epsilon() >= hp.Epsilon {
		t.Errorf("epsilon did not decay: %v", q.Epsilon())
	}
	if st := c.Stats(); st.Episodes != 30 || st.TrainingErrors != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestIntentFor(t *testing.T) {
	tests := []struct {
		a    brain.Action
		want MovementIntent
	}{
		{brain.ActionUp, MovementIntent{VY: -10}},
		{brain.ActionDown, MovementIntent{VY: 10}},
		{brain.ActionLeft, MovementIntent{VX: -10}},
		{brain.ActionRight, MovementIntent{VX: 10}},
		{brain.Action(7), MovementIntent{}},
	}
	for _, tt := range tests {
		if got := IntentFor(tt.a, 10); got != tt.want {
			t.Errorf("IntentFor(%s) = %+v, want %+v", tt.a, got, tt.want)
		}
	}
}
