// Package agent ties perception, decision and training together for one
// slime.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/slimes/brain"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
)

// Policy is the decision and learning side of a brain.
type Policy interface {
	ChooseAction(state encoder.StateVector) brain.Action
	Train(ctx context.Context, exp brain.Experience) error
	Epsilon() float64
	Close()
}

// State is the controller's episode phase.
type State uint8

const (
	Idle            State = iota // no pending decision
	AwaitingOutcome              // a decision waits for its reward
)

func (s State) String() string {
	if s == AwaitingOutcome {
		return "awaiting_outcome"
	}
	return "idle"
}

// Memory is the last decision of an agent. State and Action are either
// both set or both absent.
type Memory struct {
	State  encoder.StateVector
	Action brain.Action
	Set    bool
}

// Stats are cumulative per-agent counters.
type Stats struct {
	Decisions         int     `inspect:"label"`
	Trainings         int     `inspect:"label"`
	TrainingErrors    int     `inspect:"label"`
	DroppedTicks      int     `inspect:"label"`
	Episodes          int     `inspect:"label"`
	EpisodeReward     float64 `inspect:"label,fmt:%.1f"` // running reward of the current episode
	LastEpisodeReward float64 `inspect:"label,fmt:%.1f"`
}

// Options configures a Controller.
type Options struct {
	Encoder encoder.Encoder
	Rewards Rewards
	Speed   float64 // movement intent magnitude, arena units per second
	Logger  *slog.Logger
}

// Controller drives one agent. It is the handle the driver keeps for a
// slime: Tick on the decision cadence, OnTerminalOutcome from overlap
// events, Dispose on removal.
type Controller struct {
	id     uint32
	kind   components.AgentKind
	policy Policy
	opts   Options
	logger *slog.Logger

	// mu is held for the whole of a decision or outcome so at most one
	// training step is in flight per agent.
	mu     sync.Mutex
	memory Memory
	intent MovementIntent
	stats  Stats

	disposed atomic.Bool
	dropped  atomic.Int64

	schedMu sync.Mutex
	sched   Scheduler
	handle  Handle
}

// NewController creates a controller in the Idle state.
func NewController(id uint32, kind components.AgentKind, policy Policy, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Rewards.Terminal == nil {
		opts.Rewards = DefaultRewards()
	}
	return &Controller{
		id:     id,
		kind:   kind,
		policy: policy,
		opts:   opts,
		logger: logger.With("agent", id, "kind", kind.String()),
	}
}

// ID returns the agent identifier.
func (c *Controller) ID() uint32 { return c.id }

// Kind returns the agent kind.
func (c *Controller) Kind() components.AgentKind { return c.kind }

// Policy returns the agent's brain.
func (c *Controller) Policy() Policy { return c.policy }

// Schedule registers fn on s at the given interval. The registration is
// cancelled by Dispose.
func (c *Controller) Schedule(s Scheduler, interval time.Duration, fn func()) {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.disposed.Load() {
		return
	}
	if c.sched != nil {
		c.sched.Cancel(c.handle)
	}
	c.sched = s
	c.handle = s.RegisterRepeating(interval, fn)
}

// Tick makes one decision: encode the current state, choose an action,
// train the previous decision with the step reward and remember the new
// one. It returns false without side effects when world data is missing,
// the agent was disposed or a previous training step is still running.
func (c *Controller) Tick(ctx context.Context, w World) (MovementIntent, bool) {
	if c.disposed.Load() {
		return MovementIntent{}, false
	}
	if !c.mu.TryLock() {
		c.dropped.Add(1)
		return MovementIntent{}, false
	}
	defer c.mu.Unlock()

	s, err := c.observe(w)
	if err != nil {
		c.logObserveError(err)
		return MovementIntent{}, false
	}

	a := c.policy.ChooseAction(s)
	if c.memory.Set {
		c.train(ctx, brain.Experience{
			State:     c.memory.State,
			Action:    c.memory.Action,
			Reward:    c.opts.Rewards.Step,
			NextState: s,
			Terminal:  false,
		})
	}

	c.memory = Memory{State: s, Action: a, Set: true}
	c.stats.Decisions++
	c.intent = IntentFor(a, c.opts.Speed)
	return c.intent, true
}

// OnTerminalOutcome ends the current episode with the reward for kind.
// Without a pending decision nothing is trained. It waits for an in-flight
// training step instead of dropping the outcome.
func (c *Controller) OnTerminalOutcome(ctx context.Context, kind components.TargetKind, w World) bool {
	if c.disposed.Load() {
		return false
	}
	reward, ok := c.opts.Rewards.For(kind)
	if !ok {
		c.logger.Warn("no reward for target kind", "target", kind.String())
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.observe(w)
	if err != nil {
		c.logObserveError(err)
		return false
	}

	if c.memory.Set {
		c.train(ctx, brain.Experience{
			State:     c.memory.State,
			Action:    c.memory.Action,
			Reward:    reward,
			NextState: s,
			Terminal:  true,
		})
		c.stats.Episodes++
		c.stats.LastEpisodeReward = c.stats.EpisodeReward
		c.stats.EpisodeReward = 0
	}
	c.memory = Memory{}
	return true
}

// Dispose cancels the decision schedule and closes the brain. Later calls
// to Tick and OnTerminalOutcome are no-ops.
func (c *Controller) Dispose() {
	if c.disposed.Swap(true) {
		return
	}
	c.policy.Close()

	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.sched != nil {
		c.sched.Cancel(c.handle)
		c.sched = nil
	}
}

// Disposed reports whether Dispose was called.
func (c *Controller) Disposed() bool {
	return c.disposed.Load()
}

// State returns the current episode phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memory.Set {
		return AwaitingOutcome
	}
	return Idle
}

// Memory returns a copy of the pending decision.
func (c *Controller) Memory() Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Memory{State: c.memory.State.Clone(), Action: c.memory.Action, Set: c.memory.Set}
}

// Intent returns the most recent movement intent.
func (c *Controller) Intent() MovementIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intent
}

// Stats returns a snapshot of the agent's counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stats
	st.DroppedTicks = int(c.dropped.Load())
	return st
}

// observe encodes the agent's view of w.
func (c *Controller) observe(w World) (encoder.StateVector, error) {
	if w == nil || !w.Ready() {
		return nil, ErrMissingWorldData
	}
	pos, ok := w.Position(c.id)
	if !ok {
		return nil, ErrMissingWorldData
	}

	var apple, kiwi *encoder.Position
	if p, ok := w.NearestOf(components.TargetApple, pos); ok {
		apple = &p
	}
	if p, ok := w.NearestOf(components.TargetKiwi, pos); ok {
		kiwi = &p
	}
	return c.opts.Encoder.Encode(pos, apple, kiwi, w.ArenaBounds())
}

// train runs one update. Failures are logged and the experience dropped;
// the agent keeps acting either way.
func (c *Controller) train(ctx context.Context, exp brain.Experience) {
	err := c.policy.Train(ctx, exp)
	switch {
	case err == nil:
		c.stats.Trainings++
		c.stats.EpisodeReward += exp.Reward
	case errors.Is(err, brain.ErrClosed):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Debug("training skipped", "error", err)
	default:
		c.stats.TrainingErrors++
		c.logger.Warn("training failed, experience skipped",
			"error", err,
			"action", exp.Action.String(),
			"reward", exp.Reward,
			"terminal", exp.Terminal,
			"failures", c.stats.TrainingErrors,
		)
	}
}

func (c *Controller) logObserveError(err error) {
	if errors.Is(err, ErrMissingWorldData) {
		c.logger.Debug("skipping step", "reason", err)
		return
	}
	c.logger.Error("cannot encode state", "error", err)
}
