// Package sim drives the arena: it owns the agents, runs their decisions
// on the simulation clock and routes overlap outcomes back to them.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/config"
	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/telemetry"
	"github.com/pthm-cable/slimes/world"
)

// Options configures a Sim beyond the loaded config.
type Options struct {
	Seed           int64
	LogStats       bool    // log each stats window via slog
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV/chart output, empty disables
	DBPath         string  // SQLite run store, empty = OutputDir/runs.db when enabled in config
	Headless       bool
	StepsPerUpdate int
	Logger         *slog.Logger
}

// Sim is the simulation driver.
type Sim struct {
	cfg    *config.Config
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
	runID  string

	ctx    context.Context
	cancel context.CancelFunc

	arena  *world.Arena
	sched  *world.Scheduler
	agents map[uint32]*agent.Controller
	due    []uint32

	parallel *parallelState

	// Telemetry
	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	store     *telemetry.SQLiteStore
	retired   telemetry.AgentTotals // counters of disposed agents
	totals    runTotals

	statsCallback func(telemetry.WindowStats)
	eventCallback func(world.Event)

	// State
	tick   int32
	paused bool
	speed  int
	dt     time.Duration
}

// runTotals are whole-run counters for the summary.
type runTotals struct {
	apples, kiwis, fights, episodes, spawns int
}

// New creates a simulation and spawns the configured population.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	windowSec := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		windowSec = opts.StatsWindowSec
	}

	runID := telemetry.NewRunID()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Sim{
		cfg:       cfg,
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		logger:    logger.With("run", runID),
		runID:     runID,
		ctx:       ctx,
		cancel:    cancel,
		agents:    make(map[uint32]*agent.Controller),
		parallel:  newParallelState(cfg.Physics.Workers),
		collector: telemetry.NewCollector(runID, windowSec, cfg.Derived.DT32),
		lifetimes: telemetry.NewLifetimeTracker(runID),
		perf:      telemetry.NewPerfCollector(60),
		speed:     opts.StepsPerUpdate,
		dt:        time.Duration(cfg.Physics.DT * float64(time.Second)),
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir, runID)
	if err != nil {
		cancel()
		return nil, err
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		s.logger.Error("failed to write config snapshot", "error", err)
	}

	if err := s.openStore(); err != nil {
		s.output.Close()
		cancel()
		return nil, err
	}

	if err := s.populate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sim) openStore() error {
	path := s.opts.DBPath
	if path == "" && s.cfg.Telemetry.SQLite && s.opts.OutputDir != "" {
		path = filepath.Join(s.opts.OutputDir, "runs.db")
	}
	if path == "" {
		return nil
	}

	store := telemetry.NewSQLiteStore(path)
	if err := store.Init(s.ctx); err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	run := telemetry.RunInfo{ID: s.runID, Seed: s.opts.Seed, StartedAt: time.Now(), Headless: s.opts.Headless}
	if err := store.SaveRun(s.ctx, run); err != nil {
		store.Close()
		return fmt.Errorf("saving run: %w", err)
	}
	s.store = store
	return nil
}

// Update runs StepsPerUpdate simulation steps unless paused.
func (s *Sim) Update() {
	if s.paused {
		return
	}
	for i := 0; i < s.speed; i++ {
		s.Step()
	}
}

// Step runs a single tick of the simulation.
func (s *Sim) Step() {
	s.perf.StartTick()
	dt := s.cfg.Derived.DT32

	// 1. Advance the clock; decision timers queue their agents
	s.perf.StartPhase(telemetry.PhaseSchedule)
	s.due = s.due[:0]
	s.sched.Advance(s.dt)

	// 2-4. Decide in parallel against a frozen view, then apply intents
	s.decide()

	// 5. Move and detect overlaps
	s.perf.StartPhase(telemetry.PhasePhysics)
	events := s.arena.Step(dt)

	// 6. Terminal outcomes and fights
	s.perf.StartPhase(telemetry.PhaseOutcomes)
	s.handleEvents(events)

	s.tick++

	// 7. Telemetry
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndTick()
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int32 { return s.tick }

// SimTime returns the elapsed simulation time.
func (s *Sim) SimTime() time.Duration { return s.sched.Now() }

// RunID returns the identifier of this run.
func (s *Sim) RunID() string { return s.runID }

// Config returns the configuration the simulation was built with.
func (s *Sim) Config() *config.Config { return s.cfg }

// Encoder returns the state encoder agents are built with.
func (s *Sim) Encoder() encoder.Encoder {
	return encoder.Encoder{PresenceBits: s.cfg.Encoder.PresenceBits}
}

// Arena returns the playfield.
func (s *Sim) Arena() *world.Arena { return s.arena }

// Agent returns the controller of a live slime.
func (s *Sim) Agent(id uint32) (*agent.Controller, bool) {
	c, ok := s.agents[id]
	return c, ok
}

// AgentIDs returns live agent IDs in ascending order.
func (s *Sim) AgentIDs() []uint32 {
	ids := make([]uint32, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Paused reports whether Update is suspended.
func (s *Sim) Paused() bool { return s.paused }

// SetPaused suspends or resumes Update.
func (s *Sim) SetPaused(p bool) { s.paused = p }

// Speed returns the steps run per Update.
func (s *Sim) Speed() int { return s.speed }

// SetSpeed sets the steps run per Update, clamped to [1, 10].
func (s *Sim) SetSpeed(n int) { s.speed = min(max(n, 1), 10) }

// SetStatsCallback registers fn to receive every flushed window.
func (s *Sim) SetStatsCallback(fn func(telemetry.WindowStats)) { s.statsCallback = fn }

// SetEventCallback registers fn to see every arena event before it is
// handled.
func (s *Sim) SetEventCallback(fn func(world.Event)) { s.eventCallback = fn }

// Perf returns current performance statistics.
func (s *Sim) Perf() telemetry.PerfStats { return s.perf.Stats() }
