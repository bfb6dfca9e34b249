package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/telemetry"
	"github.com/pthm-cable/slimes/world"
)

// parallelThreshold is the minimum number of due decisions to use the
// worker pool. Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 8

// decision is one due agent and the intent it produced.
type decision struct {
	ctrl   *agent.Controller
	intent agent.MovementIntent
	ok     bool
}

// workChunk represents a range of decisions for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel decision making.
type parallelState struct {
	decisions  []decision
	numWorkers int

	// Inputs of the current phase, read-only while workers run
	ctx  context.Context
	view *world.Snapshot

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{
		numWorkers: workers,
		decisions:  make([]decision, 0, 64),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// computeChunk runs the decisions in [start, end). Agents share no state,
// and the view is an immutable snapshot.
func (p *parallelState) computeChunk(start, end int) {
	for i := start; i < end; i++ {
		d := &p.decisions[i]
		d.intent, d.ok = d.ctrl.Tick(p.ctx, p.view)
	}
}

// computeParallel dispatches work to the worker pool.
func (p *parallelState) computeParallel(n int) {
	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// decide runs every due agent's Tick.
//
// Phase A snapshots the arena (single-threaded), phase B runs the
// decisions and their training steps (parallel above a threshold), phase
// C applies intents (single-threaded, in due order, preserving determinism).
func (s *Sim) decide() {
	p := s.parallel

	// Phase A: collect due agents and freeze the world view
	s.perf.StartPhase(telemetry.PhaseSnapshot)
	p.decisions = p.decisions[:0]
	for _, id := range s.due {
		if ctrl, ok := s.agents[id]; ok {
			p.decisions = append(p.decisions, decision{ctrl: ctrl})
		}
	}
	n := len(p.decisions)
	if n == 0 {
		return
	}
	p.ctx = s.ctx
	p.view = s.arena.Snapshot()

	// Phase B: compute
	s.perf.StartPhase(telemetry.PhaseDecide)
	if n < parallelThreshold || p.numWorkers == 1 {
		p.computeChunk(0, n)
	} else {
		p.computeParallel(n)
	}

	// Phase C: apply intents
	s.perf.StartPhase(telemetry.PhaseApply)
	for _, d := range p.decisions {
		if d.ok {
			s.arena.SetVelocity(d.ctrl.ID(), d.intent.VX, d.intent.VY)
		}
	}
	p.view = nil
}
