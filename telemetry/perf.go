package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a simulation step.
type Phase int

// Step phases in execution order.
const (
	PhaseSchedule Phase = iota
	PhaseSnapshot
	PhaseDecide
	PhaseApply
	PhasePhysics
	PhaseOutcomes
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"schedule", "snapshot", "decide", "apply", "physics", "outcomes", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases lists the step phases in execution order.
var Phases = []Phase{
	PhaseSchedule, PhaseSnapshot, PhaseDecide, PhaseApply,
	PhasePhysics, PhaseOutcomes, PhaseTelemetry,
}

type tickTiming struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// PerfCollector times step phases over the last N ticks.
type PerfCollector struct {
	ring   []tickTiming
	next   int
	filled int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase // NumPhases when no phase is open
}

// NewPerfCollector keeps timings for the last window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickTiming, window), phase: NumPhases}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickTiming{}
	p.phase = NumPhases
}

// StartPhase closes the open phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = ph
}

// EndTick closes the step and stores its timings.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 && p.phase < NumPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = NumPhases
}

// PerfStats are step timings averaged over the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	TicksPerSecond  float64
	PhaseAvg        [NumPhases]time.Duration
	PhasePct        [NumPhases]float64 // share of the average tick, 0-100
}

// Stats averages the stored ticks. It is the zero value before the first
// EndTick.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.filled == 0 {
		return s
	}
	var sum tickTiming
	for _, t := range p.ring[:p.filled] {
		sum.total += t.total
		for i, d := range t.phases {
			sum.phases[i] += d
		}
	}
	n := time.Duration(p.filled)
	s.AvgTickDuration = sum.total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for i, d := range sum.phases {
		s.PhaseAvg[i] = d / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[i] = float64(s.PhaseAvg[i]) / float64(s.AvgTickDuration) * 100
		}
	}
	return s
}

// LogStats logs the averages, skipping phases under 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	SchedulePct  float64 `csv:"schedule_pct"`
	SnapshotPct  float64 `csv:"snapshot_pct"`
	DecidePct    float64 `csv:"decide_pct"`
	ApplyPct     float64 `csv:"apply_pct"`
	PhysicsPct   float64 `csv:"physics_pct"`
	OutcomesPct  float64 `csv:"outcomes_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		SchedulePct:  s.PhasePct[PhaseSchedule],
		SnapshotPct:  s.PhasePct[PhaseSnapshot],
		DecidePct:    s.PhasePct[PhaseDecide],
		ApplyPct:     s.PhasePct[PhaseApply],
		PhysicsPct:   s.PhasePct[PhasePhysics],
		OutcomesPct:  s.PhasePct[PhaseOutcomes],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
