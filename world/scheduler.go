package world

import (
	"sort"
	"time"

	"github.com/pthm-cable/slimes/agent"
)

type timer struct {
	interval time.Duration
	due      time.Duration
	fn       func()
}

// Scheduler runs repeating callbacks on simulation time. It is advanced
// by the simulation loop and is not safe for concurrent use.
type Scheduler struct {
	now    time.Duration
	last   agent.Handle
	timers map[agent.Handle]*timer
}

// NewScheduler creates a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[agent.Handle]*timer)}
}

// RegisterRepeating calls fn every interval of simulation time, starting
// one interval from now. A non-positive interval registers nothing and
// returns the zero handle.
func (s *Scheduler) RegisterRepeating(interval time.Duration, fn func()) agent.Handle {
	if interval <= 0 || fn == nil {
		return 0
	}
	s.last++
	s.timers[s.last] = &timer{interval: interval, due: s.now + interval, fn: fn}
	return s.last
}

// Cancel stops a registration. Unknown handles are ignored.
func (s *Scheduler) Cancel(h agent.Handle) {
	delete(s.timers, h)
}

// Advance moves simulation time forward by d and fires due callbacks in
// registration order. A callback fires at most once per Advance; missed
// periods are skipped rather than replayed.
func (s *Scheduler) Advance(d time.Duration) int {
	s.now += d

	due := make([]agent.Handle, 0, len(s.timers))
	for h, t := range s.timers {
		if t.due <= s.now {
			due = append(due, h)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	fired := 0
	for _, h := range due {
		t, ok := s.timers[h]
		if !ok {
			continue // cancelled by an earlier callback
		}
		t.due += t.interval
		if t.due <= s.now {
			t.due = s.now + t.interval
		}
		t.fn()
		fired++
	}
	return fired
}

// Now returns the current simulation time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Len returns the number of active registrations.
func (s *Scheduler) Len() int { return len(s.timers) }
