package world

import (
	"testing"
	"time"

	"github.com/pthm-cable/slimes/agent"
)

func TestSchedulerCadence(t *testing.T) {
	s := NewScheduler()
	var fast, slow int
	s.RegisterRepeating(500*time.Millisecond, func() { fast++ })
	s.RegisterRepeating(time.Second, func() { slow++ })

	for i := 0; i < 30; i++ {
		s.Advance(100 * time.Millisecond)
	}

	if fast != 6 || slow != 3 {
		t.Errorf("fired fast=%d slow=%d, want 6 and 3", fast, slow)
	}
	if s.Now() != 3*time.Second {
		t.Errorf("Now = %v, want 3s", s.Now())
	}
}

func TestSchedulerOrder(t *testing.T) {
	s := NewScheduler()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.RegisterRepeating(time.Second, func() { order = append(order, i) })
	}
	s.Advance(time.Second)

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want registration order", order)
		}
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	var a, b int
	hb := s.RegisterRepeating(time.Second, func() { b++ })
	s.RegisterRepeating(time.Second, func() {
		a++
		s.Cancel(hb)
	})
	// hb was registered first, so it fires once before being cancelled.
	s.Advance(time.Second)
	s.Advance(time.Second)

	if a != 2 || b != 1 {
		t.Errorf("a=%d b=%d, want 2 and 1", a, b)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSchedulerCancelDuringAdvance(t *testing.T) {
	s := NewScheduler()
	var fired int
	var victim agent.Handle
	s.RegisterRepeating(time.Second, func() { s.Cancel(victim) })
	victim = s.RegisterRepeating(time.Second, func() { fired++ })

	s.Advance(time.Second)
	s.Advance(time.Second)
	if fired != 0 {
		t.Errorf("cancelled callback fired %d times", fired)
	}
}

func TestSchedulerSkipsMissedPeriods(t *testing.T) {
	s := NewScheduler()
	n := 0
	s.RegisterRepeating(100*time.Millisecond, func() { n++ })

	s.Advance(time.Second)
	if n != 1 {
		t.Errorf("fired %d times on a long advance, want 1", n)
	}
	s.Advance(50 * time.Millisecond)
	if n != 1 {
		t.Errorf("fired early after catch-up")
	}
	s.Advance(50 * time.Millisecond)
	if n != 2 {
		t.Errorf("fired %d times, want 2", n)
	}
}

func TestSchedulerRejectsBadRegistration(t *testing.T) {
	s := NewScheduler()
	if h := s.RegisterRepeating(0, func() {}); h != 0 {
		t.Errorf("handle = %d, want 0", h)
	}
	if h := s.RegisterRepeating(time.Second, nil); h != 0 {
		t.Errorf("handle = %d, want 0", h)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}
