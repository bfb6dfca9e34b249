package inspector

import (
	"math"
	"testing"
)

func TestNormalise(t *testing.T) {
	got := normalise([]float64{50, -100, 25, 0})
	want := []float64{0.5, -1, 0.25, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("normalise[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	zero := normalise([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("all-zero input = %v", zero)
	}
}

func TestColumnPositions(t *testing.T) {
	pos := columnPositions(10, 0, 100, 4)
	if len(pos) != 4 {
		t.Fatalf("got %d positions", len(pos))
	}
	for i, p := range pos {
		if p.X != 10 {
			t.Errorf("node %d off column: x=%v", i, p.X)
		}
		if want := 12.5 + 25*float32(i); p.Y != want {
			t.Errorf("node %d y = %v, want %v", i, p.Y, want)
		}
	}
}

func TestNodeRadius(t *testing.T) {
	if r := nodeRadius(4); r != 6 {
		t.Errorf("small layer radius = %v, want 6", r)
	}
	if r := nodeRadius(100); r != 2.5 {
		t.Errorf("crowded layer radius = %v, want 2.5", r)
	}
}

func TestShortLabels(t *testing.T) {
	got := shortLabels([]string{"self x", "self y", "apple?", "kiwi"})
	if got != "x,y,apple?,kiwi" {
		t.Errorf("shortLabels = %q", got)
	}
}
