package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(800, 600, 800, 600)

	// Should be centered on the arena at 1:1
	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected camera at (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(800, 600, 800, 600)

	sx, sy := cam.WorldToScreen(400, 300)
	if !near(sx, 400) || !near(sy, 300) {
		t.Errorf("expected screen center (400, 300), got (%f, %f)", sx, sy)
	}

	// Arena corners map to screen corners at the fitting zoom
	sx, sy = cam.WorldToScreen(800, 600)
	if !near(sx, 800) || !near(sy, 600) {
		t.Errorf("expected bottom-right corner (800, 600), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)
	cam.Pan(100, -40)

	testCases := []struct{ sx, sy float32 }{
		{400, 300}, // center
		{10, 10},   // top-left
		{790, 590}, // bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestFitZoom(t *testing.T) {
	// Wide window: the arena height is the limiting dimension
	cam := New(1280, 720, 800, 600)

	// MinZoom should be min(1280/800, 720/600) = min(1.6, 1.2) = 1.2
	if !near(cam.MinZoom, 1.2) {
		t.Errorf("expected MinZoom 1.2, got %f", cam.MinZoom)
	}
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected initial zoom to fit the arena, got %f", cam.Zoom)
	}

	_, top := cam.WorldToScreen(0, 0)
	_, bottom := cam.WorldToScreen(0, 600)
	if !near(top, 0) || !near(bottom, 720) {
		t.Errorf("arena spans y %f..%f, want 0..720", top, bottom)
	}
}

func TestPanClampsToArena(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)

	// Visible half-extents at 2x are 200x150
	cam.Pan(-5000, 0)
	if !near(cam.X, 200) {
		t.Errorf("expected X clamped to 200, got %f", cam.X)
	}
	cam.Pan(0, 5000)
	if !near(cam.Y, 450) {
		t.Errorf("expected Y clamped to 450, got %f", cam.Y)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX < 0 || minY < 0 || maxX > 800 || maxY > 600 {
		t.Errorf("view escapes the arena: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestPanIgnoredWhenArenaFits(t *testing.T) {
	cam := New(1280, 720, 800, 600)

	cam.Pan(300, 300)
	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected arena to stay centered, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 800, 600)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0) // Above max
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}

	cam.ZoomBy(0.5)
	if cam.Zoom != 2.0 {
		t.Errorf("expected zoom 2.0, got %f", cam.Zoom)
	}
	if cam.Scale(16) != 32 {
		t.Errorf("expected radius 16 to scale to 32, got %f", cam.Scale(16))
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)

	// Visible range in world coords: (200, 150) to (600, 450)

	if !cam.IsVisible(400, 300, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(750, 550, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(190, 300, 16) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResize(t *testing.T) {
	cam := New(800, 600, 800, 600)

	cam.Resize(400, 300)
	if !near(cam.MinZoom, 0.5) {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("shrinking the window should keep zoom 1.0, got %f", cam.Zoom)
	}

	cam.Resize(1600, 1200)
	if cam.Zoom != 2.0 {
		t.Errorf("expected zoom raised to the new minimum 2.0, got %f", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2.5)
	cam.Pan(100, 100)

	cam.Reset()

	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected position (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
