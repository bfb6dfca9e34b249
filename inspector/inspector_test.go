package inspector

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pthm-cable/slimes/brain"
	"github.com/pthm-cable/slimes/camera"
	"github.com/pthm-cable/slimes/components"
	"github.com/pthm-cable/slimes/encoder"
	"github.com/pthm-cable/slimes/neural"
	"github.com/pthm-cable/slimes/world"
)

func TestClickSelection(t *testing.T) {
	a := world.NewArena(world.Options{Width: 800, Height: 600, SlimeRadius: 16, FruitRadius: 12}, rand.New(rand.NewSource(42)))
	id := a.SpawnSlime(components.KindAggressive, 100, 100)
	cam := camera.New(800, 600, 800, 600)
	ins := NewInspector(800, 600, nil)

	if ins.Click(400, 500, a, cam) {
		t.Error("click on empty arena consumed")
	}
	if _, ok := ins.Selected(); ok {
		t.Fatal("selected without a slime")
	}

	if !ins.Click(105, 95, a, cam) {
		t.Fatal("click on slime not consumed")
	}
	if got, ok := ins.Selected(); !ok || got != id {
		t.Fatalf("Selected = %d, %v; want %d", got, ok, id)
	}

	// Close button sits in the top-right corner of the panel
	if !ins.Click(float32(ins.panelX+PanelWidth-15), float32(ins.panelY+15), a, cam) {
		t.Fatal("close click not consumed")
	}
	if _, ok := ins.Selected(); ok {
		t.Error("close button did not deselect")
	}
}

func TestNetworkTitle(t *testing.T) {
	hp := brain.DefaultHyperparameters()
	p, err := brain.NewMLPPolicy(rand.New(rand.NewSource(42)), hp, neural.DefaultAdam(hp.LearningRate), encoder.StateSize, 8)
	if err != nil {
		t.Fatalf("NewMLPPolicy: %v", err)
	}
	got := networkTitle(p)
	for _, want := range []string{"Q-NETWORK", "164 params", "lr 0.01", "g 0.95"} {
		if !strings.Contains(got, want) {
			t.Errorf("title %q missing %q", got, want)
		}
	}
	if got := networkTitle(nil); got != "Q-NETWORK" {
		t.Errorf("title without a policy = %q", got)
	}
}
