package inspector

import (
	"reflect"
	"testing"

	"github.com/pthm-cable/slimes/agent"
	"github.com/pthm-cable/slimes/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar", WidgetBar, map[string]string{}},
		{"bar,max:200", WidgetBar, map[string]string{"max": "200"}},
		{"label, fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"mystery", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, opts := ParseTag(tt.tag)
			if w != tt.widget {
				t.Errorf("widget = %v, want %v", w, tt.widget)
			}
			if !reflect.DeepEqual(opts, tt.opts) {
				t.Errorf("options = %v, want %v", opts, tt.opts)
			}
		})
	}
}

func TestExtractFieldsSlime(t *testing.T) {
	s := components.Slime{ID: 7, Kind: components.KindAggressive, SpeedMultiplier: 0.81, Alive: true, ApplesEaten: 2, KiwisEaten: 2}

	fields := ExtractFields(&s)
	if len(fields) != 6 {
		t.Fatalf("got %d fields, want 6", len(fields))
	}

	byName := make(map[string]Field)
	for _, f := range fields {
		byName[f.Name] = f
	}
	if f := byName["Speed multiplier"]; f.Widget != WidgetBar {
		t.Errorf("Speed multiplier widget = %v, want bar", f.Widget)
	}
	if f := byName["Alive"]; f.Widget != WidgetBool || f.Value != true {
		t.Errorf("Alive = %+v", f)
	}
	if got := FormatValue(byName["Kind"].Value, ""); got != "aggressive" {
		t.Errorf("Kind formats as %q, want aggressive", got)
	}
}

func TestExtractFieldsStats(t *testing.T) {
	fields := ExtractFields(agent.Stats{Episodes: 3, LastEpisodeReward: 12.34})

	last := fields[len(fields)-1]
	if last.Name != "Last episode reward" {
		t.Fatalf("last field = %q", last.Name)
	}
	if got := FormatValue(last.Value, last.Options["fmt"]); got != "12.3" {
		t.Errorf("formatted reward = %q, want 12.3", got)
	}
}

func TestExtractFieldsNonStruct(t *testing.T) {
	var nilSlime *components.Slime
	if ExtractFields(nilSlime) != nil || ExtractFields(42) != nil {
		t.Error("non-structs should yield no fields")
	}
}

func TestGetters(t *testing.T) {
	if v, ok := GetFloatValue(uint32(5)); !ok || v != 5 {
		t.Errorf("GetFloatValue(uint32) = %v, %v", v, ok)
	}
	if _, ok := GetFloatValue("x"); ok {
		t.Error("strings are not numeric")
	}
	if s, ok := GetFloatSlice([]float64{0.5, 1}); !ok || len(s) != 2 || s[0] != 0.5 {
		t.Errorf("GetFloatSlice = %v, %v", s, ok)
	}
	if _, ok := GetFloatSlice([]int{1}); ok {
		t.Error("int slices are not bar groups")
	}
	if GetMax(map[string]string{"max": "200"}) != 200 || GetMax(nil) != 1 {
		t.Error("GetMax")
	}
}

func TestFieldHeight(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  int32
	}{
		{"label", Field{Widget: WidgetLabel, Value: 3}, 20},
		{"bar", Field{Widget: WidgetBar, Value: float32(0.5)}, 18},
		{"bool", Field{Widget: WidgetBool, Value: true}, 18},
		{"group", Field{Widget: WidgetBar, Value: []float64{1, 2}}, 34},
		{"labelled group", Field{Widget: WidgetBar, Value: []float64{1, 2}, Options: map[string]string{"labels": "a,b"}}, 44},
		{"bar on text", Field{Widget: WidgetBar, Value: "x"}, 20},
	}
	for _, tt := range tests {
		if got := FieldHeight(tt.field); got != tt.want {
			t.Errorf("%s: FieldHeight = %d, want %d", tt.name, got, tt.want)
		}
	}
}
