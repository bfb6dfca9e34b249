package ui

import (
	"fmt"

	"github.com/pthm-cable/slimes/telemetry"
)

// StatsPanel describes the latest telemetry window.
var StatsPanel = PanelDescriptor{
	ID:     "stats",
	Title:  "Learning",
	Width:  240,
	Anchor: AnchorBottomRight,
	Sections: []SectionDescriptor{
		{
			ID:    "window",
			Title: "Last window",
			Fields: []FieldDescriptor{
				{ID: "end", Label: "Sim time", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%.0fs", window(d).SimTimeSec)
				}},
				{ID: "eaten", Label: "Eaten", Widget: WidgetText, TextGetter: func(d any) string {
					w := window(d)
					return fmt.Sprintf("%d apples, %d kiwis", w.ApplesEaten, w.KiwisEaten)
				}},
				{ID: "apple_rate", Label: "Apple rate", Widget: WidgetBar, Getter: func(d any) float32 {
					return float32(window(d).AppleRate)
				}},
				{ID: "decisions", Label: "Decisions", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(window(d).Decisions)
				}},
				{ID: "errors", Label: "Train errors", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(window(d).TrainingErrors)
				}, Visible: func(d any) bool { return window(d).TrainingErrors > 0 }},
			},
		},
		{
			ID:      "episodes",
			Title:   "Episodes",
			Visible: func(d any) bool { return window(d).Episodes > 0 },
			Fields: []FieldDescriptor{
				{ID: "count", Label: "Ended", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(window(d).Episodes)
				}},
				{ID: "reward", Label: "Reward", Widget: WidgetCenteredBar, Range: FieldRange{Min: -100, Max: 100}, Getter: func(d any) float32 {
					return float32(window(d).RewardMean)
				}},
			},
		},
		{
			ID:    "exploration",
			Title: "Exploration",
			Fields: []FieldDescriptor{
				{ID: "eps_mean", Label: "Epsilon", Widget: WidgetBar, Getter: func(d any) float32 {
					return float32(window(d).EpsilonMean)
				}},
				{ID: "eps_p10", Label: "Epsilon p10", Widget: WidgetBar, Getter: func(d any) float32 {
					return float32(window(d).EpsilonP10)
				}},
				{ID: "eps_p90", Label: "Epsilon p90", Widget: WidgetBar, Getter: func(d any) float32 {
					return float32(window(d).EpsilonP90)
				}},
			},
		},
	},
}

func window(d any) *telemetry.WindowStats {
	if w, ok := d.(*telemetry.WindowStats); ok && w != nil {
		return w
	}
	return &telemetry.WindowStats{}
}
