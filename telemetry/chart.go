package telemetry

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page with learning curves for windows:
// fruit eaten, mean episode reward and exploration rate per window.
func RenderChart(w io.Writer, runID string, windows []WindowStats) error {
	x := make([]string, len(windows))
	for i, s := range windows {
		x[i] = fmt.Sprintf("%.0f", s.SimTimeSec)
	}

	series := func(f func(WindowStats) float64) []opts.LineData {
		items := make([]opts.LineData, len(windows))
		for i, s := range windows {
			items[i] = opts.LineData{Value: f(s)}
		}
		return items
	}

	newLine := func(title string) *charts.Line {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: title, Subtitle: runID}),
			charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "sim s"}),
		)
		line.SetXAxis(x)
		return line
	}

	fruit := newLine("Fruit eaten per window")
	fruit.AddSeries("apples", series(func(s WindowStats) float64 { return float64(s.ApplesEaten) }))
	fruit.AddSeries("kiwis", series(func(s WindowStats) float64 { return float64(s.KiwisEaten) }))

	reward := newLine("Episode reward")
	reward.AddSeries("mean", series(func(s WindowStats) float64 { return s.RewardMean }))
	reward.AddSeries("apple rate x100", series(func(s WindowStats) float64 { return s.AppleRate * 100 }))

	eps := newLine("Exploration")
	eps.AddSeries("epsilon mean", series(func(s WindowStats) float64 { return s.EpsilonMean }))
	eps.AddSeries("epsilon p90", series(func(s WindowStats) float64 { return s.EpsilonP90 }))

	page := components.NewPage()
	page.AddCharts(fruit, reward, eps)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
