package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slimes/config"
)

// csvSink is one CSV file whose header is written with the first record.
type csvSink struct {
	name          string
	file          *os.File
	headerWritten bool
}

func (s *csvSink) write(records any) error {
	if !s.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, s.file); err != nil {
			return fmt.Errorf("writing %s: %w", s.name, err)
		}
		s.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.file); err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	return nil
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir   string
	runID string

	telemetry *csvSink
	perf      *csvSink
	episodes  *csvSink
	lifetimes *csvSink

	windows []WindowStats // kept for the chart
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir, runID string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: runID}
	sinks := []**csvSink{&om.telemetry, &om.perf, &om.episodes, &om.lifetimes}
	names := []string{"telemetry.csv", "perf.csv", "episodes.csv", "lifetimes.csv"}

	for i, name := range names {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		*sinks[i] = &csvSink{name: name, file: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	om.windows = append(om.windows, stats)
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteEpisode writes a finished episode to episodes.csv.
func (om *OutputManager) WriteEpisode(r EpisodeRecord) error {
	if om == nil {
		return nil
	}
	return om.episodes.write([]EpisodeRecord{r})
}

// WriteLifetime writes a closed lifetime record to lifetimes.csv.
func (om *OutputManager) WriteLifetime(s *LifetimeStats) error {
	if om == nil || s == nil {
		return nil
	}
	return om.lifetimes.write([]*LifetimeStats{s})
}

// WriteChart renders all windows written so far to chart.html.
func (om *OutputManager) WriteChart() error {
	if om == nil || len(om.windows) == 0 {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "chart.html"))
	if err != nil {
		return fmt.Errorf("creating chart.html: %w", err)
	}
	if err := RenderChart(f, om.runID, om.windows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Windows returns the windows written so far.
func (om *OutputManager) Windows() []WindowStats {
	if om == nil {
		return nil
	}
	return om.windows
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, s := range []*csvSink{om.telemetry, om.perf, om.episodes, om.lifetimes} {
		if s == nil || s.file == nil {
			continue
		}
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
