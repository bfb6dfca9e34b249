package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slimes/config"
	"github.com/pthm-cable/slimes/game"
	"github.com/pthm-cable/slimes/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, chart and config snapshot")
	dbPath := flag.String("db", "", "SQLite run store path (empty = output-dir/runs.db when enabled in config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		DBPath:         *dbPath,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		Logger:         logger,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, int32(*maxTicks)))
	}
	os.Exit(runWindow(cfg, opts, int32(*maxTicks)))
}

// runHeadless steps the simulation without raylib until maxTicks.
func runHeadless(cfg *config.Config, opts sim.Options, maxTicks int32) int {
	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for maxTicks <= 0 || s.Tick() < maxTicks {
		s.Update()
	}
	slog.Info("max ticks reached", "tick", s.Tick())

	s.LogSummary()
	if err := s.Close(); err != nil {
		slog.Error("failed to close simulation", "error", err)
		return 1
	}
	return 0
}

// runWindow runs the interactive front-end until the window closes.
func runWindow(cfg *config.Config, opts sim.Options, maxTicks int32) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Slimes")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	g := game.New(s)

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && g.Tick() >= maxTicks {
			break
		}
	}

	s.LogSummary()
	if err := g.Unload(); err != nil {
		slog.Error("failed to close simulation", "error", err)
		return 1
	}
	return 0
}
