// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slimes/encoder"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Arena     ArenaConfig     `yaml:"arena"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Slime     SlimeConfig     `yaml:"slime"`
	Fruit     FruitConfig     `yaml:"fruit"`
	Brain     BrainConfig     `yaml:"brain"`
	Rewards   RewardsConfig   `yaml:"rewards"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the playfield dimensions in arena units.
type ArenaConfig struct {
	Width  int `yaml:"width"`  // 0 = use screen width
	Height int `yaml:"height"` // 0 = use screen height
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
	Workers      int     `yaml:"workers"` // decision workers, 0 = GOMAXPROCS
}

// SlimeConfig holds slime population and movement parameters.
type SlimeConfig struct {
	Passive          int     `yaml:"passive"`
	Aggressive       int     `yaml:"aggressive"`
	Speed            float64 `yaml:"speed"`
	Radius           float64 `yaml:"radius"`
	DecisionInterval float64 `yaml:"decision_interval"` // seconds of simulation time
	KiwiSpeedPenalty float64 `yaml:"kiwi_speed_penalty"` // speed multiplier applied per kiwi eaten
	Fights           bool    `yaml:"fights"`
	FightChance      float64 `yaml:"fight_chance"`
}

// FruitConfig holds fruit counts.
type FruitConfig struct {
	Apples int     `yaml:"apples"`
	Kiwis  int     `yaml:"kiwis"`
	Radius float64 `yaml:"radius"`
}

// BrainConfig holds the Q-learning and approximator parameters.
type BrainConfig struct {
	Hidden         int     `yaml:"hidden"`
	LearningRate   float64 `yaml:"learning_rate"`
	DiscountFactor float64 `yaml:"discount_factor"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	EpsilonMin     float64 `yaml:"epsilon_min"`
	AdamBeta1      float64 `yaml:"adam_beta1"`
	AdamBeta2      float64 `yaml:"adam_beta2"`
	AdamEpsilon    float64 `yaml:"adam_epsilon"`
}

// RewardsConfig holds the reward table.
type RewardsConfig struct {
	Apple float64 `yaml:"apple"`
	Kiwi  float64 `yaml:"kiwi"`
	Step  float64 `yaml:"step"`
}

// EncoderConfig holds state encoding options.
type EncoderConfig struct {
	PresenceBits bool `yaml:"presence_bits"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds of simulation time per window
	Chart       bool    `yaml:"chart"`        // write chart.html on close
	SQLite      bool    `yaml:"sqlite"`       // mirror windows into runs.db
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32       // Physics.DT as float32
	ScreenW32        float32       // Screen.Width as float32
	ScreenH32        float32       // Screen.Height as float32
	ArenaW32         float32       // Effective arena width as float32
	ArenaH32         float32       // Effective arena height as float32
	DecisionInterval time.Duration // Slime.DecisionInterval as a duration
	StatsWindowTicks int32         // Telemetry.StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Arena dimensions default to screen size if not specified
	w := c.Arena.Width
	if w == 0 {
		w = c.Screen.Width
	}
	h := c.Arena.Height
	if h == 0 {
		h = c.Screen.Height
	}
	c.Derived.ArenaW32 = float32(w)
	c.Derived.ArenaH32 = float32(h)

	c.Derived.DecisionInterval = time.Duration(c.Slime.DecisionInterval * float64(time.Second))
	if c.Physics.DT > 0 {
		c.Derived.StatsWindowTicks = int32(math.Round(c.Telemetry.StatsWindow / c.Physics.DT))
	}
}

// Validate checks values that would make the simulation meaningless.
// Brain hyperparameters are validated where the policy is built.
func (c *Config) Validate() error {
	if c.Derived.ArenaW32 <= 0 || c.Derived.ArenaH32 <= 0 {
		return &encoder.ConfigurationError{Field: "arena", Reason: "width and height must be positive"}
	}
	if c.Physics.DT <= 0 {
		return &encoder.ConfigurationError{Field: "physics.dt", Reason: "must be positive"}
	}
	if c.Slime.DecisionInterval <= 0 {
		return &encoder.ConfigurationError{Field: "slime.decision_interval", Reason: "must be positive"}
	}
	if c.Slime.Passive < 0 || c.Slime.Aggressive < 0 || c.Fruit.Apples < 0 || c.Fruit.Kiwis < 0 {
		return &encoder.ConfigurationError{Field: "population", Reason: "counts must not be negative"}
	}
	if c.Slime.FightChance < 0 || c.Slime.FightChance > 1 {
		return &encoder.ConfigurationError{Field: "slime.fight_chance", Reason: "must be within [0, 1]"}
	}
	if c.Brain.Hidden <= 0 {
		return &encoder.ConfigurationError{Field: "brain.hidden", Reason: "must be positive"}
	}
	return nil
}

// ArenaBounds returns the effective arena size.
func (c *Config) ArenaBounds() encoder.Bounds {
	return encoder.Bounds{Width: float64(c.Derived.ArenaW32), Height: float64(c.Derived.ArenaH32)}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
