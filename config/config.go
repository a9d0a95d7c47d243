// Package config provides configuration loading and access for the leaf layer.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Wind      WindConfig      `yaml:"wind"`
	Leaves    LeavesConfig    `yaml:"leaves"`
	Layers    []LayerConfig   `yaml:"layers"`
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

// WorldConfig holds sector-wide physics.
type WorldConfig struct {
	Gravity float64 `yaml:"gravity"` // Leaves fall with sqrt(gravity)
	DT      float64 `yaml:"dt"`      // Seconds per headless tick
}

// WindConfig holds gust envelope parameters.
type WindConfig struct {
	WindSpeed    float64 `yaml:"wind_speed"`    // Gust onset drawn from [-wind_speed, wind_speed]
	StateLength  float64 `yaml:"state_length"`  // Phase durations drawn from [0, state_length]
	DecayRatio   float64 `yaml:"decay_ratio"`   // Decay rate relative to attack rate
	InitialDelay float64 `yaml:"initial_delay"` // Length of the first phase
}

// LeavesConfig holds per-leaf motion parameters.
type LeavesConfig struct {
	SpinSpeed    float64 `yaml:"spin_speed"`    // Degrees per second bound
	Epsilon      float64 `yaml:"epsilon"`       // Per-tick jitter bound
	WobbleFactor float64 `yaml:"wobble_factor"` // Wobble gain toward anchor per tick
	WobbleDecay  float64 `yaml:"wobble_decay"`  // Wobble multiplier per tick
	Spacing      float64 `yaml:"spacing"`       // Virtual width per leaf
	VirtualWidth int     `yaml:"virtual_width"` // 0 = twice the screen width
	ImageDir     string  `yaml:"image_dir"`     // Directory holding leaf0.png..leaf17.png
	Enabled      bool    `yaml:"enabled"`
}

// LayerConfig describes one leaf layer in the scene.
type LayerConfig struct {
	Name         string `yaml:"name"`
	Z            int    `yaml:"z"`             // Draw order, lower first
	Enabled      *bool  `yaml:"enabled"`       // nil = leaves.enabled
	VirtualWidth int    `yaml:"virtual_width"` // 0 = leaves.virtual_width
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32 // World.DT as float32
	Gravity32    float32 // World.Gravity as float32
	ScreenW32    float32 // Screen.Width as float32
	ScreenH32    float32 // Screen.Height as float32
	VirtualW32   float32 // Effective leaves virtual width as float32
	LeafCount    int     // Leaves per layer at the default virtual width
	StatsWindowN int     // Ticks per telemetry window
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
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

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	}
	if c.World.Gravity < 0 {
		return fmt.Errorf("world.gravity %v must not be negative", c.World.Gravity)
	}
	if c.World.DT <= 0 {
		return fmt.Errorf("world.dt %v must be positive", c.World.DT)
	}
	if c.Wind.StateLength < 0 || c.Wind.WindSpeed < 0 {
		return fmt.Errorf("wind.state_length and wind.wind_speed must not be negative")
	}
	if c.Leaves.Spacing <= 0 {
		return fmt.Errorf("leaves.spacing %v must be positive", c.Leaves.Spacing)
	}
	if c.Leaves.WobbleDecay < 0 || c.Leaves.WobbleDecay >= 1 {
		return fmt.Errorf("leaves.wobble_decay %v must be in [0, 1)", c.Leaves.WobbleDecay)
	}
	if c.Leaves.VirtualWidth < 0 {
		return fmt.Errorf("leaves.virtual_width %d must not be negative", c.Leaves.VirtualWidth)
	}
	for i, l := range c.Layers {
		if l.VirtualWidth < 0 {
			return fmt.Errorf("layers[%d].virtual_width %d must not be negative", i, l.VirtualWidth)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.World.DT)
	c.Derived.Gravity32 = float32(c.World.Gravity)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.VirtualW32 = c.LayerVirtualWidth(LayerConfig{})
	c.Derived.LeafCount = int(float64(c.Derived.VirtualW32) / c.Leaves.Spacing)

	ticks := int(math.Round(c.Telemetry.StatsWindow / c.World.DT))
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowN = ticks

	// Synthesize a single layer if none specified
	if len(c.Layers) == 0 {
		c.Layers = []LayerConfig{{Name: "leaves"}}
	}
	for i := range c.Layers {
		if c.Layers[i].Name == "" {
			c.Layers[i].Name = fmt.Sprintf("leaves-%d", i)
		}
	}
}

// LayerVirtualWidth returns the width a layer spreads its leaves over.
func (c *Config) LayerVirtualWidth(l LayerConfig) float32 {
	switch {
	case l.VirtualWidth > 0:
		return float32(l.VirtualWidth)
	case c.Leaves.VirtualWidth > 0:
		return float32(c.Leaves.VirtualWidth)
	}
	return float32(c.Screen.Width) * 2
}

// LayerEnabled reports whether a layer starts enabled.
func (c *Config) LayerEnabled(l LayerConfig) bool {
	if l.Enabled != nil {
		return *l.Enabled
	}
	return c.Leaves.Enabled
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
