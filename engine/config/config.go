package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// Config holds all oxy-anim configuration.
type Config struct {
	Animation AnimationConfig `yaml:"animation"`
	Timeline  TimelineConfig  `yaml:"timeline"`
	Engine    EngineConfig    `yaml:"engine"`
	Logging   LoggingConfig   `yaml:"logging"`
	Watch     WatchConfig     `yaml:"watch"`
}

// AnimationConfig configures curve sampling and pose baking.
type AnimationConfig struct {
	Framerate           float64 `yaml:"framerate"`
	FrameSteps          int     `yaml:"frame_steps"` // samples per frame
	BezierTolerance     float64 `yaml:"bezier_tolerance"`
	BezierMaxIterations int     `yaml:"bezier_max_iterations"`
	BakeWorkers         int     `yaml:"bake_workers"`
}

// TimelineConfig is the scene timeline used by entities with no animation source.
type TimelineConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// EngineConfig configures the headless tick loop.
type EngineConfig struct {
	TickRate  float64 `yaml:"tick_rate"`
	Profiling bool    `yaml:"profiling"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// WatchConfig configures asset hot reload.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Animation: AnimationConfig{
			Framerate:           24,
			FrameSteps:          1,
			BezierTolerance:     curve.DefaultTolerance,
			BezierMaxIterations: curve.DefaultMaxIterations,
			BakeWorkers:         runtime.NumCPU(),
		},
		Timeline: TimelineConfig{
			Start: 1,
			End:   250,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: "100ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies OXYANIM_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OXYANIM_FRAMERATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Animation.Framerate = f
		}
	}
	if v := os.Getenv("OXYANIM_FRAME_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Animation.FrameSteps = n
		}
	}
	if v := os.Getenv("OXYANIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Animation.Framerate <= 0 {
		return fmt.Errorf("animation.framerate must be positive, got %v", c.Animation.Framerate)
	}
	if c.Animation.FrameSteps < 1 {
		return fmt.Errorf("animation.frame_steps must be at least 1, got %d", c.Animation.FrameSteps)
	}
	if c.Animation.BezierTolerance <= 0 {
		return fmt.Errorf("animation.bezier_tolerance must be positive, got %v", c.Animation.BezierTolerance)
	}
	if c.Animation.BezierMaxIterations < 1 {
		return fmt.Errorf("animation.bezier_max_iterations must be at least 1, got %d", c.Animation.BezierMaxIterations)
	}
	if c.Timeline.End < c.Timeline.Start {
		return fmt.Errorf("timeline end %v is before start %v", c.Timeline.End, c.Timeline.Start)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce: %w", err)
	}
	return nil
}

// SamplerOptions maps the animation settings to curve sampler options.
func (c *Config) SamplerOptions() curve.Options {
	return curve.Options{
		FrameSteps:    c.Animation.FrameSteps,
		Tolerance:     c.Animation.BezierTolerance,
		MaxIterations: c.Animation.BezierMaxIterations,
	}
}

// WatchDebounce returns the parsed watch debounce, falling back to 100ms.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// Logger builds a zap logger from the logging settings.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
