// Package config loads process configuration from the environment and
// simulation tuning from an optional YAML file. Environment variables
// carry the MICROCOSM_ prefix.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the process-level configuration: where to listen, where to
// persist, how to log. Simulation behavior lives in Tuning.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"microcosm.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DebugAgents enables the rate-limited per-agent debug log stream.
	DebugAgents bool `envconfig:"DEBUG_AGENTS" default:"false"`

	// AdminKey gates POST endpoints. Empty disables them.
	AdminKey string `envconfig:"ADMIN_KEY"`

	// Seed fixes world generation and agent randomness. 0 means random.
	Seed int64 `envconfig:"SEED" default:"0"`

	// TuningPath points at an optional YAML tuning file.
	TuningPath string `envconfig:"TUNING_PATH"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("microcosm", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Duration is a time.Duration that parses YAML strings like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Tuning holds the simulation knobs. Every field has a sane default;
// a tuning file overrides only what it names.
type Tuning struct {
	TickInterval    Duration `yaml:"tick_interval"`
	TicksPerHour    uint64   `yaml:"ticks_per_hour"`
	HoursPerDay     uint64   `yaml:"hours_per_day"`
	DecisionTimeout Duration `yaml:"decision_timeout"`
	Workers         int      `yaml:"workers"`

	SenseRadius int `yaml:"sense_radius"`
	MapRadius   int `yaml:"map_radius"`

	StorageMemoryTTL  uint64 `yaml:"storage_memory_ttl"`
	SightingMemoryTTL uint64 `yaml:"sighting_memory_ttl"`

	AgentCount int `yaml:"agent_count"`
}

// DefaultTuning returns the standard knob settings.
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:      Duration(500 * time.Millisecond),
		TicksPerHour:      120,
		HoursPerDay:       24,
		DecisionTimeout:   Duration(200 * time.Millisecond),
		Workers:           0, // coordinator picks from GOMAXPROCS
		SenseRadius:       6,
		MapRadius:         18,
		StorageMemoryTTL:  2400,
		SightingMemoryTTL: 600,
		AgentCount:        12,
	}
}

// LoadTuning reads a YAML tuning file over the defaults. An empty path
// returns the defaults unchanged.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning: parse %s: %w", path, err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning: %s: %w", path, err)
	}
	return t, nil
}

func (t *Tuning) validate() error {
	if t.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if t.TicksPerHour == 0 || t.HoursPerDay == 0 {
		return fmt.Errorf("ticks_per_hour and hours_per_day must be positive")
	}
	if t.SenseRadius < 1 {
		return fmt.Errorf("sense_radius must be at least 1")
	}
	if t.MapRadius < t.SenseRadius {
		return fmt.Errorf("map_radius must be at least sense_radius")
	}
	if t.AgentCount < 0 {
		return fmt.Errorf("agent_count must not be negative")
	}
	return nil
}
