package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Movement   MovementConfig   `toml:"movement"`
	Map        MapConfig        `toml:"map"`
	Agents     AgentsConfig     `toml:"agents"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate      Duration `toml:"tick_rate"`
	MaxTicks      uint64   `toml:"max_ticks"`      // 0 = run until signalled
	Seed          int64    `toml:"seed"`           // 0 = time-based
	SnapshotEvery uint64   `toml:"snapshot_every"` // ticks between console frames, 0 = off
}

type MovementConfig struct {
	Speed          float64 `toml:"speed"`           // world units per second
	ArrivalEpsilon float64 `toml:"arrival_epsilon"` // world units
}

type MapConfig struct {
	List string `toml:"list"` // grid_list.yaml path
	Name string `toml:"name"`
}

// AgentsConfig lists the agents spawned at boot. An empty list spawns a
// single "walker" at (0,0).
type AgentsConfig struct {
	Spawn []SpawnConfig `toml:"spawn"`
}

type SpawnConfig struct {
	Name string `toml:"name"`
	X    int    `toml:"x"`
	Y    int    `toml:"y"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Duration decodes TOML strings such as "50ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes raw TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if len(cfg.Agents.Spawn) == 0 {
		cfg.Agents.Spawn = []SpawnConfig{{Name: "walker"}}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.TickRate.Duration <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate.Duration)
	}
	if c.Movement.Speed < 0 || c.Movement.ArrivalEpsilon < 0 {
		return fmt.Errorf("movement speed and arrival_epsilon must not be negative")
	}
	seen := make(map[string]bool, len(c.Agents.Spawn))
	for _, s := range c.Agents.Spawn {
		if s.Name == "" {
			return fmt.Errorf("agents.spawn entry at (%d,%d) has no name", s.X, s.Y)
		}
		if seen[s.Name] {
			return fmt.Errorf("agents.spawn: duplicate name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:      Duration{20 * time.Millisecond},
			SnapshotEvery: 50,
		},
		Movement: MovementConfig{
			Speed:          10,
			ArrivalEpsilon: 0.1,
		},
		Map: MapConfig{
			List: "data/yaml/grid_list.yaml",
			Name: "meadow",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
