// Package config loads Pathfinders settings from an optional YAML file and
// PATHFINDERS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PATHFINDERS_SIM_DAMAGE_SCALE.
const EnvPrefix = "PATHFINDERS"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Sim       SimConfig       `mapstructure:"sim"`
	Scenario  ScenarioConfig  `mapstructure:"scenario"`
	Store     StoreConfig     `mapstructure:"store"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

type SimConfig struct {
	DamageScale       float64 `mapstructure:"damage_scale"`
	PlayerStartWeapon string  `mapstructure:"player_start_weapon"`
	PlayerFaction     string  `mapstructure:"player_faction"`
	PlayerHealth      int     `mapstructure:"player_health"`
	TickRate          int     `mapstructure:"tick_rate"`
	BarksEnabled      bool    `mapstructure:"barks_enabled"`
	Seed              int64   `mapstructure:"seed"`
}

type ScenarioConfig struct {
	Path  string `mapstructure:"path"` // empty means the built-in scenario
	Watch bool   `mapstructure:"watch"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	// SnapshotEvery is the tick interval between persisted snapshots; zero
	// keeps only the final state.
	SnapshotEvery int `mapstructure:"snapshot_every"`
}

type TelemetryConfig struct {
	Influx InfluxConfig `mapstructure:"influx"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// Load reads config from the YAML file at path. An empty path loads only
// defaults and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("log.file", "")

	v.SetDefault("sim.damage_scale", d.DamageScale)
	v.SetDefault("sim.player_start_weapon", d.PlayerStartWeapon.Def().Key)
	v.SetDefault("sim.player_faction", d.PlayerFaction.String())
	v.SetDefault("sim.player_health", d.PlayerHealth)
	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.barks_enabled", d.BarksEnabled)
	v.SetDefault("sim.seed", 1)

	v.SetDefault("scenario.path", "")
	v.SetDefault("scenario.watch", false)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "./pathfinders.db")
	v.SetDefault("store.snapshot_every", 0)

	v.SetDefault("telemetry.influx.enabled", false)
	v.SetDefault("telemetry.influx.url", "http://localhost:8086")
	v.SetDefault("telemetry.influx.token", "")
	v.SetDefault("telemetry.influx.org", "pathfinders")
	v.SetDefault("telemetry.influx.bucket", "runs")
}

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("config: invalid")

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: sim.tick_rate must be positive, got %d", ErrInvalid, c.Sim.TickRate)
	}
	if c.Sim.DamageScale <= 0 {
		return fmt.Errorf("%w: sim.damage_scale must be positive, got %g", ErrInvalid, c.Sim.DamageScale)
	}
	if c.Store.SnapshotEvery < 0 {
		return fmt.Errorf("%w: store.snapshot_every must not be negative", ErrInvalid)
	}
	if _, err := c.GameConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// GameConfig maps the sim section onto the core tuning.
func (c *Config) GameConfig() (game.Config, error) {
	gc := game.DefaultConfig()
	gc.DamageScale = c.Sim.DamageScale
	gc.BarksEnabled = c.Sim.BarksEnabled
	if c.Sim.PlayerHealth > 0 {
		gc.PlayerHealth = c.Sim.PlayerHealth
	}

	wid, err := game.ParseWeaponID(c.Sim.PlayerStartWeapon)
	if err != nil {
		return gc, fmt.Errorf("sim.player_start_weapon: %w", err)
	}
	gc.PlayerStartWeapon = wid

	f, err := game.ParseFaction(c.Sim.PlayerFaction)
	if err != nil {
		return gc, fmt.Errorf("sim.player_faction: %w", err)
	}
	gc.PlayerFaction = f
	return gc, nil
}

// TickDt is the fixed step length in seconds.
func (c *Config) TickDt() float64 { return 1 / float64(c.Sim.TickRate) }
