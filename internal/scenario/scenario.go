// Package scenario loads battlefield layouts and squad placements from YAML
// and builds game worlds from them.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrNoSquads = errors.New("scenario: no squads")
	ErrNoMap    = errors.New("scenario: empty map")
)

// Cell is a (col, row) tile coordinate written as a two-element list.
type Cell [2]int

// Scenario is one battlefield description.
type Scenario struct {
	Name     string       `yaml:"name"`
	TileSize float64      `yaml:"tile_size"`
	Map      []string     `yaml:"map"`
	Player   *PlayerSpec  `yaml:"player"`
	Squads   []SquadEntry `yaml:"squads"`
}

type PlayerSpec struct {
	Faction string `yaml:"faction"`
	Weapon  string `yaml:"weapon"`
	At      Cell   `yaml:"at"`
}

type SquadEntry struct {
	Faction      string  `yaml:"faction"`
	Role         string  `yaml:"role"`
	Count        int     `yaml:"count"`
	At           Cell    `yaml:"at"`
	Anchor       *Cell   `yaml:"anchor"`
	PatrolRadius float64 `yaml:"patrol_radius"`
	Weapon       string  `yaml:"weapon"`
}

// Default returns the built-in scenario.
func Default() *Scenario {
	sc, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("scenario: built-in scenario is broken: %v", err))
	}
	return sc
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if sc.TileSize <= 0 {
		sc.TileSize = game.DefaultConfig().TileSize
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if len(sc.Map) == 0 {
		return ErrNoMap
	}
	if len(sc.Squads) == 0 {
		return ErrNoSquads
	}
	tm, err := sc.TileMap()
	if err != nil {
		return err
	}
	if p := sc.Player; p != nil {
		if !tm.InBounds(p.At[0], p.At[1]) {
			return fmt.Errorf("scenario: player at %v is off the map", p.At)
		}
		if p.Faction != "" {
			if _, err := game.ParseFaction(p.Faction); err != nil {
				return fmt.Errorf("scenario: player: %w", err)
			}
		}
		if p.Weapon != "" {
			if _, err := game.ParseWeaponID(p.Weapon); err != nil {
				return fmt.Errorf("scenario: player: %w", err)
			}
		}
	}
	for i, e := range sc.Squads {
		if _, err := e.spec(tm); err != nil {
			return fmt.Errorf("scenario: squad %d: %w", i, err)
		}
	}
	return nil
}

// TileMap parses the map rows.
func (sc *Scenario) TileMap() (*game.TileMap, error) {
	tm, err := game.ParseTileRows(sc.Map, sc.TileSize)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return tm, nil
}

func (e SquadEntry) spec(tm *game.TileMap) (game.SquadSpec, error) {
	var spec game.SquadSpec
	f, err := game.ParseFaction(e.Faction)
	if err != nil {
		return spec, err
	}
	role, err := game.ParseSquadRole(e.Role)
	if err != nil {
		return spec, err
	}
	if e.Count < 1 {
		return spec, fmt.Errorf("count must be at least 1, got %d", e.Count)
	}
	if !tm.InBounds(e.At[0], e.At[1]) {
		return spec, fmt.Errorf("position %v is off the map", e.At)
	}
	spec = game.SquadSpec{
		Faction:      f,
		Count:        e.Count,
		Home:         tm.CellCenter(e.At[0], e.At[1]),
		Role:         role,
		PatrolRadius: e.PatrolRadius,
	}
	if e.Anchor != nil {
		if !tm.InBounds(e.Anchor[0], e.Anchor[1]) {
			return spec, fmt.Errorf("anchor %v is off the map", *e.Anchor)
		}
		spec.RoleAnchor = tm.CellCenter(e.Anchor[0], e.Anchor[1])
	}
	if e.Weapon != "" {
		if spec.Weapon, err = game.ParseWeaponID(e.Weapon); err != nil {
			return spec, err
		}
	}
	return spec, nil
}

// Build creates a world for sc. The scenario's tile size, player faction
// and player weapon override the matching fields of cfg.
func Build(sc *Scenario, cfg game.Config, rng game.Rand, log zerolog.Logger, opts ...game.WorldOption) (*game.World, error) {
	tm, err := sc.TileMap()
	if err != nil {
		return nil, err
	}
	cfg.TileSize = sc.TileSize
	if p := sc.Player; p != nil {
		if p.Faction != "" {
			cfg.PlayerFaction, _ = game.ParseFaction(p.Faction)
		}
		if p.Weapon != "" {
			cfg.PlayerStartWeapon, _ = game.ParseWeaponID(p.Weapon)
		}
	}

	w := game.NewWorld(cfg, tm, rng, append([]game.WorldOption{game.WithLogger(log)}, opts...)...)
	if p := sc.Player; p != nil {
		w.SpawnPlayer(tm.CellCenter(p.At[0], p.At[1]))
	}
	for i, e := range sc.Squads {
		spec, err := e.spec(tm)
		if err != nil {
			return nil, fmt.Errorf("scenario: squad %d: %w", i, err)
		}
		if _, err := w.PlaceSquad(spec); err != nil {
			return nil, fmt.Errorf("scenario: squad %d: %w", i, err)
		}
	}
	log.Info().Str("scenario", sc.Name).Int("squads", len(sc.Squads)).
		Int("combatants", len(w.Soldiers())).Msg("scenario built")
	return w, nil
}
