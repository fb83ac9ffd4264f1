package game

import (
	"fmt"
	"strings"
)

// Faction is the side a combatant fights for.
type Faction uint8

const (
	FactionAllies Faction = iota
	FactionAxis
	FactionMilitia
	FactionRebels
	factionCount
)

func (f Faction) String() string {
	switch f {
	case FactionAllies:
		return "allies"
	case FactionAxis:
		return "axis"
	case FactionMilitia:
		return "militia"
	case FactionRebels:
		return "rebels"
	default:
		return "unknown"
	}
}

// ParseFaction maps a case-insensitive name to a Faction.
func ParseFaction(s string) (Faction, error) {
	for f := Faction(0); f < factionCount; f++ {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown faction %q", s)
}

// SameSide reports whether two factions are allied. Axis fights alongside
// the Militia, the Allies alongside the Rebels.
func SameSide(a, b Faction) bool {
	if a == b {
		return true
	}
	axisBloc := func(f Faction) bool { return f == FactionAxis || f == FactionMilitia }
	return axisBloc(a) == axisBloc(b)
}

// AreEnemies is the hostility test used by targeting and bullets.
func AreEnemies(a, b Faction) bool { return !SameSide(a, b) }

// confidenceBias is added to squad confidence after casualties and suppression.
func (f Faction) confidenceBias() float64 {
	switch f {
	case FactionAxis:
		return 0.10
	case FactionAllies:
		return 0.05
	case FactionMilitia:
		return -0.10
	default:
		return 0
	}
}

// baseHealth and baseVision are the per-faction unit stats.
func (f Faction) baseHealth() int {
	if f == FactionAxis {
		return 2
	}
	return 1
}

func (f Faction) baseVision() float64 {
	if f == FactionAxis {
		return 260
	}
	return 220
}
