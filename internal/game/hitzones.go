package game

import "math"

// HitZone is the body region a bullet struck.
type HitZone uint8

const (
	ZoneHead HitZone = iota
	ZoneTorso
	ZoneLegs
	ZoneArmL
	ZoneArmR
	zoneCount
)

func (z HitZone) String() string {
	switch z {
	case ZoneHead:
		return "head"
	case ZoneTorso:
		return "torso"
	case ZoneLegs:
		return "legs"
	case ZoneArmL:
		return "left arm"
	case ZoneArmR:
		return "right arm"
	default:
		return "?"
	}
}

// Multiplier is the lethality scale of the zone.
func (z HitZone) Multiplier() float64 {
	switch z {
	case ZoneHead:
		return 1.8
	case ZoneTorso:
		return 0.50
	case ZoneLegs:
		return 0.35
	case ZoneArmL, ZoneArmR:
		return 0.40
	default:
		return 1.0
	}
}

// WeaponZoneBias adjusts a zone multiplier per weapon. The M1 Carbine is
// weaker to the head and stronger to the legs; everything else is neutral.
func WeaponZoneBias(id WeaponID, z HitZone) float64 {
	if id == WeaponM1Carbine {
		switch z {
		case ZoneHead:
			return 0.90
		case ZoneLegs:
			return 1.15
		}
	}
	return 1.0
}

// DealtDamage is round(base × zone multiplier × weapon bias × scale).
func DealtDamage(base float64, id WeaponID, z HitZone, scale float64) int {
	return int(math.Round(base * z.Multiplier() * WeaponZoneBias(id, z) * scale))
}

// HitBox is one rig rectangle in the body's local frame: X runs along the
// facing (forward), Y along the right-hand perpendicular.
type HitBox struct {
	Zone HitZone `json:"zone"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

func (hb HitBox) contains(lx, ly float64) bool {
	return lx >= hb.X && lx <= hb.X+hb.W && ly >= hb.Y && ly <= hb.Y+hb.H
}

// HitRig is tested in order; the first matching box decides the zone.
type HitRig [zoneCount]HitBox

// DefaultHitRig lays out the five zones for a w (forward) × h (right) body:
// head slightly forward, legs behind, arms to the sides.
func DefaultHitRig(w, h float64) HitRig {
	f := w * 0.5
	r := h * 0.5
	return HitRig{
		{ZoneHead, +f * 0.35, -r * 0.18, f * 0.28, r * 0.36},
		{ZoneTorso, -f * 0.15, -r * 0.45, f * 0.55, r * 0.90},
		{ZoneLegs, -f * 0.80, -r * 0.40, f * 0.55, r * 0.80},
		{ZoneArmL, -f * 0.10, -r * 0.95, f * 0.40, r * 0.45},
		{ZoneArmR, -f * 0.10, +r * 0.50, f * 0.40, r * 0.45},
	}
}

// ResolveHitZone maps a world impact point onto the rig of a body at pos
// facing facing. Points outside every box count as Torso; the bool reports
// whether a box actually matched.
func ResolveHitZone(rig *HitRig, pos, facing, impact Vec2) (HitZone, bool) {
	fwd := facing.Normalize()
	right := fwd.Right()
	rel := impact.Sub(pos)
	lx, ly := rel.Dot(fwd), rel.Dot(right)
	for _, hb := range rig {
		if hb.contains(lx, ly) {
			return hb.Zone, true
		}
	}
	return ZoneTorso, false
}
