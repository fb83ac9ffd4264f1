package game

import (
	"fmt"
	"strings"
)

// WeaponID identifies an entry in the weapon table.
type WeaponID uint16

const (
	WeaponNone WeaponID = iota
	WeaponM1911
	WeaponLuger
	WeaponTT33
	WeaponWelrod
	WeaponSten
	WeaponMP40
	WeaponThompson
	WeaponPPSh
	WeaponSuomi
	WeaponM1Carbine
	WeaponKar98k
	WeaponMosin
	WeaponSMLE
	WeaponGarand
	WeaponSVT40
	WeaponAK47
	WeaponFAL
	WeaponDoubleBarrel
	WeaponPumpShotgun
	WeaponDP27
	WeaponBren
	WeaponMG34
	weaponCount
)

// WeaponTier gates which factions field a weapon.
type WeaponTier uint8

const (
	TierBasic WeaponTier = iota
	TierIntermediate
	TierAdvanced
)

func (t WeaponTier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierIntermediate:
		return "intermediate"
	case TierAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// WeaponDef is the static description of a weapon.
type WeaponDef struct {
	ID          WeaponID
	Key         string // config/scenario name
	Name        string // display name
	Tier        WeaponTier
	Ammo        string
	MagSize     int
	Reserve     int     // default reserve rounds
	FireCD      float64 // seconds between shots
	ReloadTime  float64 // seconds
	BaseDamage  float64 // before zone multiplier
	SpreadDeg   float64 // half-angle of the random cone
	Pellets     int     // projectiles per shot
	BulletSpeed float64 // px/s
	MaxRange    float64 // px
}

var weaponTable = [weaponCount]WeaponDef{
	WeaponNone:         {WeaponNone, "none", "Unarmed", TierBasic, "", 0, 0, 0.25, 1.0, 0, 0, 0, 0, 0},
	WeaponM1911:        {WeaponM1911, "m1911", "M1911", TierBasic, ".45 ACP", 7, 21, 0.20, 1.25, 18, 4.0, 1, 560, 520},
	WeaponLuger:        {WeaponLuger, "luger", "Luger P08", TierBasic, "9mm", 8, 24, 0.18, 1.20, 16, 4.5, 1, 600, 520},
	WeaponTT33:         {WeaponTT33, "tt33", "TT-33", TierBasic, "7.62x25", 8, 24, 0.17, 1.15, 15, 4.5, 1, 620, 520},
	WeaponWelrod:       {WeaponWelrod, "welrod", "Welrod (Silenced)", TierIntermediate, "9mm", 6, 18, 0.35, 1.40, 20, 3.5, 1, 520, 560},
	WeaponSten:         {WeaponSten, "sten", "Sten", TierBasic, "9mm", 32, 96, 0.08, 1.60, 12, 7.5, 1, 560, 520},
	WeaponMP40:         {WeaponMP40, "mp40", "MP40", TierIntermediate, "9mm", 32, 96, 0.075, 1.55, 12, 6.5, 1, 580, 540},
	WeaponThompson:     {WeaponThompson, "thompson", "Thompson", TierIntermediate, ".45 ACP", 30, 90, 0.075, 1.70, 13, 6.0, 1, 560, 520},
	WeaponPPSh:         {WeaponPPSh, "ppsh41", "PPSh-41", TierIntermediate, "7.62x25", 35, 105, 0.060, 1.80, 11, 8.0, 1, 620, 520},
	WeaponSuomi:        {WeaponSuomi, "suomi", "Suomi", TierAdvanced, "9mm", 36, 108, 0.065, 1.75, 12, 6.0, 1, 600, 540},
	WeaponM1Carbine:    {WeaponM1Carbine, "m1carbine", "M1 Carbine", TierBasic, ".30 Carbine", 15, 60, 0.14, 1.55, 15, 3.5, 1, 780, 820},
	WeaponKar98k:       {WeaponKar98k, "kar98k", "Kar98k", TierBasic, "7.62", 5, 25, 0.55, 2.10, 42, 2.0, 1, 980, 1100},
	WeaponMosin:        {WeaponMosin, "mosin", "Mosin-Nagant", TierBasic, "7.62x54R", 5, 25, 0.58, 2.10, 44, 2.2, 1, 980, 1150},
	WeaponSMLE:         {WeaponSMLE, "smle", "Lee-Enfield", TierIntermediate, "7.62", 10, 40, 0.45, 2.05, 40, 2.2, 1, 980, 1100},
	WeaponGarand:       {WeaponGarand, "garand", "M1 Garand", TierAdvanced, "7.62", 8, 32, 0.30, 2.10, 38, 2.6, 1, 980, 1050},
	WeaponSVT40:        {WeaponSVT40, "svt40", "SVT-40", TierAdvanced, "7.62x54R", 10, 40, 0.30, 2.15, 36, 2.8, 1, 980, 1050},
	WeaponAK47:         {WeaponAK47, "ak47", "AK-47", TierAdvanced, "7.62x39", 30, 90, 0.10, 1.85, 20, 4.5, 1, 820, 900},
	WeaponFAL:          {WeaponFAL, "fal", "FAL", TierAdvanced, "7.62", 20, 80, 0.12, 1.95, 26, 4.0, 1, 900, 980},
	WeaponDoubleBarrel: {WeaponDoubleBarrel, "doublebarrel", "Double Barrel", TierBasic, "12G", 2, 20, 0.75, 2.40, 10, 10.0, 8, 520, 420},
	WeaponPumpShotgun:  {WeaponPumpShotgun, "pump", "Pump Shotgun", TierIntermediate, "12G", 6, 24, 0.55, 2.60, 10, 9.0, 8, 520, 460},
	WeaponDP27:         {WeaponDP27, "dp27", "DP-27", TierIntermediate, "7.62x54R", 47, 141, 0.11, 2.35, 18, 6.0, 1, 880, 950},
	WeaponBren:         {WeaponBren, "bren", "Bren", TierAdvanced, "7.62", 30, 120, 0.11, 2.25, 18, 5.5, 1, 900, 980},
	WeaponMG34:         {WeaponMG34, "mg34", "MG34", TierAdvanced, "7.62", 50, 150, 0.085, 2.60, 18, 7.0, 1, 920, 980},
}

// Def returns the table entry for id, or Unarmed for unknown ids.
func (id WeaponID) Def() WeaponDef {
	if id >= weaponCount {
		return weaponTable[WeaponNone]
	}
	return weaponTable[id]
}

func (id WeaponID) String() string { return id.Def().Name }

// ParseWeaponID maps a key such as "welrod" or a display name to its id.
func ParseWeaponID(s string) (WeaponID, error) {
	for _, d := range weaponTable {
		if strings.EqualFold(s, d.Key) || strings.EqualFold(s, d.Name) {
			return d.ID, nil
		}
	}
	return WeaponNone, fmt.Errorf("unknown weapon %q", s)
}

// Weapon is a weapon carried by one combatant.
type Weapon struct {
	ID          WeaponID `json:"id"`
	Mag         int      `json:"mag"`
	Reserve     int      `json:"reserve"`
	FireTimer   float64  `json:"fire_timer"`
	Reloading   bool     `json:"reloading"`
	ReloadTimer float64  `json:"reload_timer"`
}

// NewWeapon returns a full weapon. Negative overrides keep the defaults.
func NewWeapon(id WeaponID, magOverride, reserveOverride int) Weapon {
	d := id.Def()
	w := Weapon{ID: id, Mag: d.MagSize, Reserve: d.Reserve}
	if magOverride >= 0 {
		w.Mag = magOverride
	}
	if reserveOverride >= 0 {
		w.Reserve = reserveOverride
	}
	return w
}

// CanFire is false while reloading, cooling down or empty.
func (w *Weapon) CanFire() bool {
	return !w.Reloading && w.FireTimer <= 0 && w.Mag > 0
}

// StartReload begins a reload when the magazine is not full and reserve
// ammunition remains. It returns whether a reload started.
func (w *Weapon) StartReload() bool {
	d := w.ID.Def()
	if w.Reloading || d.MagSize <= 0 || w.Mag >= d.MagSize || w.Reserve <= 0 {
		return false
	}
	w.Reloading = true
	w.ReloadTimer = d.ReloadTime
	return true
}

// Update advances the fire cooldown and any reload in progress.
func (w *Weapon) Update(dt float64) {
	if w.FireTimer > 0 {
		w.FireTimer = max(0, w.FireTimer-dt)
	}
	if !w.Reloading {
		return
	}
	w.ReloadTimer -= dt
	if w.ReloadTimer > 0 {
		return
	}
	need := max(0, w.ID.Def().MagSize-w.Mag)
	take := min(need, w.Reserve)
	w.Mag += take
	w.Reserve -= take
	w.Reloading = false
	w.ReloadTimer = 0
}

// consumeShot spends one round and starts the cooldown. Callers check
// CanFire first.
func (w *Weapon) consumeShot() {
	w.Mag--
	w.FireTimer = w.ID.Def().FireCD
}

// --- Loadouts ---

var factionTiers = [factionCount][2]WeaponTier{
	FactionAllies:  {TierIntermediate, TierAdvanced},
	FactionAxis:    {TierIntermediate, TierAdvanced},
	FactionMilitia: {TierBasic, TierBasic},
	FactionRebels:  {TierBasic, TierIntermediate},
}

var factionPools = [factionCount][]WeaponID{
	FactionAllies:  {WeaponM1911, WeaponSten, WeaponThompson, WeaponM1Carbine, WeaponGarand, WeaponBren, WeaponSMLE},
	FactionAxis:    {WeaponLuger, WeaponMP40, WeaponKar98k, WeaponMG34},
	FactionMilitia: {WeaponTT33, WeaponPPSh, WeaponMosin, WeaponDP27, WeaponAK47},
	FactionRebels:  {WeaponM1911, WeaponSten, WeaponDoubleBarrel, WeaponMosin, WeaponPPSh},
}

// PickFactionWeapon draws a weapon from the faction's pool restricted to its
// tier band, falling back to any weapon in the band and finally the M1911.
func PickFactionWeapon(f Faction, rng Rand) WeaponID {
	if f >= factionCount {
		return WeaponM1911
	}
	lo, hi := factionTiers[f][0], factionTiers[f][1]
	inBand := func(id WeaponID) bool {
		t := id.Def().Tier
		return id != WeaponNone && t >= lo && t <= hi
	}

	var picks []WeaponID
	for _, id := range factionPools[f] {
		if inBand(id) {
			picks = append(picks, id)
		}
	}
	if len(picks) == 0 {
		for id := WeaponID(1); id < weaponCount; id++ {
			if inBand(id) {
				picks = append(picks, id)
			}
		}
	}
	if len(picks) == 0 {
		return WeaponM1911
	}
	return picks[rng.Intn(len(picks))]
}
