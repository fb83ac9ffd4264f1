package game

// Config holds every tuning value the simulation reads. It is passed to
// NewWorld; nothing in the package keeps process-wide tuning state.
type Config struct {
	TileSize float64 // world pixels per tile
	PawnSize float64 // square body size of every combatant

	DamageScale float64 // global multiplier applied to every resolved hit

	PlayerStartWeapon     WeaponID
	PlayerMagOverride     int // -1 keeps the weapon default
	PlayerReserveOverride int // -1 keeps the weapon default
	PlayerFaction         Faction
	PlayerHealth          int

	PlayerWalkSpeed   float64
	PlayerSprintSpeed float64
	PlayerSneakSpeed  float64
	AIWalkSpeed       float64
	AISprintSpeed     float64

	GunshotHearTiles        float64
	FootstepHearWalkTiles   float64
	FootstepHearSprintTiles float64
	HearDecaySeconds        float64
	StandoffRange           float64
	VisionFOVDeg            float64

	BarksEnabled bool
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		TileSize:                32,
		PawnSize:                14,
		DamageScale:             0.3,
		PlayerStartWeapon:       WeaponWelrod,
		PlayerMagOverride:       -1,
		PlayerReserveOverride:   -1,
		PlayerFaction:           FactionAllies,
		PlayerHealth:            3,
		PlayerWalkSpeed:         60,
		PlayerSprintSpeed:       100,
		PlayerSneakSpeed:        30,
		AIWalkSpeed:             40,
		AISprintSpeed:           80,
		GunshotHearTiles:        18,
		FootstepHearWalkTiles:   2,
		FootstepHearSprintTiles: 5,
		HearDecaySeconds:        3,
		StandoffRange:           180,
		VisionFOVDeg:            95,
		BarksEnabled:            true,
	}
}
