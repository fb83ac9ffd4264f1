package game

import "fmt"

const (
	woundDuration      = 3.0  // seconds a leg/arm wound lasts after a hit
	recentlyHitSeconds = 3.0  // how long "recently hit" biases behaviour
	legWoundSpeedMul   = 0.65 // applied to movement while a leg wound is active
	armWoundSpreadMul  = 1.6  // applied to weapon spread while an arm wound is active
	aiInertia          = 0.78 // default AI speed cap as a fraction of walk speed
)

// SoldierState is the behaviour state of one combatant.
type SoldierState uint8

const (
	SoldierStateIdle SoldierState = iota
	SoldierStatePatrol
	SoldierStateSearch
	SoldierStateSeek
	SoldierStateAttack
	SoldierStateHoldCover
	SoldierStateHunker
	SoldierStateInvestigate
	SoldierStateFlank
	SoldierStateFlee
	soldierStateCount
)

func (ss SoldierState) String() string {
	switch ss {
	case SoldierStateIdle:
		return "idle"
	case SoldierStatePatrol:
		return "patrol"
	case SoldierStateSearch:
		return "search"
	case SoldierStateSeek:
		return "seek"
	case SoldierStateAttack:
		return "attack"
	case SoldierStateHoldCover:
		return "hold-cover"
	case SoldierStateHunker:
		return "hunker"
	case SoldierStateInvestigate:
		return "investigate"
	case SoldierStateFlank:
		return "flank"
	case SoldierStateFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// Soldier is one combatant, AI or player. Squads and bullets refer to
// soldiers by arena index, never by pointer.
type Soldier struct {
	index    int // arena index, -1 for the player
	label    string
	faction  Faction
	isPlayer bool
	isLeader bool
	squadID  int // -1 when squadless

	pos    Vec2
	facing Vec2
	w, h   float64
	hp     int
	maxHP  int
	rig    HitRig

	visionRange float64
	fovDeg      float64
	walkSpeed   float64
	sprintSpeed float64

	state  SoldierState
	weapon Weapon

	// Navigation.
	path      []Vec2
	pathIndex int
	hasOrder  bool
	orderPos  Vec2

	// Wounds and hit memory.
	legWound         float64
	armWound         float64
	recentlyHit      bool
	recentlyHitTimer float64
	lastShotOrigin   Vec2
	lastHitZone      HitZone
	lastHitTime      float64
	everHit          bool
	corpseRecorded   bool

	// Think and rate-limit timers.
	nextThink    float64
	repathTimer  float64
	barkCooldown float64
	nextCallout  float64

	// Per-state payload.
	patrolTarget    Vec2
	hasPatrolTarget bool
	investigatePos  Vec2
	inScan          bool
	scanPos         Vec2
	threat          Threat
	hasThreat       bool
}

// newSoldier builds a combatant with the faction's stock stats.
func newSoldier(cfg *Config, f Faction, pos Vec2) *Soldier {
	s := &Soldier{
		index:       -1,
		faction:     f,
		squadID:     -1,
		pos:         pos,
		facing:      Vec2{1, 0},
		w:           cfg.PawnSize,
		h:           cfg.PawnSize,
		hp:          f.baseHealth(),
		maxHP:       f.baseHealth(),
		visionRange: f.baseVision(),
		fovDeg:      cfg.VisionFOVDeg,
		walkSpeed:   cfg.AIWalkSpeed,
		sprintSpeed: cfg.AISprintSpeed,
		state:       SoldierStatePatrol,
		pathIndex:   -1,
	}
	s.rig = DefaultHitRig(s.w, s.h)
	return s
}

// newPlayer builds the player combatant from the config.
func newPlayer(cfg *Config, pos Vec2) *Soldier {
	s := newSoldier(cfg, cfg.PlayerFaction, pos)
	s.isPlayer = true
	s.label = "P"
	s.hp = cfg.PlayerHealth
	s.maxHP = cfg.PlayerHealth
	s.walkSpeed = cfg.PlayerWalkSpeed
	s.sprintSpeed = cfg.PlayerSprintSpeed
	s.state = SoldierStateIdle
	s.weapon = NewWeapon(cfg.PlayerStartWeapon, cfg.PlayerMagOverride, cfg.PlayerReserveOverride)
	return s
}

// Alive reports whether the soldier still has health.
func (s *Soldier) Alive() bool { return s.hp > 0 }

func (s *Soldier) Index() int          { return s.index }
func (s *Soldier) Label() string       { return s.label }
func (s *Soldier) Faction() Faction    { return s.faction }
func (s *Soldier) Pos() Vec2           { return s.pos }
func (s *Soldier) Facing() Vec2        { return s.facing }
func (s *Soldier) HP() int             { return s.hp }
func (s *Soldier) State() SoldierState { return s.state }
func (s *Soldier) Weapon() Weapon      { return s.weapon }
func (s *Soldier) SquadID() int        { return s.squadID }

// Order returns the standing order destination and whether it is valid.
func (s *Soldier) Order() (Vec2, bool) { return s.orderPos, s.hasOrder }

func (s *Soldier) String() string {
	return fmt.Sprintf("%s(%s %s hp=%d)", s.label, s.faction, s.state, s.hp)
}

func (s *Soldier) box() AABB { return BoxAround(s.pos, s.w, s.h) }

// effectiveVision is the sight range after the alarm bonus.
func (s *Soldier) effectiveVision(alarm int) float64 {
	return s.visionRange * (1 + 0.12*float64(alarm))
}

// speedMul is the wound multiplier on movement, re-evaluated every tick.
func (s *Soldier) speedMul() float64 {
	if s.legWound > 0 {
		return legWoundSpeedMul
	}
	return 1
}

// spreadRad is the current weapon spread half-angle in radians.
func (s *Soldier) spreadRad() float64 {
	r := s.weapon.ID.Def().SpreadDeg * degToRad
	if s.armWound > 0 {
		r *= armWoundSpreadMul
	}
	return r
}

func (s *Soldier) decayWounds(dt float64) {
	s.legWound = max(0, s.legWound-dt)
	s.armWound = max(0, s.armWound-dt)
}

func (s *Soldier) clearPath() {
	s.path = nil
	s.pathIndex = -1
}

func (s *Soldier) hasPath() bool {
	return len(s.path) > 0 && s.pathIndex >= 0 && s.pathIndex < len(s.path)
}

func (s *Soldier) setOrder(p Vec2) {
	s.hasOrder = true
	s.orderPos = p
}

func (s *Soldier) clearOrder() { s.hasOrder = false }
