package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

const (
	squadSpawnSpacing   = 24.0
	defaultSquadPatrolR = 220.0
	checkpointMaxR      = 260.0
	playerPingTTLMul    = 0.7
)

// PlayerInput is one tick of player intent.
type PlayerInput struct {
	Move   Vec2 // raw direction, normalised internally
	Aim    Vec2 // world point
	Fire   bool
	Sprint bool
	Sneak  bool
	Reload bool
}

// SquadSpec describes a squad to place.
type SquadSpec struct {
	Faction      Faction
	Count        int
	Home         Vec2
	Role         SquadRole
	RoleAnchor   Vec2    // zero means Home
	PatrolRadius float64 // zero means the default
	Weapon       WeaponID
}

// ErrEmptySquad is returned by PlaceSquad for a count below one.
var ErrEmptySquad = errors.New("game: squad needs at least one member")

// World owns every arena the tactical core mutates and runs the fixed tick
// order.
type World struct {
	cfg Config
	tm  *TileMap
	nav *NavGrid
	rng Rand
	log zerolog.Logger

	simLog   *SimLog
	thoughts *ThoughtLog

	player   *Soldier
	soldiers []*Soldier
	squads   []*Squad

	bullets        []*Bullet
	pendingBullets []*Bullet
	sounds         []SoundPing
	pendingSounds  []SoundPing
	barks          []Bark
	flashes        []*MuzzleFlash
	corpses        []Corpse

	alarm        int
	tick         int
	clock        float64
	counters     Counters
	factionStats [factionCount]FactionStats
	outcome      MissionOutcome
}

// WorldOption customises a World at construction.
type WorldOption func(*World)

// WithLogger attaches a zerolog logger; the default discards everything.
func WithLogger(l zerolog.Logger) WorldOption {
	return func(w *World) { w.log = l }
}

// WithSimLog records structured events into sl.
func WithSimLog(sl *SimLog) WorldOption {
	return func(w *World) { w.simLog = sl }
}

// NewWorld builds an empty world over tm.
func NewWorld(cfg Config, tm *TileMap, rng Rand, opts ...WorldOption) *World {
	if rng == nil {
		rng = NewRand(1)
	}
	w := &World{
		cfg:      cfg,
		tm:       tm,
		nav:      NewNavGrid(tm),
		rng:      rng,
		log:      zerolog.Nop(),
		simLog:   NewSimLog(false),
		thoughts: NewThoughtLog(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// --- Accessors ---

func (w *World) Config() Config          { return w.cfg }
func (w *World) TileMap() *TileMap       { return w.tm }
func (w *World) NavGrid() *NavGrid       { return w.nav }
func (w *World) SimLog() *SimLog         { return w.simLog }
func (w *World) Thoughts() *ThoughtLog   { return w.thoughts }
func (w *World) Player() *Soldier        { return w.player }
func (w *World) Soldiers() []*Soldier    { return w.soldiers }
func (w *World) Bullets() []*Bullet      { return w.bullets }
func (w *World) Flashes() []*MuzzleFlash { return w.flashes }
func (w *World) Corpses() []Corpse       { return w.corpses }
func (w *World) Tick() int               { return w.tick }
func (w *World) Clock() float64          { return w.clock }
func (w *World) Outcome() MissionOutcome { return w.outcome }

// soldierAt returns the combatant at arena index idx, or nil.
func (w *World) soldierAt(idx int) *Soldier {
	if idx < 0 || idx >= len(w.soldiers) {
		return nil
	}
	return w.soldiers[idx]
}

func (w *World) squadOf(s *Soldier) *Squad {
	if s.squadID < 0 || s.squadID >= len(w.squads) {
		return nil
	}
	return w.squads[s.squadID]
}

func (w *World) squadLabel(sq *Squad) string { return fmt.Sprintf("S%d", sq.ID) }

// --- Placement ---

// SpawnPlayer places the player combatant at pos, replacing any previous one.
func (w *World) SpawnPlayer(pos Vec2) *Soldier {
	w.player = newPlayer(&w.cfg, pos)
	w.simLog.Add(w.tick, w.player.label, w.player.faction, "player", "spawn", w.player.weapon.ID.String(), 0)
	return w.player
}

// PlaceSquad spawns spec.Count combatants on a ring around the home point,
// makes the first the leader and lays out two or three patrol checkpoints.
// It returns the new squad's id.
func (w *World) PlaceSquad(spec SquadSpec) (int, error) {
	if spec.Count < 1 {
		return -1, ErrEmptySquad
	}
	if spec.Faction >= factionCount {
		return -1, fmt.Errorf("game: place squad: unknown faction %d", spec.Faction)
	}
	sq := &Squad{
		ID:           len(w.squads),
		Faction:      spec.Faction,
		Leader:       -1,
		Home:         spec.Home,
		Role:         spec.Role,
		RoleAnchor:   spec.RoleAnchor,
		PatrolRadius: spec.PatrolRadius,
		Confidence:   1,
		// Nothing to execute until the first commitment.
		intentExecuting: true,
	}
	if sq.PatrolRadius <= 0 {
		sq.PatrolRadius = defaultSquadPatrolR
	}
	if sq.RoleAnchor.IsZero() {
		sq.RoleAnchor = sq.Home
	}

	for i := 0; i < spec.Count; i++ {
		ang := 2 * math.Pi * float64(i) / float64(spec.Count)
		spawn := sq.Home.Add(FromAngle(ang).Scale(squadSpawnSpacing))
		if c, r := w.tm.WorldToCell(spawn); !w.tm.IsNavigable(c, r) {
			spawn = w.clearSpotNear(sq.Home)
		}
		s := newSoldier(&w.cfg, spec.Faction, spawn)
		s.index = len(w.soldiers)
		s.squadID = sq.ID
		s.label = fmt.Sprintf("%c%d", factionInitial(spec.Faction), s.index)
		wid := spec.Weapon
		if wid == WeaponNone {
			wid = PickFactionWeapon(spec.Faction, w.rng)
		}
		s.weapon = NewWeapon(wid, -1, -1)
		if i == 0 {
			s.isLeader = true
			sq.Leader = s.index
		}
		w.soldiers = append(w.soldiers, s)
		sq.Members = append(sq.Members, s.index)
	}
	sq.initialCount = len(sq.Members)
	sq.lastAliveCount = sq.initialCount

	anchor := sq.anchor()
	maxR := min(sq.PatrolRadius*0.6, checkpointMaxR)
	for n := irand(w.rng, 2, 3); n > 0; n-- {
		cand := anchor.Add(FromAngle(frand(w.rng, 0, 2*math.Pi)).Scale(frand(w.rng, maxR*0.3, maxR)))
		c, r := w.tm.WorldToCell(cand)
		if !w.tm.IsNavigable(c, r) {
			continue
		}
		sq.Checkpoints = append(sq.Checkpoints, w.tm.CellCenter(c, r))
	}
	if len(sq.Checkpoints) > 0 {
		sq.currentGoal = sq.Checkpoints[0]
		sq.Mode = ModeCalm
		sq.modeTimer = frand(w.rng, 3, 8)
	}

	w.squads = append(w.squads, sq)
	w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "placed", sq.Role.String(), float64(spec.Count))
	w.log.Debug().Int("squad", sq.ID).Str("faction", sq.Faction.String()).Int("count", spec.Count).Msg("squad placed")
	return sq.ID, nil
}

// clearSpotNear returns the nearest navigable cell centre to p, searching
// outward ring by ring. It returns p when the whole map is blocked.
func (w *World) clearSpotNear(p Vec2) Vec2 {
	pc, pr := w.tm.WorldToCell(p)
	limit := max(w.tm.Cols, w.tm.Rows)
	for ring := 0; ring <= limit; ring++ {
		for dr := -ring; dr <= ring; dr++ {
			for dc := -ring; dc <= ring; dc++ {
				if max(abs(dc), abs(dr)) != ring {
					continue
				}
				if w.tm.IsNavigable(pc+dc, pr+dr) {
					return w.tm.CellCenter(pc+dc, pr+dr)
				}
			}
		}
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func factionInitial(f Faction) byte {
	switch f {
	case FactionAllies:
		return 'L'
	case FactionAxis:
		return 'A'
	case FactionMilitia:
		return 'M'
	default:
		return 'R'
	}
}

// --- Tick ---

// Step advances the world by dt seconds in the fixed phase order: sounds
// and barks decay, player, squad planners, bullet flight, near misses,
// bullet hits, dead bullet removal, controllers with wound decay,
// separation, mission bookkeeping.
func (w *World) Step(dt float64, in PlayerInput) {
	w.decaySounds(dt)
	w.decayBarks(dt)
	w.ageFlashes()

	w.updatePlayer(dt, in)

	// Pings queued by a phase are heard from the next phase on.
	w.drainSounds()
	for i := range w.squads {
		w.UpdateSquadBrain(i, dt)
	}

	w.moveBullets(dt)
	w.nearMisses()
	w.collideBullets()
	w.removeDeadBullets()

	w.drainSounds()
	for _, s := range w.soldiers {
		if !s.Alive() {
			continue
		}
		w.updateAI(s, dt)
		s.decayWounds(dt)
	}

	w.separate()
	w.missionStep()
	w.logVerbose()

	w.tick++
	w.clock += dt
}

// updatePlayer applies one tick of input to the player combatant.
func (w *World) updatePlayer(dt float64, in PlayerInput) {
	p := w.player
	if p == nil || !p.Alive() {
		return
	}
	p.weapon.Update(dt)
	if in.Reload && p.weapon.StartReload() {
		w.simLog.Add(w.tick, p.label, p.faction, "player", "reload", p.weapon.ID.String(), float64(p.weapon.Reserve))
	}

	speed := w.cfg.PlayerWalkSpeed
	switch {
	case in.Sneak:
		speed = w.cfg.PlayerSneakSpeed
	case in.Sprint:
		speed = w.cfg.PlayerSprintSpeed
	}
	var vel Vec2
	moving := in.Move.LenSq() > 1e-6
	if moving {
		vel = in.Move.Normalize().Scale(speed * p.speedMul())
	}
	w.moveWithCollide(p, vel, dt)

	if aim := in.Aim.Sub(p.pos); aim.Len() > 1 {
		p.facing = aim.Normalize()
	}

	if in.Fire && w.fire(p, in.Aim) {
		w.pushSound(p.pos, w.cfg.GunshotHearTiles*w.cfg.TileSize, w.cfg.HearDecaySeconds*playerPingTTLMul)
	}
	if moving && !in.Sneak {
		tiles := w.cfg.FootstepHearWalkTiles
		if in.Sprint {
			tiles = w.cfg.FootstepHearSprintTiles
		}
		w.pushSound(p.pos, tiles*w.cfg.TileSize, w.cfg.HearDecaySeconds*playerPingTTLMul)
	}
	p.decayWounds(dt)
}

// logVerbose records positions and squad confidence for this tick when the
// event log is verbose.
func (w *World) logVerbose() {
	if !w.simLog.Verbose() {
		return
	}
	for _, s := range w.soldiers {
		if s.Alive() {
			w.simLog.AddVerbose(w.tick, s.label, s.faction, "move", "position",
				fmt.Sprintf("(%.1f,%.1f)", s.pos.X, s.pos.Y), 0)
		}
	}
	for _, sq := range w.squads {
		w.simLog.AddVerbose(w.tick, w.squadLabel(sq), sq.Faction, "squad", "confidence",
			fmt.Sprintf("%.3f", sq.Confidence), sq.Confidence)
	}
}
