package game

import (
	"errors"
	"fmt"
)

// --- Snapshot (read-only view for renderers and the mission layer) ---

// CombatantView is the per-tick public view of one combatant.
type CombatantView struct {
	Index       int
	Label       string
	Faction     Faction
	Player      bool
	Leader      bool
	SquadID     int
	Pos         Vec2
	Facing      Vec2
	HP, MaxHP   int
	State       string
	Weapon      WeaponID
	Mag         int
	Reserve     int
	Reloading   bool
	RecentlyHit bool
	LegWounded  bool
	ArmWounded  bool
	LastHitZone HitZone
	EverHit     bool
	HasOrder    bool
	OrderPos    Vec2
}

// SquadView is the per-tick public view of one squad.
type SquadView struct {
	ID          int
	Faction     Faction
	Mode        SquadMode
	Intent      SquadIntent
	Confidence  float64
	Suppression float64
	Alive       int
	Scanning    bool
	ScanCenter  Vec2
	ScanRadius  float64
	Debug       SquadDebug
}

// Snapshot is everything an outer layer may read after a Step.
type Snapshot struct {
	Tick       int
	Clock      float64
	Alarm      int
	Counters   Counters
	Outcome    MissionOutcome
	Player     *CombatantView
	Combatants []CombatantView
	Squads     []SquadView
	Bullets    []Bullet
	Barks      []Bark
	Sounds     []SoundPing
	Corpses    []Corpse
}

func viewOf(s *Soldier) CombatantView {
	v := CombatantView{
		Index:       s.index,
		Label:       s.label,
		Faction:     s.faction,
		Player:      s.isPlayer,
		Leader:      s.isLeader,
		SquadID:     s.squadID,
		Pos:         s.pos,
		Facing:      s.facing,
		HP:          s.hp,
		MaxHP:       s.maxHP,
		State:       s.state.String(),
		Weapon:      s.weapon.ID,
		Mag:         s.weapon.Mag,
		Reserve:     s.weapon.Reserve,
		Reloading:   s.weapon.Reloading,
		RecentlyHit: s.recentlyHit,
		LegWounded:  s.legWound > 0,
		ArmWounded:  s.armWound > 0,
		LastHitZone: s.lastHitZone,
		EverHit:     s.everHit,
	}
	v.OrderPos, v.HasOrder = s.Order()
	if !s.Alive() {
		v.State = "dead"
	}
	return v
}

// Snapshot copies the current world into a value safe to hold across ticks.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:       w.tick,
		Clock:      w.clock,
		Alarm:      w.alarm,
		Counters:   w.counters,
		Outcome:    w.outcome,
		Combatants: make([]CombatantView, 0, len(w.soldiers)),
		Squads:     make([]SquadView, 0, len(w.squads)),
		Barks:      append([]Bark(nil), w.barks...),
		Sounds:     append([]SoundPing(nil), w.sounds...),
		Corpses:    append([]Corpse(nil), w.corpses...),
	}
	if w.player != nil {
		pv := viewOf(w.player)
		snap.Player = &pv
	}
	for _, s := range w.soldiers {
		snap.Combatants = append(snap.Combatants, viewOf(s))
	}
	for _, sq := range w.squads {
		snap.Squads = append(snap.Squads, SquadView{
			ID:          sq.ID,
			Faction:     sq.Faction,
			Mode:        sq.Mode,
			Intent:      sq.Intent,
			Confidence:  sq.Confidence,
			Suppression: sq.Suppression,
			Alive:       len(w.liveMembers(sq)),
			Scanning:    sq.Scanning,
			ScanCenter:  sq.ScanCenter,
			ScanRadius:  sq.ScanRadius,
			Debug:       sq.Debug,
		})
	}
	snap.Bullets = make([]Bullet, 0, len(w.bullets))
	for _, b := range w.bullets {
		snap.Bullets = append(snap.Bullets, *b)
	}
	return snap
}

// --- Persistent state ---

// SoldierRecord is the serialisable form of a combatant.
type SoldierRecord struct {
	Index       int          `json:"index"`
	Label       string       `json:"label"`
	Faction     Faction      `json:"faction"`
	Player      bool         `json:"player,omitempty"`
	Leader      bool         `json:"leader,omitempty"`
	SquadID     int          `json:"squad_id"`
	Pos         Vec2         `json:"pos"`
	Facing      Vec2         `json:"facing"`
	HP          int          `json:"hp"`
	MaxHP       int          `json:"max_hp"`
	State       SoldierState `json:"state"`
	Weapon      Weapon       `json:"weapon"`
	VisionRange float64      `json:"vision_range"`
	WalkSpeed   float64      `json:"walk_speed"`
	SprintSpeed float64      `json:"sprint_speed"`

	Path      []Vec2 `json:"path,omitempty"`
	PathIndex int    `json:"path_index"`
	HasOrder  bool   `json:"has_order,omitempty"`
	OrderPos  Vec2   `json:"order_pos"`

	LegWound         float64 `json:"leg_wound"`
	ArmWound         float64 `json:"arm_wound"`
	RecentlyHitTimer float64 `json:"recently_hit_timer"`
	LastShotOrigin   Vec2    `json:"last_shot_origin"`
	LastHitZone      HitZone `json:"last_hit_zone"`
	EverHit          bool    `json:"ever_hit,omitempty"`
	CorpseRecorded   bool    `json:"corpse_recorded,omitempty"`
}

// SquadRecord is the serialisable form of a squad.
type SquadRecord struct {
	ID           int       `json:"id"`
	Faction      Faction   `json:"faction"`
	Members      []int     `json:"members"`
	Leader       int       `json:"leader"`
	Home         Vec2      `json:"home"`
	Role         SquadRole `json:"role"`
	RoleAnchor   Vec2      `json:"role_anchor"`
	PatrolRadius float64   `json:"patrol_radius"`

	Mode            SquadMode   `json:"mode"`
	ModeTimer       float64     `json:"mode_timer"`
	Intent          SquadIntent `json:"intent"`
	IntentTimer     float64     `json:"intent_timer"`
	CoordTimer      float64     `json:"coord_timer"`
	IntentExecuting bool        `json:"intent_executing,omitempty"`

	LastKnownEnemy    Vec2    `json:"last_known_enemy"`
	HasLastKnownEnemy bool    `json:"has_last_known_enemy,omitempty"`
	TimeSinceContact  float64 `json:"time_since_contact"`

	Suppression    float64 `json:"suppression"`
	Confidence     float64 `json:"confidence"`
	InitialCount   int     `json:"initial_count"`
	LastAliveCount int     `json:"last_alive_count"`

	Checkpoints       []Vec2 `json:"checkpoints,omitempty"`
	CurrentCheckpoint int    `json:"current_checkpoint"`

	Scanning   bool    `json:"scanning,omitempty"`
	ScanCenter Vec2    `json:"scan_center"`
	ScanRadius float64 `json:"scan_radius"`
	ScanTimer  float64 `json:"scan_timer"`
}

// GridRecord is the tile array of a map plus its trunks.
type GridRecord struct {
	Cols     int        `json:"cols"`
	Rows     int        `json:"rows"`
	TileSize float64    `json:"tile_size"`
	Tiles    []TileKind `json:"tiles"`
	Trunks   []Trunk    `json:"trunks,omitempty"`
}

// WorldState is the full persistent form of a world.
type WorldState struct {
	Tick         int                        `json:"tick"`
	Clock        float64                    `json:"clock"`
	Alarm        int                        `json:"alarm"`
	Outcome      MissionOutcome             `json:"outcome"`
	Counters     Counters                   `json:"counters"`
	FactionStats [factionCount]FactionStats `json:"faction_stats"`
	Grid         GridRecord                 `json:"grid"`
	Player       *SoldierRecord             `json:"player,omitempty"`
	Soldiers     []SoldierRecord            `json:"soldiers"`
	Squads       []SquadRecord              `json:"squads"`
	Bullets      []Bullet                   `json:"bullets,omitempty"`
	Sounds       []SoundPing                `json:"sounds,omitempty"`
	Corpses      []Corpse                   `json:"corpses,omitempty"`
}

// ErrBadState is wrapped by RestoreWorld for inconsistent input.
var ErrBadState = errors.New("game: inconsistent world state")

func recordOf(s *Soldier) SoldierRecord {
	return SoldierRecord{
		Index:            s.index,
		Label:            s.label,
		Faction:          s.faction,
		Player:           s.isPlayer,
		Leader:           s.isLeader,
		SquadID:          s.squadID,
		Pos:              s.pos,
		Facing:           s.facing,
		HP:               s.hp,
		MaxHP:            s.maxHP,
		State:            s.state,
		Weapon:           s.weapon,
		VisionRange:      s.visionRange,
		WalkSpeed:        s.walkSpeed,
		SprintSpeed:      s.sprintSpeed,
		Path:             append([]Vec2(nil), s.path...),
		PathIndex:        s.pathIndex,
		HasOrder:         s.hasOrder,
		OrderPos:         s.orderPos,
		LegWound:         s.legWound,
		ArmWound:         s.armWound,
		RecentlyHitTimer: s.recentlyHitTimer,
		LastShotOrigin:   s.lastShotOrigin,
		LastHitZone:      s.lastHitZone,
		EverHit:          s.everHit,
		CorpseRecorded:   s.corpseRecorded,
	}
}

// State exports the world for persistence. Transient think timers, barks
// and muzzle flashes are not kept.
func (w *World) State() *WorldState {
	st := &WorldState{
		Tick:         w.tick,
		Clock:        w.clock,
		Alarm:        w.alarm,
		Outcome:      w.outcome,
		Counters:     w.counters,
		FactionStats: w.factionStats,
		Grid: GridRecord{
			Cols:     w.tm.Cols,
			Rows:     w.tm.Rows,
			TileSize: w.tm.TileSize,
			Tiles:    w.tm.Tiles(),
			Trunks:   append([]Trunk(nil), w.tm.Trunks()...),
		},
		Sounds:  append([]SoundPing(nil), w.sounds...),
		Corpses: append([]Corpse(nil), w.corpses...),
	}
	if w.player != nil {
		pr := recordOf(w.player)
		st.Player = &pr
	}
	for _, s := range w.soldiers {
		st.Soldiers = append(st.Soldiers, recordOf(s))
	}
	for _, b := range w.bullets {
		st.Bullets = append(st.Bullets, *b)
	}
	for _, sq := range w.squads {
		st.Squads = append(st.Squads, SquadRecord{
			ID:                sq.ID,
			Faction:           sq.Faction,
			Members:           append([]int(nil), sq.Members...),
			Leader:            sq.Leader,
			Home:              sq.Home,
			Role:              sq.Role,
			RoleAnchor:        sq.RoleAnchor,
			PatrolRadius:      sq.PatrolRadius,
			Mode:              sq.Mode,
			ModeTimer:         sq.modeTimer,
			Intent:            sq.Intent,
			IntentTimer:       sq.intentTimer,
			CoordTimer:        sq.coordTimer,
			IntentExecuting:   sq.intentExecuting,
			LastKnownEnemy:    sq.LastKnownEnemy,
			HasLastKnownEnemy: sq.HasLastKnownEnemy,
			TimeSinceContact:  sq.timeSinceContact,
			Suppression:       sq.Suppression,
			Confidence:        sq.Confidence,
			InitialCount:      sq.initialCount,
			LastAliveCount:    sq.lastAliveCount,
			Checkpoints:       append([]Vec2(nil), sq.Checkpoints...),
			CurrentCheckpoint: sq.currentCheckpoint,
			Scanning:          sq.Scanning,
			ScanCenter:        sq.ScanCenter,
			ScanRadius:        sq.ScanRadius,
			ScanTimer:         sq.scanTimer,
		})
	}
	return st
}

func soldierFrom(cfg *Config, r SoldierRecord) *Soldier {
	s := newSoldier(cfg, r.Faction, r.Pos)
	s.index = r.Index
	s.label = r.Label
	s.isPlayer = r.Player
	s.isLeader = r.Leader
	s.squadID = r.SquadID
	s.facing = r.Facing
	s.hp = r.HP
	s.maxHP = r.MaxHP
	s.state = r.State
	s.weapon = r.Weapon
	s.visionRange = r.VisionRange
	s.walkSpeed = r.WalkSpeed
	s.sprintSpeed = r.SprintSpeed
	s.path = append([]Vec2(nil), r.Path...)
	s.pathIndex = r.PathIndex
	s.hasOrder = r.HasOrder
	s.orderPos = r.OrderPos
	s.legWound = r.LegWound
	s.armWound = r.ArmWound
	s.recentlyHitTimer = r.RecentlyHitTimer
	s.recentlyHit = r.RecentlyHitTimer > 0
	s.lastShotOrigin = r.LastShotOrigin
	s.lastHitZone = r.LastHitZone
	s.everHit = r.EverHit
	s.corpseRecorded = r.CorpseRecorded
	if s.facing.IsZero() {
		s.facing = V(1, 0)
	}
	return s
}

// RestoreWorld rebuilds a world from st. Members and leaders must refer to
// soldiers in the arena.
func RestoreWorld(cfg Config, st *WorldState, rng Rand, opts ...WorldOption) (*World, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil state", ErrBadState)
	}
	g := st.Grid
	if g.Cols <= 0 || g.Rows <= 0 || len(g.Tiles) != g.Cols*g.Rows {
		return nil, fmt.Errorf("%w: grid %dx%d with %d tiles", ErrBadState, g.Cols, g.Rows, len(g.Tiles))
	}
	tm := NewTileMap(g.Cols, g.Rows, g.TileSize)
	for i, k := range g.Tiles {
		tm.Set(i%g.Cols, i/g.Cols, k)
	}
	for _, t := range g.Trunks {
		tm.AddTrunk(t.Center, t.Dia)
	}

	w := NewWorld(cfg, tm, rng, opts...)
	w.tick = st.Tick
	w.clock = st.Clock
	w.alarm = st.Alarm
	w.outcome = st.Outcome
	w.counters = st.Counters
	w.factionStats = st.FactionStats

	if st.Player != nil {
		w.player = soldierFrom(&w.cfg, *st.Player)
		w.player.isPlayer = true
		w.player.index = -1
	}
	for i, r := range st.Soldiers {
		if r.Index != i {
			return nil, fmt.Errorf("%w: soldier %d recorded at index %d", ErrBadState, i, r.Index)
		}
		w.soldiers = append(w.soldiers, soldierFrom(&w.cfg, r))
	}
	for i, r := range st.Squads {
		if r.ID != i {
			return nil, fmt.Errorf("%w: squad %d recorded with id %d", ErrBadState, i, r.ID)
		}
		for _, m := range r.Members {
			if w.soldierAt(m) == nil {
				return nil, fmt.Errorf("%w: squad %d member %d out of range", ErrBadState, i, m)
			}
		}
		w.squads = append(w.squads, &Squad{
			ID:                r.ID,
			Faction:           r.Faction,
			Members:           append([]int(nil), r.Members...),
			Leader:            r.Leader,
			Home:              r.Home,
			Role:              r.Role,
			RoleAnchor:        r.RoleAnchor,
			PatrolRadius:      r.PatrolRadius,
			Mode:              r.Mode,
			modeTimer:         r.ModeTimer,
			Intent:            r.Intent,
			intentTimer:       r.IntentTimer,
			coordTimer:        r.CoordTimer,
			intentExecuting:   r.IntentExecuting,
			LastKnownEnemy:    r.LastKnownEnemy,
			HasLastKnownEnemy: r.HasLastKnownEnemy,
			timeSinceContact:  r.TimeSinceContact,
			Suppression:       r.Suppression,
			Confidence:        r.Confidence,
			initialCount:      r.InitialCount,
			lastAliveCount:    r.LastAliveCount,
			Checkpoints:       append([]Vec2(nil), r.Checkpoints...),
			currentCheckpoint: r.CurrentCheckpoint,
			Scanning:          r.Scanning,
			ScanCenter:        r.ScanCenter,
			ScanRadius:        r.ScanRadius,
			scanTimer:         r.ScanTimer,
		})
		if n := len(r.Checkpoints); n > 0 {
			w.squads[i].currentGoal = r.Checkpoints[r.CurrentCheckpoint%n]
		}
	}
	for _, b := range st.Bullets {
		b := b
		w.bullets = append(w.bullets, &b)
	}
	w.sounds = append(w.sounds, st.Sounds...)
	w.corpses = append(w.corpses, st.Corpses...)
	return w, nil
}
