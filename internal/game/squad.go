package game

import "fmt"

// SquadIntent is the collective plan a squad commits to while in contact.
type SquadIntent uint8

const (
	IntentHold SquadIntent = iota
	IntentAdvance
	IntentFlank
	IntentRetreat
	IntentSearch
	intentCount
)

func (si SquadIntent) String() string {
	switch si {
	case IntentHold:
		return "hold"
	case IntentAdvance:
		return "advance"
	case IntentFlank:
		return "flank"
	case IntentRetreat:
		return "retreat"
	case IntentSearch:
		return "search"
	default:
		return "unknown"
	}
}

// SquadMode is the calm/contact cycle a squad runs outside intent planning.
type SquadMode uint8

const (
	ModeCalm SquadMode = iota
	ModePatrolSweep
	ModeReturnToAnchor
	ModeCombatContact
)

func (sm SquadMode) String() string {
	switch sm {
	case ModeCalm:
		return "calm"
	case ModePatrolSweep:
		return "patrol-sweep"
	case ModeReturnToAnchor:
		return "return"
	case ModeCombatContact:
		return "contact"
	default:
		return "unknown"
	}
}

// SquadRole is the mission role assigned at placement.
type SquadRole uint8

const (
	RoleNone SquadRole = iota
	RoleObjectiveGuard
	RoleAreaPatrol
	RoleReserve
)

func (r SquadRole) String() string {
	switch r {
	case RoleObjectiveGuard:
		return "objective-guard"
	case RoleAreaPatrol:
		return "area-patrol"
	case RoleReserve:
		return "reserve"
	default:
		return "none"
	}
}

// ParseSquadRole maps a role name to its value; the empty string is RoleNone.
func ParseSquadRole(s string) (SquadRole, error) {
	for r := RoleNone; r <= RoleReserve; r++ {
		if s == r.String() || (s == "" && r == RoleNone) {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown squad role %q", s)
}

// --- Planner constants ---

const (
	suppressDecayPerSec = 12.0
	suppressFull        = 40.0 // suppression that counts as fully pinned
	suppressMax         = 100.0
	contactLullSeconds  = 6.0
	lastKnownLapse      = 8.0
	coverSnapMin        = 24.0
	flankSupportDist    = 140.0
	flankWideOffset     = 220.0
	flankBackOffset     = 60.0
	retreatAwayDist     = 260.0
	searchRingRadius    = 40.0
	worriedBarkChance   = 0.03
)

// Squad groups combatants under a leader. Members and Leader are arena
// indices into the world's soldier list.
type Squad struct {
	ID      int
	Faction Faction
	Members []int
	Leader  int

	Home         Vec2
	Role         SquadRole
	RoleAnchor   Vec2
	PatrolRadius float64

	Mode      SquadMode
	modeTimer float64

	Intent          SquadIntent
	intentTimer     float64 // commitment window
	coordTimer      float64 // coordination delay before orders go out
	intentExecuting bool

	LastKnownEnemy    Vec2
	HasLastKnownEnemy bool
	timeSinceContact  float64
	underFire         bool

	Suppression      float64
	Confidence       float64
	initialCount     int
	lastAliveCount   int
	recentCasualties int

	// Calm cycle.
	Checkpoints       []Vec2
	currentCheckpoint int
	currentGoal       Vec2
	calmBarkTimer     float64
	idleScanCooldown  float64

	// Squad scan.
	Scanning   bool
	ScanCenter Vec2
	ScanRadius float64
	scanTimer  float64

	// Debug points for overlays.
	Debug SquadDebug
}

// SquadDebug exposes the points the last plan was built around.
type SquadDebug struct {
	HasEnemy bool
	EnemyPos Vec2
	HasCover bool
	CoverPos Vec2
	HasFlank bool
	FlankPos Vec2
}

// Squads returns the squad list. Callers must not mutate it.
func (w *World) Squads() []*Squad { return w.squads }

// anchor is where the squad patrols from: the role anchor, or home when the
// squad has no role.
func (sq *Squad) anchor() Vec2 {
	if sq.Role == RoleNone {
		return sq.Home
	}
	return sq.RoleAnchor
}

// guardAnchor is used for hold and retreat orders.
func (sq *Squad) guardAnchor() Vec2 {
	if !sq.RoleAnchor.IsZero() {
		return sq.RoleAnchor
	}
	return sq.Home
}

// IntentTimer returns the remaining commitment window.
func (sq *Squad) IntentTimer() float64 { return sq.intentTimer }

// liveMembers returns the live member soldiers in membership order.
func (w *World) liveMembers(sq *Squad) []*Soldier {
	var out []*Soldier
	for _, idx := range sq.Members {
		if s := w.soldierAt(idx); s != nil && s.Alive() {
			out = append(out, s)
		}
	}
	return out
}

// speaker is the leader if alive, otherwise the first live member.
func (w *World) speaker(sq *Squad, live []*Soldier) *Soldier {
	if l := w.soldierAt(sq.Leader); l != nil && l.Alive() {
		return l
	}
	if len(live) > 0 {
		return live[0]
	}
	return nil
}

func (w *World) addSuppression(squadID int, amount float64) {
	if squadID < 0 || squadID >= len(w.squads) {
		return
	}
	sq := w.squads[squadID]
	sq.Suppression = clamp(sq.Suppression+amount, 0, suppressMax)
}

// --- Intent scoring ---

// IntentInputs is everything intent scoring reads. Confidence is the
// faction-biased value; the loss and confidence flags are taken before the
// bias.
type IntentInputs struct {
	Faction          Faction
	Confidence       float64
	SuppressNorm     float64
	CasualtyFrac     float64
	RawConfidence    float64
	UnderFire        bool
	AnyVisual        bool
	DistToEnemy      float64
	RecentCasualties int
}

// IntentScores holds one utility per intent.
type IntentScores [intentCount]float64

// Best returns the winning intent: Hold by default, replaced only by a
// strictly higher score in the order Advance, Flank, Retreat, Search.
func (sc IntentScores) Best() SquadIntent {
	best := IntentHold
	for _, in := range [...]SquadIntent{IntentAdvance, IntentFlank, IntentRetreat, IntentSearch} {
		if sc[in] > sc[best] {
			best = in
		}
	}
	return best
}

// ScoreIntents computes the utility of each intent.
func ScoreIntents(in IntentInputs) IntentScores {
	c := clamp01(in.Confidence)
	highLoss := in.CasualtyFrac > 0.6
	midLoss := in.CasualtyFrac > 0.3
	lowConf := in.RawConfidence < 0.4
	highConf := in.RawConfidence >= 0.7

	adv, flank, hold, retreat, search := 0.25, 0.25, 0.25, 0.10, 0.05

	confUp := 0.7 + c*0.6
	adv *= confUp
	flank *= confUp
	search *= 0.8 + c*0.3
	retreat *= 1.3 - c*0.6

	if in.UnderFire {
		hold += 0.25
	} else {
		hold += 0.10
	}
	if in.AnyVisual {
		adv += 0.30
		flank += 0.40
	} else {
		adv += 0.10
		flank += 0.10
		search += 0.35
		adv -= 0.05
	}

	switch {
	case in.DistToEnemy < 140:
		retreat += 0.50
		hold -= 0.10
	case in.DistToEnemy < 260:
		adv += 0.20
		flank += 0.20
	default:
		adv += 0.10
	}

	if in.RecentCasualties >= 2 {
		retreat += 0.60
		flank -= 0.20
		search += 0.10
	}

	switch in.Faction {
	case FactionAxis:
		adv *= 1.20
		flank *= 1.30
		retreat *= 0.70
		search *= 0.90
		if highConf && in.AnyVisual {
			flank += 0.25
			adv += 0.10
		}
	case FactionAllies:
		adv *= 1.10
		flank *= 1.05
		hold *= 1.15
		retreat *= 0.95
		search *= 1.15
		if midLoss && !highLoss {
			hold += 0.15
			search += 0.15
			adv -= 0.10
		}
	case FactionRebels:
		adv *= 1.30
		flank *= 1.15
		hold *= 0.85
		retreat *= 0.90
		search *= 0.95
		if highLoss || lowConf {
			adv += 0.20
			retreat += 0.20
		}
	case FactionMilitia:
		adv *= 0.80
		flank *= 0.80
		hold *= 1.15
		retreat *= 1.40
		search *= 1.20
		if highLoss || lowConf {
			retreat += 0.50
			search += 0.20
		}
	}

	if in.SuppressNorm < 0.25 {
		flank += 0.18 * c
		if !in.AnyVisual && c > 0.70 {
			flank += 0.10
		}
	}
	if in.SuppressNorm > 0.65 {
		flank *= 0.55
		adv *= 0.70
		hold += 0.10
		retreat += 0.12
	}

	var sc IntentScores
	sc[IntentHold] = max(0, hold)
	sc[IntentAdvance] = max(0, adv)
	sc[IntentFlank] = max(0, flank)
	sc[IntentRetreat] = max(0, retreat)
	sc[IntentSearch] = max(0, search)
	return sc
}

// --- Brain ---

// UpdateSquadBrain runs one planning step for squad sid: morale and
// perception bookkeeping, intent commitment, order distribution and the
// calm cycle.
func (w *World) UpdateSquadBrain(sid int, dt float64) {
	if sid < 0 || sid >= len(w.squads) {
		return
	}
	sq := w.squads[sid]

	live := w.liveMembers(sq)
	alive := len(live)
	if sq.initialCount <= 0 {
		sq.initialCount = max(1, alive)
	}
	casualtyFrac := 1 - float64(alive)/float64(sq.initialCount)

	sq.Suppression = max(0, sq.Suppression-suppressDecayPerSec*dt)
	supNorm := clamp01(sq.Suppression / suppressFull)
	rawConf := 1 - 0.6*casualtyFrac - 0.4*supNorm
	sq.Confidence = clamp01(rawConf + sq.Faction.confidenceBias())

	if alive == 0 {
		sq.Scanning = false
		return
	}

	sq.intentTimer = max(0, sq.intentTimer-dt)
	sq.coordTimer = max(0, sq.coordTimer-dt)
	sq.timeSinceContact += dt
	sq.calmBarkTimer = max(0, sq.calmBarkTimer-dt)
	sq.idleScanCooldown = max(0, sq.idleScanCooldown-dt)
	w.tickScan(sq, dt)

	sq.underFire = false
	sq.Debug = SquadDebug{}

	var center Vec2
	for _, s := range live {
		center = center.Add(s.pos)
	}
	center = center.Scale(1 / float64(alive))

	if sq.lastAliveCount == 0 {
		sq.lastAliveCount = sq.initialCount
	}
	if alive < sq.lastAliveCount {
		sq.recentCasualties += sq.lastAliveCount - alive
		sq.lastAliveCount = alive
	}

	contact, anyVisual := false, false
	var enemySum Vec2
	samples := 0
	for _, s := range live {
		if s.recentlyHit {
			sq.underFire = true
			sq.timeSinceContact = 0
		}
		if t, ok := w.AcquireThreat(s); ok {
			contact = true
			enemySum = enemySum.Add(t.Pos)
			samples++
			anyVisual = anyVisual || t.Visible
			sq.timeSinceContact = 0
		}
	}
	var enemyPos Vec2
	if samples > 0 {
		enemyPos = enemySum.Scale(1 / float64(samples))
		sq.LastKnownEnemy = enemyPos
		sq.HasLastKnownEnemy = true
		sq.Debug.HasEnemy = true
		sq.Debug.EnemyPos = enemyPos
	} else if sq.timeSinceContact >= lastKnownLapse {
		sq.HasLastKnownEnemy = false
	}

	if contact {
		sq.Mode = ModeCombatContact
		sq.modeTimer = frand(w.rng, 3, 6)
	} else if sq.Mode == ModeCombatContact && sq.timeSinceContact > contactLullSeconds {
		sq.Mode = ModeCalm
		sq.modeTimer = frand(w.rng, 4, 10)
	}

	if contact && sq.intentTimer <= 0 {
		scores := ScoreIntents(IntentInputs{
			Faction:          sq.Faction,
			Confidence:       sq.Confidence,
			SuppressNorm:     supNorm,
			CasualtyFrac:     casualtyFrac,
			RawConfidence:    rawConf,
			UnderFire:        sq.underFire,
			AnyVisual:        anyVisual,
			DistToEnemy:      enemyPos.Dist(center),
			RecentCasualties: sq.recentCasualties,
		})
		w.commitIntent(sq, scores.Best(), live)
	}

	if !sq.intentExecuting && sq.coordTimer > 0 {
		if (sq.Intent == IntentFlank || sq.Intent == IntentAdvance) && chance(w.rng, worriedBarkChance) {
			for _, s := range live {
				if !s.isLeader {
					w.say(s, "What do we do!?", 1.8)
					break
				}
			}
		}
		return
	}

	if !sq.intentExecuting && sq.coordTimer <= 0 {
		contactPos := sq.LastKnownEnemy
		if samples > 0 {
			contactPos = enemyPos
		}
		w.issueOrders(sq, live, center, contactPos)
	}

	if !contact {
		w.updateCalmCycle(sq, live, dt)
	}
}

// commitIntent locks in a new plan and starts the coordination delay.
func (w *World) commitIntent(sq *Squad, in SquadIntent, live []*Soldier) {
	sq.Intent = in
	sq.intentExecuting = false
	sq.intentTimer = frand(w.rng, 4, 7)
	sq.coordTimer = frand(w.rng, 0.6, 1.2)
	sq.recentCasualties = 0
	w.counters.IntentCommits++

	spk := w.speaker(sq, live)
	if spk != nil {
		w.say(spk, planBark(sq.Faction, in), 2.0)
	}
	w.simLog.Add(w.tick, fmt.Sprintf("S%d", sq.ID), sq.Faction, "squad", "intent", in.String(), sq.Confidence)
	w.log.Debug().Int("squad", sq.ID).Str("faction", sq.Faction.String()).Str("intent", in.String()).
		Float64("confidence", sq.Confidence).Int("tick", w.tick).Msg("intent committed")
}
