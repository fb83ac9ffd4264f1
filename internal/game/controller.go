package game

import "math"

// --- Controller tuning ---

const (
	thinkMin, thinkMax   = 0.35, 0.6
	orderArriveDist      = 13.0
	orderDoneDist        = 12.0
	waypointReachDist    = 8.0
	coverMinDist         = 8.0
	hunkerRepath         = 1.0
	searchRepath         = 0.8
	seekRepath           = 0.7
	searchArriveDist     = 32.0
	seekPathMinDist      = 12.0
	seekSteerMinDist     = 6.0
	patrolAtPostDist     = 6.0
	patrolDriftFrac      = 0.7
	investigateReachDist = 8.0
	defaultPatrolRadius  = 200.0
)

// enterState switches s to next. Leaving Investigate for Patrol releases
// the scan slot.
func (w *World) enterState(s *Soldier, next SoldierState) {
	if s.state == next {
		return
	}
	prev := s.state
	if prev == SoldierStateInvestigate && next == SoldierStatePatrol {
		s.inScan = false
	}
	s.state = next
	w.simLog.Add(w.tick, s.label, s.faction, "state", "change", prev.String()+"->"+next.String(), 0)
}

// updateAI runs one controller step for an AI combatant: timers, weapon,
// perception, state selection, per-state movement, path following and
// collision-aware motion.
func (w *World) updateAI(s *Soldier, dt float64) {
	if !s.Alive() {
		return
	}

	s.nextThink -= dt
	s.repathTimer -= dt
	s.barkCooldown = max(0, s.barkCooldown-dt)
	s.recentlyHitTimer -= dt
	if s.recentlyHitTimer <= 0 {
		s.recentlyHit = false
	}
	s.weapon.Update(dt)

	threat, has := w.AcquireThreat(s)
	s.threat, s.hasThreat = threat, has
	sees := has && threat.Visible

	if !has && s.hasOrder && s.orderPos.Dist(s.pos) < orderArriveDist {
		s.clearOrder()
		s.clearPath()
		if s.state == SoldierStateSeek {
			w.enterState(s, SoldierStatePatrol)
		}
	}

	if sees && s.barkCooldown <= 0 && w.cfg.BarksEnabled && chance(w.rng, spottedBarkChance) {
		w.say(s, barkSpottedEnemy(s.faction, w.threatFaction(threat), compass8(s.pos, threat.Pos)), spottedBarkTTL)
		s.barkCooldown = spottedBarkCooldown
	}
	if !has {
		w.rebelIntel(s)
	}

	if s.recentlyHit && !has {
		origin := s.pos
		if s.lastShotOrigin.Dist(s.pos) > 1 {
			origin = s.lastShotOrigin
		}
		if cover := w.FindNearestCoverToward(s.pos, origin); cover.Dist(s.pos) > coverMinDist {
			if !s.hasPath() || s.repathTimer <= 0 {
				w.buildPath(s, cover)
				s.repathTimer = hunkerRepath
			}
			w.enterState(s, SoldierStateHunker)
		}
	}

	if s.nextThink <= 0 {
		s.nextThink = frand(w.rng, thinkMin, thinkMax)
		w.think(s, threat, has)
	}

	desired, maxSpeed := w.stateVelocity(s, threat, has, dt)

	if s.hasPath() {
		to := s.path[s.pathIndex].Sub(s.pos)
		if to.Len() < waypointReachDist {
			s.pathIndex++
			if s.pathIndex >= len(s.path) {
				s.clearPath()
				if s.hasOrder && s.orderPos.Dist(s.pos) < orderDoneDist {
					s.clearOrder()
				}
			}
		} else {
			dir := to.Normalize()
			desired = dir.Scale(maxSpeed)
			s.facing = dir
		}
	}

	w.moveWithCollide(s, desired.Scale(s.speedMul()), dt)

	if s.weapon.Mag <= 0 && !s.weapon.Reloading {
		s.weapon.StartReload()
	}
}

// think picks the behaviour state from the current perception.
func (w *World) think(s *Soldier, threat Threat, has bool) {
	standoff := w.cfg.StandoffRange
	switch {
	case has && threat.Visible:
		d := threat.Pos.Dist(s.pos)
		switch {
		case d > standoff*1.4:
			w.enterState(s, SoldierStateSeek)
		case d < standoff*0.6:
			w.enterState(s, SoldierStateHoldCover)
		default:
			w.enterState(s, SoldierStateAttack)
		}
	case has:
		w.enterState(s, SoldierStateSearch)
		s.investigatePos = threat.Pos
	case s.recentlyHit:
		w.enterState(s, SoldierStateHunker)
	case s.hasOrder:
		w.enterState(s, SoldierStateSeek)
	case s.state != SoldierStatePatrol && s.state != SoldierStateIdle:
		w.enterState(s, SoldierStatePatrol)
	}
}

// stateVelocity returns the desired velocity and speed cap for the
// current state, performing any state-specific side effects (firing,
// scans, path requests).
func (w *World) stateVelocity(s *Soldier, threat Threat, has bool, dt float64) (Vec2, float64) {
	var desired Vec2
	maxSpeed := s.walkSpeed * aiInertia
	sq := w.squadOf(s)

	switch s.state {
	case SoldierStateIdle, SoldierStateHunker, SoldierStateHoldCover:

	case SoldierStatePatrol:
		desired = w.patrol(s, sq, dt)

	case SoldierStateSearch:
		if sq != nil && sq.Scanning && s.inScan {
			w.enterState(s, SoldierStateInvestigate)
			break
		}
		to := s.investigatePos.Sub(s.pos)
		if to.Len() > searchArriveDist {
			if !s.hasPath() || s.repathTimer <= 0 {
				w.buildPath(s, s.investigatePos)
				s.repathTimer = searchRepath
			}
			maxSpeed = s.sprintSpeed
			break
		}
		if sq != nil && s.isLeader && !sq.Scanning {
			dir := to.Normalize()
			if to.Len() < 1e-3 {
				dir = s.facing
			}
			radius := w.cfg.StandoffRange * 0.7
			w.beginSquadScan(sq, s.pos.Add(dir.Scale(radius*0.5)), dir, radius, frand(w.rng, 8, 14))
		}
		w.enterState(s, SoldierStateInvestigate)

	case SoldierStateSeek:
		dest := threat.Pos
		if s.hasOrder {
			dest = s.orderPos
		}
		d := dest.Dist(s.pos)
		if d > seekPathMinDist && (!s.hasPath() || s.repathTimer <= 0) {
			w.buildPath(s, dest)
			s.repathTimer = seekRepath
		}
		maxSpeed = s.sprintSpeed * 0.75
		if !s.hasPath() && d > seekSteerMinDist {
			dir := dest.Sub(s.pos).Normalize()
			desired = dir.Scale(s.walkSpeed * 0.65)
			s.facing = dir
		}

	case SoldierStateAttack:
		if !has || !threat.Visible {
			w.enterState(s, SoldierStateSearch)
			break
		}
		if to := threat.Pos.Sub(s.pos); to.Len() > 1 {
			s.facing = to.Normalize()
		}
		if w.fire(s, threat.Pos) {
			w.pushSound(s.pos, w.cfg.GunshotHearTiles*w.cfg.TileSize, w.cfg.HearDecaySeconds)
			w.RaiseAlarm(1)
		}

	case SoldierStateInvestigate:
		if sq == nil || !sq.Scanning || !s.inScan {
			w.enterState(s, SoldierStatePatrol)
			break
		}
		to := s.scanPos.Sub(s.pos)
		if to.Len() > investigateReachDist {
			dir := to.Normalize()
			desired = dir.Scale(s.walkSpeed * 0.6)
			s.facing = dir
		} else if chance(w.rng, 0.45*dt) {
			s.facing = jitterFacing(w.rng, s.facing, 0.8)
		}

	case SoldierStateFlank, SoldierStateFlee:
		maxSpeed = s.sprintSpeed
	}
	return desired, maxSpeed
}

// patrol keeps s drifting around its squad's anchor.
func (w *World) patrol(s *Soldier, sq *Squad, dt float64) Vec2 {
	anchor, radius := s.pos, defaultPatrolRadius
	if sq != nil {
		anchor, radius = sq.anchor(), sq.PatrolRadius
	}

	need := !s.hasPatrolTarget
	if s.hasPatrolTarget {
		if s.patrolTarget.Dist(anchor) > patrolDriftFrac*radius {
			need = true
		}
		if s.patrolTarget.Dist(s.pos) < patrolAtPostDist {
			if chance(w.rng, 0.25*dt) {
				s.facing = jitterFacing(w.rng, s.facing, 0.5)
			}
			if chance(w.rng, 0.10*dt) {
				need = true
			}
		}
	}

	if need {
		ang := frand(w.rng, 0, 2*math.Pi)
		var leader *Soldier
		if sq != nil {
			leader = w.soldierAt(sq.Leader)
		}
		switch {
		case sq != nil && s.isLeader:
			baseR := min(radius*0.4, 140)
			if sq.Role == RoleReserve {
				baseR = min(radius*0.7, 220)
			}
			s.patrolTarget = anchor.Add(FromAngle(ang).Scale(frand(w.rng, 10, baseR)))
		case leader != nil:
			s.patrolTarget = leader.pos.Add(FromAngle(ang).Scale(frand(w.rng, 3, 26)))
		default:
			s.patrolTarget = s.pos.Add(FromAngle(ang).Scale(frand(w.rng, 2, 22)))
		}
		s.hasPatrolTarget = true
	}

	to := s.patrolTarget.Sub(s.pos)
	if to.Len() <= patrolAtPostDist {
		return Vec2{}
	}
	dir := to.Normalize()
	s.facing = dir
	return dir.Scale(s.walkSpeed * 0.7)
}

// buildPath replaces s's path on success and leaves it untouched on failure.
func (w *World) buildPath(s *Soldier, goal Vec2) bool {
	path, ok := w.nav.FindPath(s.pos, goal)
	if !ok {
		return false
	}
	s.path = path
	s.pathIndex = 0
	return true
}

// moveWithCollide applies vel for dt one axis at a time, cancelling any
// axis whose step would overlap solid geometry.
func (w *World) moveWithCollide(s *Soldier, vel Vec2, dt float64) {
	box := s.box()
	if dx := vel.X * dt; math.Abs(dx) > 1e-4 {
		box.X += dx
		if w.tm.Collides(box) {
			box.X -= dx
		}
	}
	if dy := vel.Y * dt; math.Abs(dy) > 1e-4 {
		box.Y += dy
		if w.tm.Collides(box) {
			box.Y -= dy
		}
	}
	s.pos = box.Center()
}

// separate pushes overlapping live AI combatants apart, splitting the
// displacement and reverting any push into solid geometry.
func (w *World) separate() {
	minSep := w.cfg.PawnSize * 0.9
	for i, a := range w.soldiers {
		if !a.Alive() {
			continue
		}
		for _, b := range w.soldiers[i+1:] {
			if !b.Alive() {
				continue
			}
			diff := b.pos.Sub(a.pos)
			d2 := diff.LenSq()
			if d2 < 1e-4 || d2 > minSep*minSep {
				continue
			}
			d := math.Sqrt(d2)
			push := diff.Scale((minSep - d) * 0.5 / d)
			w.nudge(a, push.Scale(-1))
			w.nudge(b, push)
		}
	}
}

func (w *World) nudge(s *Soldier, delta Vec2) {
	old := s.pos
	s.pos = s.pos.Add(delta)
	if w.tm.Collides(s.box()) {
		s.pos = old
	}
}

// threatFaction returns the faction of the combatant a visual threat points at.
func (w *World) threatFaction(t Threat) Faction {
	if t.Index < 0 {
		if w.player != nil {
			return w.player.faction
		}
		return w.cfg.PlayerFaction
	}
	if s := w.soldierAt(t.Index); s != nil {
		return s.faction
	}
	return w.cfg.PlayerFaction
}

// rebelIntel lets an idle Rebel who sees a friendly player point them at
// the nearest known enemy.
func (w *World) rebelIntel(s *Soldier) {
	p := w.player
	if s.faction != FactionRebels || p == nil || !p.Alive() || !SameSide(s.faction, p.faction) {
		return
	}
	if s.barkCooldown > 0 || !w.cfg.BarksEnabled || !w.CanSee(s, p.pos) {
		return
	}
	enemy, ok := Vec2{}, false
	if sq := w.squadOf(s); sq != nil && sq.HasLastKnownEnemy {
		enemy, ok = sq.LastKnownEnemy, true
	}
	if !ok {
		bestD := math.Inf(1)
		for _, o := range w.soldiers {
			if !o.Alive() || !AreEnemies(p.faction, o.faction) {
				continue
			}
			if d := o.pos.Dist(p.pos); d < bestD {
				bestD, enemy, ok = d, o.pos, true
			}
		}
	}
	switch {
	case ok:
		w.say(s, "Psst. Enemy activity to the "+compass8(p.pos, enemy)+".", intelBarkTTL)
		s.barkCooldown = intelBarkCooldown
	case chance(w.rng, 0.06):
		w.say(s, "Stay low. Roads aren't safe.", intelBarkTTL)
		s.barkCooldown = intelBarkCooldown
	}
}
