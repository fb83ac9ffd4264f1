package game

// Threat is the best target an observer perceives this tick. Index is the
// arena index of a seen combatant; -1 means the player (when Visible) or a
// sound.
type Threat struct {
	Pos     Vec2 `json:"pos"`
	Index   int  `json:"index"`
	Visible bool `json:"visible"`
}

// CanSee reports whether obs can see point p given the world alarm level.
func (w *World) CanSee(obs *Soldier, p Vec2) bool {
	return canSeePoint(w.tm, obs.pos, obs.facing, obs.effectiveVision(w.alarm), obs.fovDeg, p)
}

// CanHear reports whether obs is inside the current radius of the ping.
func (w *World) CanHear(obs *Soldier, ping SoundPing) bool {
	return ping.live() && obs.pos.Dist(ping.Pos) <= ping.Radius
}

// AcquireThreat scans the player, every live hostile combatant, then every
// live ping. Visual contact always wins: a sound never replaces a seen
// target, it only counts when nothing is visible.
func (w *World) AcquireThreat(obs *Soldier) (Threat, bool) {
	if !obs.Alive() {
		return Threat{}, false
	}
	effRange := obs.effectiveVision(w.alarm)

	var best Threat
	bestScore := -1.0
	seen := false

	consider := func(target *Soldier, idx int) {
		if target == nil || target == obs || !target.Alive() || !AreEnemies(obs.faction, target.faction) {
			return
		}
		if !w.CanSee(obs, target.pos) {
			return
		}
		score := 2 + (effRange-obs.pos.Dist(target.pos))*0.01
		if score > bestScore {
			bestScore = score
			best = Threat{Pos: target.pos, Index: idx, Visible: true}
			seen = true
		}
	}
	consider(w.player, -1)
	for i, s := range w.soldiers {
		consider(s, i)
	}
	if seen {
		return best, true
	}

	heard := false
	for _, p := range w.sounds {
		if !w.CanHear(obs, p) {
			continue
		}
		score := 1 + (p.Radius-obs.pos.Dist(p.Pos))*0.002
		if score > bestScore {
			bestScore = score
			best = Threat{Pos: p.Pos, Index: -1}
			heard = true
		}
	}
	return best, heard
}
