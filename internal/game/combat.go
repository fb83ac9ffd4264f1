package game

import "math"

// --- Combat constants ---

const (
	bulletBox          = 4.0  // side of the solid-collision box around a bullet
	bulletHitPad       = 2.0  // added to half the body width for the hit test
	nearMissPad        = 4.0  // near miss must be outside halfW+pad
	nearMissRadius     = 70.0 // and inside this distance
	nearMissSuppress   = 3.0
	hitSuppress        = 12.0
	shotOriginBackoff  = 40.0 // lastShotOrigin sits this far back along the bullet path
	flashLifetimeTicks = 4
	playerHitThrottle  = 0.45
	playerHurtThrottle = 0.55
)

// Bullet is a projectile in flight. Shooter is an arena index, or -1 when
// the player fired it.
type Bullet struct {
	Pos      Vec2     `json:"pos"`
	Dir      Vec2     `json:"dir"`
	Traveled float64  `json:"traveled"`
	Speed    float64  `json:"speed"`
	MaxRange float64  `json:"max_range"`
	Faction  Faction  `json:"faction"`
	Weapon   WeaponID `json:"weapon"`
	Damage   float64  `json:"damage"`
	Shooter  int      `json:"shooter"`
	Player   bool     `json:"player"`

	dead bool
}

func (b *Bullet) box() AABB { return BoxAround(b.Pos, bulletBox, bulletBox) }

// MuzzleFlash is a short-lived marker at the muzzle of a firing combatant,
// kept for renderers.
type MuzzleFlash struct {
	Pos     Vec2
	Angle   float64
	Faction Faction
	Age     int
}

// Corpse marks where a combatant died.
type Corpse struct {
	Pos     Vec2    `json:"pos"`
	Faction Faction `json:"faction"`
	Tick    int     `json:"tick"`
}

// --- Firing ---

// fire spends one round from s's weapon toward aim and queues max(1, pellets)
// bullets with uniform angular jitter. It returns false when the weapon
// cannot fire.
func (w *World) fire(s *Soldier, aim Vec2) bool {
	if !s.weapon.CanFire() {
		return false
	}
	d := s.weapon.ID.Def()
	base := math.Atan2(aim.Y-s.pos.Y, aim.X-s.pos.X)
	spread := s.spreadRad()
	for p := 0; p < max(1, d.Pellets); p++ {
		w.pendingBullets = append(w.pendingBullets, &Bullet{
			Pos:      s.pos,
			Dir:      FromAngle(base + frand(w.rng, -spread, spread)),
			Speed:    d.BulletSpeed,
			MaxRange: d.MaxRange,
			Faction:  s.faction,
			Weapon:   d.ID,
			Damage:   math.Round(d.BaseDamage),
			Shooter:  s.index,
			Player:   s.isPlayer,
		})
	}
	s.weapon.consumeShot()
	w.flashes = append(w.flashes, &MuzzleFlash{Pos: s.pos, Angle: base, Faction: s.faction})
	w.factionStats[s.faction].Fired++
	if s.isPlayer {
		w.counters.ShotsFired++
	}
	w.simLog.Add(w.tick, s.label, s.faction, "combat", "fire", d.Key, float64(s.weapon.Mag))
	return true
}

// --- Bullet phases ---

// moveBullets drains the pending buffer and advances every bullet.
func (w *World) moveBullets(dt float64) {
	w.bullets = append(w.bullets, w.pendingBullets...)
	w.pendingBullets = w.pendingBullets[:0]
	for _, b := range w.bullets {
		step := b.Speed * dt
		b.Pos = b.Pos.Add(b.Dir.Scale(step))
		b.Traveled += step
	}
}

// nearMisses adds suppression to the squad of every hostile combatant a
// bullet passed close to without hitting.
func (w *World) nearMisses() {
	for _, b := range w.bullets {
		for _, s := range w.soldiers {
			if !s.Alive() || !AreEnemies(b.Faction, s.faction) || s.squadID < 0 {
				continue
			}
			d := s.pos.Dist(b.Pos)
			if d < nearMissRadius && d > s.w*0.5+nearMissPad {
				w.addSuppression(s.squadID, nearMissSuppress)
			}
		}
	}
}

// collideBullets resolves range, geometry and body hits. Each bullet dies
// at most once: the first condition met wins.
func (w *World) collideBullets() {
	for _, b := range w.bullets {
		if b.Traveled > b.MaxRange || w.tm.Collides(b.box()) {
			b.dead = true
			continue
		}
		if p := w.player; p != nil && p.Alive() && AreEnemies(b.Faction, p.faction) && bulletTouches(b, p) {
			w.applyHit(b, p)
			b.dead = true
			continue
		}
		for _, s := range w.soldiers {
			if !s.Alive() || !AreEnemies(b.Faction, s.faction) || !bulletTouches(b, s) {
				continue
			}
			w.applyHit(b, s)
			b.dead = true
			break
		}
	}
}

func bulletTouches(b *Bullet, s *Soldier) bool {
	return s.pos.Dist(b.Pos) < s.w*0.5+bulletHitPad
}

// removeDeadBullets compacts the bullet list in place.
func (w *World) removeDeadBullets() {
	kept := w.bullets[:0]
	for _, b := range w.bullets {
		if !b.dead {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(w.bullets); i++ {
		w.bullets[i] = nil
	}
	w.bullets = kept
}

// applyHit scores b against victim's rig and applies damage, wounds, hit
// memory, suppression, alarm and counters.
func (w *World) applyHit(b *Bullet, v *Soldier) {
	z, _ := ResolveHitZone(&v.rig, v.pos, v.facing, b.Pos)
	dealt := DealtDamage(b.Damage, b.Weapon, z, w.cfg.DamageScale)

	v.hp -= dealt
	v.lastHitZone = z
	v.lastHitTime = w.clock
	v.everHit = true
	v.lastShotOrigin = b.Pos.Sub(b.Dir.Scale(shotOriginBackoff))
	switch z {
	case ZoneLegs:
		v.legWound = max(v.legWound, woundDuration)
	case ZoneArmL, ZoneArmR:
		v.armWound = max(v.armWound, woundDuration)
	}

	w.factionStats[b.Faction].Hits++
	if b.Player {
		w.counters.ShotsHit++
	}
	w.simLog.Add(w.tick, v.label, v.faction, "combat", "hit", z.String(), float64(dealt))

	if v.isPlayer {
		w.calloutPlayer(v.pos, calloutPlayerHurt(z), 1.2, playerHurtThrottle)
	} else {
		if b.Player {
			w.calloutPlayer(w.player.pos, calloutPlayerHit(z), 1.0, playerHitThrottle)
		}
		v.recentlyHit = true
		v.recentlyHitTimer = recentlyHitSeconds
		v.lastShotOrigin = b.Pos
		if v.squadID >= 0 {
			w.addSuppression(v.squadID, hitSuppress)
		}
		w.RaiseAlarm(1)
	}

	if !v.Alive() {
		w.recordDeath(v)
	}
}

// recordDeath drops the corpse marker exactly once and updates counters.
func (w *World) recordDeath(v *Soldier) {
	if v.corpseRecorded {
		return
	}
	v.corpseRecorded = true
	v.clearPath()
	v.clearOrder()
	w.corpses = append(w.corpses, Corpse{Pos: v.pos, Faction: v.faction, Tick: w.tick})
	w.factionStats[v.faction].Losses++
	if AreEnemies(w.cfg.PlayerFaction, v.faction) {
		w.counters.EnemiesKilled++
	}
	w.simLog.Add(w.tick, v.label, v.faction, "combat", "death", v.lastHitZone.String(), 0)
	w.log.Debug().Str("soldier", v.label).Str("faction", v.faction.String()).Int("tick", w.tick).Msg("combatant down")
}

// ageFlashes drops muzzle flashes older than their lifetime.
func (w *World) ageFlashes() {
	kept := w.flashes[:0]
	for _, f := range w.flashes {
		f.Age++
		if f.Age < flashLifetimeTicks {
			kept = append(kept, f)
		}
	}
	w.flashes = kept
}
