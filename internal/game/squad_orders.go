package game

import "math"

const (
	coverSearchTiles = 6
	coverMaxTiles    = 8.0
)

// issueOrders hands every live member a destination for the committed
// intent. It runs once per commitment, after the coordination delay.
func (w *World) issueOrders(sq *Squad, live []*Soldier, center, contactPos Vec2) {
	sq.intentExecuting = true
	if spk := w.speaker(sq, live); spk != nil {
		w.say(spk, "Go, go!", 1.6)
	}
	if sq.HasLastKnownEnemy {
		sq.Debug.HasEnemy = true
		sq.Debug.EnemyPos = contactPos
	}

	toEnemy := contactPos.Sub(center).Normalize()
	right := toEnemy.Right()
	guard := sq.guardAnchor()
	if guard.Dist(center) < 1 {
		guard = center
	}
	n := len(live)
	supportCount := max(1, n/2)

	for i, s := range live {
		s.clearOrder()
		switch sq.Intent {
		case IntentHold:
			angle := 2 * math.Pi * float64(i) / float64(max(1, n))
			radius := 32 + 8*float64(i%3)
			s.setOrder(guard.Add(FromAngle(angle).Scale(radius)))

		case IntentAdvance:
			side := 1.0
			if i%2 != 0 {
				side = -1
			}
			s.setOrder(contactPos.Add(right.Scale(side * (24 + 8*float64(i/2)))))

		case IntentFlank:
			flankSide := 1.0
			if chance(w.rng, 0.5) {
				flankSide = -1
			}
			flankTarget := contactPos.Add(right.Scale(flankSide * flankWideOffset)).Sub(toEnemy.Scale(flankBackOffset))
			mid := center.Add(toEnemy.Scale(flankSupportDist))
			if cov := w.FindNearestCoverToward(mid, contactPos); cov.Dist(mid) > coverSnapMin {
				mid = cov
				sq.Debug.HasCover = true
				sq.Debug.CoverPos = cov
			}
			if cov := w.FindNearestCoverToward(flankTarget, contactPos); cov.Dist(flankTarget) > coverSnapMin {
				flankTarget = cov
			}
			sq.Debug.HasFlank = true
			sq.Debug.FlankPos = flankTarget
			if i < supportCount {
				s.setOrder(mid)
			} else {
				s.setOrder(flankTarget)
			}

		case IntentRetreat:
			if cov := w.FindNearestCoverToward(s.pos, contactPos); cov.Dist(s.pos) > coverSnapMin {
				s.setOrder(cov)
				sq.Debug.HasCover = true
				sq.Debug.CoverPos = cov
				break
			}
			away := guard
			if s.pos.Dist(contactPos) < s.pos.Dist(guard) {
				away = s.pos.Add(s.pos.Sub(contactPos).Normalize().Scale(retreatAwayDist))
			}
			s.setOrder(away)

		case IntentSearch:
			if sq.HasLastKnownEnemy {
				angle := 2 * math.Pi * float64(i) / float64(max(1, n))
				s.setOrder(sq.LastKnownEnemy.Add(FromAngle(angle).Scale(searchRingRadius)))
			}
		}
	}
	w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "orders", sq.Intent.String(), float64(n))
}

// FindNearestCoverToward returns the centre of the Wall cell within a
// 6-tile window of from (and no further than 8 tiles) whose direction best
// aligns with the threat. It returns from when no Wall cell qualifies.
func (w *World) FindNearestCoverToward(from, threat Vec2) Vec2 {
	return findCoverToward(w.tm, from, threat)
}

func findCoverToward(tm *TileMap, from, threat Vec2) Vec2 {
	best := from
	bestDot := math.Inf(-1)
	toThreat := threat.Sub(from).Normalize()
	bc, br := tm.WorldToCell(from)
	maxDist := tm.TileSize * coverMaxTiles
	for dr := -coverSearchTiles; dr <= coverSearchTiles; dr++ {
		for dc := -coverSearchTiles; dc <= coverSearchTiles; dc++ {
			c, r := bc+dc, br+dr
			if !tm.InBounds(c, r) || tm.Classify(c, r) != TileWall {
				continue
			}
			center := tm.CellCenter(c, r)
			if center.Dist(from) > maxDist {
				continue
			}
			if dot := toThreat.Dot(center.Sub(from).Normalize()); dot > bestDot {
				bestDot = dot
				best = center
			}
		}
	}
	return best
}

// --- Squad scans ---

// beginSquadScan spreads the squad around a scan centre: the leader hangs
// back, the others fan out ahead. Positions that land off walkable ground
// fall back to a jitter around the centre.
func (w *World) beginSquadScan(sq *Squad, center, facing Vec2, radius, duration float64) {
	sq.Scanning = true
	sq.ScanCenter = center
	sq.ScanRadius = radius
	sq.scanTimer = duration

	dir := facing.Normalize()
	right := dir.Right()
	for i, idx := range sq.Members {
		s := w.soldierAt(idx)
		if s == nil {
			continue
		}
		s.inScan = true
		if s.isLeader {
			s.scanPos = center.Sub(dir.Scale(radius * 0.4))
		} else {
			ringR := frand(w.rng, radius*0.3, radius)
			side := 1.0
			if i%2 == 0 {
				side = -1
			}
			sideScale := frand(w.rng, 0.1, 0.8)
			off := dir.Scale(ringR * frand(w.rng, 0.4, 1)).Add(right.Scale(side * sideScale * ringR * 0.6))
			s.scanPos = center.Add(off)
		}
		if c, r := w.tm.WorldToCell(s.scanPos); !w.tm.IsNavigable(c, r) {
			j := radius * 0.3
			s.scanPos = center.Add(V(frand(w.rng, -j, j), frand(w.rng, -j, j)))
		}
	}
	w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "scan", "begin", duration)
	w.log.Trace().Int("squad", sq.ID).Float64("radius", radius).Float64("duration", duration).Msg("squad scan")
}

// tickScan expires a running scan and releases every member's slot.
func (w *World) tickScan(sq *Squad, dt float64) {
	if !sq.Scanning {
		return
	}
	sq.scanTimer -= dt
	if sq.scanTimer > 0 {
		return
	}
	sq.Scanning = false
	for _, idx := range sq.Members {
		if s := w.soldierAt(idx); s != nil {
			s.inScan = false
		}
	}
}
