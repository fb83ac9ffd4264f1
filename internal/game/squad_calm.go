package game

const (
	calmScanChance   = 0.35
	calmBarkChance   = 0.35
	sweepGoalJitter  = 140.0
	walkerJitter     = 40.0
	returnJitter     = 48.0
	calmScanAhead    = 70.0
	calmScanRadius   = 140.0
	maxSweepWalkers  = 2
	walkerPickTrials = 8
)

// updateCalmCycle drives the no-contact cycle Calm -> PatrolSweep ->
// ReturnToAnchor -> Calm. Calm clears standing orders so members fall back
// to their own patrol logic.
func (w *World) updateCalmCycle(sq *Squad, live []*Soldier, dt float64) {
	sq.modeTimer = max(0, sq.modeTimer-dt)
	anchor := sq.anchor()

	if sq.Mode == ModeCalm {
		for _, s := range live {
			s.clearOrder()
		}
	}
	if sq.modeTimer > 0 {
		return
	}

	switch sq.Mode {
	case ModeCalm:
		if !sq.Scanning && sq.idleScanCooldown <= 0 && chance(w.rng, calmScanChance) {
			from, dir := anchor, V(1, 0)
			if l := w.soldierAt(sq.Leader); l != nil && l.Alive() {
				from, dir = l.pos, l.facing
			}
			w.beginSquadScan(sq, from.Add(dir.Normalize().Scale(calmScanAhead)), dir, calmScanRadius, frand(w.rng, 4.5, 8))
			sq.idleScanCooldown = frand(w.rng, 10, 18)
		}
		sq.Mode = ModePatrolSweep
		sq.modeTimer = frand(w.rng, 4, 8)

		if len(sq.Checkpoints) > 0 {
			sq.currentCheckpoint = (sq.currentCheckpoint + 1) % len(sq.Checkpoints)
			sq.currentGoal = sq.Checkpoints[sq.currentCheckpoint]
		} else {
			sq.currentGoal = anchor.Add(V(frand(w.rng, -sweepGoalJitter, sweepGoalJitter), frand(w.rng, -sweepGoalJitter, sweepGoalJitter)))
		}

		walkers := min(maxSweepWalkers, max(1, len(sq.Members)/3))
		for i := 0; i < walkers; i++ {
			if s := w.pickWalker(sq); s != nil {
				s.setOrder(sq.currentGoal.Add(V(frand(w.rng, -walkerJitter, walkerJitter), frand(w.rng, -walkerJitter, walkerJitter))))
			}
		}
		w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "mode", sq.Mode.String(), float64(walkers))

	case ModePatrolSweep:
		sq.Mode = ModeReturnToAnchor
		sq.modeTimer = frand(w.rng, 3, 6)
		for _, s := range live {
			if s.hasOrder {
				s.orderPos = anchor.Add(V(frand(w.rng, -returnJitter, returnJitter), frand(w.rng, -returnJitter, returnJitter)))
			}
		}
		w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "mode", sq.Mode.String(), 0)

	default:
		sq.Mode = ModeCalm
		sq.modeTimer = frand(w.rng, 6, 14)
		if w.cfg.BarksEnabled && sq.calmBarkTimer <= 0 {
			if chance(w.rng, calmBarkChance) {
				if spk := w.speaker(sq, live); spk != nil {
					w.say(spk, calmBark(sq.Faction), 2.0)
				}
				sq.calmBarkTimer = frand(w.rng, 10, 18)
			} else {
				sq.calmBarkTimer = frand(w.rng, 6, 12)
			}
		}
		w.simLog.Add(w.tick, w.squadLabel(sq), sq.Faction, "squad", "mode", sq.Mode.String(), 0)
	}
}

// pickWalker draws a live non-leader member, giving up after a few tries.
func (w *World) pickWalker(sq *Squad) *Soldier {
	if len(sq.Members) == 0 {
		return nil
	}
	for i := 0; i < walkerPickTrials; i++ {
		idx := sq.Members[w.rng.Intn(len(sq.Members))]
		if idx == sq.Leader {
			continue
		}
		if s := w.soldierAt(idx); s != nil && s.Alive() {
			return s
		}
	}
	return nil
}
