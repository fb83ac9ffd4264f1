package game

import (
	"fmt"
	"strings"
)

// DebriefReport renders the end-of-run summary the viewer copies to the
// clipboard and the headless runner prints.
func (w *World) DebriefReport() string {
	var b strings.Builder
	c := w.counters
	fmt.Fprintf(&b, "--- Pathfinders debrief ---\n")
	fmt.Fprintf(&b, "outcome=%s tick=%d time=%.1fs alarm=%d\n", w.outcome, w.tick, w.clock, w.alarm)
	fmt.Fprintf(&b, "shots fired:    %d\n", c.ShotsFired)
	fmt.Fprintf(&b, "shots hit:      %d (%.0f%%)\n", c.ShotsHit, c.Accuracy()*100)
	fmt.Fprintf(&b, "enemies killed: %d\n", c.EnemiesKilled)
	fmt.Fprintf(&b, "intent commits: %d\n\n", c.IntentCommits)

	b.WriteString("faction   fired  hits  rate  losses  alive\n")
	for f := Faction(0); f < factionCount; f++ {
		fs := w.factionStats[f]
		alive := w.LiveCount(f)
		if fs.Fired == 0 && fs.Losses == 0 && alive == 0 {
			continue
		}
		fmt.Fprintf(&b, "%-8s %6d %5d %4.0f%% %7d %6d\n", f, fs.Fired, fs.Hits, fs.HitRate()*100, fs.Losses, alive)
	}

	if len(w.squads) > 0 {
		b.WriteString("\nsquads:\n")
		for _, sq := range w.squads {
			fmt.Fprintf(&b, "  S%d %-8s alive=%d/%d mode=%s intent=%s conf=%.2f sup=%.0f\n",
				sq.ID, sq.Faction, len(w.liveMembers(sq)), sq.initialCount, sq.Mode, sq.Intent, sq.Confidence, sq.Suppression)
		}
	}

	if recent := w.thoughts.Recent(); len(recent) > 0 {
		b.WriteString("\nlast words:\n")
		start := max(0, len(recent)-8)
		for _, e := range recent[start:] {
			fmt.Fprintf(&b, "  %4d [%s] %s\n", e.Tick, e.Label, e.Message)
		}
	}
	return b.String()
}

// SoldierReport renders the recent event timeline of one combatant from the
// structured log, covering the last lastTicks ticks.
func (w *World) SoldierReport(idx, lastTicks int) string {
	s := w.soldierAt(idx)
	if s == nil {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.tick
	fromTick := max(0, toTick-lastTicks+1)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s debug report ---\n", s.label)
	fmt.Fprintf(&b, "tick_range=[%d..%d] faction=%s leader=%t squad=%d\n", fromTick, toTick, s.faction, s.isLeader, s.squadID)
	fmt.Fprintf(&b, "state=%s hp=%d/%d weapon=%s mag=%d/%d reloading=%t\n",
		s.state, s.hp, s.maxHP, s.weapon.ID, s.weapon.Mag, s.weapon.Reserve, s.weapon.Reloading)
	fmt.Fprintf(&b, "wounds leg=%.1fs arm=%.1fs recentlyHit=%t lastZone=%s\n", s.legWound, s.armWound, s.recentlyHit, s.lastHitZone)
	if p, ok := s.Order(); ok {
		fmt.Fprintf(&b, "order=(%.0f,%.0f) path=%d/%d\n", p.X, p.Y, max(0, s.pathIndex), len(s.path))
	}

	events := 0
	for _, e := range w.simLog.FilterSoldier(s.label) {
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		b.WriteString("  ")
		b.WriteString(e.String())
		b.WriteByte('\n')
		events++
	}
	if events == 0 {
		b.WriteString("(no events in range)\n")
	}
	return b.String()
}
