package game

// Counters are the run-level numbers the mission layer reads. ShotsFired and
// ShotsHit count the player's own shots; EnemiesKilled counts deaths of
// combatants hostile to the player's faction, whoever fired.
type Counters struct {
	ShotsFired    int `json:"shots_fired"`
	ShotsHit      int `json:"shots_hit"`
	EnemiesKilled int `json:"enemies_killed"`
	IntentCommits int `json:"intent_commits"`
}

// Accuracy returns hits over shots, or 0 before the first shot.
func (c Counters) Accuracy() float64 {
	if c.ShotsFired == 0 {
		return 0
	}
	return float64(c.ShotsHit) / float64(c.ShotsFired)
}

// FactionStats tallies shots, hits and losses for one faction.
type FactionStats struct {
	Fired  int `json:"fired"`
	Hits   int `json:"hits"`
	Losses int `json:"losses"`
}

// HitRate returns hits over rounds fired, or 0 when nothing was fired.
func (fs FactionStats) HitRate() float64 {
	if fs.Fired == 0 {
		return 0
	}
	return float64(fs.Hits) / float64(fs.Fired)
}

const maxAlarm = 5

// RaiseAlarm adds to the alarm level, clamped to 0..5.
func (w *World) RaiseAlarm(n int) {
	prev := w.alarm
	w.alarm = clampInt(w.alarm+n, 0, maxAlarm)
	if w.alarm != prev {
		w.simLog.Add(w.tick, "--", w.cfg.PlayerFaction, "world", "alarm", "", float64(w.alarm))
	}
}

// Alarm returns the current alarm level.
func (w *World) Alarm() int { return w.alarm }

// Counters returns the run counters.
func (w *World) Counters() Counters { return w.counters }

// FactionStats returns the per-faction tallies.
func (w *World) FactionStats(f Faction) FactionStats {
	if f >= factionCount {
		return FactionStats{}
	}
	return w.factionStats[f]
}

// LiveEnemies counts live combatants hostile to the player's faction.
func (w *World) LiveEnemies() int {
	n := 0
	for _, s := range w.soldiers {
		if s.Alive() && AreEnemies(w.cfg.PlayerFaction, s.faction) {
			n++
		}
	}
	return n
}

// LiveCount counts live combatants of one faction.
func (w *World) LiveCount(f Faction) int {
	n := 0
	for _, s := range w.soldiers {
		if s.Alive() && s.faction == f {
			n++
		}
	}
	return n
}
