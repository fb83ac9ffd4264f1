package game

// MissionOutcome is the mission layer's view of how the run ended.
type MissionOutcome int

const (
	OutcomeOngoing MissionOutcome = iota
	OutcomeCleared
	OutcomeFailed
)

func (o MissionOutcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeCleared:
		return "cleared"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the outcome is final.
func (o MissionOutcome) Done() bool { return o != OutcomeOngoing }

// missionStep settles the outcome once: the player going down fails the
// run, the last hostile falling clears it. Worlds without a player never
// fail.
func (w *World) missionStep() {
	if w.outcome.Done() {
		return
	}
	switch {
	case w.player != nil && !w.player.Alive():
		w.outcome = OutcomeFailed
		w.pushOutcomeBark("Mission failed.")
	case w.hadEnemies() && w.LiveEnemies() == 0:
		w.outcome = OutcomeCleared
		w.pushOutcomeBark("Area clear. Good work.")
	default:
		return
	}
	w.simLog.Add(w.tick, "--", w.cfg.PlayerFaction, "world", "outcome", w.outcome.String(), float64(w.counters.EnemiesKilled))
	w.log.Info().Str("outcome", w.outcome.String()).Int("tick", w.tick).
		Int("kills", w.counters.EnemiesKilled).Int("alarm", w.alarm).Msg("mission settled")
}

func (w *World) hadEnemies() bool {
	for _, s := range w.soldiers {
		if AreEnemies(w.cfg.PlayerFaction, s.faction) {
			return true
		}
	}
	return false
}

func (w *World) pushOutcomeBark(text string) {
	if w.player == nil || !w.cfg.BarksEnabled {
		return
	}
	w.barks = append(w.barks, Bark{Pos: w.player.pos, Text: text, TTL: 3})
}
