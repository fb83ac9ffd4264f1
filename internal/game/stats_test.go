package game

import "testing"

func TestCounters_Accuracy(t *testing.T) {
	if (Counters{}).Accuracy() != 0 {
		t.Fatal("no shots should read as zero accuracy")
	}
	c := Counters{ShotsFired: 8, ShotsHit: 2}
	if c.Accuracy() != 0.25 {
		t.Fatalf("accuracy %.2f, want 0.25", c.Accuracy())
	}
	if (FactionStats{Fired: 4, Hits: 1}).HitRate() != 0.25 {
		t.Fatal("hit rate should be hits over fired")
	}
}

func TestRaiseAlarm_Clamped(t *testing.T) {
	w := openWorld(4, 4)
	w.RaiseAlarm(3)
	w.RaiseAlarm(4)
	if w.Alarm() != maxAlarm {
		t.Fatalf("alarm %d, want %d", w.Alarm(), maxAlarm)
	}
	w.RaiseAlarm(-10)
	if w.Alarm() != 0 {
		t.Fatalf("alarm %d, want 0", w.Alarm())
	}
	if n := w.SimLog().CountCategory("world", "alarm"); n != 3 {
		t.Fatalf("expected 3 alarm changes logged, got %d", n)
	}
	w.RaiseAlarm(-1)
	if n := w.SimLog().CountCategory("world", "alarm"); n != 3 {
		t.Fatal("unchanged alarm should not be logged")
	}
}

func TestLiveCounts(t *testing.T) {
	w := openWorld(10, 10)
	spawnAt(w, FactionAxis, V(50, 50), V(1, 0))
	spawnAt(w, FactionMilitia, V(80, 50), V(1, 0))
	dead := spawnAt(w, FactionAxis, V(110, 50), V(1, 0))
	spawnAt(w, FactionRebels, V(140, 50), V(1, 0))
	dead.hp = 0

	if n := w.LiveEnemies(); n != 2 {
		t.Fatalf("LiveEnemies = %d, want 2 (axis + militia alive)", n)
	}
	if n := w.LiveCount(FactionAxis); n != 1 {
		t.Fatalf("LiveCount(axis) = %d, want 1", n)
	}
	if fs := w.FactionStats(Faction(99)); fs != (FactionStats{}) {
		t.Fatal("unknown faction should read as empty stats")
	}
}
