package game

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestPlaceSquad_LeaderLabelsAndCheckpoints(t *testing.T) {
	w := openWorld(40, 24)
	id, err := w.PlaceSquad(SquadSpec{Faction: FactionAxis, Count: 4, Home: V(400, 300)})
	if err != nil {
		t.Fatal(err)
	}
	sq := w.Squads()[id]
	if len(sq.Members) != 4 || sq.Leader != sq.Members[0] {
		t.Fatalf("members=%v leader=%d", sq.Members, sq.Leader)
	}
	for i, idx := range sq.Members {
		s := w.Soldiers()[idx]
		if s.SquadID() != id {
			t.Fatalf("member %d has squad %d", i, s.SquadID())
		}
		if !strings.HasPrefix(s.Label(), "A") {
			t.Fatalf("axis label %q", s.Label())
		}
		if d := s.Pos().Dist(sq.Home); d > squadSpawnSpacing+1e-9 {
			t.Fatalf("member %d spawned %.1f from home", i, d)
		}
		if s.Weapon().ID == WeaponNone {
			t.Fatalf("member %d is unarmed", i)
		}
	}
	if n := len(sq.Checkpoints); n < 2 || n > 3 {
		t.Fatalf("expected 2 or 3 checkpoints, got %d", n)
	}
	if sq.PatrolRadius != defaultSquadPatrolR || sq.anchor() != sq.Home {
		t.Fatal("defaults not applied")
	}
}

func TestPlaceSquad_Errors(t *testing.T) {
	w := openWorld(10, 10)
	if _, err := w.PlaceSquad(SquadSpec{Faction: FactionAxis, Count: 0}); !errors.Is(err, ErrEmptySquad) {
		t.Fatalf("expected ErrEmptySquad, got %v", err)
	}
	if _, err := w.PlaceSquad(SquadSpec{Faction: Faction(9), Count: 2}); err == nil {
		t.Fatal("expected an error for an unknown faction")
	}
}

func TestPlaceSquad_FixedWeapon(t *testing.T) {
	w := openWorld(20, 20)
	id, err := w.PlaceSquad(SquadSpec{Faction: FactionMilitia, Count: 3, Home: V(300, 300), Weapon: WeaponDP27})
	if err != nil {
		t.Fatal(err)
	}
	for _, idx := range w.Squads()[id].Members {
		if got := w.Soldiers()[idx].Weapon().ID; got != WeaponDP27 {
			t.Fatalf("weapon %s, want DP-27", got)
		}
	}
}

func TestPlaceSquad_SpawnAvoidsWalls(t *testing.T) {
	w := openWorld(20, 20)
	w.tm.Fill(8, 8, 12, 12, TileWall)
	w.tm.Set(10, 10, TileLand)
	w.nav = NewNavGrid(w.tm)
	id, err := w.PlaceSquad(SquadSpec{Faction: FactionRebels, Count: 4, Home: w.tm.CellCenter(10, 10)})
	if err != nil {
		t.Fatal(err)
	}
	for _, idx := range w.Squads()[id].Members {
		c, r := w.tm.WorldToCell(w.Soldiers()[idx].Pos())
		if !w.tm.IsNavigable(c, r) {
			t.Fatalf("member spawned on blocked cell (%d,%d)", c, r)
		}
	}
}

func TestStep_AdvancesClock(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionAxis, 3, 300, 300))
	ts.RunTicks(30)
	if ts.CurrentTick() != 30 {
		t.Fatalf("tick %d, want 30", ts.CurrentTick())
	}
	if c := ts.World.Clock(); c < 0.49 || c > 0.51 {
		t.Fatalf("clock %.3f, want 0.5", c)
	}
}

func TestStep_DeterministicForSeed(t *testing.T) {
	run := func() Snapshot {
		ts := NewTestSim(
			WithSeed(11),
			WithSquad(FactionAxis, 4, 300, 200),
			WithSquad(FactionRebels, 4, 700, 220),
		)
		ts.RunTicks(600)
		snap := ts.World.Snapshot()
		snap.Barks = nil
		return snap
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two runs with the same seed diverged")
	}
}

func TestPlayer_MovementAndFootsteps(t *testing.T) {
	ts := NewTestSim(WithPlayer(200, 200))
	p := ts.World.Player()
	ts.Input = PlayerInput{Move: V(1, 0), Aim: V(400, 200)}
	ts.RunTicks(60)
	if d := p.Pos().X - 200; d < 59 || d > 61 {
		t.Fatalf("walked %.2f in one second, want ~60", d)
	}
	if len(ts.World.Sounds()) == 0 {
		t.Fatal("walking should leave footstep pings")
	}

	ts.Input = PlayerInput{Move: V(0, 1), Aim: V(400, 200), Sneak: true}
	ts.RunTicks(1)
	before := len(ts.World.Sounds())
	ts.RunTicks(1)
	if len(ts.World.Sounds()) > before {
		t.Fatal("sneaking should not add pings")
	}
}

func TestPlayer_ManualReloadOnly(t *testing.T) {
	ts := NewTestSim(
		WithConfig(func(c *Config) { c.PlayerMagOverride = 1 }),
		WithPlayer(200, 200),
	)
	p := ts.World.Player()
	ts.Input = PlayerInput{Aim: V(400, 200), Fire: true}
	ts.RunTicks(1)
	if p.Weapon().Mag != 0 {
		t.Fatalf("mag %d after firing", p.Weapon().Mag)
	}
	ts.Input = PlayerInput{Aim: V(400, 200)}
	ts.RunTicks(120)
	if p.Weapon().Mag != 0 || p.Weapon().Reloading {
		t.Fatal("player weapon should not auto reload")
	}
	ts.Input.Reload = true
	ts.RunTicks(1)
	ts.Input.Reload = false
	ts.RunTicks(120)
	if p.Weapon().Mag != WeaponWelrod.Def().MagSize {
		t.Fatalf("mag %d after manual reload", p.Weapon().Mag)
	}
	if ts.World.Alarm() != 0 {
		t.Fatal("player fire should not raise the alarm")
	}
}

func TestMission_FailsWhenPlayerDown(t *testing.T) {
	ts := NewTestSim(WithPlayer(200, 200), WithSquad(FactionAxis, 2, 900, 600))
	ts.World.Player().hp = 0
	ts.RunTicks(1)
	if ts.World.Outcome() != OutcomeFailed {
		t.Fatalf("outcome %s, want failed", ts.World.Outcome())
	}
	ts.RunTicks(1)
	if n := ts.SimLog.CountCategory("world", "outcome"); n != 1 {
		t.Fatalf("outcome should settle once, logged %d times", n)
	}
}

func TestSeparate_PushesOverlappingApart(t *testing.T) {
	w := openWorld(20, 20)
	a := spawnAt(w, FactionAxis, V(300, 300), V(1, 0))
	b := spawnAt(w, FactionAxis, V(304, 300), V(1, 0))
	w.separate()
	if d := a.Pos().Dist(b.Pos()); d < w.cfg.PawnSize*0.9-1e-9 {
		t.Fatalf("still overlapping at %.2f", d)
	}
}
