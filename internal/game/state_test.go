package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func battleSim() *TestSim {
	return NewTestSim(
		WithSeed(21),
		WithTiles(
			"........................",
			"........................",
			"....##..........~~......",
			"....##..........~~......",
			"..........t.............",
			"........................",
			"........................",
			"........................",
		),
		WithPlayer(120, 120),
		WithSquad(FactionAxis, 3, 500, 120),
		WithSquad(FactionRebels, 2, 200, 200),
	)
}

func TestWorldState_RestoreRoundTrip(t *testing.T) {
	ts := battleSim()
	if err := ts.Err(); err != nil {
		t.Fatal(err)
	}
	ts.RunTicks(240)
	st := ts.World.State()

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var decoded WorldState
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	w, err := RestoreWorld(ts.World.Config(), &decoded, NewRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(st, w.State()) {
		t.Fatal("restored world exports a different state")
	}
	if len(w.TileMap().Trunks()) != 1 {
		t.Fatal("trunks should survive the round trip")
	}

	for i := 0; i < 120; i++ {
		w.Step(TestDt, PlayerInput{})
	}
	if w.Tick() != st.Tick+120 {
		t.Fatalf("restored world tick %d", w.Tick())
	}
}

func TestRestoreWorld_RejectsInconsistentState(t *testing.T) {
	good := battleSim().World.State()
	cases := map[string]func(*WorldState){
		"tile count": func(s *WorldState) { s.Grid.Tiles = s.Grid.Tiles[:3] },
		"soldier index": func(s *WorldState) {
			s.Soldiers[0].Index = 7
		},
		"squad id": func(s *WorldState) { s.Squads[1].ID = 0 },
		"member": func(s *WorldState) {
			s.Squads[0].Members = append(s.Squads[0].Members, 99)
		},
	}
	for name, mutate := range cases {
		raw, _ := json.Marshal(good)
		var st WorldState
		if err := json.Unmarshal(raw, &st); err != nil {
			t.Fatal(err)
		}
		mutate(&st)
		if _, err := RestoreWorld(DefaultConfig(), &st, nil); !errors.Is(err, ErrBadState) {
			t.Fatalf("%s: expected ErrBadState, got %v", name, err)
		}
	}
	if _, err := RestoreWorld(DefaultConfig(), nil, nil); !errors.Is(err, ErrBadState) {
		t.Fatal("nil state should be rejected")
	}
}

func TestSnapshot_ExposesCombatantsAndSquads(t *testing.T) {
	ts := battleSim()
	ts.RunTicks(30)
	snap := ts.World.Snapshot()
	if snap.Player == nil || snap.Player.Label != "P" {
		t.Fatal("snapshot should carry the player")
	}
	if len(snap.Combatants) != 5 || len(snap.Squads) != 2 {
		t.Fatalf("combatants=%d squads=%d", len(snap.Combatants), len(snap.Squads))
	}
	for _, c := range snap.Combatants {
		if c.State == "" || c.Weapon == WeaponNone {
			t.Fatalf("incomplete view %+v", c)
		}
	}
	if snap.Tick != 30 {
		t.Fatalf("snapshot tick %d", snap.Tick)
	}
}

func TestDebriefReport_Sections(t *testing.T) {
	ts := battleSim()
	ts.RunTicks(60)
	r := ts.World.DebriefReport()
	for _, want := range []string{"Pathfinders debrief", "shots fired", "enemies killed", "squads:", "S0 axis"} {
		if !strings.Contains(r, want) {
			t.Fatalf("debrief missing %q:\n%s", want, r)
		}
	}
	if ts.World.SoldierReport(99, 0) != "" {
		t.Fatal("unknown soldier should produce an empty report")
	}
	if rep := ts.World.SoldierReport(0, 60); !strings.Contains(rep, "debug report") {
		t.Fatalf("soldier report:\n%s", rep)
	}
}
