package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/Garsondee/Pathfinders/internal/scenario"
	"github.com/Garsondee/Pathfinders/internal/store"
	"github.com/rs/zerolog"
)

func twoSides(aliveA, aliveB int) runStats {
	return runStats{
		firstContactTick: 100,
		commits:          map[string]int{"advance": 2},
		fallen:           map[string]struct{}{"A1": {}},
		counters:         game.Counters{ShotsFired: 40, ShotsHit: 10},
		totals:           map[game.Faction]int{game.FactionAxis: 4, game.FactionRebels: 4},
		alive:            map[game.Faction]int{game.FactionAxis: aliveA, game.FactionRebels: aliveB},
	}
}

func TestFirstTick(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "squad", Key: "mode", Value: "calm"},
		{Tick: 9, Category: "squad", Key: "intent", Value: "hold"},
		{Tick: 12, Category: "squad", Key: "intent", Value: "flank"},
	}
	if got := firstTick(entries, "squad", "intent", ""); got != 9 {
		t.Fatalf("first intent = %d, want 9", got)
	}
	if got := firstTick(entries, "squad", "intent", "flank"); got != 12 {
		t.Fatalf("first flank = %d, want 12", got)
	}
	if got := firstTick(entries, "combat", "death", ""); got != -1 {
		t.Fatalf("missing event = %d, want -1", got)
	}
}

func TestDetectStalemate_NoContact(t *testing.T) {
	rs := twoSides(4, 4)
	rs.firstContactTick = -1
	if stale, reason := detectStalemate(rs); stale || reason != "no_contact" {
		t.Fatalf("got %v %q", stale, reason)
	}
}

func TestDetectStalemate_FalseWhenAttritionDecisive(t *testing.T) {
	stale, reason := detectStalemate(twoSides(4, 1))
	if stale {
		t.Fatalf("expected stalemate=false under decisive attrition (reason=%s)", reason)
	}
	if !strings.Contains(reason, "rebels") {
		t.Fatalf("reason should name the beaten faction, got %s", reason)
	}
}

func TestDetectStalemate_ContactWithoutCommitment(t *testing.T) {
	rs := twoSides(4, 4)
	rs.commits = map[string]int{}
	if stale, reason := detectStalemate(rs); !stale || reason != "contact_without_commitment" {
		t.Fatalf("got %v %q", stale, reason)
	}
}

func TestDetectStalemate_LowAccuracy(t *testing.T) {
	rs := twoSides(4, 4)
	rs.counters = game.Counters{ShotsFired: 100, ShotsHit: 2}
	stale, reason := detectStalemate(rs)
	if !stale || !strings.Contains(reason, "high_mutual_survival") {
		t.Fatalf("got %v %q", stale, reason)
	}
}

func TestDetectStalemate_Engaged(t *testing.T) {
	if stale, reason := detectStalemate(twoSides(3, 3)); stale || reason != "engaged" {
		t.Fatalf("got %v %q", stale, reason)
	}
}

func TestFactionCounts(t *testing.T) {
	ts := game.NewTestSim(
		game.WithSquad(game.FactionAxis, 3, 200, 200),
		game.WithSquad(game.FactionMilitia, 2, 900, 600),
	)
	totals, alive := factionCounts(ts.World.Soldiers())
	if totals[game.FactionAxis] != 3 || totals[game.FactionMilitia] != 2 {
		t.Fatalf("totals = %v", totals)
	}
	if alive[game.FactionAxis] != 3 || alive[game.FactionRebels] != 0 {
		t.Fatalf("alive = %v", alive)
	}
}

func TestHelpers(t *testing.T) {
	if avg(7, 2) != 3.5 || avg(1, 0) != 0 {
		t.Fatal("avg")
	}
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("avgTickString(nil) = %q", got)
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("avgTickString = %q", got)
	}
	if got := joinCounts(map[string]int{"hold": 1, "advance": 3}); got != "advance=3,hold=1" {
		t.Fatalf("joinCounts = %q", got)
	}
	if got := joinSet(map[string]struct{}{"R3": {}, "A0": {}}); got != "A0,R3" {
		t.Fatalf("joinSet = %q", got)
	}
	if joinSet(nil) != "none" || joinCounts(nil) != "none" {
		t.Fatal("empty sets should print none")
	}
}

func TestRunScenario_PersistsSnapshots(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	sc := scenario.Default()
	out := sinks{store: st, snapEvery: 60, log: zerolog.Nop()}
	rs, err := runScenario(context.Background(), sc, game.DefaultConfig(), game.TestDt, 1, 5, 180, out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	run, err := st.GetRun(rs.runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !run.Finished || run.Ticks != 180 || run.Seed != 5 {
		t.Fatalf("run row = %+v", run)
	}
	ticks, err := st.SnapshotTicks(rs.runID)
	if err != nil {
		t.Fatalf("snapshot ticks: %v", err)
	}
	if len(ticks) != 3 || ticks[0] != 60 || ticks[2] != 180 {
		t.Fatalf("snapshot ticks = %v", ticks)
	}
	if rs.totals[game.FactionAxis] != 7 {
		t.Fatalf("axis total = %d, want 7", rs.totals[game.FactionAxis])
	}
	if rs.windowSummary == nil || rs.windowSummary.ToTick != 180 {
		t.Fatalf("window summary = %+v", rs.windowSummary)
	}
}

func TestRunScenario_TailAndVerbose(t *testing.T) {
	out := sinks{log: zerolog.Nop(), verbose: true, tail: 5}
	rs, err := runScenario(context.Background(), scenario.Default(), game.DefaultConfig(), game.TestDt, 1, 7, 60, out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(rs.tail, "T=059") || !strings.Contains(rs.tail, "position") {
		t.Fatalf("tail should hold the last ticks' verbose entries:\n%s", rs.tail)
	}
	if strings.Contains(rs.tail, "T=054") {
		t.Fatalf("tail reaches back too far:\n%s", rs.tail)
	}
	if rs.outcomeTick != -1 {
		t.Fatalf("outcome tick = %d, want -1 for an unresolved run", rs.outcomeTick)
	}

	plain, err := runScenario(context.Background(), scenario.Default(), game.DefaultConfig(), game.TestDt, 1, 7, 60, sinks{log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if plain.tail != "" {
		t.Fatal("tail should be empty without -tail")
	}
}
