package game

import (
	"math"
	"testing"
)

// contactSim places one squad of f around (300,160) with the player in plain
// view 200 units to the east.
func contactSim(f Faction, count int) *TestSim {
	return NewTestSim(
		WithSeed(42),
		WithSquad(f, count, 300, 160),
		WithPlayer(500, 160),
	)
}

func TestScoreIntents_AxisConfidentVisual(t *testing.T) {
	sc := ScoreIntents(IntentInputs{
		Faction:       FactionAxis,
		Confidence:    1,
		RawConfidence: 1,
		AnyVisual:     true,
		DistToEnemy:   200,
	})
	if sc[IntentFlank] <= sc[IntentHold] || sc[IntentFlank] <= sc[IntentRetreat] {
		t.Fatalf("flank should beat hold and retreat: %v", sc)
	}
	if sc[IntentAdvance] <= sc[IntentHold] || sc[IntentAdvance] <= sc[IntentRetreat] {
		t.Fatalf("advance should beat hold and retreat: %v", sc)
	}
	if best := sc.Best(); best != IntentFlank && best != IntentAdvance {
		t.Fatalf("expected an aggressive intent, got %s", best)
	}
	if math.Abs(sc[IntentFlank]-1.6325) > 1e-9 {
		t.Fatalf("flank score %.4f, want 1.6325", sc[IntentFlank])
	}
}

func TestScoreIntents_MilitiaHeavyLossesRetreat(t *testing.T) {
	for _, visual := range []bool{true, false} {
		sc := ScoreIntents(IntentInputs{
			Faction:          FactionMilitia,
			Confidence:       0.45,
			RawConfidence:    0.55,
			CasualtyFrac:     0.75,
			AnyVisual:        visual,
			DistToEnemy:      200,
			RecentCasualties: 3,
		})
		if best := sc.Best(); best != IntentRetreat {
			t.Fatalf("visual=%v: expected retreat, got %s (%v)", visual, best, sc)
		}
	}
}

func TestScoreIntents_CloseContactFavoursRetreat(t *testing.T) {
	far := ScoreIntents(IntentInputs{Faction: FactionRebels, Confidence: 0.5, RawConfidence: 0.5, DistToEnemy: 400})
	near := ScoreIntents(IntentInputs{Faction: FactionRebels, Confidence: 0.5, RawConfidence: 0.5, DistToEnemy: 100})
	if near[IntentRetreat] <= far[IntentRetreat] {
		t.Fatalf("retreat should rise at close range: near=%.3f far=%.3f", near[IntentRetreat], far[IntentRetreat])
	}
	if near[IntentHold] >= far[IntentHold] {
		t.Fatalf("hold should drop at close range: near=%.3f far=%.3f", near[IntentHold], far[IntentHold])
	}
}

func TestScoreIntents_HeavySuppressionDampensAggression(t *testing.T) {
	in := IntentInputs{Faction: FactionAllies, Confidence: 0.8, RawConfidence: 0.8, AnyVisual: true, DistToEnemy: 300}
	calm := ScoreIntents(in)
	in.SuppressNorm = 0.9
	pinned := ScoreIntents(in)
	if pinned[IntentFlank] >= calm[IntentFlank] || pinned[IntentAdvance] >= calm[IntentAdvance] {
		t.Fatalf("suppression should cut flank and advance: calm=%v pinned=%v", calm, pinned)
	}
	if pinned[IntentHold] <= calm[IntentHold] || pinned[IntentRetreat] <= calm[IntentRetreat] {
		t.Fatalf("suppression should raise hold and retreat: calm=%v pinned=%v", calm, pinned)
	}
}

func TestScoreIntents_NeverNegative(t *testing.T) {
	sc := ScoreIntents(IntentInputs{Faction: FactionMilitia, Confidence: 0, RawConfidence: 0, CasualtyFrac: 1, SuppressNorm: 1, DistToEnemy: 10, RecentCasualties: 5})
	for in, v := range sc {
		if v < 0 {
			t.Fatalf("%s score %.3f is negative", SquadIntent(in), v)
		}
	}
}

func TestIntentScores_BestTieBreak(t *testing.T) {
	var sc IntentScores
	for i := range sc {
		sc[i] = 0.5
	}
	if sc.Best() != IntentHold {
		t.Fatalf("all equal should keep hold, got %s", sc.Best())
	}
	sc[IntentAdvance], sc[IntentFlank] = 0.9, 0.9
	if sc.Best() != IntentAdvance {
		t.Fatalf("advance wins ties against later intents, got %s", sc.Best())
	}
	sc[IntentSearch] = 0.91
	if sc.Best() != IntentSearch {
		t.Fatalf("strictly higher search should win, got %s", sc.Best())
	}
}

func TestSquadBrain_AxisContactCommitsAggressively(t *testing.T) {
	ts := contactSim(FactionAxis, 4)
	if err := ts.Err(); err != nil {
		t.Fatal(err)
	}
	w := ts.World
	w.UpdateSquadBrain(0, TestDt)
	sq := ts.Squad(0)
	if sq.Mode != ModeCombatContact {
		t.Fatalf("mode %s, want contact", sq.Mode)
	}
	if sq.Intent != IntentFlank && sq.Intent != IntentAdvance {
		t.Fatalf("expected flank or advance, got %s", sq.Intent)
	}
	if !sq.HasLastKnownEnemy || sq.LastKnownEnemy.Dist(w.Player().Pos()) > 1 {
		t.Fatalf("last known enemy %v, want the player at %v", sq.LastKnownEnemy, w.Player().Pos())
	}
	if w.Counters().IntentCommits != 1 {
		t.Fatalf("IntentCommits = %d, want 1", w.Counters().IntentCommits)
	}
}

func TestSquadBrain_MilitiaWithHeavyLossesRetreats(t *testing.T) {
	ts := contactSim(FactionMilitia, 4)
	members := ts.Members(0)
	for _, s := range members[:3] {
		s.hp = 0
	}
	ts.World.UpdateSquadBrain(0, TestDt)
	if got := ts.Squad(0).Intent; got != IntentRetreat {
		t.Fatalf("expected retreat, got %s", got)
	}
}

func TestSquadBrain_IntentHeldInsideCommitment(t *testing.T) {
	ts := contactSim(FactionAxis, 4)
	w := ts.World
	sq := ts.Squad(0)
	const dt = 0.1

	w.UpdateSquadBrain(0, dt)
	first := sq.Intent
	window := sq.IntentTimer()
	if window < 4 || window > 7 {
		t.Fatalf("commitment window %.2f outside 4..7", window)
	}

	// Make retreat overwhelming; the plan must not move until the window ends.
	for _, s := range ts.Members(0)[:3] {
		s.hp = 0
	}
	elapsed := 0.0
	for elapsed+dt < window {
		sq.Suppression = suppressMax
		w.UpdateSquadBrain(0, dt)
		elapsed += dt
		if sq.Intent != first {
			t.Fatalf("intent changed from %s to %s after %.1fs of a %.2fs window", first, sq.Intent, elapsed, window)
		}
	}
	if w.Counters().IntentCommits != 1 {
		t.Fatalf("recommitted inside the window: %d commits", w.Counters().IntentCommits)
	}

	for i := 0; i < 20 && w.Counters().IntentCommits == 1; i++ {
		sq.Suppression = suppressMax
		w.UpdateSquadBrain(0, dt)
	}
	if w.Counters().IntentCommits != 2 {
		t.Fatal("expected a fresh commitment once the window expired")
	}
	if sq.Intent != IntentRetreat {
		t.Fatalf("expected retreat after losses, got %s", sq.Intent)
	}
}

func TestSquadBrain_OrdersWaitForCoordination(t *testing.T) {
	ts := contactSim(FactionAxis, 4)
	w := ts.World
	sq := ts.Squad(0)
	w.UpdateSquadBrain(0, TestDt)
	for _, s := range ts.Members(0) {
		if _, ok := s.Order(); ok {
			t.Fatalf("%s got an order before the coordination delay", s.label)
		}
	}
	for i := 0; i < 90 && !sq.intentExecuting; i++ {
		w.UpdateSquadBrain(0, TestDt)
	}
	if !sq.intentExecuting {
		t.Fatal("orders never went out")
	}
	for _, s := range ts.Members(0) {
		if _, ok := s.Order(); !ok {
			t.Fatalf("%s has no order after execution began", s.label)
		}
	}
}

func TestSquadBrain_NoLiveMembersIsNoop(t *testing.T) {
	ts := contactSim(FactionAxis, 2)
	for _, s := range ts.Members(0) {
		s.hp = 0
	}
	ts.World.UpdateSquadBrain(0, TestDt)
	if ts.World.Counters().IntentCommits != 0 {
		t.Fatal("a wiped squad should not plan")
	}
}

func TestSquadBrain_RecentCasualtiesFromInitialBaseline(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionRebels, 3, 300, 160))
	ts.Members(0)[1].hp = 0
	ts.World.UpdateSquadBrain(0, TestDt)
	if got := ts.Squad(0).recentCasualties; got != 1 {
		t.Fatalf("recentCasualties = %d, want 1", got)
	}
}

func TestIssueOrders_AdvanceAlternatesSides(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionAxis, 4, 300, 160))
	w := ts.World
	sq := ts.Squad(0)
	sq.Intent = IntentAdvance
	live := w.liveMembers(sq)
	center, contact := V(300, 160), V(500, 160)
	w.issueOrders(sq, live, center, contact)

	right := contact.Sub(center).Normalize().Right()
	for i, s := range live {
		side := 1.0
		if i%2 != 0 {
			side = -1
		}
		want := contact.Add(right.Scale(side * (24 + 8*float64(i/2))))
		got, ok := s.Order()
		if !ok || got.Dist(want) > 1e-9 {
			t.Fatalf("member %d order %v, want %v", i, got, want)
		}
	}
}

func TestIssueOrders_HoldRingsGuardAnchor(t *testing.T) {
	ts := NewTestSim(WithSquadSpec(SquadSpec{
		Faction: FactionAllies, Count: 3, Home: V(300, 160),
		Role: RoleObjectiveGuard, RoleAnchor: V(200, 200),
	}))
	w := ts.World
	sq := ts.Squad(0)
	sq.Intent = IntentHold
	live := w.liveMembers(sq)
	w.issueOrders(sq, live, V(300, 160), V(600, 160))
	for i, s := range live {
		p, _ := s.Order()
		want := 32 + 8*float64(i%3)
		if d := p.Dist(V(200, 200)); math.Abs(d-want) > 1e-9 {
			t.Fatalf("member %d at %.2f from the anchor, want %.0f", i, d, want)
		}
	}
}

func TestFindNearestCoverToward(t *testing.T) {
	tm := NewTileMap(20, 20, 32)
	tm.Set(12, 10, TileWall) // toward the threat
	tm.Set(8, 10, TileWall)  // away from it
	from := tm.CellCenter(10, 10)
	got := findCoverToward(tm, from, tm.CellCenter(19, 10))
	if got != tm.CellCenter(12, 10) {
		t.Fatalf("cover %v, want the wall toward the threat", got)
	}

	empty := NewTileMap(30, 30, 32)
	p := empty.CellCenter(15, 15)
	if got := findCoverToward(empty, p, V(0, 0)); got != p {
		t.Fatalf("without walls the origin comes back, got %v", got)
	}
}

func TestSquadScan_ExpiresAndReleasesSlots(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionAxis, 3, 300, 160))
	w := ts.World
	sq := ts.Squad(0)
	w.beginSquadScan(sq, V(400, 160), V(1, 0), 120, 1.0)
	for _, s := range ts.Members(0) {
		if !s.inScan {
			t.Fatalf("%s should hold a scan slot", s.label)
		}
	}
	w.tickScan(sq, 0.6)
	if !sq.Scanning {
		t.Fatal("scan ended early")
	}
	w.tickScan(sq, 0.6)
	if sq.Scanning {
		t.Fatal("scan should have expired")
	}
	for _, s := range ts.Members(0) {
		if s.inScan {
			t.Fatalf("%s still holds a scan slot", s.label)
		}
	}
}

func TestCalmCycle_AdvancesModes(t *testing.T) {
	ts := NewTestSim(WithSeed(5), WithSquad(FactionAllies, 4, 400, 300))
	sq := ts.Squad(0)
	seen := map[SquadMode]bool{}
	for i := 0; i < 60*40; i++ {
		ts.World.UpdateSquadBrain(0, TestDt)
		seen[sq.Mode] = true
	}
	for _, m := range []SquadMode{ModeCalm, ModePatrolSweep, ModeReturnToAnchor} {
		if !seen[m] {
			t.Fatalf("calm cycle never reached %s", m)
		}
	}
	if seen[ModeCombatContact] {
		t.Fatal("no enemies: contact mode should never trigger")
	}
}

func TestSquadBrain_LastKnownEnemyLapses(t *testing.T) {
	ts := contactSim(FactionAxis, 4)
	w := ts.World
	sq := ts.Squad(0)
	w.UpdateSquadBrain(0, TestDt)
	if !sq.HasLastKnownEnemy {
		t.Fatal("contact should record the enemy position")
	}

	w.Player().hp = 0
	for i := 0; i < 450; i++ { // 7.5s
		w.UpdateSquadBrain(0, TestDt)
	}
	if !sq.HasLastKnownEnemy {
		t.Fatalf("position should persist briefly after contact, lost at %.2fs", sq.timeSinceContact)
	}
	for i := 0; i < 60; i++ {
		w.UpdateSquadBrain(0, TestDt)
	}
	if sq.HasLastKnownEnemy {
		t.Fatalf("position still valid %.2fs after contact", sq.timeSinceContact)
	}
	if sq.Mode == ModeCombatContact {
		t.Fatal("squad should have left contact mode")
	}
}

func TestSquadBrain_NoOrdersBeforeFirstCommitment(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionAxis, 4, 300, 160))
	ts.RunTicks(120)
	if n := ts.SimLog.CountCategory("squad", "orders"); n != 0 {
		t.Fatalf("%d order rounds issued without any contact", n)
	}
	for _, e := range ts.World.Thoughts().Recent() {
		if e.Message == "Go, go!" {
			t.Fatalf("execution bark at tick %d without a plan", e.Tick)
		}
	}
}
