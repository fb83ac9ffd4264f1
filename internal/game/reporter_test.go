package game

import (
	"strings"
	"testing"
)

func TestSimReporter_SamplesEverySecond(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionMilitia, 3, 600, 400))
	ts.RunTicks(181)

	r := ts.Reporter
	if len(r.history) != 3 {
		t.Fatalf("samples = %d, want 3", len(r.history))
	}
	last := r.Latest()
	if last.Tick != 180 {
		t.Fatalf("latest tick = %d, want 180", last.Tick)
	}
	if fs := last.Factions[FactionMilitia]; fs.Alive != 3 || fs.Dead != 0 || fs.InContact != 0 {
		t.Fatalf("militia sample = %+v", fs)
	}
	if last.Factions[FactionAxis].Alive != 0 {
		t.Fatal("absent faction should have no members")
	}
}

func TestSimReporter_LatestAndWindowEmpty(t *testing.T) {
	r := NewSimReporter(0)
	if r.windowTicks != reportWindowTicks {
		t.Fatalf("window = %d, want default", r.windowTicks)
	}
	if r.Latest() != nil || r.WindowSummary() != nil {
		t.Fatal("empty reporter should report nothing")
	}
}

func TestSimReporter_WindowDropsOldSamples(t *testing.T) {
	ts := NewTestSim(WithSquad(FactionAxis, 2, 600, 400))
	ts.Reporter = NewSimReporter(120)
	ts.RunTicks(600)

	wr := ts.Reporter.WindowSummary()
	if wr.ToTick != 600 || wr.FromTick != 480 {
		t.Fatalf("window = %d..%d, want 480..600", wr.FromTick, wr.ToTick)
	}
	if wr.SampleCount != 3 {
		t.Fatalf("samples = %d, want 3", wr.SampleCount)
	}
	if fw := wr.Factions[FactionAxis]; !fw.Present || fw.Alive != 2 {
		t.Fatalf("axis window = %+v", fw)
	}
	out := wr.Format()
	if !strings.Contains(out, "window ticks 480..600") || !strings.Contains(out, "axis") {
		t.Fatalf("format:\n%s", out)
	}
	if strings.Contains(out, "rebels") {
		t.Fatalf("absent faction printed:\n%s", out)
	}
}

func TestSimReporter_LogsContactTransitions(t *testing.T) {
	ts := skirmishSim(7)
	ts.RunTicks(600)

	news := ts.SimLog.CountCategory("vision", "contact_new")
	losts := ts.SimLog.CountCategory("vision", "contact_lost")
	if news == 0 {
		t.Fatal("no contact logged")
	}
	// every lost contact was preceded by a new one on the same soldier
	if losts > news {
		t.Fatalf("lost %d > new %d", losts, news)
	}
	if ts.Reporter.Latest() == nil {
		t.Fatal("reporter collected no samples")
	}
}
