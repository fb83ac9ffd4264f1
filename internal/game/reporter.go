package game

import (
	"fmt"
	"strings"
)

const (
	// reportWindowTicks is the default sliding window for recent-behaviour
	// reports (~10s at 60TPS).
	reportWindowTicks  = 600
	reportEveryTicks   = 60
	detachedLeaderDist = 200.0
)

// FactionSample is one faction's tallies at a report tick.
type FactionSample struct {
	Alive       int
	Dead        int
	Wounded     int // below max health but alive
	InContact   int // live members that currently see an enemy
	Stalled     int // seeing an enemy while still idle or patrolling
	Detached    int // squad in contact, member blind and far from the leader
	Suppression float64
	Confidence  float64
	squads      int
}

// SimReport is a snapshot of the behaviour tallies at one tick.
type SimReport struct {
	Tick     int
	Factions [factionCount]FactionSample
	Intents  map[SquadIntent]int // squads in contact, by intent
	States   map[SoldierState]int
}

// SimReporter watches a world tick by tick. It logs contact transitions to
// the world's SimLog and samples behaviour tallies for windowed summaries.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	every       int
	contact     []bool
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks, every: reportEveryTicks}
}

// Observe must be called once after every Step.
func (r *SimReporter) Observe(w *World) {
	tick := w.tick - 1
	for i, s := range w.soldiers {
		if i >= len(r.contact) {
			r.contact = append(r.contact, false)
		}
		had := r.contact[i]
		has := s.Alive() && s.hasThreat && s.threat.Visible
		switch {
		case has && !had:
			w.simLog.Add(tick, s.label, s.faction, "vision", "contact_new",
				fmt.Sprintf("spotted at (%.0f,%.0f)", s.threat.Pos.X, s.threat.Pos.Y), 0)
		case !has && had:
			w.simLog.Add(tick, s.label, s.faction, "vision", "contact_lost", "", 0)
		}
		r.contact[i] = has
	}
	if w.tick%r.every == 0 {
		r.Collect(w)
	}
}

// Collect gathers a sample from the current world.
func (r *SimReporter) Collect(w *World) {
	rep := SimReport{
		Tick:    w.tick,
		Intents: map[SquadIntent]int{},
		States:  map[SoldierState]int{},
	}
	for _, s := range w.soldiers {
		fs := &rep.Factions[s.faction]
		if !s.Alive() {
			fs.Dead++
			continue
		}
		fs.Alive++
		rep.States[s.state]++
		if s.hp < s.maxHP {
			fs.Wounded++
		}
		sees := s.hasThreat && s.threat.Visible
		if sees {
			fs.InContact++
			if s.state == SoldierStateIdle || s.state == SoldierStatePatrol {
				fs.Stalled++
			}
		}
		if sq := w.squadOf(s); sq != nil && sq.Mode == ModeCombatContact && !s.hasThreat && !s.isLeader {
			if l := w.soldierAt(sq.Leader); l != nil && l.Alive() && l.pos.Dist(s.pos) > detachedLeaderDist {
				fs.Detached++
			}
		}
	}
	for _, sq := range w.squads {
		if len(w.liveMembers(sq)) == 0 {
			continue
		}
		fs := &rep.Factions[sq.Faction]
		fs.Suppression += sq.Suppression
		fs.Confidence += sq.Confidence
		fs.squads++
		if sq.Mode == ModeCombatContact {
			rep.Intents[sq.Intent]++
		}
	}
	for f := range rep.Factions {
		if n := rep.Factions[f].squads; n > 0 {
			rep.Factions[f].Suppression /= float64(n)
			rep.Factions[f].Confidence /= float64(n)
		}
	}

	r.history = append(r.history, rep)
	maxKeep := max(100, r.windowTicks/r.every*2)
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent sample, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowReport averages the samples inside the window ending at the last
// sample.
type WindowReport struct {
	FromTick    int
	ToTick      int
	SampleCount int
	Factions    [factionCount]FactionWindow
	Intents     map[SquadIntent]float64 // average squads per intent
}

// FactionWindow holds one faction's window averages.
type FactionWindow struct {
	Present     bool
	Alive       float64
	InContact   float64
	Stalled     float64
	Detached    float64
	Suppression float64
	Confidence  float64
}

// WindowSummary returns the summary over the recent window, or nil with no
// samples.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	last := r.history[len(r.history)-1].Tick
	from := last - r.windowTicks
	wr := &WindowReport{FromTick: last, ToTick: last, Intents: map[SquadIntent]float64{}}
	for _, rep := range r.history {
		if rep.Tick < from {
			continue
		}
		wr.FromTick = min(wr.FromTick, rep.Tick)
		wr.SampleCount++
		for f, fs := range rep.Factions {
			fw := &wr.Factions[f]
			if fs.Alive+fs.Dead > 0 {
				fw.Present = true
			}
			fw.Alive += float64(fs.Alive)
			fw.InContact += float64(fs.InContact)
			fw.Stalled += float64(fs.Stalled)
			fw.Detached += float64(fs.Detached)
			fw.Suppression += fs.Suppression
			fw.Confidence += fs.Confidence
		}
		for in, n := range rep.Intents {
			wr.Intents[in] += float64(n)
		}
	}
	n := float64(wr.SampleCount)
	for f := range wr.Factions {
		fw := &wr.Factions[f]
		fw.Alive /= n
		fw.InContact /= n
		fw.Stalled /= n
		fw.Detached /= n
		fw.Suppression /= n
		fw.Confidence /= n
	}
	for in := range wr.Intents {
		wr.Intents[in] /= n
	}
	return wr
}

// Format renders the window as indented text lines.
func (wr *WindowReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "window ticks %d..%d (%d samples)\n", wr.FromTick, wr.ToTick, wr.SampleCount)
	for f := Faction(0); f < factionCount; f++ {
		fw := wr.Factions[f]
		if !fw.Present {
			continue
		}
		fmt.Fprintf(&sb, "  %-8s alive=%.1f contact=%.1f stalled=%.1f detached=%.1f sup=%.0f conf=%.2f\n",
			f, fw.Alive, fw.InContact, fw.Stalled, fw.Detached, fw.Suppression, fw.Confidence)
	}
	for in := SquadIntent(0); in < intentCount; in++ {
		if v, ok := wr.Intents[in]; ok {
			fmt.Fprintf(&sb, "  intent %-8s %.2f squads\n", in, v)
		}
	}
	return sb.String()
}
