package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless test simulation.
type SimLogEntry struct {
	Tick     int
	Soldier  string  // label e.g. "A0", "S2", or "--" for global events
	Faction  Faction // speaker's faction
	Category string  // combat, squad, state, player, world
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] S1   axis     squad     intent           flank
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-8s %-9s %-16s %s",
		e.Tick, e.Soldier, e.Faction, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a simulation run.
// Unlike ThoughtLog (UI ring-buffer), SimLog is unbounded and machine-readable.
// A nil *SimLog drops every entry.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position/speed/stat
// entries are also recorded (useful for detailed debugging).
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, soldier string, f Faction, category, key, value string, numVal float64) {
	if sl == nil {
		return
	}
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Soldier:  soldier,
		Faction:  f,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Verbose reports whether per-tick detail is recorded.
func (sl *SimLog) Verbose() bool { return sl != nil && sl.verbose }

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, soldier string, f Faction, category, key, value string, numVal float64) {
	if sl == nil || !sl.verbose {
		return
	}
	sl.Add(tick, soldier, f, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	if sl == nil {
		return nil
	}
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSoldier returns entries for a specific soldier label.
func (sl *SimLog) FilterSoldier(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Soldier == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the simulation state.
func (sl *SimLog) Summary(tick int, soldiers []*Soldier, squads []*Squad) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	// State distribution per faction.
	var states [factionCount][soldierStateCount]int
	var alive [factionCount]int
	for _, s := range soldiers {
		if !s.Alive() || s.faction >= factionCount {
			continue
		}
		alive[s.faction]++
		states[s.faction][s.state]++
	}
	for f := Faction(0); f < factionCount; f++ {
		if alive[f] == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s states: ", f)
		for st := SoldierState(0); st < soldierStateCount; st++ {
			if n := states[f][st]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", st, n)
			}
		}
		sb.WriteByte('\n')
	}

	for _, sq := range squads {
		fmt.Fprintf(&sb, "S%d %s mode=%s intent=%s conf=%.2f sup=%.1f\n",
			sq.ID, sq.Faction, sq.Mode, sq.Intent, sq.Confidence, sq.Suppression)
	}

	fmt.Fprintf(&sb, "Alive:")
	for f := Faction(0); f < factionCount; f++ {
		fmt.Fprintf(&sb, " %s=%d", f, alive[f])
	}
	sb.WriteByte('\n')

	contactLines := 0
	for _, s := range soldiers {
		if s.Alive() && s.hasThreat && s.threat.Visible {
			fmt.Fprintf(&sb, "Contact: %s -> (%.0f,%.0f)\n", s.label, s.threat.Pos.X, s.threat.Pos.Y)
			contactLines++
		}
	}
	if contactLines == 0 {
		sb.WriteString("Contacts: none\n")
	}
	return sb.String()
}
