package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Pathfinders/internal/config"
	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/Garsondee/Pathfinders/internal/logging"
	"github.com/Garsondee/Pathfinders/internal/scenario"
	"github.com/Garsondee/Pathfinders/internal/store"
	"github.com/Garsondee/Pathfinders/internal/telemetry"
	"github.com/rs/zerolog"
)

var allFactions = []game.Faction{game.FactionAllies, game.FactionAxis, game.FactionMilitia, game.FactionRebels}

type runStats struct {
	runIndex int
	seed     int64
	runID    string

	firstContactTick int
	firstCommitTick  int
	firstFireTick    int
	firstDeathTick   int
	outcomeTick      int

	commits      map[string]int // intent -> commitments
	stateChanges int
	contactNew   int
	contactLost  int
	scans        int
	fallen       map[string]struct{}

	outcome  game.MissionOutcome
	alarm    int
	counters game.Counters
	totals   map[game.Faction]int
	alive    map[game.Faction]int

	windowSummary *game.WindowReport
	tail          string
}

// sinks are the optional destinations a run reports into.
type sinks struct {
	store     *store.Store
	snapEvery int
	recorder  *telemetry.Recorder
	influx    *telemetry.InfluxExporter
	log       zerolog.Logger

	verbose bool
	tail    int // ticks of raw event log printed per run
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var tail int
	var verbose bool
	var scenarioPath, cfgPath, dbPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML (default: built-in)")
	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.StringVar(&dbPath, "db", "", "persist runs and snapshots to this SQLite file")
	flag.IntVar(&tail, "tail", 0, "print the raw event log for the last N ticks of each run")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick positions and squad confidence")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	// Reports go to stdout; the logger only carries warnings unless asked.
	log, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Out: os.Stderr, File: cfg.Log.File})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer closer.Close()

	gcfg, err := cfg.GameConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("game config")
	}
	if scenarioPath == "" {
		scenarioPath = cfg.Scenario.Path
	}
	sc := scenario.Default()
	if scenarioPath != "" {
		if sc, err = scenario.Load(scenarioPath); err != nil {
			log.Fatal().Err(err).Msg("load scenario")
		}
	}

	out := sinks{snapEvery: cfg.Store.SnapshotEvery, log: log, verbose: verbose, tail: tail}
	if dbPath == "" && cfg.Store.Enabled {
		dbPath = cfg.Store.Path
	}
	if dbPath != "" {
		if out.store, err = store.Open(dbPath, log); err != nil {
			log.Fatal().Err(err).Msg("open store")
		}
		defer out.store.Close()
	}
	if out.recorder, err = telemetry.NewRecorder(telemetry.Meter(), sc.Name); err != nil {
		log.Fatal().Err(err).Msg("metrics")
	}
	if ic := cfg.Telemetry.Influx; ic.Enabled {
		out.influx = telemetry.NewInfluxExporter(ic.URL, ic.Token, ic.Org, ic.Bucket, log)
		defer out.influx.Close()
	}

	fmt.Printf("=== Headless Combat Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", sc.Name, runs, ticks, seedBase, seedStep)

	ctx := context.Background()
	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runScenario(ctx, sc, gcfg, cfg.TickDt(), i+1, seed, ticks, out)
		if err != nil {
			log.Fatal().Err(err).Int64("seed", seed).Msg("run failed")
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runScenario(ctx context.Context, sc *scenario.Scenario, gcfg game.Config, dt float64, runIndex int, seed int64, ticks int, out sinks) (runStats, error) {
	sl := game.NewSimLog(out.verbose)
	w, err := scenario.Build(sc, gcfg, game.NewRand(seed), out.log, game.WithSimLog(sl))
	if err != nil {
		return runStats{}, err
	}
	rep := game.NewSimReporter(0)

	runID := fmt.Sprintf("%s-%d", sc.Name, seed)
	if out.store != nil {
		run, err := out.store.CreateRun(sc.Name, seed)
		if err != nil {
			return runStats{}, err
		}
		runID = run.ID
	}

	for t := 0; t < ticks; t++ {
		w.Step(dt, game.PlayerInput{})
		rep.Observe(w)
		if out.recorder != nil {
			out.recorder.Observe(ctx, w)
		}
		if out.store != nil && out.snapEvery > 0 && w.Tick()%out.snapEvery == 0 {
			if _, err := out.store.SaveSnapshot(runID, w.State()); err != nil {
				return runStats{}, err
			}
		}
	}

	if out.store != nil {
		if err := out.store.FinishRun(runID, w.State()); err != nil {
			return runStats{}, err
		}
	}
	if out.influx != nil {
		if err := out.influx.WriteRun(ctx, telemetry.SummaryOf(runID, sc.Name, seed, w)); err != nil {
			// A missing metrics backend should not abort a batch of runs.
			out.log.Warn().Err(err).Str("run", runID).Msg("influx export")
		}
	}

	rs := collectStats(sl, w)
	rs.runIndex = runIndex
	rs.seed = seed
	rs.runID = runID
	rs.windowSummary = rep.WindowSummary()
	if out.tail > 0 {
		rs.tail = sl.FormatRange(w.Tick()-out.tail, w.Tick())
	}
	return rs, nil
}

// collectStats derives the per-run numbers from the event log and the final
// world.
func collectStats(sl *game.SimLog, w *game.World) runStats {
	entries := sl.Entries()
	rs := runStats{
		firstContactTick: firstTick(entries, "vision", "contact_new", ""),
		firstCommitTick:  firstTick(entries, "squad", "intent", ""),
		firstFireTick:    firstTick(entries, "combat", "fire", ""),
		firstDeathTick:   firstTick(entries, "combat", "death", ""),
		outcomeTick:      -1,
		commits:          map[string]int{},
		fallen:           map[string]struct{}{},
		outcome:          w.Outcome(),
		alarm:            w.Alarm(),
		counters:         w.Counters(),
	}
	for _, e := range entries {
		switch {
		case e.Category == "squad" && e.Key == "intent":
			rs.commits[e.Value]++
		case e.Category == "squad" && e.Key == "scan":
			rs.scans++
		case e.Category == "state" && e.Key == "change":
			rs.stateChanges++
		case e.Category == "vision" && e.Key == "contact_new":
			rs.contactNew++
		case e.Category == "vision" && e.Key == "contact_lost":
			rs.contactLost++
		case e.Category == "combat" && e.Key == "death":
			rs.fallen[e.Soldier] = struct{}{}
		}
	}
	if e, ok := sl.LastOf("world", "outcome"); ok {
		rs.outcomeTick = e.Tick
	}
	rs.totals, rs.alive = factionCounts(w.Soldiers())
	return rs
}

func factionCounts(soldiers []*game.Soldier) (totals, alive map[game.Faction]int) {
	totals = map[game.Faction]int{}
	alive = map[game.Faction]int{}
	for _, s := range soldiers {
		totals[s.Faction()]++
		if s.Alive() {
			alive[s.Faction()]++
		}
	}
	return totals, alive
}

// detectStalemate flags runs where the sides met but neither pressed the
// fight home.
func detectStalemate(rs runStats) (bool, string) {
	if rs.firstContactTick < 0 {
		return false, "no_contact"
	}
	present := 0
	for _, f := range allFactions {
		total := rs.totals[f]
		if total == 0 {
			continue
		}
		present++
		if float64(rs.alive[f])/float64(total) < 0.5 {
			return false, "decisive_attrition_" + f.String()
		}
	}
	if present < 2 {
		return false, "single_faction"
	}
	if commitTotal(rs.commits) == 0 {
		return true, "contact_without_commitment"
	}
	if rs.counters.ShotsFired > 0 && rs.counters.Accuracy() < 0.05 {
		return true, "high_mutual_survival+low_accuracy"
	}
	if len(rs.fallen) == 0 {
		return true, "high_mutual_survival+no_losses"
	}
	return false, "engaged"
}

func commitTotal(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d id=%s) ---\n", rs.runIndex, rs.seed, rs.runID)
	fmt.Printf("phase_markers: contact=%d commit=%d first_fire=%d first_death=%d outcome=%s@%d\n",
		rs.firstContactTick, rs.firstCommitTick, rs.firstFireTick, rs.firstDeathTick, rs.outcome, rs.outcomeTick)
	fmt.Printf("event_totals: commits=%d state_change=%d contact_new=%d contact_lost=%d scans=%d\n",
		commitTotal(rs.commits), rs.stateChanges, rs.contactNew, rs.contactLost, rs.scans)
	fmt.Printf("commits_by_intent: %s\n", joinCounts(rs.commits))
	fmt.Printf("fire: shots=%d hits=%d accuracy=%.2f kills=%d alarm=%d\n",
		rs.counters.ShotsFired, rs.counters.ShotsHit, rs.counters.Accuracy(), rs.counters.EnemiesKilled, rs.alarm)
	for _, f := range allFactions {
		if rs.totals[f] == 0 {
			continue
		}
		fmt.Printf("  %-8s survivors=%d/%d\n", f, rs.alive[f], rs.totals[f])
	}
	fmt.Printf("fallen: %s\n", joinSet(rs.fallen))
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", reason)
	}
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	if rs.tail != "" {
		fmt.Print(rs.tail)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	var totalCommits, totalState, totalContactNew, totalContactLost, totalShots, totalHits, stalemates int
	contactTicks := make([]int, 0, len(all))
	commitTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	commits := map[string]int{}
	outcomes := map[string]int{}
	survival := map[game.Faction][2]int{}

	for _, rs := range all {
		totalCommits += commitTotal(rs.commits)
		totalState += rs.stateChanges
		totalContactNew += rs.contactNew
		totalContactLost += rs.contactLost
		totalShots += rs.counters.ShotsFired
		totalHits += rs.counters.ShotsHit
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick)
		}
		if rs.firstCommitTick >= 0 {
			commitTicks = append(commitTicks, rs.firstCommitTick)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		for k, v := range rs.commits {
			commits[k] += v
		}
		outcomes[rs.outcome.String()]++
		for _, f := range allFactions {
			s := survival[f]
			s[0] += rs.alive[f]
			s[1] += rs.totals[f]
			survival[f] = s
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d stalemates=%d outcomes=%s\n", n, stalemates, joinCounts(outcomes))
	fmt.Printf("avg_events_per_run: commits=%.1f state_change=%.1f contact_new=%.1f contact_lost=%.1f\n",
		avg(totalCommits, n), avg(totalState, n), avg(totalContactNew, n), avg(totalContactLost, n))
	fmt.Printf("avg_fire_per_run: shots=%.1f hits=%.1f\n", avg(totalShots, n), avg(totalHits, n))
	fmt.Printf("commits_by_intent: %s\n", joinCounts(commits))
	fmt.Printf("phase_marker_avg_ticks: first_contact=%s first_commit=%s first_death=%s\n",
		avgTickString(contactTicks), avgTickString(commitTicks), avgTickString(deathTicks))
	for _, f := range allFactions {
		if s := survival[f]; s[1] > 0 {
			fmt.Printf("  %-8s survival=%.0f%%\n", f, float64(s[0])/float64(s[1])*100)
		}
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ",")
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
