package game

// TestDt is the fixed step the harness advances by.
const TestDt = 1.0 / 60

// TestSim is a headless world harness used by tests and the headless
// report. It drives World.Step with scripted player input and adds
// per-tick change logging on top of the world's own event log.
type TestSim struct {
	World  *World
	SimLog *SimLog
	Input  PlayerInput

	cfg      Config
	rows     []string
	cols     int
	rowsN    int
	walls    [][4]int
	seed     int64
	verbose  bool
	player   *Vec2
	squads   []SquadSpec
	squadIDs []int
	err      error

	// Reporter observes every tick; it owns contact logging.
	Reporter *SimReporter
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map, seed, config: applied first
	simOptActor                      // player and squads: applied once the world exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets an open land map of cols x rows tiles.
func WithMapSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cols, ts.rowsN = cols, rows
	}}
}

// WithTiles uses ASCII rows for the map (see ParseTileRows).
func WithTiles(rows ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rows = rows
	}}
}

// WithWall fills the inclusive cell rectangle with Wall.
func WithWall(c0, r0, c1, r1 int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.walls = append(ts.walls, [4]int{c0, r0, c1, r1})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithConfig edits the tuning before the world is built.
func WithConfig(edit func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(&ts.cfg) }}
}

// WithPlayer spawns the player at (x,y).
func WithPlayer(x, y float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		p := V(x, y)
		ts.player = &p
	}}
}

// WithSquad places a squad of count members of f around (x,y).
func WithSquad(f Faction, count int, x, y float64) SimOption {
	return WithSquadSpec(SquadSpec{Faction: f, Count: count, Home: V(x, y)})
}

// WithSquadSpec places a squad from a full spec.
func WithSquadSpec(spec SquadSpec) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.squads = append(ts.squads, spec)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map, walls, seed, verbose, config)
//  2. Build the World
//  3. Player and squads
//
// Construction problems are kept in Err so table tests can assert on them.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		cfg:   DefaultConfig(),
		cols:  40,
		rowsN: 24,
		seed:  1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	tm := NewTileMap(ts.cols, ts.rowsN, ts.cfg.TileSize)
	if len(ts.rows) > 0 {
		parsed, err := ParseTileRows(ts.rows, ts.cfg.TileSize)
		if err != nil {
			ts.err = err
		} else {
			tm = parsed
		}
	}
	for _, r := range ts.walls {
		tm.Fill(r[0], r[1], r[2], r[3], TileWall)
	}

	ts.SimLog = NewSimLog(ts.verbose)
	ts.World = NewWorld(ts.cfg, tm, NewRand(ts.seed), WithSimLog(ts.SimLog))

	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(ts)
		}
	}
	if ts.player != nil {
		ts.World.SpawnPlayer(*ts.player)
	}
	for _, spec := range ts.squads {
		id, err := ts.World.PlaceSquad(spec)
		if err != nil && ts.err == nil {
			ts.err = err
		}
		ts.squadIDs = append(ts.squadIDs, id)
	}
	ts.Reporter = NewSimReporter(reportWindowTicks)
	return ts
}

// Err returns the first construction error, if any.
func (ts *TestSim) Err() error { return ts.err }

// Squad returns the i-th squad placed through the options.
func (ts *TestSim) Squad(i int) *Squad {
	if i < 0 || i >= len(ts.squadIDs) || ts.squadIDs[i] < 0 {
		return nil
	}
	return ts.World.squads[ts.squadIDs[i]]
}

// Members returns the soldiers of the i-th placed squad.
func (ts *TestSim) Members(i int) []*Soldier {
	sq := ts.Squad(i)
	if sq == nil {
		return nil
	}
	out := make([]*Soldier, 0, len(sq.Members))
	for _, idx := range sq.Members {
		out = append(out, ts.World.soldiers[idx])
	}
	return out
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int { return ts.World.tick }

// RunTicks advances the simulation n ticks with the current Input.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.World.tick
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	w := ts.World
	w.Step(TestDt, ts.Input)

	ts.Reporter.Observe(w)
}
