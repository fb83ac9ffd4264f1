package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// firefight is a player with a shotgun point blank on one militia rifleman.
func firefight(t *testing.T) *game.TestSim {
	t.Helper()
	ts := game.NewTestSim(
		game.WithConfig(func(c *game.Config) {
			c.PlayerStartWeapon = game.WeaponPumpShotgun
			c.DamageScale = 1
			c.BarksEnabled = false
		}),
		game.WithPlayer(200, 200),
		game.WithSquadSpec(game.SquadSpec{Faction: game.FactionMilitia, Count: 1, Home: game.V(260, 200), Weapon: game.WeaponKar98k}),
	)
	require.NoError(t, ts.Err())
	return ts
}

func TestRecorder_ObserveReportsDeltas(t *testing.T) {
	r, err := NewRecorder(noop.NewMeterProvider().Meter("test"), "yard")
	require.NoError(t, err)

	ts := firefight(t)
	d := r.Observe(context.Background(), ts.World)
	assert.Zero(t, d.ShotsFired)
	assert.Empty(t, d.Losses)

	ts.Input = game.PlayerInput{Fire: true, Aim: game.V(260, 200)}
	ts.RunTicks(1)
	ts.Input = game.PlayerInput{Aim: game.V(260, 200)}
	ts.RunTicks(30)

	c := ts.World.Counters()
	d = r.Observe(context.Background(), ts.World)
	assert.Equal(t, int64(c.ShotsFired), d.ShotsFired)
	assert.Equal(t, int64(c.ShotsHit), d.ShotsHit)
	assert.Positive(t, d.ShotsFired)

	again := r.Observe(context.Background(), ts.World)
	assert.Zero(t, again.ShotsFired)
	assert.Zero(t, again.ShotsHit)
	assert.Zero(t, again.Kills)
	assert.Zero(t, again.Alarm)
	assert.Empty(t, again.Losses)
}

func TestSummaryPoint_Fields(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := RunSummary{
		RunID:    "run-1",
		Scenario: "yard",
		Seed:     42,
		Ticks:    3600,
		Outcome:  game.OutcomeCleared,
		Counters: game.Counters{ShotsFired: 10, ShotsHit: 4, EnemiesKilled: 3},
		Losses:   map[game.Faction]int{game.FactionAxis: 3},
		At:       at,
	}
	p := SummaryPoint(s)
	assert.Equal(t, "run_summary", p.Name())
	assert.Equal(t, at, p.Time())

	tags := map[string]string{}
	for _, tg := range p.TagList() {
		tags[tg.Key] = tg.Value
	}
	assert.Equal(t, map[string]string{"scenario": "yard", "outcome": "cleared"}, tags)

	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, int64(42), fields["seed"])
	assert.Equal(t, int64(10), fields["shots_fired"])
	assert.InDelta(t, 0.4, fields["accuracy"], 1e-9)
	assert.Equal(t, int64(3), fields["losses_axis"])
	assert.Equal(t, int64(0), fields["losses_allies"])
}

func TestInfluxExporter_WritesLineProtocol(t *testing.T) {
	var gotPath, gotBody, gotBucket string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBucket = r.URL.Query().Get("bucket")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	e := NewInfluxExporter(srv.URL, "token", "pathfinders", "runs", zerolog.Nop())
	defer e.Close()

	ts := firefight(t)
	ts.RunTicks(10)
	err := e.WriteRun(context.Background(), SummaryOf("run-7", "yard", 1, ts.World))
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/write", gotPath)
	assert.Equal(t, "runs", gotBucket)
	assert.True(t, strings.HasPrefix(gotBody, "run_summary,"), gotBody)
	assert.Contains(t, gotBody, `run_id="run-7"`)
	assert.Contains(t, gotBody, "ticks=10i")
}

func TestInfluxExporter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":"unauthorized","message":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewInfluxExporter(srv.URL, "nope", "pathfinders", "runs", zerolog.Nop())
	defer e.Close()
	err := e.WriteRun(context.Background(), RunSummary{RunID: "r", Scenario: "yard", At: time.Now()})
	require.Error(t, err)
}
