package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Garsondee/Pathfinders/internal/game"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// RunSummary is the end-of-run record exported per headless run.
type RunSummary struct {
	RunID    string
	Scenario string
	Seed     int64
	Ticks    int
	Outcome  game.MissionOutcome
	Alarm    int
	Counters game.Counters
	Losses   map[game.Faction]int
	At       time.Time
}

// SummaryOf collects a RunSummary from a finished world.
func SummaryOf(runID, scenario string, seed int64, w *game.World) RunSummary {
	s := RunSummary{
		RunID:    runID,
		Scenario: scenario,
		Seed:     seed,
		Ticks:    w.Tick(),
		Outcome:  w.Outcome(),
		Alarm:    w.Alarm(),
		Counters: w.Counters(),
		Losses:   map[game.Faction]int{},
		At:       time.Now().UTC(),
	}
	for _, f := range factions {
		s.Losses[f] = w.FactionStats(f).Losses
	}
	return s
}

// SummaryPoint renders s as a run_summary point.
func SummaryPoint(s RunSummary) *influxdb2_write.Point {
	p := influxdb2.NewPointWithMeasurement("run_summary").
		AddTag("scenario", s.Scenario).
		AddTag("outcome", s.Outcome.String()).
		AddField("run_id", s.RunID).
		AddField("seed", s.Seed).
		AddField("ticks", s.Ticks).
		AddField("alarm", s.Alarm).
		AddField("shots_fired", s.Counters.ShotsFired).
		AddField("shots_hit", s.Counters.ShotsHit).
		AddField("accuracy", s.Counters.Accuracy()).
		AddField("enemies_killed", s.Counters.EnemiesKilled).
		AddField("intent_commits", s.Counters.IntentCommits).
		SetTime(s.At)
	for _, f := range factions {
		p.AddField("losses_"+f.String(), s.Losses[f])
	}
	return p
}

// InfluxExporter writes run summaries through the blocking write API.
type InfluxExporter struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPIBlocking
	bucket string
	log    zerolog.Logger
}

// NewInfluxExporter connects lazily; the first write reports a bad URL or
// token.
func NewInfluxExporter(url, token, org, bucket string, log zerolog.Logger) *InfluxExporter {
	client := influxdb2.NewClientWithOptions(url, token, influxdb2.DefaultOptions().SetHTTPRequestTimeout(10))
	return &InfluxExporter{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		bucket: bucket,
		log:    log,
	}
}

// WriteRun exports one summary.
func (e *InfluxExporter) WriteRun(ctx context.Context, s RunSummary) error {
	if err := e.writer.WritePoint(ctx, SummaryPoint(s)); err != nil {
		return fmt.Errorf("telemetry: write run %s: %w", s.RunID, err)
	}
	e.log.Debug().Str("run", s.RunID).Str("bucket", e.bucket).Msg("run summary exported")
	return nil
}

// Close releases the client.
func (e *InfluxExporter) Close() {
	e.client.Close()
}
