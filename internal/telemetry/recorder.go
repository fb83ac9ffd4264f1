// Package telemetry exports simulation counters as OpenTelemetry metrics
// and run summaries to InfluxDB.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Garsondee/Pathfinders/internal/game"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Pathfinders/internal/telemetry"

// Meter returns the meter of the global provider, a no-op unless the
// process installed one.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

var factions = []game.Faction{game.FactionAllies, game.FactionAxis, game.FactionMilitia, game.FactionRebels}

// Delta is what one Observe call added to the counters.
type Delta struct {
	ShotsFired    int64
	ShotsHit      int64
	Kills         int64
	IntentCommits int64
	Alarm         int64
	Losses        map[game.Faction]int64
}

// Recorder turns the monotonic world counters into metric increments.
type Recorder struct {
	shotsFired metric.Int64Counter
	shotsHit   metric.Int64Counter
	kills      metric.Int64Counter
	commits    metric.Int64Counter
	losses     metric.Int64Counter
	alarm      metric.Int64UpDownCounter
	alive      metric.Int64ObservableGauge

	attrs metric.MeasurementOption

	mu         sync.Mutex
	last       game.Counters
	lastAlarm  int
	lastLosses [4]int
	liveCount  [4]int
}

// NewRecorder creates the instruments on m. Every measurement carries the
// scenario name as an attribute.
func NewRecorder(m metric.Meter, scenario string) (*Recorder, error) {
	r := &Recorder{attrs: metric.WithAttributes(attribute.String("scenario", scenario))}

	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.shotsFired, "pathfinders.shots_fired", "Shots fired by the player"},
		{&r.shotsHit, "pathfinders.shots_hit", "Player shots that hit"},
		{&r.kills, "pathfinders.kills", "Enemies of the player killed"},
		{&r.commits, "pathfinders.intent_commits", "Squad intent commitments"},
		{&r.losses, "pathfinders.losses", "Combatants lost, by faction"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("telemetry: creating %s: %w", c.name, err)
		}
	}

	r.alarm, err = m.Int64UpDownCounter("pathfinders.alarm", metric.WithDescription("World alarm level 0..5"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating alarm counter: %w", err)
	}

	r.alive, err = m.Int64ObservableGauge("pathfinders.combatants.alive",
		metric.WithDescription("Live combatants by faction at the last observation"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating alive gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, f := range factions {
			o.ObserveInt64(r.alive, int64(r.liveCount[f]),
				metric.WithAttributes(attribute.String("faction", f.String())))
		}
		return nil
	}, r.alive)
	if err != nil {
		return nil, fmt.Errorf("telemetry: registering alive callback: %w", err)
	}
	return r, nil
}

// Observe adds everything that changed in w since the previous call and
// returns the increments.
func (r *Recorder) Observe(ctx context.Context, w *game.World) Delta {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := w.Counters()
	d := Delta{
		ShotsFired:    int64(c.ShotsFired - r.last.ShotsFired),
		ShotsHit:      int64(c.ShotsHit - r.last.ShotsHit),
		Kills:         int64(c.EnemiesKilled - r.last.EnemiesKilled),
		IntentCommits: int64(c.IntentCommits - r.last.IntentCommits),
		Alarm:         int64(w.Alarm() - r.lastAlarm),
		Losses:        map[game.Faction]int64{},
	}
	r.last = c
	r.lastAlarm = w.Alarm()

	add := func(ctr metric.Int64Counter, n int64) {
		if n > 0 {
			ctr.Add(ctx, n, r.attrs)
		}
	}
	add(r.shotsFired, d.ShotsFired)
	add(r.shotsHit, d.ShotsHit)
	add(r.kills, d.Kills)
	add(r.commits, d.IntentCommits)
	if d.Alarm != 0 {
		r.alarm.Add(ctx, d.Alarm, r.attrs)
	}

	for _, f := range factions {
		lost := w.FactionStats(f).Losses
		if n := int64(lost - r.lastLosses[f]); n > 0 {
			d.Losses[f] = n
			r.losses.Add(ctx, n, r.attrs, metric.WithAttributes(attribute.String("faction", f.String())))
		}
		r.lastLosses[f] = lost
		r.liveCount[f] = w.LiveCount(f)
	}
	return d
}
