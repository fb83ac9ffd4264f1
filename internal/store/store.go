// Package store persists runs and world snapshots in a SQLite file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrRunNotFound = errors.New("store: run not found")
	ErrNoSnapshot  = errors.New("store: run has no snapshots")
)

// Store wraps the gorm handle.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Snapshot{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	log.Info().Str("path", path).Msg("run store open")
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRun records the start of a run and returns it with a fresh id.
func (s *Store) CreateRun(scenario string, seed int64) (*Run, error) {
	run := &Run{ID: uuid.NewString(), Scenario: scenario, Seed: seed}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("store: create run: %w", err)
	}
	s.log.Debug().Str("run", run.ID).Str("scenario", scenario).Int64("seed", seed).Msg("run created")
	return run, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(runID string) (*Run, error) {
	var run Run
	err := s.db.First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return &run, nil
}

// FinishRun copies the summary numbers of st onto the run.
func (s *Store) FinishRun(runID string, st *game.WorldState) error {
	res := s.db.Model(&Run{}).Where("id = ?", runID).Updates(map[string]any{
		"ticks":          st.Tick,
		"outcome":        st.Outcome.String(),
		"alarm":          st.Alarm,
		"shots_fired":    st.Counters.ShotsFired,
		"shots_hit":      st.Counters.ShotsHit,
		"enemies_killed": st.Counters.EnemiesKilled,
		"intent_commits": st.Counters.IntentCommits,
		"finished":       true,
	})
	if res.Error != nil {
		return fmt.Errorf("store: finish run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	q := s.db.Order("created_at desc, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

type combatantsColumn struct {
	Player   *game.SoldierRecord  `json:"player,omitempty"`
	Soldiers []game.SoldierRecord `json:"soldiers"`
}

// SaveSnapshot stores st under runID.
func (s *Store) SaveSnapshot(runID string, st *game.WorldState) (*Snapshot, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}
	snap, err := encodeSnapshot(runID, st)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(snap).Error; err != nil {
		return nil, fmt.Errorf("store: save snapshot: %w", err)
	}
	s.log.Trace().Str("run", runID).Int("tick", st.Tick).Msg("snapshot saved")
	return snap, nil
}

// LatestSnapshot returns the highest-tick snapshot of runID.
func (s *Store) LatestSnapshot(runID string) (*game.WorldState, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}
	var snap Snapshot
	err := s.db.Where("run_id = ?", runID).Order("tick desc, id desc").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest snapshot: %w", err)
	}
	return decodeSnapshot(&snap)
}

// SnapshotTicks lists the ticks persisted for runID in ascending order.
func (s *Store) SnapshotTicks(runID string) ([]int, error) {
	var ticks []int
	if err := s.db.Model(&Snapshot{}).Where("run_id = ?", runID).Order("tick").Pluck("tick", &ticks).Error; err != nil {
		return nil, fmt.Errorf("store: snapshot ticks: %w", err)
	}
	return ticks, nil
}

func encodeSnapshot(runID string, st *game.WorldState) (*Snapshot, error) {
	rest := *st
	rest.Grid = game.GridRecord{}
	rest.Player, rest.Soldiers, rest.Squads = nil, nil, nil

	var snap Snapshot
	snap.RunID = runID
	snap.Tick = st.Tick
	cols := []struct {
		dst *datatypes.JSON
		v   any
	}{
		{&snap.Grid, st.Grid},
		{&snap.Combatants, combatantsColumn{Player: st.Player, Soldiers: st.Soldiers}},
		{&snap.Squads, st.Squads},
		{&snap.World, rest},
	}
	for _, c := range cols {
		b, err := json.Marshal(c.v)
		if err != nil {
			return nil, fmt.Errorf("store: encode snapshot: %w", err)
		}
		*c.dst = datatypes.JSON(b)
	}
	return &snap, nil
}

func decodeSnapshot(snap *Snapshot) (*game.WorldState, error) {
	var st game.WorldState
	var comb combatantsColumn
	cols := []struct {
		src datatypes.JSON
		v   any
	}{
		{snap.World, &st},
		{snap.Grid, &st.Grid},
		{snap.Combatants, &comb},
		{snap.Squads, &st.Squads},
	}
	for _, c := range cols {
		if err := json.Unmarshal(c.src, c.v); err != nil {
			return nil, fmt.Errorf("store: decode snapshot %d: %w", snap.ID, err)
		}
	}
	st.Player, st.Soldiers = comb.Player, comb.Soldiers
	return &st, nil
}
