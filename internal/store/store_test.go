package store

import (
	"path/filepath"
	"testing"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/Garsondee/Pathfinders/internal/scenario"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func steppedWorld(t *testing.T, ticks int) *game.World {
	t.Helper()
	w, err := scenario.Build(scenario.Default(), game.DefaultConfig(), game.NewRand(5), zerolog.Nop())
	require.NoError(t, err)
	for i := 0; i < ticks; i++ {
		w.Step(game.TestDt, game.PlayerInput{})
	}
	return w
}

func TestCreateRun_AssignsIDs(t *testing.T) {
	s := openTestStore(t)

	a, err := s.CreateRun("river-crossing", 1)
	require.NoError(t, err)
	b, err := s.CreateRun("river-crossing", 2)
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := s.GetRun(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Seed)
	assert.False(t, got.Finished)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	run, err := s.CreateRun("river-crossing", 5)
	require.NoError(t, err)

	w := steppedWorld(t, 240)
	early := w.State()
	_, err = s.SaveSnapshot(run.ID, early)
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		w.Step(game.TestDt, game.PlayerInput{})
	}
	late := w.State()
	_, err = s.SaveSnapshot(run.ID, late)
	require.NoError(t, err)

	got, err := s.LatestSnapshot(run.ID)
	require.NoError(t, err)
	assert.Equal(t, late, got)

	ticks, err := s.SnapshotTicks(run.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{240, 360}, ticks)

	restored, err := game.RestoreWorld(w.Config(), got, game.NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, late.Tick, restored.Tick())
	assert.Len(t, restored.Soldiers(), len(w.Soldiers()))
}

func TestSnapshot_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveSnapshot("missing", steppedWorld(t, 1).State())
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.LatestSnapshot("missing")
	require.ErrorIs(t, err, ErrRunNotFound)

	run, err := s.CreateRun("x", 0)
	require.NoError(t, err)
	_, err = s.LatestSnapshot(run.ID)
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFinishRun_WritesSummary(t *testing.T) {
	s := openTestStore(t)
	run, err := s.CreateRun("river-crossing", 5)
	require.NoError(t, err)

	st := steppedWorld(t, 60).State()
	st.Counters.ShotsFired = 12
	st.Counters.EnemiesKilled = 3
	st.Alarm = 2
	require.NoError(t, s.FinishRun(run.ID, st))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, 60, got.Ticks)
	assert.Equal(t, 12, got.ShotsFired)
	assert.Equal(t, 3, got.EnemiesKilled)
	assert.Equal(t, 2, got.Alarm)
	assert.Equal(t, "ongoing", got.Outcome)

	require.ErrorIs(t, s.FinishRun("missing", st), ErrRunNotFound)
}

func TestListRuns_Limit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.CreateRun("river-crossing", int64(i))
		require.NoError(t, err)
	}

	all, err := s.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	some, err := s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	run, err := s.CreateRun("river-crossing", 1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "river-crossing", got.Scenario)
}
