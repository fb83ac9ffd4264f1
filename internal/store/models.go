package store

import (
	"time"

	"gorm.io/datatypes"
)

// Run is one simulation run: the scenario it used, its seed and the
// summary written when it finishes.
type Run struct {
	ID            string `gorm:"primaryKey;size:36"`
	Scenario      string `gorm:"index"`
	Seed          int64
	Ticks         int
	Outcome       string
	Alarm         int
	ShotsFired    int
	ShotsHit      int
	EnemiesKilled int
	IntentCommits int
	Finished      bool
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// Snapshot is a persisted WorldState split into JSON columns.
type Snapshot struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index:idx_run_tick;size:36"`
	Tick       int    `gorm:"index:idx_run_tick"`
	Grid       datatypes.JSON
	Combatants datatypes.JSON
	Squads     datatypes.JSON
	World      datatypes.JSON
	CreatedAt  time.Time
}
