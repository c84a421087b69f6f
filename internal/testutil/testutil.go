package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/vytor/duodash/internal/db"
	"github.com/vytor/duodash/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Snapshot builds a snapshot with the headline fields set.
func Snapshot(id, username string, streak, totalXP int, fetchedAt time.Time) models.Snapshot {
	return models.Snapshot{
		ID:       id,
		Username: username,
		Progress: models.UserProgress{
			Streak:  streak,
			TotalXP: totalXP,
			League:  models.League{Name: "Gold", TierIndex: 2},
			Courses: []models.Course{{ID: "es", Title: "Spanish", XP: totalXP}},
		},
		Stats: models.AchievementStats{
			MaxStreak:        streak,
			TotalDays:        streak,
			TotalXP:          totalXP,
			StreakMilestones: models.Milestones{7: "2024-01-07"},
		},
		FetchedAt: fetchedAt,
	}
}
