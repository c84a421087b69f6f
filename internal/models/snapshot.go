package models

import "time"

// Snapshot is one normalized fetch of a user, as cached and persisted.
type Snapshot struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Progress  UserProgress     `json:"progress"`
	Stats     AchievementStats `json:"stats"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// SnapshotSummary is the persisted headline of a snapshot, used for history listings.
type SnapshotSummary struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Streak     int       `json:"streak"`
	TotalXP    int       `json:"total_xp"`
	LeagueTier int       `json:"league_tier"`
	MaxStreak  int       `json:"max_streak"`
	ActiveDays int       `json:"active_days"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// SnapshotFilter narrows a snapshot history query. Zero values mean "no filter".
type SnapshotFilter struct {
	Username string
	Since    *time.Time
	Limit    int
	Offset   int
	OrderDir string
}

// Dashboard is the response body for progress endpoints.
type Dashboard struct {
	Progress UserProgress     `json:"data"`
	Stats    AchievementStats `json:"stats"`
	Badges   []Badge          `json:"badges"`
	Week     WeeklySummary    `json:"week"`
	Cached   bool             `json:"cached"`
	// Stale is set when the upstream failed and the last stored snapshot was served.
	Stale     bool      `json:"stale,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}
