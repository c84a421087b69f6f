package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/repository"
)

const defaultSnapshotLimit = 100

type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository implementation
func NewSnapshotRepository(db *sql.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Insert(ctx context.Context, s models.Snapshot) error {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")
	log.Debug("inserting snapshot: id=%s, username=%s", s.ID, s.Username)

	progress, err := json.Marshal(s.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO snapshots (id, username, streak, total_xp, league_tier, max_streak, active_days, progress_json, stats_json, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.Username, s.Progress.Streak, s.Progress.TotalXP, s.Progress.League.TierIndex,
		s.Stats.MaxStreak, s.Stats.TotalDays, string(progress), string(stats), s.FetchedAt.UTC())
	if err != nil {
		log.Error("failed to insert snapshot: %v", err)
		return err
	}
	return nil
}

// Latest returns the most recent snapshot for username, or nil when none exists.
func (r *snapshotRepository) Latest(ctx context.Context, username string) (*models.Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")
	log.Debug("getting latest snapshot: username=%s", username)

	var (
		s                   models.Snapshot
		progress, statsJSON string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, progress_json, stats_json, fetched_at
FROM snapshots
WHERE username = ?
ORDER BY fetched_at DESC
LIMIT 1
`, username).Scan(&s.ID, &s.Username, &progress, &statsJSON, &s.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no snapshot for username=%s", username)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get latest snapshot: %v", err)
		return nil, err
	}

	if err := json.Unmarshal([]byte(progress), &s.Progress); err != nil {
		log.Error("failed to decode snapshot progress %s: %v", s.ID, err)
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &s.Stats); err != nil {
		log.Error("failed to decode snapshot stats %s: %v", s.ID, err)
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &s, nil
}

func applySnapshotFilter(query squirrel.SelectBuilder, filter models.SnapshotFilter) squirrel.SelectBuilder {
	if filter.Username != "" {
		query = query.Where(squirrel.Eq{"username": filter.Username})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"fetched_at": filter.Since.UTC()})
	}
	return query
}

func (r *snapshotRepository) List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")
	log.Debug("listing snapshots with filter: username=%s, since=%v", filter.Username, filter.Since)

	query := applySnapshotFilter(sqlBuilder.Select(
		"id", "username", "streak", "total_xp", "league_tier", "max_streak", "active_days", "fetched_at",
	).From("snapshots"), filter)

	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("fetched_at " + orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list snapshots: %v", err)
		return nil, err
	}
	defer rows.Close()

	summaries := []models.SnapshotSummary{}
	for rows.Next() {
		var s models.SnapshotSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Streak, &s.TotalXP, &s.LeagueTier, &s.MaxStreak, &s.ActiveDays, &s.FetchedAt); err != nil {
			log.Error("failed to scan snapshot row: %v", err)
			return nil, err
		}
		summaries = append(summaries, s)
	}
	log.Debug("found %d snapshots", len(summaries))
	return summaries, rows.Err()
}

func (r *snapshotRepository) Count(ctx context.Context, filter models.SnapshotFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")

	sql, args, err := applySnapshotFilter(sqlBuilder.Select("COUNT(*)").From("snapshots"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		log.Error("failed to count snapshots: %v", err)
		return 0, err
	}
	return count, nil
}

// DeleteBefore prunes snapshots fetched before cutoff and reports how many were removed.
func (r *snapshotRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")
	log.Debug("pruning snapshots before %s", cutoff.Format(time.RFC3339))

	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		log.Error("failed to prune snapshots: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("pruned %d snapshots", n)
	return n, nil
}
