package repository

import (
	"context"
	"time"

	"github.com/vytor/duodash/internal/models"
)

// ProfileRepository handles tracked profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	UpdateSync(ctx context.Context, id int64, t time.Time) error
	Delete(ctx context.Context, id int64) error
}

// SnapshotRepository handles persisted progress snapshots
type SnapshotRepository interface {
	Insert(ctx context.Context, snapshot models.Snapshot) error
	Latest(ctx context.Context, username string) (*models.Snapshot, error)
	List(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotSummary, error)
	Count(ctx context.Context, filter models.SnapshotFilter) (int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
