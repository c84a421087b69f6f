// Package cache keeps recently fetched snapshots so repeated dashboard loads
// do not hit the upstream API.
package cache

import (
	"context"
	"time"

	"github.com/vytor/duodash/internal/models"
)

// Store is a snapshot cache keyed by username. A miss is (zero, false, nil).
type Store interface {
	Get(ctx context.Context, key string) (models.Snapshot, bool, error)
	Set(ctx context.Context, key string, snap models.Snapshot) error
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key for a username.
func Key(username string) string {
	return "user:" + username
}

// DefaultTTL matches how often the upstream refreshes its counters.
const DefaultTTL = 5 * time.Minute
