package duolingo

import (
	"context"

	"github.com/vytor/duodash/internal/rawdata"
)

// ClientInterface defines the upstream operations the services depend on.
type ClientInterface interface {
	FetchProfile(ctx context.Context, username string) (rawdata.Record, error)
	FetchUser(ctx context.Context, username string) (rawdata.Record, error)
	FetchXPSummaries(ctx context.Context, userID string) ([]any, error)
	FetchLeaderboardHistory(ctx context.Context, userID string) (rawdata.Record, error)
	HasCredentials() bool
}

var _ ClientInterface = (*Client)(nil)
