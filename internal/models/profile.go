package models

import "time"

// Profile is a username tracked for background sync.
type Profile struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSyncAt *time.Time `json:"last_sync_at"`
}

// CreateProfileRequest is the body of POST /api/profiles.
type CreateProfileRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64,excludesall=/?#"`
}
