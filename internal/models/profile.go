package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds a user's public-facing details. A profile is created
// lazily on the first visit to the own-profile page; the unique
// constraint on UserID makes concurrent creation attempts collapse
// into a single row.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AvatarKey *string   `json:"avatar_key,omitempty"` // S3 object key, nil until an avatar is uploaded
	About     string    `json:"about"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAvatar returns true once an avatar image has been uploaded.
func (p *Profile) HasAvatar() bool {
	return p.AvatarKey != nil && *p.AvatarKey != ""
}
