package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups posts. The slug doubles as the category's URL segment
// and is checked before post slugs when resolving /{slug}.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by CategoryStore.List.
	PostCount int `json:"post_count"`
}
