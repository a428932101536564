package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's note on a post. Comments are immutable once
// created; no edit or delete path exists.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by CommentStore.ListByPost.
	AuthorName string `json:"author_name,omitempty"`
}
