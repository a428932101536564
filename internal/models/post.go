package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. The slug is unique and serves as the canonical
// URL key; the numeric counters and membership flags are virtual fields
// filled in by PostStore for the requesting user.
type Post struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ImageKey   *string   `json:"image_key,omitempty"` // S3 object key, nil when no image is attached
	Slug       string    `json:"slug"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Virtual fields.
	CategoryName string `json:"category_name,omitempty"`
	ViewCount    int    `json:"view_count"`
	LikeCount    int    `json:"like_count"`
}

// PostPage is one page of a paginated post listing.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
}

// HasPrev reports whether a previous page exists.
func (p *PostPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p *PostPage) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number, clamped to 1.
func (p *PostPage) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number, clamped to the last page.
func (p *PostPage) NextPage() int {
	if p.Page >= p.TotalPages {
		return p.TotalPages
	}
	return p.Page + 1
}
