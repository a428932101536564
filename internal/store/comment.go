package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// CommentStore manages post comments. Comments are append-only: there
// is deliberately no update or delete method.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a new comment attributed to the given author.
func (s *CommentStore) Create(postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, content, created_at
	`, postID, authorID, content).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments oldest first, with author names.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.created_at, u.username
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
