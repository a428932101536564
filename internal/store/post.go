package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 4

// PostStore handles all post-related database operations, including the
// views/likes/saves membership sets.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.body, p.image_key, p.slug, p.category_id, p.created_at, c.name`

// scanPost scans a joined post row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Body, &p.ImageKey, &p.Slug,
		&p.CategoryID, &p.CreatedAt, &p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// collectPosts drains a result set of joined post rows.
func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// ListAll returns every post in insertion order. Used for the slide
// carousel on the listing pages.
func (s *PostStore) ListAll() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `
		FROM posts p JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

// ListPage returns one page of posts, optionally filtered by a
// case-insensitive title substring. Out-of-range pages clamp: anything
// below 1 becomes page 1, anything past the end becomes the last page.
func (s *PostStore) ListPage(query string, page int) (*models.PostPage, error) {
	pattern := "%" + query + "%"

	var total int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts WHERE ($1 = '' OR title ILIKE $2)
	`, query, pattern).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	totalPages := (total + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = clampPage(page, totalPages)

	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE ($1 = '' OR p.title ILIKE $2)
		ORDER BY p.created_at ASC
		LIMIT $3 OFFSET $4
	`, query, pattern, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts page: %w", err)
	}

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}

	return &models.PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// Search returns all posts whose title contains the query,
// case-insensitively, without pagination.
func (s *PostStore) Search(query string) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE p.title ILIKE $1
		ORDER BY p.created_at ASC
	`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return collectPosts(rows)
}

// ListByCategorySlug returns all posts in the category with the given slug.
func (s *PostStore) ListByCategorySlug(categorySlug string) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE c.slug = $1
		ORDER BY p.created_at ASC
	`, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return collectPosts(rows)
}

// ListSavedPage returns one page of the posts a user has saved, newest
// save first, with the same clamping as ListPage.
func (s *PostStore) ListSavedPage(userID uuid.UUID, page int) (*models.PostPage, error) {
	var total int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM post_saves WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count saved posts: %w", err)
	}

	totalPages := (total + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = clampPage(page, totalPages)

	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM post_saves ps
		JOIN posts p ON p.id = ps.post_id
		JOIN categories c ON c.id = p.category_id
		WHERE ps.user_id = $1
		ORDER BY ps.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("list saved posts: %w", err)
	}

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}

	return &models.PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE p.slug = $1
	`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	result := &models.Post{CategoryName: p.CategoryName}
	err := s.db.QueryRow(`
		INSERT INTO posts (title, body, image_key, slug, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, body, image_key, slug, category_id, created_at
	`, p.Title, p.Body, p.ImageKey, p.Slug, p.CategoryID).Scan(
		&result.ID, &result.Title, &result.Body, &result.ImageKey,
		&result.Slug, &result.CategoryID, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET title = $1, body = $2, image_key = $3, slug = $4, category_id = $5
		WHERE id = $6
	`, p.Title, p.Body, p.ImageKey, p.Slug, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Membership rows and comments cascade.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// RecordView adds the user to the post's view set. The join table's
// primary key makes this at-most-once: repeat visits are no-ops.
func (s *PostStore) RecordView(postID, userID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO post_views (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// ToggleLike flips the user's membership in the post's like set and
// returns the resulting state (true = now liked). Concurrent toggles
// from the same user resolve last-writer-wins at the row level; no
// application-level locking is imposed.
func (s *PostStore) ToggleLike(postID, userID uuid.UUID) (bool, error) {
	return s.toggle("post_likes", postID, userID)
}

// ToggleSave flips the user's membership in the post's save set and
// returns the resulting state (true = now saved).
func (s *PostStore) ToggleSave(postID, userID uuid.UUID) (bool, error) {
	return s.toggle("post_saves", postID, userID)
}

// toggle performs an existence-check-then-insert/delete on a membership table.
func (s *PostStore) toggle(table string, postID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM `+table+` WHERE post_id = $1 AND user_id = $2)
	`, postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("toggle %s check: %w", table, err)
	}

	if exists {
		_, err = s.db.Exec(`DELETE FROM `+table+` WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return false, fmt.Errorf("toggle %s delete: %w", table, err)
		}
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO `+table+` (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle %s insert: %w", table, err)
	}
	return true, nil
}

// ViewCount returns how many distinct users have viewed the post.
func (s *PostStore) ViewCount(postID uuid.UUID) (int, error) {
	return s.count("post_views", postID)
}

// LikeCount returns how many users have liked the post.
func (s *PostStore) LikeCount(postID uuid.UUID) (int, error) {
	return s.count("post_likes", postID)
}

func (s *PostStore) count(table string, postID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// IsLiked reports whether the user is in the post's like set.
func (s *PostStore) IsLiked(postID, userID uuid.UUID) (bool, error) {
	return s.member("post_likes", postID, userID)
}

// IsSaved reports whether the user is in the post's save set.
func (s *PostStore) IsSaved(postID, userID uuid.UUID) (bool, error) {
	return s.member("post_saves", postID, userID)
}

func (s *PostStore) member(table string, postID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM `+table+` WHERE post_id = $1 AND user_id = $2)
	`, postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("membership %s: %w", table, err)
	}
	return exists, nil
}

// clampPage normalizes a requested page number: below 1 falls back to
// the first page, past the end falls back to the last page.
func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
