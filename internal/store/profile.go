package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// ProfileStore manages user profiles.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `id, user_id, avatar_key, about, updated_at`

// scanProfile scans a row into a Profile struct.
func scanProfile(scanner interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(&p.ID, &p.UserID, &p.AvatarKey, &p.About, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserID retrieves a user's profile. Returns nil if not found.
func (s *ProfileStore) FindByUserID(userID uuid.UUID) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by user: %w", err)
	}
	return p, nil
}

// GetOrCreate returns the user's profile, creating an empty one on first
// access. The unique constraint on user_id absorbs the race when two
// first visits arrive concurrently: the losing insert is a no-op and
// both requests read back the same row.
func (s *ProfileStore) GetOrCreate(userID uuid.UUID) (*models.Profile, error) {
	_, err := s.db.Exec(`
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	p, err := s.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile missing after create for user %s", userID)
	}
	return p, nil
}

// Update persists the editable profile fields.
func (s *ProfileStore) Update(p *models.Profile) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET avatar_key = $1, about = $2, updated_at = NOW()
		WHERE user_id = $3
	`, p.AvatarKey, p.About, p.UserID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
