package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin account, a couple of categories, and one welcome post. It is a
// no-op when users already exist. The admin is prompted to set up 2FA
// on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO users (username, email, password_hash, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin", "admin@inkpress.local", string(hash), "admin", false); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO categories (name, slug) VALUES
			('General', 'general'),
			('Travel', 'travel'),
			('Technology', 'technology')
	`); err != nil {
		return fmt.Errorf("seed insert categories: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO posts (title, body, slug, category_id)
		SELECT 'Welcome to Inkpress',
		       'This is your first post. Sign in to the admin area to write more.',
		       'welcome-to-inkpress',
		       id
		FROM categories WHERE slug = 'general'
	`); err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)

	return nil
}
