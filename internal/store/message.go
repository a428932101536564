package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// MessageStore manages chat messages.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore returns a new MessageStore.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageSelect = `
	SELECT m.id, m.sender_id, m.recipient_id, m.content, m.created_at,
	       su.username, ru.username
	FROM messages m
	JOIN users su ON su.id = m.sender_id
	JOIN users ru ON ru.id = m.recipient_id
`

// collectMessages drains a result set of joined message rows.
func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	defer rows.Close()
	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt,
			&m.SenderName, &m.RecipientName,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ListRecent returns the user's most recent messages (sent or received),
// reordered oldest first for display.
func (s *MessageStore) ListRecent(userID uuid.UUID, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(messageSelect+`
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListAfter returns the user's messages with an id greater than afterID,
// oldest first. Drives the chat partial-refresh endpoint.
func (s *MessageStore) ListAfter(userID uuid.UUID, afterID int64) ([]models.Message, error) {
	rows, err := s.db.Query(messageSelect+`
		WHERE (m.sender_id = $1 OR m.recipient_id = $1) AND m.id > $2
		ORDER BY m.id ASC
	`, userID, afterID)
	if err != nil {
		return nil, fmt.Errorf("list messages after: %w", err)
	}
	return collectMessages(rows)
}

// Create inserts a new message. The send endpoint is not currently
// routed; this exists for seeding and the eventual send flow.
func (s *MessageStore) Create(senderID, recipientID uuid.UUID, content string) (*models.Message, error) {
	m := &models.Message{}
	err := s.db.QueryRow(`
		INSERT INTO messages (sender_id, recipient_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, recipient_id, content, created_at
	`, senderID, recipientID, content).Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}
