package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat message between two users. Unlike the other
// entities, messages use a sequential id: the chat partial-refresh
// endpoint fetches everything newer than a given id, which needs a
// monotonic ordering the client can hold on to.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`

	// Virtual fields populated by MessageStore.
	SenderName    string `json:"sender_name,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
}
