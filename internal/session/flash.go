// flash.go implements one-time status messages. Flashes live in Valkey
// under an id from their own cookie, independent of the auth session, so
// a visitor who just logged out (or never logged in) still sees them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// FlashCookieName identifies the visitor's flash queue.
	FlashCookieName = "ip_flash"

	// flashPrefix namespaces flash keys in Valkey.
	flashPrefix = "flash:"

	// flashTTL bounds how long undelivered flashes survive.
	flashTTL = 10 * time.Minute
)

// Flash is a one-time notification message displayed on the next page.
type Flash struct {
	Type    string `json:"type"` // "success", "error", "info"
	Message string `json:"message"`
}

// AddFlash appends a flash message to the visitor's queue, creating the
// flash cookie if needed.
func (s *Store) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, kind, message string) error {
	id, err := s.flashID(w, r)
	if err != nil {
		return err
	}

	// Read-modify-write is fine here: flashes are per-visitor and the
	// browser serializes its own requests.
	flashes, _ := s.readFlashes(ctx, id)
	flashes = append(flashes, Flash{Type: kind, Message: message})

	payload, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}
	if err := s.client.Set(ctx, flashPrefix+id, payload, flashTTL).Err(); err != nil {
		return fmt.Errorf("flash store: %w", err)
	}
	return nil
}

// PopFlashes returns and removes all pending flash messages for the
// visitor. Returns nil when there are none.
func (s *Store) PopFlashes(ctx context.Context, r *http.Request) []Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}

	flashes, ok := s.readFlashes(ctx, cookie.Value)
	if !ok {
		return nil
	}
	s.client.Del(ctx, flashPrefix+cookie.Value)
	return flashes
}

// readFlashes loads the flash queue for an id. The bool is false on miss.
func (s *Store) readFlashes(ctx context.Context, id string) ([]Flash, bool) {
	payload, err := s.client.Get(ctx, flashPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil, false
	}
	return flashes, true
}

// flashID returns the visitor's flash queue id, minting a cookie when absent.
func (s *Store) flashID(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(FlashCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("flash id: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
