package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/store"
)

// chatHistoryLimit caps how many past messages the chat page loads.
const chatHistoryLimit = 50

// Chat groups the chat page, user search, and the incremental message
// fetch endpoint.
type Chat struct {
	renderer     *render.Renderer
	userStore    *store.UserStore
	messageStore *store.MessageStore
}

// NewChat creates a new Chat handler group.
func NewChat(renderer *render.Renderer, userStore *store.UserStore, messageStore *store.MessageStore) *Chat {
	return &Chat{
		renderer:     renderer,
		userStore:    userStore,
		messageStore: messageStore,
	}
}

// Home renders the chat page with recent history and an empty user list.
func (c *Chat) Home(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, "", nil)
}

// SearchUser renders the chat page with users matching the query.
func (c *Chat) SearchUser(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("username"))

	var users []models.User
	if query != "" {
		var err error
		users, err = c.userStore.SearchByUsername(query, 20)
		if err != nil {
			slog.Error("chat user search failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	c.render(w, r, query, users)
}

func (c *Chat) render(w http.ResponseWriter, r *http.Request, query string, users []models.User) {
	sess := middleware.SessionFromCtx(r.Context())

	msgs, err := c.messageStore.ListRecent(sess.UserID, chatHistoryLimit)
	if err != nil {
		slog.Error("chat history load failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var lastID int64
	if len(msgs) > 0 {
		lastID = msgs[len(msgs)-1].ID
	}

	c.renderer.Page(w, r, "chat", &render.PageData{
		Title:   "Chat",
		Section: "chat",
		Data: map[string]any{
			"SearchQuery": query,
			"Users":       users,
			"Messages":    msgs,
			"LastID":      lastID,
		},
	})
}

// chatMessage is the JSON shape of one message in the Ajax response.
type chatMessage struct {
	ID         int64  `json:"id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
}

// Ajax returns the user's messages newer than the given id as JSON. The
// page polls this to append messages without a reload.
func (c *Chat) Ajax(w http.ResponseWriter, r *http.Request) {
	afterID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || afterID < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	msgs, err := c.messageStore.ListAfter(sess.UserID, afterID)
	if err != nil {
		slog.Error("chat fetch failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage{ID: m.ID, SenderName: m.SenderName, Content: m.Content})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
