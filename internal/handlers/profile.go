package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/forms"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/storage"
	"inkpress/internal/store"
)

// Profile groups the own-profile editor and the public profile view.
type Profile struct {
	renderer      *render.Renderer
	sessions      *session.Store
	userStore     *store.UserStore
	profileStore  *store.ProfileStore
	storageClient *storage.Client
}

// NewProfile creates a new Profile handler group.
func NewProfile(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore, profileStore *store.ProfileStore, storageClient *storage.Client) *Profile {
	return &Profile{
		renderer:      renderer,
		sessions:      sessions,
		userStore:     userStore,
		profileStore:  profileStore,
		storageClient: storageClient,
	}
}

// Own renders the logged-in user's profile editor. The profile row is
// created on first visit.
func (p *Profile) Own(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	profile, err := p.profileStore.GetOrCreate(sess.UserID)
	if err != nil {
		slog.Error("profile load failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderOwn(w, r, profile, nil)
}

// OwnSubmit updates the about text and, when a file is attached, the
// avatar. The upload replaces any previous avatar object.
func (p *Profile) OwnSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	profile, err := p.profileStore.GetOrCreate(sess.UserID)
	if err != nil {
		slog.Error("profile load failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(forms.MaxAvatarBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := &forms.ProfileForm{About: r.FormValue("about")}
	errs := form.Validate()

	file, header, err := r.FormFile("avatar")
	if err == nil {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		switch {
		case p.storageClient == nil:
			errs["avatar"] = "Avatar uploads are not available right now."
		case !forms.AllowedAvatarType(contentType):
			errs["avatar"] = "Avatar must be a JPEG, PNG, GIF, or WebP image."
		case header.Size > forms.MaxAvatarBytes:
			errs["avatar"] = "Avatar is too large (max 5 MB)."
		}

		if errs.Valid() {
			key := avatarKey(sess.UserID, header.Filename)
			if err := p.storageClient.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
				slog.Error("avatar upload failed", "error", err, "user_id", sess.UserID)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if profile.AvatarKey != nil && *profile.AvatarKey != key {
				if err := p.storageClient.Delete(r.Context(), *profile.AvatarKey); err != nil {
					slog.Warn("old avatar delete failed", "error", err, "key", *profile.AvatarKey)
				}
			}
			profile.AvatarKey = &key
		}
	} else if err != http.ErrMissingFile {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !errs.Valid() {
		profile.About = form.About
		p.renderOwnWithStatus(w, r, http.StatusUnprocessableEntity, profile, errs)
		return
	}

	profile.About = form.About
	if err := p.profileStore.Update(profile); err != nil {
		slog.Error("profile update failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.sessions.AddFlash(r.Context(), w, r, "success", "Profile updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Look renders another user's public profile. Viewing yourself
// redirects to the editor instead.
func (p *Profile) Look(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := p.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("profile user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		p.renderer.NotFound(w, r)
		return
	}

	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == user.ID {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	profile, err := p.profileStore.GetOrCreate(user.ID)
	if err != nil {
		slog.Error("profile load failed", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "look_profile", &render.PageData{
		Title:   user.Username,
		Section: "profile",
		Data: map[string]any{
			"Username":  user.Username,
			"About":     profile.About,
			"AvatarURL": p.avatarURL(profile),
		},
	})
}

func (p *Profile) renderOwn(w http.ResponseWriter, r *http.Request, profile *models.Profile, errs forms.Errors) {
	p.renderOwnWithStatus(w, r, http.StatusOK, profile, errs)
}

func (p *Profile) renderOwnWithStatus(w http.ResponseWriter, r *http.Request, status int, profile *models.Profile, errs forms.Errors) {
	sess := middleware.SessionFromCtx(r.Context())
	p.renderer.PageWithStatus(w, r, status, "profile", &render.PageData{
		Title:   "Your Profile",
		Section: "profile",
		Errors:  errs,
		Data: map[string]any{
			"Username":  sess.Username,
			"About":     profile.About,
			"AvatarURL": p.avatarURL(profile),
		},
	})
}

func (p *Profile) avatarURL(profile *models.Profile) string {
	if p.storageClient == nil || profile.AvatarKey == nil {
		return ""
	}
	return p.storageClient.FileURL(*profile.AvatarKey)
}

// avatarKey builds the object key for a user's avatar. Each upload gets
// a fresh key so caches and CDNs never serve a stale image.
func avatarKey(userID uuid.UUID, filename string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), path.Ext(filename))
}
