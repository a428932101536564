package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"inkpress/internal/captcha"
	"inkpress/internal/forms"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/store"
)

// Auth groups registration, login, and logout handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
	captcha   *captcha.Provider
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore, captchaProvider *captcha.Provider) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
		captcha:   captchaProvider,
	}
}

// RegisterPage renders the registration form with a fresh captcha challenge.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderRegister(w, r, &forms.RegisterForm{}, nil)
}

// RegisterSubmit processes the registration form. On success the new
// user is logged in immediately and sent to the home page.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := &forms.RegisterForm{
		Username:      r.FormValue("username"),
		Email:         r.FormValue("email"),
		Password1:     r.FormValue("password1"),
		Password2:     r.FormValue("password2"),
		CaptchaID:     r.FormValue("captcha_id"),
		CaptchaAnswer: r.FormValue("captcha_answer"),
	}

	errs := form.Validate()

	// The captcha is consumed on verification, so only check it once
	// the rest of the form stands a chance.
	if !a.captcha.Verify(r.Context(), form.CaptchaID, form.CaptchaAnswer) {
		errs["captcha"] = "Wrong answer - please try again."
	}

	// Duplicate checks need the store; layered on top of field validation.
	if _, ok := errs["username"]; !ok {
		existing, err := a.userStore.FindByUsername(form.Username)
		if err != nil {
			slog.Error("register username lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			errs["username"] = "That username is already taken."
		}
	}
	if _, ok := errs["email"]; !ok {
		existing, err := a.userStore.FindByEmail(form.Email)
		if err != nil {
			slog.Error("register email lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			errs["email"] = "An account with that email already exists."
		}
	}

	if !errs.Valid() {
		a.renderRegister(w, r, form, errs)
		return
	}

	user, err := a.userStore.Create(form.Username, form.Email, form.Password1, models.RoleUser)
	if err != nil {
		slog.Error("create user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sessions.AddFlash(r.Context(), w, r, "success", "Welcome, "+user.Username+"! Your account has been created.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderRegister shows the registration form, issuing a new captcha
// challenge (the previous one is consumed whether or not it was right).
func (a *Auth) renderRegister(w http.ResponseWriter, r *http.Request, form *forms.RegisterForm, errs forms.Errors) {
	challenge, err := a.captcha.New(r.Context())
	if err != nil {
		slog.Error("captcha issue failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusUnprocessableEntity
	}

	a.renderer.PageWithStatus(w, r, status, "register", &render.PageData{
		Title:   "Register",
		Section: "register",
		Errors:  errs,
		Data: map[string]any{
			"Username":        form.Username,
			"Email":           form.Email,
			"CaptchaID":       challenge.ID,
			"CaptchaQuestion": challenge.Question,
		},
	})
}

// NewCaptcha issues a fresh challenge as JSON, for refreshing the
// question without reloading the form.
func (a *Auth) NewCaptcha(w http.ResponseWriter, r *http.Request) {
	challenge, err := a.captcha.New(r.Context())
	if err != nil {
		slog.Error("captcha issue failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(challenge)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Sign In",
		Section: "login",
		Data: map[string]any{
			"RedirectTo": safeRedirect(r.URL.Query().Get("redirect_to")),
		},
	})
}

// LoginSubmit processes the login form. Credential failures get one
// generic message — never a hint about which field was wrong.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := &forms.LoginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	if errs := form.Validate(); !errs.Valid() {
		a.renderer.PageWithStatus(w, r, http.StatusUnprocessableEntity, "login", &render.PageData{
			Title:   "Sign In",
			Section: "login",
			Errors:  errs,
			Data: map[string]any{
				"Username":   form.Username,
				"RedirectTo": safeRedirect(r.FormValue("redirect_to")),
			},
		})
		return
	}

	user, err := a.userStore.FindByUsername(form.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, form.Password) {
		a.sessions.AddFlash(r.Context(), w, r, "error", "Invalid username or password.")
		loginURL := "/login"
		if target := safeRedirect(r.FormValue("redirect_to")); target != "/" {
			loginURL += "?redirect_to=" + url.QueryEscape(target)
		}
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sessions.AddFlash(r.Context(), w, r, "success", "You are now logged in, "+user.Username+".")
	http.Redirect(w, r, safeRedirect(r.FormValue("redirect_to")), http.StatusSeeOther)
}

// Logout destroys the session unconditionally and returns to the home page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	a.sessions.AddFlash(r.Context(), w, r, "info", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect confines a post-login redirect target to local paths;
// anything else falls back to the home page.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
