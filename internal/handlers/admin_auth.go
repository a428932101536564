package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkpress/internal/middleware"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/store"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "Inkpress"

// AdminAuth handles the two-factor step admins must pass before
// reaching the management pages.
type AdminAuth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAdminAuth creates a new AdminAuth handler group.
func NewAdminAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *AdminAuth {
	return &AdminAuth{renderer: renderer, sessions: sessions, userStore: userStore}
}

// LoginPage renders the admin sign-in form. An admin who already
// completed the 2FA step goes straight to the dashboard.
func (a *AdminAuth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.Role == "admin" && sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "admin_login", &render.PageData{
		Title:   "Admin Sign In",
		Section: "admin",
		Data:    map[string]any{"Email": ""},
	})
}

// LoginSubmit processes the admin login form. The credential check is
// email-based and the account must hold the admin role; any failure
// gets the same generic message. Success opens a session with the 2FA
// step still pending.
func (a *AdminAuth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("admin login lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user == nil || !user.IsAdmin() || !a.userStore.CheckPassword(user, password) {
		a.renderer.PageWithStatus(w, r, http.StatusUnprocessableEntity, "admin_login", &render.PageData{
			Title:   "Admin Sign In",
			Section: "admin",
			Data:    map[string]any{"Error": "Invalid email or password.", "Email": email},
		})
		return
	}

	// TwoFADone starts false: the Require2FA gate holds until the code
	// is verified.
	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPEnabled {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
	}
}

// Logout destroys the admin's session and returns to the admin sign-in
// page.
func (a *AdminAuth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// TwoFASetupPage generates a TOTP secret and displays it as a QR code.
func (a *AdminAuth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Already configured: the verify page is the right place.
	if user.TOTPEnabled {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_twofa_setup", &render.PageData{
		Title:   "Set Up Two-Factor Authentication",
		Section: "admin",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the code entry form for admins who already
// have an authenticator configured.
func (a *AdminAuth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "admin_twofa_verify", &render.PageData{
		Title:   "Two-Factor Authentication",
		Section: "admin",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes the admin
// login. First-time setup enables TOTP on success.
func (a *AdminAuth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	code := r.FormValue("code")

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		if !user.TOTPEnabled {
			// Back to the setup page, showing the same secret again.
			qrPNG, _ := qrcode.Encode(
				fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s", totpIssuer, user.Email, *user.TOTPSecret, totpIssuer),
				qrcode.Medium, 256,
			)

			a.renderer.Page(w, r, "admin_twofa_setup", &render.PageData{
				Title:   "Set Up Two-Factor Authentication",
				Section: "admin",
				Data: map[string]any{
					"Error":  "Invalid code. Please try again.",
					"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
					"Secret": *user.TOTPSecret,
				},
			})
			return
		}

		a.renderer.Page(w, r, "admin_twofa_verify", &render.PageData{
			Title:   "Two-Factor Authentication",
			Section: "admin",
			Data:    map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
