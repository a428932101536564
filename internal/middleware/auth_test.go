package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/session"
)

// withSession plants session data in the request context, standing in
// for LoadSession in unit tests.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, data))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/saved", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusSeeOther)
	}
	loc := rr.Header().Get("Location")
	if loc != "/login?redirect_to=/saved" {
		t.Errorf("redirect: got %q, want %q", loc, "/login?redirect_to=/saved")
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/saved", nil)
	req = withSession(req, &session.Data{UserID: uuid.New(), Username: "tester", Role: "user"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"no session", nil, http.StatusForbidden},
		{"regular user", &session.Data{Role: "user"}, http.StatusForbidden},
		{"admin", &session.Data{Role: "admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.sess != nil {
				req = withSession(req, tt.sess)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequire2FA(t *testing.T) {
	handler := Require2FA(okHandler())

	// Pending 2FA gets bounced to setup.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = withSession(req, &session.Data{Role: "admin", TwoFADone: false})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/admin/2fa/setup" {
		t.Errorf("redirect: got %q, want %q", loc, "/admin/2fa/setup")
	}

	// Completed 2FA passes through.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = withSession(req, &session.Data{Role: "admin", TwoFADone: true})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestSessionFromCtxWithoutSession(t *testing.T) {
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("expected nil session, got %+v", got)
	}
}
