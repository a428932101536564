package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestCSRFSetsCookieOnFirstVisit(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			found = true
			if c.Value == "" {
				t.Error("cookie value should not be empty")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("cookie SameSite: got %v, want StrictMode", c.SameSite)
			}
		}
	}
	if !found {
		t.Error("CSRF cookie not set")
	}
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "sometoken"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	handler := CSRF(okHandler())

	form := url.Values{CSRFFormField: {"wrongtoken"}}
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "righttoken"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCSRFAcceptsMatchingFormToken(t *testing.T) {
	handler := CSRF(okHandler())

	form := url.Values{CSRFFormField: {"matchingtoken"}}
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "matchingtoken"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRFAcceptsMatchingHeaderToken(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/chat/send", nil)
	req.Header.Set(CSRFHeaderName, "ajaxtoken")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "ajaxtoken"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRFAllowsSafeMethods(t *testing.T) {
	handler := CSRF(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", method, rr.Code, http.StatusOK)
		}
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("no cookie: got %q, want empty", got)
	}

	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok123"})
	if got := GetCSRFToken(req); got != "tok123" {
		t.Errorf("got %q, want %q", got, "tok123")
	}
}
