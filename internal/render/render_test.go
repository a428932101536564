package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/session"
)

// helperRequest builds a request whose context optionally carries a session.
func helperRequest(sess *session.Data) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess != nil {
		ctx := context.WithValue(req.Context(), middleware.SessionKey, sess)
		req = req.WithContext(ctx)
	}
	return req
}

func TestNew(t *testing.T) {
	for _, devMode := range []bool{true, false} {
		r, err := New(nil, devMode)
		if err != nil {
			t.Fatalf("New(devMode=%v): %v", devMode, err)
		}
		if r == nil {
			t.Fatal("expected renderer, got nil")
		}
	}
}

func TestNewRegistersExpectedTemplates(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []string{
		"blog_main", "post_view", "category", "register", "login",
		"profile", "look_profile", "chat", "not_found",
		"admin_dashboard", "admin_posts", "admin_post_form",
		"admin_categories", "admin_category_form", "admin_users",
		"admin_login", "admin_twofa_setup", "admin_twofa_verify",
	}
	for _, name := range want {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %q not registered", name)
		}
	}
}

func TestPageRendersWithSession(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess := &session.Data{UserID: uuid.New(), Username: "render-tester", Role: "user"}
	req := helperRequest(sess)
	rr := httptest.NewRecorder()

	r.Page(rr, req, "login", &PageData{Title: "Sign In", Section: "login", Data: map[string]any{}})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Sign In") {
		t.Error("rendered page missing the title")
	}
	if !strings.Contains(body, "render-tester") {
		t.Error("rendered page missing the session username")
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %q", ct)
	}
}

// TestListingPaginationKeepsSearchQuery renders the listing mid-way
// through a filtered result and checks the prev/next links carry the
// filter instead of resetting to the full listing.
func TestListingPaginationKeepsSearchQuery(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rr := httptest.NewRecorder()
	r.Page(rr, helperRequest(nil), "blog_main", &PageData{
		Title: "Home",
		Data: map[string]any{
			"Posts":       []models.Post{},
			"Page":        &models.PostPage{Page: 2, TotalPages: 3, Total: 9},
			"SearchQuery": "hello",
		},
	})

	body := rr.Body.String()
	if !strings.Contains(body, "?page=1&amp;searchpost=hello") {
		t.Error("previous link dropped the search query")
	}
	if !strings.Contains(body, "?page=3&amp;searchpost=hello") {
		t.Error("next link dropped the search query")
	}
}

// TestListingRendersCarousel checks the slide strip lists every post it
// is given, independent of the paginated section below.
func TestListingRendersCarousel(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	slides := []models.Post{
		{Title: "Slide Alpha", Slug: "slide-alpha"},
		{Title: "Slide Beta", Slug: "slide-beta"},
	}

	rr := httptest.NewRecorder()
	r.Page(rr, helperRequest(nil), "blog_main", &PageData{
		Title: "Home",
		Data: map[string]any{
			"Posts":      slides[:1],
			"SlidePosts": slides,
		},
	})

	body := rr.Body.String()
	for _, p := range slides {
		if !strings.Contains(body, p.Title) {
			t.Errorf("carousel missing %q", p.Title)
		}
	}
	if !strings.Contains(body, "data-carousel") {
		t.Error("carousel markup not rendered")
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rr := httptest.NewRecorder()
	r.Page(rr, helperRequest(nil), "no_such_template", nil)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestNotFound(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rr := httptest.NewRecorder()
	r.NotFound(rr, helperRequest(nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPageWithStatus(t *testing.T) {
	r, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rr := httptest.NewRecorder()
	r.PageWithStatus(rr, helperRequest(nil), http.StatusUnprocessableEntity, "register", &PageData{
		Title:  "Register",
		Errors: map[string]string{"username": "Username is required."},
		Data:   map[string]any{"CaptchaQuestion": "What is 1 + 1?", "CaptchaID": "x"},
	})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "Username is required.") {
		t.Error("field error not rendered")
	}
}
