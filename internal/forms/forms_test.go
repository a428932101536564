package forms

import (
	"strings"
	"testing"
)

func validRegisterForm() *RegisterForm {
	return &RegisterForm{
		Username:  "new.user",
		Email:     "new.user@example.com",
		Password1: "longenoughpass",
		Password2: "longenoughpass",
	}
}

func TestRegisterFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RegisterForm)
		wantField string
	}{
		{"valid form", func(f *RegisterForm) {}, ""},
		{"empty username", func(f *RegisterForm) { f.Username = "" }, "username"},
		{"whitespace username", func(f *RegisterForm) { f.Username = "   " }, "username"},
		{"username too short", func(f *RegisterForm) { f.Username = "ab" }, "username"},
		{"username too long", func(f *RegisterForm) { f.Username = strings.Repeat("a", 151) }, "username"},
		{"username bad characters", func(f *RegisterForm) { f.Username = "bad name!" }, "username"},
		{"username allows at and dots", func(f *RegisterForm) { f.Username = "user.name@host" }, ""},
		{"empty email", func(f *RegisterForm) { f.Email = "" }, "email"},
		{"malformed email", func(f *RegisterForm) { f.Email = "not-an-email" }, "email"},
		{"email too long", func(f *RegisterForm) { f.Email = strings.Repeat("a", 95) + "@x.com" }, "email"},
		{"empty password", func(f *RegisterForm) { f.Password1, f.Password2 = "", "" }, "password1"},
		{"short password", func(f *RegisterForm) { f.Password1, f.Password2 = "short", "short" }, "password1"},
		{"password mismatch", func(f *RegisterForm) { f.Password2 = "somethingelse" }, "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegisterForm()
			tt.mutate(f)
			errs := f.Validate()

			if tt.wantField == "" {
				if !errs.Valid() {
					t.Errorf("expected valid, got errors: %v", errs)
				}
				return
			}
			if errs.Valid() {
				t.Fatalf("expected error on %q, form passed", tt.wantField)
			}
			if errs.Get(tt.wantField) == "" {
				t.Errorf("expected error on %q, got: %v", tt.wantField, errs)
			}
		})
	}
}

func TestLoginFormValidate(t *testing.T) {
	f := &LoginForm{Username: "someone", Password: "whatever"}
	if errs := f.Validate(); !errs.Valid() {
		t.Errorf("expected valid, got %v", errs)
	}

	f = &LoginForm{Username: "  ", Password: ""}
	errs := f.Validate()
	if errs.Get("username") == "" || errs.Get("password") == "" {
		t.Errorf("expected username and password errors, got %v", errs)
	}
}

func TestProfileFormValidate(t *testing.T) {
	f := &ProfileForm{About: strings.Repeat("x", MaxAboutLen)}
	if errs := f.Validate(); !errs.Valid() {
		t.Errorf("about at the limit should pass, got %v", errs)
	}

	f = &ProfileForm{About: strings.Repeat("x", MaxAboutLen+1)}
	if errs := f.Validate(); errs.Get("about") == "" {
		t.Error("about over the limit should fail")
	}

	// Empty about is fine.
	f = &ProfileForm{}
	if errs := f.Validate(); !errs.Valid() {
		t.Errorf("empty about should pass, got %v", errs)
	}
}

func TestCommentFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
	}{
		{"normal comment", "nice post", true},
		{"empty", "", false},
		{"whitespace only", "   \n\t ", false},
		{"at the limit", strings.Repeat("y", MaxCommentLen), true},
		{"over the limit", strings.Repeat("y", MaxCommentLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &CommentForm{Content: tt.content}
			errs := f.Validate()
			if got := errs.Valid(); got != tt.valid {
				t.Errorf("Validate() valid = %v, want %v (errs: %v)", got, tt.valid, errs)
			}
		})
	}
}

func TestAllowedAvatarType(t *testing.T) {
	allowed := []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	for _, ct := range allowed {
		if !AllowedAvatarType(ct) {
			t.Errorf("AllowedAvatarType(%q) = false, want true", ct)
		}
	}

	denied := []string{"image/svg+xml", "text/html", "application/pdf", ""}
	for _, ct := range denied {
		if AllowedAvatarType(ct) {
			t.Errorf("AllowedAvatarType(%q) = true, want false", ct)
		}
	}
}
