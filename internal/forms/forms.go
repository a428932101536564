// Package forms validates and binds incoming request data before it
// reaches the stores. Each form collects field-level errors into a map
// keyed by field name; an empty map means the form is valid, and the
// handler re-renders the originating view with the errors attached
// otherwise.
package forms

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 150
	MaxEmailLen    = 100
	MinPasswordLen = 8
	MaxAboutLen    = 2000
	MaxCommentLen  = 2000

	// MaxAvatarBytes bounds avatar uploads (5 MB).
	MaxAvatarBytes = 5 << 20
)

// usernamePattern restricts usernames to letters, digits, and @.+-_
// (the character set the original platform accepted).
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Errors maps field names to validation messages.
type Errors map[string]string

// Valid reports whether no field failed validation.
func (e Errors) Valid() bool { return len(e) == 0 }

// Get returns the message for a field, or "" when the field is clean.
func (e Errors) Get(field string) string { return e[field] }

// RegisterForm carries the registration submission.
type RegisterForm struct {
	Username      string
	Email         string
	Password1     string
	Password2     string
	CaptchaID     string
	CaptchaAnswer string
}

// Validate checks all fields except the captcha and duplicate checks,
// which need external collaborators (the captcha provider and the user
// store) and are layered on by the handler.
func (f *RegisterForm) Validate() Errors {
	errs := Errors{}

	f.Username = strings.TrimSpace(f.Username)
	switch {
	case f.Username == "":
		errs["username"] = "Username is required."
	case utf8.RuneCountInString(f.Username) < MinUsernameLen:
		errs["username"] = "Username must be at least 3 characters."
	case utf8.RuneCountInString(f.Username) > MaxUsernameLen:
		errs["username"] = "Username is too long (max 150 characters)."
	case !usernamePattern.MatchString(f.Username):
		errs["username"] = "Username may contain only letters, digits, and @/./+/-/_."
	}

	f.Email = strings.TrimSpace(f.Email)
	switch {
	case f.Email == "":
		errs["email"] = "Email is required."
	case utf8.RuneCountInString(f.Email) > MaxEmailLen:
		errs["email"] = "Email is too long (max 100 characters)."
	default:
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errs["email"] = "Enter a valid email address."
		}
	}

	switch {
	case f.Password1 == "":
		errs["password1"] = "Password is required."
	case utf8.RuneCountInString(f.Password1) < MinPasswordLen:
		errs["password1"] = "Password must be at least 8 characters."
	}

	if f.Password2 != f.Password1 {
		errs["password2"] = "Passwords do not match."
	}

	return errs
}

// LoginForm carries the login submission. Credential checking happens in
// the handler; the form only guards against empty fields.
type LoginForm struct {
	Username string
	Password string
}

// Validate reports missing fields.
func (f *LoginForm) Validate() Errors {
	errs := Errors{}
	f.Username = strings.TrimSpace(f.Username)
	if f.Username == "" {
		errs["username"] = "Username is required."
	}
	if f.Password == "" {
		errs["password"] = "Password is required."
	}
	return errs
}

// ProfileForm carries the own-profile edit submission. The avatar file
// itself is validated by the handler (content type and size); the form
// covers the text field.
type ProfileForm struct {
	About string
}

// Validate bounds the about text.
func (f *ProfileForm) Validate() Errors {
	errs := Errors{}
	if utf8.RuneCountInString(f.About) > MaxAboutLen {
		errs["about"] = "About is too long (max 2,000 characters)."
	}
	return errs
}

// CommentForm carries a comment submission on a post detail page.
type CommentForm struct {
	Content string
}

// Validate requires non-blank content within bounds.
func (f *CommentForm) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Content) == "" {
		errs["content"] = "Comment cannot be empty."
	} else if utf8.RuneCountInString(f.Content) > MaxCommentLen {
		errs["content"] = "Comment is too long (max 2,000 characters)."
	}
	return errs
}

// AllowedAvatarType reports whether an uploaded avatar's content type is
// an accepted image format.
func AllowedAvatarType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
