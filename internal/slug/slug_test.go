package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple two words", "Hello World", "hello-world"},
		{"title with year", "Hello World 2026", "hello-world-2026"},
		{"already lowercase", "already lowercase", "already-lowercase"},
		{"punctuation marks", "Hello, World! How's it going?", "hello-world-hows-it-going"},
		{"ampersand and at sign", "Rock & Roll @ the Arena", "rock-roll-the-arena"},
		{"parentheses and brackets", "Version (2.0) [Beta]", "version-20-beta"},
		{"multiple consecutive spaces collapsed", "hello    world", "hello-world"},
		{"leading and trailing spaces", "  hello world  ", "hello-world"},
		{"leading hyphens", "---hello world", "hello-world"},
		{"trailing hyphens", "hello world---", "hello-world"},
		{"multiple hyphens between words", "hello---world", "hello-world"},
		{"single hyphen preserved", "well-known fact", "well-known-fact"},
		{"empty string", "", ""},
		{"only special characters", "!@#$%^&*()", ""},
		{"only hyphens", "-----", ""},
		{"single character", "A", "a"},
		{"numbers with spaces", "12 34 56", "12-34-56"},
		{"date-like string", "2026-02-25", "2026-02-25"},
		{"question title", "What is HTMX? A Complete Guide", "what-is-htmx-a-complete-guide"},
		{"colon separated title", "Go: The Complete Developer Guide", "go-the-complete-developer-guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"my-blog-post-2026",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			got := Generate(s)
			if got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello-world", true},
		{"hello", true},
		{"a", true},
		{"2026-02-25", true},
		{"post-42", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Has-Upper", false},
		{"spaces here", false},
		{"unicode-café", false},
		{"under_score", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
