package storage

import "testing"

// TestNew_IncompleteCredentials verifies that any missing piece of the
// endpoint/key pair disables storage cleanly instead of producing a
// half-configured client.
func TestNew_IncompleteCredentials(t *testing.T) {
	tests := []struct {
		name                           string
		endpoint, accessKey, secretKey string
	}{
		{"all empty", "", "", ""},
		{"no endpoint", "", "key", "secret"},
		{"no access key", "http://localhost:9000", "", "secret"},
		{"no secret key", "http://localhost:9000", "key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.endpoint, "us-east-1", tt.accessKey, tt.secretKey, "bucket", "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if client != nil {
				t.Error("expected a nil client with incomplete credentials")
			}
		})
	}
}

// TestNew_FullCredentials verifies a complete configuration yields a
// usable client with the expected public URL shape.
func TestNew_FullCredentials(t *testing.T) {
	client, err := New("http://localhost:9000/", "us-east-1", "key", "secret", "media", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client with full credentials")
	}

	if got := client.FileURL("avatars/x.png"); got != "http://localhost:9000/media/avatars/x.png" {
		t.Errorf("FileURL: got %q", got)
	}
}
