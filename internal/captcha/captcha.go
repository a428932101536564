// Package captcha implements the human-verification challenge shown on
// the registration form. A challenge is a small arithmetic question; the
// expected answer lives in Valkey under a random id with a short TTL and
// is consumed on first verification attempt, so a challenge cannot be
// replayed.
package captcha

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces challenge keys in Valkey.
	keyPrefix = "captcha:"

	// challengeTTL is how long a challenge stays answerable.
	challengeTTL = 10 * time.Minute

	// idLength is the byte length of the random challenge id.
	idLength = 16
)

// Challenge is a question presented to the visitor, identified by ID.
type Challenge struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// Provider issues and verifies challenges.
type Provider struct {
	client *redis.Client
}

// NewProvider creates a captcha provider backed by the given Valkey client.
func NewProvider(client *redis.Client) *Provider {
	return &Provider{client: client}
}

// New issues a fresh arithmetic challenge and stores its answer.
func (p *Provider) New(ctx context.Context) (*Challenge, error) {
	a, err := randomInt(10)
	if err != nil {
		return nil, err
	}
	b, err := randomInt(10)
	if err != nil {
		return nil, err
	}

	idBytes := make([]byte, idLength)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, fmt.Errorf("captcha id: %w", err)
	}
	id := hex.EncodeToString(idBytes)

	answer := strconv.Itoa(a + b)
	if err := p.client.Set(ctx, keyPrefix+id, answer, challengeTTL).Err(); err != nil {
		return nil, fmt.Errorf("captcha store: %w", err)
	}

	return &Challenge{
		ID:       id,
		Question: fmt.Sprintf("What is %d + %d?", a, b),
	}, nil
}

// Verify checks the submitted answer against the stored challenge.
// The challenge is deleted regardless of outcome — one attempt per issue.
func (p *Provider) Verify(ctx context.Context, id, answer string) bool {
	if id == "" {
		return false
	}

	expected, err := p.client.GetDel(ctx, keyPrefix+id).Result()
	if err != nil {
		return false // Expired, unknown, or already consumed.
	}

	return strings.TrimSpace(answer) == expected
}

// randomInt returns a uniform random int in [1, max].
func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("captcha rand: %w", err)
	}
	return int(n.Int64()) + 1, nil
}
