package captcha

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests. Skips if Valkey is
// unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "captcha:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// solve reads back the stored answer so tests can answer correctly.
func solve(t *testing.T, client *redis.Client, id string) string {
	t.Helper()
	answer, err := client.Get(context.Background(), "captcha:"+id).Result()
	if err != nil {
		t.Fatalf("read stored answer: %v", err)
	}
	return answer
}

func TestCaptchaNewAndVerify(t *testing.T) {
	client := testValkeyClient(t)
	p := NewProvider(client)
	ctx := context.Background()

	ch, err := p.New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ch.ID == "" {
		t.Fatal("expected non-empty challenge id")
	}

	// The question states the sum the stored answer expects.
	var a, b int
	if _, err := fmt.Sscanf(ch.Question, "What is %d + %d?", &a, &b); err != nil {
		t.Fatalf("unexpected question format %q: %v", ch.Question, err)
	}
	if got := solve(t, client, ch.ID); got != strconv.Itoa(a+b) {
		t.Errorf("stored answer %q does not match question %q", got, ch.Question)
	}

	if !p.Verify(ctx, ch.ID, strconv.Itoa(a+b)) {
		t.Error("correct answer rejected")
	}
}

func TestCaptchaVerifyIsOneShot(t *testing.T) {
	client := testValkeyClient(t)
	p := NewProvider(client)
	ctx := context.Background()

	ch, err := p.New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	answer := solve(t, client, ch.ID)

	if !p.Verify(ctx, ch.ID, answer) {
		t.Fatal("correct answer rejected")
	}
	// The challenge is consumed; even the right answer fails now.
	if p.Verify(ctx, ch.ID, answer) {
		t.Error("challenge replay accepted")
	}
}

func TestCaptchaVerifyWrongAnswerConsumes(t *testing.T) {
	client := testValkeyClient(t)
	p := NewProvider(client)
	ctx := context.Background()

	ch, err := p.New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	answer := solve(t, client, ch.ID)

	if p.Verify(ctx, ch.ID, "999") {
		t.Fatal("wrong answer accepted")
	}
	// A failed attempt burns the challenge too.
	if p.Verify(ctx, ch.ID, answer) {
		t.Error("challenge survived a wrong attempt")
	}
}

func TestCaptchaVerifyUnknownID(t *testing.T) {
	client := testValkeyClient(t)
	p := NewProvider(client)
	ctx := context.Background()

	if p.Verify(ctx, "", "3") {
		t.Error("empty id accepted")
	}
	if p.Verify(ctx, "deadbeef", "3") {
		t.Error("unknown id accepted")
	}
}
