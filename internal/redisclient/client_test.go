package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// needs a live redis: TEST_REDIS_ADDR=localhost:6379 go test ./internal/redisclient
func newTestClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := New(Config{Addr: addr})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	return c
}

func TestIncr_CountsWithinWindow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	for want := int64(1); want <= 3; want++ {
		n, left, err := c.Incr(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != want {
			t.Fatalf("got count %d, want %d", n, want)
		}
		if left <= 0 || left > time.Minute {
			t.Fatalf("unexpected ttl %v", left)
		}
	}
}

func TestIncr_WindowExpires(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	if _, _, err := c.Incr(ctx, key, 50*time.Millisecond); err != nil {
		t.Fatalf("incr: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	n, _, err := c.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a fresh window, got count %d", n)
	}
}
