package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// getRedisURL returns REDIS_URL or the local default
func getRedisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func isRedisAvailable() bool {
	opts, err := redis.ParseURL(getRedisURL())
	if err != nil {
		return false
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

func TestRedisConfig_Defaults(t *testing.T) {
	cfg := RedisConfig{}
	cfg.applyDefaults()

	if cfg.Stream != "correlator" {
		t.Errorf("Expected stream 'correlator', got %q", cfg.Stream)
	}
	if cfg.Group != "correlator-group" {
		t.Errorf("Expected group 'correlator-group', got %q", cfg.Group)
	}
	if cfg.Consumer == "" {
		t.Error("Expected a consumer name")
	}
}

func TestNewRedisQueue_Unreachable(t *testing.T) {
	_, err := newRedisQueue(RedisConfig{URL: "redis://127.0.0.1:1"})
	if err == nil {
		t.Fatal("Expected error with unreachable Redis")
	}
}

func TestRedisQueue_PublishSubscribe(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping test")
	}

	stream := "test-correlator-" + time.Now().Format("150405.000000")
	q, err := newRedisQueue(RedisConfig{URL: getRedisURL(), Stream: stream, Group: "test-group"})
	if err != nil {
		t.Fatalf("Failed to create Redis queue: %v", err)
	}
	defer func() {
		q.client.Del(context.Background(), q.streamKey("days"))
		_ = q.Close()
	}()

	got := make(chan string, 1)
	if err := q.Subscribe("days", func(data []byte) error {
		got <- string(data)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := q.Publish(context.Background(), "days", []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case s := <-got:
		if s != "hello" {
			t.Errorf("Expected 'hello', got %q", s)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}
