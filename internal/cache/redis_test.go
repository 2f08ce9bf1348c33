package cache

import (
	"context"
	"net"
	"os"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-recommender/internal/jobs"
)

// closedAddr returns an address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// liveRedis connects to the server named by JOB_RECOMMENDER_TEST_REDIS_ADDR,
// or a local default, and skips the test when it is not reachable.
func liveRedis(t *testing.T, ttl time.Duration) *Redis {
	t.Helper()
	addr := os.Getenv("JOB_RECOMMENDER_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	c := NewRedis(Config{Addr: addr, TTL: ttl}, nil)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis is not reachable at %s: %v", addr, err)
	}
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	ttl := 30 * time.Second
	c := liveRedis(t, ttl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "jobs:test:" + t.Name()
	t.Cleanup(func() { c.client.Del(context.Background(), key) })

	postings := []jobs.Posting{
		{ID: 1, Title: "Go Dev", Company: "Acme", Skills: []string{"go", "redis"}, Platform: "remoteok", URL: "https://example.com/1"},
		{ID: 2, Title: "SRE", Company: "Globex", Skills: []string{"kubernetes"}, Platform: "remotive", URL: "https://example.com/2", Salary: "$100k"},
	}
	c.Set(ctx, key, postings)

	got, ok := c.Get(ctx, key)
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if !reflect.DeepEqual(got, postings) {
		t.Fatalf("unexpected postings %+v", got)
	}

	left, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if left <= 0 || left > ttl {
		t.Fatalf("unexpected ttl %s", left)
	}

	if _, ok := c.Get(ctx, key+":missing"); ok {
		t.Fatalf("expected a miss for an unknown key")
	}
}

func TestUnreachableServerIsAMiss(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	c := NewRedis(Config{Addr: closedAddr(t)}, zap.New(core))
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.Set(ctx, "jobs:test", []jobs.Posting{{Title: "Go Dev"}})
	if postings, ok := c.Get(ctx, "jobs:test"); ok || postings != nil {
		t.Fatalf("expected a miss, got %v", postings)
	}

	if observed.FilterMessage("cache set failed").Len() != 1 {
		t.Fatalf("expected set failure to be logged")
	}
	if observed.FilterMessage("cache get failed").Len() != 1 {
		t.Fatalf("expected get failure to be logged")
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail")
	}
}

func TestDefaultTTL(t *testing.T) {
	c := NewRedis(Config{Addr: "127.0.0.1:6379"}, nil)
	t.Cleanup(func() { c.Close() })

	if c.ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %s", c.ttl)
	}
}
