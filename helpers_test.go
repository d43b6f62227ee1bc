package goChmod

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// countingResolver mirrors the fixture groups used across the tests.
type countingResolver struct {
	mu     sync.Mutex
	groups map[string][]string
	calls  atomic.Int64
	err    error
}

func newCountingResolver() *countingResolver {
	return &countingResolver{
		groups: map[string][]string{
			"testuser1": {"testgroup1", "testgroup2"},
			"testuser2": {"testgroup2"},
			"testuser3": {"testgroup3"},
		},
	}
}

func (r *countingResolver) GroupsForUser(_ context.Context, user string) ([]string, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.groups[user], nil
}

func (r *countingResolver) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func buildTestManager(t *testing.T, cfg Config, resolver GroupResolver) *Manager {
	t.Helper()

	b := New().WithConfig(cfg)
	if resolver != nil {
		b = b.WithGroupResolver(resolver)
	}
	if cfg.Cache.Enabled {
		_, rdb := newTestRedis(t)
		b = b.WithRedis(rdb)
	}

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func mustSpec(t *testing.T, mode int, owner, group string) Spec {
	t.Helper()
	s, err := SpecFromDigits(mode, owner, group)
	if err != nil {
		t.Fatalf("SpecFromDigits(%d): %v", mode, err)
	}
	return s
}
