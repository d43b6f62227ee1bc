package groupcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any Redis failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrInvalidTTL is returned for negative TTLs.
	ErrInvalidTTL = errors.New("invalid cache ttl")
)

const (
	verdictMember    = "1"
	verdictNotMember = "0"
)

// Store keeps membership verdicts in Redis. A TTL of zero stores keys
// without expiry.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a verdict [Store]. An empty prefix defaults to "chmod".
func NewStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) (*Store, error) {
	if ttl < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	if prefix == "" {
		prefix = "chmod"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

type verdictKey struct {
	User  string `json:"user"`
	Group string `json:"group"`
}

// Key returns the Redis key holding the verdict for user and group.
func Key(prefix, user, group string) string {
	// Marshalling a struct of two strings cannot fail.
	raw, _ := json.Marshal(verdictKey{User: user, Group: group})
	return prefix + ":granted:" + string(raw)
}

func (s *Store) key(user, group string) string {
	return Key(s.prefix, user, group)
}

// Get returns the cached verdict. found is false on a cache miss.
func (s *Store) Get(ctx context.Context, user, group string) (member bool, found bool, err error) {
	val, err := s.redis.Get(ctx, s.key(user, group)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch val {
	case verdictMember:
		return true, true, nil
	case verdictNotMember:
		return false, true, nil
	default:
		// Unknown encodings are treated as a miss and overwritten on the next Set.
		return false, false, nil
	}
}

// Set stores a verdict with the configured TTL.
func (s *Store) Set(ctx context.Context, user, group string, member bool) error {
	val := verdictNotMember
	if member {
		val = verdictMember
	}

	if err := s.redis.Set(ctx, s.key(user, group), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes a cached verdict. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, user, group string) error {
	if err := s.redis.Del(ctx, s.key(user, group)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTL returns the configured expiry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
