package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// IdempotencyStore remembers which notification keys were already
// handled so a redelivered message does not send the same email twice.
type IdempotencyStore struct {
	rdb    *goredis.Client
	prefix string // "idem:"
}

func NewIdempotencyStore(c *Client) *IdempotencyStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &IdempotencyStore{
		rdb:    rdb,
		prefix: "idem:",
	}
}

func (s *IdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, domain.ErrMissingField("key")
	}
	if s.rdb == nil {
		return false, errors.New("redis idempotency store not configured")
	}

	n, err := s.rdb.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency seen: %w", err)
	}
	return n > 0, nil
}

func (s *IdempotencyStore) MarkSent(ctx context.Context, key string, ttl time.Duration) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrMissingField("key")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis idempotency store not configured")
	}

	// Overwrite is fine; re-marking an already sent key is still "sent".
	if err := s.rdb.Set(ctx, s.prefix+key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("idempotency mark: %w", err)
	}
	return nil
}
