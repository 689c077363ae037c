package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

const defaultSequenceKeyPrefix = "mla:seq:"

// RedisSequence is an alternative SequenceSource backed by Redis INCR,
// which is atomic under concurrent callers for the same key.
type RedisSequence struct {
	rdb       *redis.Client
	keyPrefix string
}

type RedisSequenceOption func(*RedisSequence)

func WithSequenceKeyPrefix(prefix string) RedisSequenceOption {
	return func(r *RedisSequence) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			r.keyPrefix = trimmed
		}
	}
}

func NewRedisSequence(rdb *redis.Client, opts ...RedisSequenceOption) *RedisSequence {
	r := &RedisSequence{
		rdb:       rdb,
		keyPrefix: defaultSequenceKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *RedisSequence) NextSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	n, err := r.rdb.Incr(ctx, r.key(tenantID, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: redis sequence tenant=%s year=%d: %v",
			contractx.ErrPersistenceUnavailable, tenantID, year, err)
	}
	return n, nil
}

func (r *RedisSequence) key(tenantID string, year int) string {
	return fmt.Sprintf("%s%s:%d", r.keyPrefix, tenantID, year)
}
