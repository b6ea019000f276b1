package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const detailKeyPrefix = "catalog:detail:"

// DetailCache holds serialized public catalog payloads keyed by slug. The
// caller supplies the ttl per entry; entries for records close to their end
// date arrive with a correspondingly short ttl.
type DetailCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewDetailCache(client *redis.Client, logger *slog.Logger) *DetailCache {
	return &DetailCache{client: client, logger: logger}
}

func (c *DetailCache) GetDetail(ctx context.Context, slugStr string) ([]byte, error) {
	raw, err := c.client.Get(ctx, detailKeyPrefix+slugStr).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *DetailCache) SetDetail(ctx context.Context, slugStr string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, detailKeyPrefix+slugStr, payload, ttl).Err()
}

func (c *DetailCache) InvalidateDetail(ctx context.Context, slugStr string) error {
	return c.client.Del(ctx, detailKeyPrefix+slugStr).Err()
}
