package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mitrakatalog/catalog-management/internal"
)

const (
	viewKeyPrefix     = "catalog:views:"
	downloadKeyPrefix = "catalog:downloads:"
)

// CounterSink receives the buffered deltas on flush. The catalog repository
// satisfies it.
type CounterSink interface {
	IncrementViewCount(id int64, delta int64) error
	IncrementDownloadCount(id int64, delta int64) error
}

// Counters buffers view and download bumps in redis so public reads never
// write to the database. A periodic flush drains the buckets into the sink.
type Counters struct {
	client *redis.Client
	logger *slog.Logger
}

func NewCounters(client *redis.Client, logger *slog.Logger) *Counters {
	return &Counters{client: client, logger: logger}
}

func (c *Counters) BumpView(ctx context.Context, catalogID int64) {
	c.bump(ctx, viewKeyPrefix, catalogID)
}

func (c *Counters) BumpDownload(ctx context.Context, catalogID int64) {
	c.bump(ctx, downloadKeyPrefix, catalogID)
}

// bump runs detached from the request, so it carries its own deadline.
func (c *Counters) bump(ctx context.Context, prefix string, catalogID int64) {
	ctx, cancel := internal.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("%s%d", prefix, catalogID)
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		c.logger.Debug("counter bump failed", "key", key, "error", err)
	}
}

// Flush drains all buffered counters into the sink. Each bucket is removed
// atomically with GETDEL, so bumps arriving during the flush land in a fresh
// bucket and survive to the next cycle.
func (c *Counters) Flush(ctx context.Context, sink CounterSink) error {
	if err := c.flushPrefix(ctx, viewKeyPrefix, sink.IncrementViewCount); err != nil {
		return err
	}
	return c.flushPrefix(ctx, downloadKeyPrefix, sink.IncrementDownloadCount)
}

func (c *Counters) flushPrefix(ctx context.Context, prefix string, apply func(id, delta int64) error) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := c.client.GetDel(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			c.logger.Warn("skipping malformed counter key", "key", key)
			continue
		}
		delta, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || delta == 0 {
			continue
		}

		if err := apply(id, delta); err != nil {
			c.logger.Error("counter flush failed", "key", key, "delta", delta, "error", err)
		}
	}
	return iter.Err()
}
