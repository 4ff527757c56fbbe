package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	bookKeyPrefix    = "catalog:book:"
	versionKeyPrefix = "catalog:book-version:"
)

// RedisCache is a read-through cache for book lookups in front of another
// Repository. Writes go to the wrapped repository first, then bump the
// book's version key and evict the cached entry.
//
// A fill WATCHes the version key, so a read that raced with a write never
// stores the value it loaded before the write.
type RedisCache struct {
	next   Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(next Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func bookKey(id BookID) string {
	return bookKeyPrefix + id.String()
}

func versionKey(id BookID) string {
	return versionKeyPrefix + id.String()
}

func (c *RedisCache) GetByID(ctx context.Context, id BookID) (Book, error) {
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	switch {
	case err == nil:
		var b Book
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("book_id", id.String()))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", zap.String("book_id", id.String()), zap.Error(err))
	}

	var (
		b       Book
		loadErr error
		loaded  bool
	)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		b, loadErr = c.next.GetByID(ctx, id)
		loaded = true
		if loadErr != nil {
			return loadErr
		}
		encoded, err := json.Marshal(b)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookKey(id), encoded, c.ttl)
			return nil
		})
		return err
	}, versionKey(id))

	if !loaded {
		// WATCH itself failed; serve from the store without caching.
		b, loadErr = c.next.GetByID(ctx, id)
	}
	if loadErr != nil {
		return Book{}, loadErr
	}
	switch {
	case errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("cache fill skipped after concurrent write", zap.String("book_id", id.String()))
	case err != nil:
		c.logger.Warn("cache write failed", zap.String("book_id", id.String()), zap.Error(err))
	}
	return b, nil
}

func (c *RedisCache) SetAvailability(ctx context.Context, id BookID, available bool) error {
	if err := c.next.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	return c.invalidate(ctx, id)
}

func (c *RedisCache) Search(ctx context.Context, criterion string) ([]Book, error) {
	return c.next.Search(ctx, criterion)
}

func (c *RedisCache) Upsert(ctx context.Context, b Book) error {
	if err := c.next.Upsert(ctx, b); err != nil {
		return err
	}
	return c.invalidate(ctx, b.ID)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return err
	}
	return c.next.Ping(ctx)
}

// invalidate aborts in-flight fills for id and drops the cached entry.
// Failures are returned: a stale entry would keep serving the old flag.
func (c *RedisCache) invalidate(ctx context.Context, id BookID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), c.versionTTL())
		pipe.Del(ctx, bookKey(id))
		return nil
	})
	return err
}

// The version key only has to outlive fills that started before the write.
func (c *RedisCache) versionTTL() time.Duration {
	if c.ttl < time.Minute {
		return time.Minute
	}
	return c.ttl
}
