package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedFilmStore is a read-through Redis cache in front of a film store.
// Only GetByID hits the cache; writes go to the store first and then evict
// the cached entry. Cache faults are logged and otherwise ignored, so the
// store stays the source of truth.
type CachedFilmStore struct {
	inner  EntityStore[Film]
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

var _ EntityStore[Film] = (*CachedFilmStore)(nil)

// NewCachedFilmStore wraps inner with rdb. prefix must be unique to the
// database behind inner, since writes that bypass this store never evict. A nil
// client disables caching and returns inner unchanged.
func NewCachedFilmStore(inner EntityStore[Film], rdb *redis.Client, ttl time.Duration, prefix string, logger zerolog.Logger) EntityStore[Film] {
	if rdb == nil {
		return inner
	}
	return &CachedFilmStore{inner: inner, rdb: rdb, ttl: ttl, prefix: prefix, log: logger}
}

// NewRedisClient connects to addr and pings it with a short timeout.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *CachedFilmStore) key(id int64) string {
	return c.prefix + ":film:" + strconv.FormatInt(id, 10)
}

func (c *CachedFilmStore) GetAll(ctx context.Context) ([]Film, error) {
	return c.inner.GetAll(ctx)
}

func (c *CachedFilmStore) GetByID(ctx context.Context, id int64) (Film, error) {
	key := c.key(id)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var f Film
		if jsonErr := json.Unmarshal(raw, &f); jsonErr == nil {
			return f, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("film cache read failed")
	}

	f, err := c.inner.GetByID(ctx, id)
	if err != nil || f.IsZero() {
		return f, err
	}
	if body, jsonErr := json.Marshal(f); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, body, c.ttl).Err(); setErr != nil {
			c.log.Warn().Err(setErr).Str("key", key).Msg("film cache write failed")
		}
	}
	return f, nil
}

func (c *CachedFilmStore) Add(ctx context.Context, f *Film) error {
	return c.inner.Add(ctx, f)
}

func (c *CachedFilmStore) Update(ctx context.Context, f *Film) error {
	if err := c.inner.Update(ctx, f); err != nil {
		return err
	}
	c.evict(ctx, f.ID)
	return nil
}

func (c *CachedFilmStore) Delete(ctx context.Context, f *Film) error {
	if err := c.inner.Delete(ctx, f); err != nil {
		return err
	}
	c.evict(ctx, f.ID)
	return nil
}

func (c *CachedFilmStore) evict(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Warn().Err(err).Int64("film_id", id).Msg("film cache evict failed")
	}
}
