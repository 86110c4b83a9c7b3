// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/errutil"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// Cache holds recently read attributes.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, entity ulid.ULID, name string) (variant.Variant, bool, error)
	Set(ctx context.Context, entity ulid.ULID, name string, v variant.Variant) error
	Invalidate(ctx context.Context, entity ulid.ULID, name string) error
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Client redis.UniversalClient
	// Codec encodes cached nodes. Nil means attrdoc.MsgPack.
	Codec attrdoc.Codec
	// KeyPrefix namespaces keys. Empty means "attrcore".
	KeyPrefix string
	// TTL is the entry lifetime. Zero keeps entries until invalidated.
	TTL time.Duration
}

// RedisCache caches attributes in Redis as encoded document nodes.
type RedisCache struct {
	client redis.UniversalClient
	codec  attrdoc.Codec
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(opts RedisOptions) *RedisCache {
	if opts.Codec == nil {
		opts.Codec = attrdoc.MsgPack{}
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "attrcore"
	}
	return &RedisCache{client: opts.Client, codec: opts.Codec, prefix: opts.KeyPrefix, ttl: opts.TTL}
}

func (c *RedisCache) key(entity ulid.ULID, name string) string {
	return c.prefix + ":" + entity.String() + ":" + name
}

// Get reads one attribute. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, entity ulid.ULID, name string) (variant.Variant, bool, error) {
	k := c.key(entity, name)
	data, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheLookups.WithLabelValues("miss").Inc()
		return variant.Variant{}, false, nil
	}
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return variant.Variant{}, false, oops.Code("CACHE_GET_FAILED").With("key", k).Wrap(err)
	}

	var node attrdoc.Node
	if err := c.codec.Unmarshal(data, &node); err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return variant.Variant{}, false, oops.With("key", k).Wrap(err)
	}
	v, err := attrdoc.Decode(node)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return variant.Variant{}, false, oops.With("key", k).Wrap(err)
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return v, true, nil
}

// Set writes one attribute. Pointer kinds are not cached because they do
// not survive encoding.
func (c *RedisCache) Set(ctx context.Context, entity ulid.ULID, name string, v variant.Variant) error {
	if t := v.Type(); t == variant.TypePtr || t == variant.TypeVoidPtr {
		return nil
	}
	data, err := c.codec.Marshal(attrdoc.Encode(v))
	if err != nil {
		return err
	}
	k := c.key(entity, name)
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("key", k).Wrap(err)
	}
	return nil
}

// Invalidate removes one attribute.
func (c *RedisCache) Invalidate(ctx context.Context, entity ulid.ULID, name string) error {
	k := c.key(entity, name)
	if err := c.client.Del(ctx, k).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return oops.Code("CACHE_DELETE_FAILED").With("key", k).Wrap(err)
	}
	return nil
}

// InvalidateEntity removes every cached attribute of entity.
func (c *RedisCache) InvalidateEntity(ctx context.Context, entity ulid.ULID) error {
	pattern := c.prefix + ":" + entity.String() + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("pattern", pattern).Wrap(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("pattern", pattern).Wrap(err)
	}
	return nil
}

// CachedRepository reads through a Cache in front of a Repository. Cache
// failures are logged and never fail the call.
type CachedRepository struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewCachedRepository wraps repo with cache. A nil logger uses slog.Default.
func NewCachedRepository(repo Repository, cache Cache, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{repo: repo, cache: cache, logger: logger}
}

// Get serves from cache when possible and fills it on a miss.
func (r *CachedRepository) Get(ctx context.Context, entity ulid.ULID, name string) (variant.Variant, error) {
	v, ok, err := r.cache.Get(ctx, entity, name)
	if err != nil {
		errutil.LogWarn(ctx, r.logger, "attribute cache read failed", err)
	} else if ok {
		return v, nil
	}

	v, err = r.repo.Get(ctx, entity, name)
	if err != nil {
		return variant.Variant{}, err
	}
	if err := r.cache.Set(ctx, entity, name, v); err != nil {
		errutil.LogWarn(ctx, r.logger, "attribute cache fill failed", err)
	}
	return v, nil
}

// Set writes to the repository and drops the cached entry.
func (r *CachedRepository) Set(ctx context.Context, entity ulid.ULID, name string, v variant.Variant) error {
	if err := r.repo.Set(ctx, entity, name, v); err != nil {
		return err
	}
	r.invalidate(ctx, entity, name)
	return nil
}

// Delete removes from the repository and drops the cached entry.
func (r *CachedRepository) Delete(ctx context.Context, entity ulid.ULID, name string) error {
	if err := r.repo.Delete(ctx, entity, name); err != nil {
		return err
	}
	r.invalidate(ctx, entity, name)
	return nil
}

// List always reads the repository.
func (r *CachedRepository) List(ctx context.Context, entity ulid.ULID, pattern string) (map[string]variant.Variant, error) {
	return r.repo.List(ctx, entity, pattern)
}

func (r *CachedRepository) invalidate(ctx context.Context, entity ulid.ULID, name string) {
	if err := r.cache.Invalidate(ctx, entity, name); err != nil {
		errutil.LogWarn(ctx, r.logger, "attribute cache invalidation failed", err)
	}
}
