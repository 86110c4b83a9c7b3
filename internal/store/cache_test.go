// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/errutil"
	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/refcount"
	"github.com/yumeengine/attrcore/pkg/variant"
)

func newTestCache(t *testing.T, opts RedisOptions) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	opts.Client = client
	return NewRedisCache(opts), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	codecs := []attrdoc.Codec{nil, attrdoc.JSON{}, attrdoc.Brotli{Inner: attrdoc.MsgPack{}}}
	for _, codec := range codecs {
		name := "default"
		if codec != nil {
			name = codec.Name()
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, mr := newTestCache(t, RedisOptions{Codec: codec})

			v := variant.FromVariantMap(variant.Map{})
			v.VariantMapPtr().Set("tint", variant.FromColor(geom.Color{R: 1, A: 1}))
			require.NoError(t, c.Set(ctx, testEntity, "look", v))
			assert.True(t, mr.Exists("attrcore:"+testEntity.String()+":look"))

			got, ok, err := c.Get(ctx, testEntity, "look")
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, v.Equal(got))
		})
	}
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, RedisOptions{})
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("miss"))

	_, ok, err := c.Get(context.Background(), testEntity, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues("miss")))
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, RedisOptions{TTL: time.Minute, KeyPrefix: "test"})

	require.NoError(t, c.Set(ctx, testEntity, "hp", variant.FromInt(1)))
	assert.Equal(t, time.Minute, mr.TTL("test:"+testEntity.String()+":hp"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, testEntity, "hp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_SkipsPointers(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, RedisOptions{})

	require.NoError(t, c.Set(ctx, testEntity, "target", variant.FromPtr(nil)))
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, RedisOptions{})
	other := ulidFor(t, "01HZY7M4Q3P8T2R6V9W0X1Y2Z4")

	require.NoError(t, c.Set(ctx, testEntity, "a", variant.FromInt(1)))
	require.NoError(t, c.Set(ctx, testEntity, "b", variant.FromInt(2)))
	require.NoError(t, c.Set(ctx, other, "a", variant.FromInt(3)))

	require.NoError(t, c.Invalidate(ctx, testEntity, "a"))
	require.NoError(t, c.Invalidate(ctx, testEntity, "a"))
	assert.Len(t, mr.Keys(), 2)

	require.NoError(t, c.InvalidateEntity(ctx, testEntity))
	assert.Equal(t, []string{"attrcore:" + other.String() + ":a"}, mr.Keys())
	require.NoError(t, c.InvalidateEntity(ctx, testEntity))
}

func TestRedisCache_ConnectionError(t *testing.T) {
	c, mr := newTestCache(t, RedisOptions{})
	mr.Close()

	_, _, err := c.Get(context.Background(), testEntity, "hp")
	errutil.AssertErrorCode(t, err, "CACHE_GET_FAILED")
	errutil.AssertErrorCode(t, c.Set(context.Background(), testEntity, "hp", variant.FromInt(1)), "CACHE_SET_FAILED")
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, RedisOptions{})
	repo := NewMemoryRepository()
	cached := NewCachedRepository(repo, cache, nil)

	require.NoError(t, cached.Set(ctx, testEntity, "hp", variant.FromInt(10)))
	assert.Empty(t, mr.Keys(), "writes do not populate the cache")

	got, err := cached.Get(ctx, testEntity, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.Int())
	assert.True(t, mr.Exists("attrcore:"+testEntity.String()+":hp"))

	require.NoError(t, repo.Set(ctx, testEntity, "hp", variant.FromInt(99)))
	got, err = cached.Get(ctx, testEntity, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.Int(), "served from cache")

	require.NoError(t, cached.Set(ctx, testEntity, "hp", variant.FromInt(20)))
	got, err = cached.Get(ctx, testEntity, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(20), got.Int(), "set invalidates")

	require.NoError(t, cached.Delete(ctx, testEntity, "hp"))
	_, err = cached.Get(ctx, testEntity, "hp")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := cached.List(ctx, testEntity, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCachedRepository_PointersStayLive(t *testing.T) {
	type target struct{ refcount.RefCounted }
	obj := &target{}
	obj.AddRef()
	defer obj.ReleaseRef()

	ctx := context.Background()
	cache, _ := newTestCache(t, RedisOptions{})
	cached := NewCachedRepository(NewMemoryRepository(), cache, nil)

	require.NoError(t, cached.Set(ctx, testEntity, "target", variant.FromPtr(obj)))
	got, err := cached.Get(ctx, testEntity, "target")
	require.NoError(t, err)
	assert.True(t, got.Matches(obj))
}

func TestCachedRepository_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, RedisOptions{})
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	repo := NewMemoryRepository()
	require.NoError(t, repo.Set(ctx, testEntity, "hp", variant.FromInt(5)))
	cached := NewCachedRepository(repo, cache, logger)

	mr.Close()
	got, err := cached.Get(ctx, testEntity, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(5), got.Int())
	assert.Contains(t, logs.String(), "attribute cache read failed")
	assert.Contains(t, logs.String(), "CACHE_GET_FAILED")

	require.NoError(t, cached.Set(ctx, testEntity, "hp", variant.FromInt(6)))
	assert.Contains(t, logs.String(), "attribute cache invalidation failed")
}
