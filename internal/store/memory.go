// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/yumeengine/attrcore/pkg/variant"
)

type memoryKey struct {
	entity ulid.ULID
	name   string
}

// MemoryRepository is an in-process Repository. Values are cloned on the
// way in and out, so callers never share storage with it.
type MemoryRepository struct {
	values *xsync.MapOf[memoryKey, variant.Variant]
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: xsync.NewMapOf[memoryKey, variant.Variant]()}
}

func (r *MemoryRepository) Get(_ context.Context, entity ulid.ULID, name string) (variant.Variant, error) {
	start := time.Now()
	v, ok := r.values.Load(memoryKey{entity, name})
	if !ok {
		observe("get", start, ErrNotFound)
		return variant.Variant{}, notFound(entity, name)
	}
	observe("get", start, nil)
	return v.Clone(), nil
}

func (r *MemoryRepository) Set(_ context.Context, entity ulid.ULID, name string, v variant.Variant) error {
	start := time.Now()
	r.values.Store(memoryKey{entity, name}, v.Clone())
	observe("set", start, nil)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, entity ulid.ULID, name string) error {
	start := time.Now()
	if _, ok := r.values.LoadAndDelete(memoryKey{entity, name}); !ok {
		observe("delete", start, ErrNotFound)
		return notFound(entity, name)
	}
	observe("delete", start, nil)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, entity ulid.ULID, pattern string) (map[string]variant.Variant, error) {
	g, err := matcher(pattern)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out := make(map[string]variant.Variant)
	r.values.Range(func(k memoryKey, v variant.Variant) bool {
		if k.entity == entity && g.Match(k.name) {
			out[k.name] = v.Clone()
		}
		return true
	})
	observe("list", start, nil)
	return out, nil
}
