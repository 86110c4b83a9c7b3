// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

// Package store persists entity attributes.
package store

import (
	"context"
	"maps"
	"slices"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/variant"
)

// ErrNotFound is returned when an entity has no attribute of the given name.
var ErrNotFound = oops.Code("ATTR_NOT_FOUND").Errorf("attribute not found")

// Repository stores attribute variants keyed by entity and name.
type Repository interface {
	// Get returns one attribute or ErrNotFound.
	Get(ctx context.Context, entity ulid.ULID, name string) (variant.Variant, error)
	// Set creates or replaces one attribute.
	Set(ctx context.Context, entity ulid.ULID, name string, v variant.Variant) error
	// Delete removes one attribute or returns ErrNotFound.
	Delete(ctx context.Context, entity ulid.ULID, name string) error
	// List returns the attributes whose names match a glob pattern.
	// An empty pattern matches every attribute.
	List(ctx context.Context, entity ulid.ULID, pattern string) (map[string]variant.Variant, error)
}

// matcher compiles a name pattern with '.' as the segment separator.
func matcher(pattern string) (glob.Glob, error) {
	if pattern == "" {
		pattern = "**"
	}
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, oops.Code("STORE_INVALID_PATTERN").With("pattern", pattern).Wrap(err)
	}
	return g, nil
}

func notFound(entity ulid.ULID, name string) error {
	return oops.With("entity", entity.String()).With("attribute", name).Wrap(ErrNotFound)
}

func sortedKeys(m map[string]variant.Variant) []string {
	return slices.Sorted(maps.Keys(m))
}
