// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/stream"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// PostgresRepository implements Repository using PostgreSQL. Values are
// stored in the binary stream format next to their type name.
type PostgresRepository struct {
	pool poolIface
}

// NewPostgresRepository creates a PostgreSQL attribute repository.
func NewPostgresRepository(pool poolIface) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// pgError attaches a hint for well-known server errors.
func pgError(b oops.OopsErrorBuilder, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		b = b.With("sqlstate", pgErr.Code)
		switch pgErr.Code {
		case pgerrcode.UndefinedTable:
			return b.Code("STORE_SCHEMA_MISSING").Hint("run `attrctl migrate up`").Wrap(err)
		case pgerrcode.InsufficientPrivilege:
			return b.Code("STORE_FORBIDDEN").Wrap(err)
		}
	}
	return b.Wrap(err)
}

func encodeValue(v variant.Variant) []byte {
	var buf stream.Buffer
	buf.WriteVariant(v)
	return buf.Bytes()
}

func decodeValue(data []byte) (variant.Variant, error) {
	return stream.NewBuffer(data).ReadVariant()
}

// Get retrieves one attribute.
func (r *PostgresRepository) Get(ctx context.Context, entity ulid.ULID, name string) (v variant.Variant, err error) {
	ctx, done := begin(ctx, "get", entity, name)
	defer func() { done(err) }()

	var data []byte
	err = r.pool.QueryRow(ctx,
		`SELECT value FROM entity_attributes WHERE entity_id = $1 AND name = $2`,
		entity.String(), name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return variant.Variant{}, notFound(entity, name)
	}
	if err != nil {
		return variant.Variant{}, pgError(oops.With("operation", "get attribute").With("attribute", name), err)
	}

	v, err = decodeValue(data)
	if err != nil {
		return variant.Variant{}, oops.Code("STORE_CORRUPT_VALUE").
			With("entity", entity.String()).
			With("attribute", name).
			Wrap(err)
	}
	return v, nil
}

// Set creates or replaces one attribute.
func (r *PostgresRepository) Set(ctx context.Context, entity ulid.ULID, name string, v variant.Variant) (err error) {
	ctx, done := begin(ctx, "set", entity, name)
	defer func() { done(err) }()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO entity_attributes (entity_id, name, type, value, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (entity_id, name) DO UPDATE SET type = $3, value = $4, updated_at = now()`,
		entity.String(), name, v.TypeName(), encodeValue(v))
	if err != nil {
		return pgError(oops.With("operation", "set attribute").With("attribute", name), err)
	}
	return nil
}

// Delete removes one attribute.
func (r *PostgresRepository) Delete(ctx context.Context, entity ulid.ULID, name string) (err error) {
	ctx, done := begin(ctx, "delete", entity, name)
	defer func() { done(err) }()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM entity_attributes WHERE entity_id = $1 AND name = $2`,
		entity.String(), name)
	if err != nil {
		return pgError(oops.With("operation", "delete attribute").With("attribute", name), err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(entity, name)
	}
	return nil
}

// List returns the attributes of entity whose names match pattern.
func (r *PostgresRepository) List(ctx context.Context, entity ulid.ULID, pattern string) (out map[string]variant.Variant, err error) {
	g, err := matcher(pattern)
	if err != nil {
		return nil, err
	}

	ctx, done := begin(ctx, "list", entity, "")
	defer func() { done(err) }()

	rows, err := r.pool.Query(ctx,
		`SELECT name, value FROM entity_attributes WHERE entity_id = $1 ORDER BY name`,
		entity.String())
	if err != nil {
		return nil, pgError(oops.With("operation", "list attributes"), err)
	}
	defer rows.Close()

	out = make(map[string]variant.Variant)
	for rows.Next() {
		var name string
		var data []byte
		if err = rows.Scan(&name, &data); err != nil {
			return nil, oops.With("operation", "scan attribute row").Wrap(err)
		}
		if !g.Match(name) {
			continue
		}
		v, decodeErr := decodeValue(data)
		if decodeErr != nil {
			err = oops.Code("STORE_CORRUPT_VALUE").
				With("entity", entity.String()).
				With("attribute", name).
				Wrap(decodeErr)
			return nil, err
		}
		out[name] = v
	}
	if err = rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate attributes").Wrap(err)
	}
	return out, nil
}
