// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumeengine/attrcore/pkg/errutil"
	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/variant"
)

var testEntity = ulid.MustParse("01HZY7M4Q3P8T2R6V9W0X1Y2Z3")

func TestPostgresRepository_Get(t *testing.T) {
	hp := variant.FromInt(42)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      variant.Variant
		wantCode  string
		wantIs    error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM entity_attributes`).
					WithArgs(testEntity.String(), "hp").
					WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(encodeValue(hp)))
			},
			want: hp,
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM entity_attributes`).
					WithArgs(testEntity.String(), "hp").
					WillReturnError(pgx.ErrNoRows)
			},
			wantIs: ErrNotFound,
		},
		{
			name: "schema not migrated",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM entity_attributes`).
					WithArgs(testEntity.String(), "hp").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: "relation does not exist"})
			},
			wantCode: "STORE_SCHEMA_MISSING",
		},
		{
			name: "corrupt value",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM entity_attributes`).
					WithArgs(testEntity.String(), "hp").
					WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte{0xfe}))
			},
			wantCode: "STORE_CORRUPT_VALUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			got, err := NewPostgresRepository(mock).Get(context.Background(), testEntity, "hp")
			switch {
			case tt.wantIs != nil:
				assert.ErrorIs(t, err, tt.wantIs)
			case tt.wantCode != "":
				errutil.AssertErrorCode(t, err, tt.wantCode)
			default:
				require.NoError(t, err)
				assert.True(t, tt.want.Equal(got))
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresRepository_Set(t *testing.T) {
	pos := variant.FromVector3(geom.Vector3{X: 1, Y: 2, Z: 3})

	t.Run("upserts type and encoded value", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO entity_attributes`).
			WithArgs(testEntity.String(), "transform.position", "Vector3", encodeValue(pos)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewPostgresRepository(mock).Set(context.Background(), testEntity, "transform.position", pos))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO entity_attributes`).
			WillReturnError(errors.New("connection refused"))

		err = NewPostgresRepository(mock).Set(context.Background(), testEntity, "transform.position", pos)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		errutil.AssertErrorContext(t, err, "operation", "set attribute")
	})
}

func TestPostgresRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"deleted", 1, nil},
		{"missing", 0, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM entity_attributes`).
				WithArgs(testEntity.String(), "hp").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err = NewPostgresRepository(mock).Delete(context.Background(), testEntity, "hp")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"name", "value"}).
		AddRow("name", encodeValue(variant.FromString("hero"))).
		AddRow("transform.position", encodeValue(variant.FromVector3(geom.Vector3{X: 1}))).
		AddRow("transform.scale", encodeValue(variant.FromVector3(geom.Vector3{X: 1, Y: 1, Z: 1})))
	mock.ExpectQuery(`SELECT name, value FROM entity_attributes`).
		WithArgs(testEntity.String()).
		WillReturnRows(rows)

	got, err := NewPostgresRepository(mock).List(context.Background(), testEntity, "transform.*")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, geom.Vector3{X: 1, Y: 1, Z: 1}, got["transform.scale"].Vector3())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List_InvalidPattern(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresRepository(mock).List(context.Background(), testEntity, "[")
	errutil.AssertErrorCode(t, err, "STORE_INVALID_PATTERN")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://nope", ConnectOptions{})
	errutil.AssertErrorCode(t, err, "STORE_CONFIG_INVALID")
}

func TestConnect_GivesUpAfterAttempts(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://attrcore@127.0.0.1:1/attrcore?connect_timeout=1",
		ConnectOptions{Attempts: 2, Backoff: 1})
	errutil.AssertErrorCode(t, err, "STORE_CONNECT_FAILED")
	errutil.AssertErrorContext(t, err, "attempts", uint64(2))
}
