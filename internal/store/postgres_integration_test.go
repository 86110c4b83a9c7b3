// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yumeengine/attrcore/internal/store"
	"github.com/yumeengine/attrcore/pkg/errutil"
	"github.com/yumeengine/attrcore/pkg/geom"
	"github.com/yumeengine/attrcore/pkg/variant"
)

var _ = Describe("PostgresRepository", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		pool      *pgxpool.Pool
		repo      *store.PostgresRepository
		entity    ulid.ULID
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("attrcore_test"),
			postgres.WithUsername("attrcore"),
			postgres.WithPassword("attrcore"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.Connect(ctx, connStr, store.ConnectOptions{})
		Expect(err).NotTo(HaveOccurred())
		repo = store.NewPostgresRepository(pool)
		entity = ulid.Make()
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	It("reports a missing schema before migrating", func() {
		_, err := repo.Get(ctx, entity, "name")
		Expect(errutil.HasCode(err, "STORE_SCHEMA_MISSING")).To(BeTrue(), "%v", err)
	})

	It("migrates up to the latest version", func() {
		m, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { Expect(m.Close()).To(Succeed()) }()

		Expect(m.Up()).To(Succeed())
		Expect(m.Up()).To(Succeed())
		version, dirty, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))

		pending, err := m.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("round trips every storable kind", func() {
		values := map[string]variant.Variant{
			"hp":                 variant.FromInt(42),
			"enabled":            variant.FromBool(true),
			"speed":              variant.FromFloat(1.5),
			"mass":               variant.FromDouble(1e100),
			"transform.position": variant.FromVector3(geom.Vector3{X: 1, Y: 2, Z: 3}),
			"tint":               variant.FromColor(geom.Color{R: 1, G: 0.5, A: 1}),
			"name":               variant.FromString("crate"),
			"blob":               variant.FromBuffer([]byte{0, 1, 2}),
			"model":              variant.FromResourceRef(variant.NewResourceRef("Model", "Models/Box.mdl")),
			"tags":               variant.FromStringVector(variant.StringVector{"a", "b"}),
			"world":              variant.FromMatrix4(geom.Matrix4Identity),
		}
		for name, v := range values {
			Expect(repo.Set(ctx, entity, name, v)).To(Succeed())
		}
		for name, v := range values {
			got, err := repo.Get(ctx, entity, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Equal(v)).To(BeTrue(), name)
		}
	})

	It("overwrites on set", func() {
		Expect(repo.Set(ctx, entity, "hp", variant.FromString("full"))).To(Succeed())
		got, err := repo.Get(ctx, entity, "hp")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Type()).To(Equal(variant.TypeString))
	})

	It("lists attributes by pattern", func() {
		got, err := repo.List(ctx, entity, "transform.*")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		Expect(got).To(HaveKey("transform.position"))

		other, err := repo.List(ctx, ulid.Make(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(other).To(BeEmpty())
	})

	It("deletes attributes", func() {
		Expect(repo.Delete(ctx, entity, "name")).To(Succeed())
		_, err := repo.Get(ctx, entity, "name")
		Expect(err).To(MatchError(store.ErrNotFound))
		Expect(repo.Delete(ctx, entity, "name")).To(MatchError(store.ErrNotFound))
	})

	It("migrates back down", func() {
		m, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { Expect(m.Close()).To(Succeed()) }()

		Expect(m.Down()).To(Succeed())
		version, _, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
	})
})
