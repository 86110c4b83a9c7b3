// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("attrcore/store")

// begin starts a span for a repository operation. The returned func ends
// the span and records metrics; a missing attribute is not a span error.
func begin(ctx context.Context, op string, entity ulid.ULID, name string) (context.Context, func(error)) {
	start := time.Now()
	attrs := []attribute.KeyValue{attribute.String("entity.id", entity.String())}
	if name != "" {
		attrs = append(attrs, attribute.String("attribute.name", name))
	}
	ctx, span := tracer.Start(ctx, "store."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		observe(op, start, err)
		if err != nil && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
