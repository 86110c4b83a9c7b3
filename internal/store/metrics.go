// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package store

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for attribute storage.
var (
	// operationDuration tracks repository latency by operation.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attrcore_store_operation_duration_seconds",
		Help:    "Histogram of attribute store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// operations counts repository calls by operation and result.
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attrcore_store_operations_total",
		Help: "Total number of attribute store operations",
	}, []string{"operation", "result"})

	// cacheLookups counts cache reads by result (hit, miss, error).
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attrcore_store_cache_lookups_total",
		Help: "Total number of attribute cache lookups",
	}, []string{"result"})
)

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// observe records one repository operation.
func observe(op string, start time.Time, err error) {
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	operations.WithLabelValues(op, result(err)).Inc()
}
