package kvstorage

import (
	"context"
	"time"
)

// Storage operation names for [Metrics.ObserveOperation].
const (
	OpLoad = "load"
	OpSave = "save"
)

// Metrics is an interface that is used for the collection of the key-value
// rules storage statistics.
type Metrics interface {
	// ObserveOperation records the duration of a single storage operation.  op
	// is either [OpLoad] or [OpSave].
	ObserveOperation(ctx context.Context, op string, dur time.Duration)

	// IncrementLookups increments the number of loads, either with a stored
	// list or without one.
	IncrementLookups(ctx context.Context, hit bool)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// type check
var _ Metrics = EmptyMetrics{}

// ObserveOperation implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) ObserveOperation(_ context.Context, _ string, _ time.Duration) {}

// IncrementLookups implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementLookups(_ context.Context, _ bool) {}
