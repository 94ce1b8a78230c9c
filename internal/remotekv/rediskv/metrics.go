package rediskv

import (
	"context"
	"time"
)

// Redis operation names for [Metrics.ObserveOperation].
const (
	OpGet = "get"
	OpSet = "set"
)

// Metrics is an interface that is used for the collection of the Redis KV
// statistics.
type Metrics interface {
	// ObserveOperation records the duration and the result of a single Redis
	// operation.  op is either [OpGet] or [OpSet].
	ObserveOperation(ctx context.Context, op string, dur time.Duration, err error)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// type check
var _ Metrics = EmptyMetrics{}

// ObserveOperation implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) ObserveOperation(_ context.Context, _ string, _ time.Duration, _ error) {}
