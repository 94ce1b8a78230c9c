package userrules

import (
	"context"
	"time"
)

// Operation names used in metrics and logs.
const (
	OpAdd            = "add"
	OpAddRules       = "add_rules"
	OpModifyRule     = "modify_rule"
	OpRemoveRule     = "remove_rule"
	OpRemoveAllRules = "remove_all_rules"
	OpReset          = "reset"
)

// Metrics is an interface that is used for the collection of the user rules
// statistics.
type Metrics interface {
	// SetRulesNum sets the number of rules in the list with the given id.
	SetRulesNum(ctx context.Context, id ID, n int)

	// ObserveMutation records the result of a mutating operation op on the
	// list.  dur is the time spent saving the list; it is zero if the
	// operation failed before persisting.
	ObserveMutation(ctx context.Context, id ID, op string, dur time.Duration, err error)

	// IncrementNotifyErrors increments the number of failed notifications for
	// the list.
	IncrementNotifyErrors(ctx context.Context, id ID)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// type check
var _ Metrics = EmptyMetrics{}

// SetRulesNum implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) SetRulesNum(_ context.Context, _ ID, _ int) {}

// ObserveMutation implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) ObserveMutation(_ context.Context, _ ID, _ string, _ time.Duration, _ error) {}

// IncrementNotifyErrors implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementNotifyErrors(_ context.Context, _ ID) {}
