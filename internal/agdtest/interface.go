package agdtest

import (
	"context"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// Interface Mocks
//
// Keep entities within a module/package in alphabetic order.

// Package errcoll

// type check
var _ errcoll.Interface = (*ErrorCollector)(nil)

// ErrorCollector is an [errcoll.Interface] for tests.
type ErrorCollector struct {
	OnCollect func(ctx context.Context, err error)
}

// Collect implements the [errcoll.Interface] interface for *ErrorCollector.
func (c *ErrorCollector) Collect(ctx context.Context, err error) {
	c.OnCollect(ctx, err)
}

// NewErrorCollector returns a new *ErrorCollector all methods of which panic.
func NewErrorCollector() (c *ErrorCollector) {
	return &ErrorCollector{
		OnCollect: func(_ context.Context, err error) {
			panic(err)
		},
	}
}

// Package remotekv

// type check
var _ remotekv.Interface = (*RemoteKV)(nil)

// RemoteKV is an [remotekv.Interface] implementation for tests.
type RemoteKV struct {
	OnGet func(ctx context.Context, key string) (val []byte, ok bool, err error)
	OnSet func(ctx context.Context, key string, val []byte) (err error)
}

// Get implements the [remotekv.Interface] interface for *RemoteKV.
func (kv *RemoteKV) Get(ctx context.Context, key string) (val []byte, ok bool, err error) {
	return kv.OnGet(ctx, key)
}

// Set implements the [remotekv.Interface] interface for *RemoteKV.
func (kv *RemoteKV) Set(ctx context.Context, key string, val []byte) (err error) {
	return kv.OnSet(ctx, key, val)
}

// Package userrules

// type check
var _ userrules.DefaultsSource = (*DefaultsSource)(nil)

// DefaultsSource is a [userrules.DefaultsSource] for tests.
type DefaultsSource struct {
	OnDefaults func(ctx context.Context, id userrules.ID) (rules []userrules.Rule, err error)
}

// Defaults implements the [userrules.DefaultsSource] interface for
// *DefaultsSource.
func (s *DefaultsSource) Defaults(
	ctx context.Context,
	id userrules.ID,
) (rules []userrules.Rule, err error) {
	return s.OnDefaults(ctx, id)
}

// type check
var _ userrules.Interface = (*UserRulesManager)(nil)

// UserRulesManager is a [userrules.Interface] for tests.
type UserRulesManager struct {
	OnAdd            func(ctx context.Context, r userrules.Rule, override bool) (err error)
	OnAddRules       func(ctx context.Context, rules []userrules.Rule, override bool) (err error)
	OnModifyRule     func(ctx context.Context, oldText string, r userrules.Rule) (err error)
	OnRemoveRule     func(ctx context.Context, text string) (err error)
	OnRemoveAllRules func(ctx context.Context) (err error)
	OnReset          func(ctx context.Context) (err error)
	OnAllRules       func() (rules []userrules.Rule)
}

// Add implements the [userrules.Interface] interface for *UserRulesManager.
func (m *UserRulesManager) Add(ctx context.Context, r userrules.Rule, override bool) (err error) {
	return m.OnAdd(ctx, r, override)
}

// AddRules implements the [userrules.Interface] interface for
// *UserRulesManager.
func (m *UserRulesManager) AddRules(
	ctx context.Context,
	rules []userrules.Rule,
	override bool,
) (err error) {
	return m.OnAddRules(ctx, rules, override)
}

// ModifyRule implements the [userrules.Interface] interface for
// *UserRulesManager.
func (m *UserRulesManager) ModifyRule(
	ctx context.Context,
	oldText string,
	r userrules.Rule,
) (err error) {
	return m.OnModifyRule(ctx, oldText, r)
}

// RemoveRule implements the [userrules.Interface] interface for
// *UserRulesManager.
func (m *UserRulesManager) RemoveRule(ctx context.Context, text string) (err error) {
	return m.OnRemoveRule(ctx, text)
}

// RemoveAllRules implements the [userrules.Interface] interface for
// *UserRulesManager.
func (m *UserRulesManager) RemoveAllRules(ctx context.Context) (err error) {
	return m.OnRemoveAllRules(ctx)
}

// Reset implements the [userrules.Interface] interface for *UserRulesManager.
func (m *UserRulesManager) Reset(ctx context.Context) (err error) {
	return m.OnReset(ctx)
}

// AllRules implements the [userrules.Interface] interface for
// *UserRulesManager.
func (m *UserRulesManager) AllRules() (rules []userrules.Rule) {
	return m.OnAllRules()
}

// type check
var _ userrules.Metrics = (*UserRulesMetrics)(nil)

// UserRulesMetrics is a [userrules.Metrics] for tests.
type UserRulesMetrics struct {
	OnSetRulesNum           func(ctx context.Context, id userrules.ID, n int)
	OnObserveMutation       func(ctx context.Context, id userrules.ID, op string, dur time.Duration, err error)
	OnIncrementNotifyErrors func(ctx context.Context, id userrules.ID)
}

// SetRulesNum implements the [userrules.Metrics] interface for
// *UserRulesMetrics.
func (m *UserRulesMetrics) SetRulesNum(ctx context.Context, id userrules.ID, n int) {
	m.OnSetRulesNum(ctx, id, n)
}

// ObserveMutation implements the [userrules.Metrics] interface for
// *UserRulesMetrics.
func (m *UserRulesMetrics) ObserveMutation(
	ctx context.Context,
	id userrules.ID,
	op string,
	dur time.Duration,
	err error,
) {
	m.OnObserveMutation(ctx, id, op, dur, err)
}

// IncrementNotifyErrors implements the [userrules.Metrics] interface for
// *UserRulesMetrics.
func (m *UserRulesMetrics) IncrementNotifyErrors(ctx context.Context, id userrules.ID) {
	m.OnIncrementNotifyErrors(ctx, id)
}

// type check
var _ userrules.Storage = (*UserRulesStorage)(nil)

// UserRulesStorage is a [userrules.Storage] for tests.
type UserRulesStorage struct {
	OnLoad func(ctx context.Context, id userrules.ID) (rules []userrules.Rule, err error)
	OnSave func(ctx context.Context, id userrules.ID, rules []userrules.Rule) (err error)
}

// Load implements the [userrules.Storage] interface for *UserRulesStorage.
func (s *UserRulesStorage) Load(
	ctx context.Context,
	id userrules.ID,
) (rules []userrules.Rule, err error) {
	return s.OnLoad(ctx, id)
}

// Save implements the [userrules.Storage] interface for *UserRulesStorage.
func (s *UserRulesStorage) Save(
	ctx context.Context,
	id userrules.ID,
	rules []userrules.Rule,
) (err error) {
	return s.OnSave(ctx, id, rules)
}
