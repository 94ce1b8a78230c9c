// Package protection contains the providers of the user rule lists for the
// protection surfaces: the Safari content blocker and the DNS filter.
package protection

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// Safari list identities.
const (
	IDAllowlist         userrules.ID = "allowlist"
	IDInvertedAllowlist userrules.ID = "inverted_allowlist"
	IDBlocklist         userrules.ID = "blocklist"
)

// DNS list identities.
const (
	IDDNSBlocklist userrules.ID = "dns_blocklist"
	IDDNSAllowlist userrules.ID = "dns_allowlist"
)

// SafariIDs returns the identities of the Safari lists.
func SafariIDs() (ids []userrules.ID) {
	return []userrules.ID{IDAllowlist, IDInvertedAllowlist, IDBlocklist}
}

// DNSIDs returns the identities of the DNS lists.
func DNSIDs() (ids []userrules.ID) {
	return []userrules.ID{IDDNSBlocklist, IDDNSAllowlist}
}

// Lists is a set of managers by the list identity.
type Lists map[userrules.ID]*userrules.Default

// IDs returns the sorted identities of the lists.
func (l Lists) IDs() (ids []userrules.ID) {
	return slices.Sorted(maps.Keys(l))
}

// Merge returns a new set containing the lists of l and other.  Lists of other
// replace the lists of l with the same identities.
func (l Lists) Merge(other Lists) (merged Lists) {
	merged = maps.Clone(l)
	if merged == nil {
		merged = Lists{}
	}

	maps.Copy(merged, other)

	return merged
}

// managerConfig is the common part of the configuration of the managers of one
// provider.
type managerConfig struct {
	logger   *slog.Logger
	errColl  errcoll.Interface
	metrics  userrules.Metrics
	notifier userrules.Notifier
	storage  userrules.Storage
	defaults userrules.DefaultsSource
}

// newManagers creates a manager for each of ids sharing the settings of c.
func newManagers(
	ctx context.Context,
	c *managerConfig,
	ids []userrules.ID,
) (l Lists, err error) {
	l = make(Lists, len(ids))
	for _, id := range ids {
		var m *userrules.Default
		m, err = userrules.New(ctx, &userrules.Config{
			Logger:   c.logger,
			ErrColl:  c.errColl,
			Metrics:  c.metrics,
			Notifier: c.notifier,
			Storage:  c.storage,
			Defaults: c.defaults,
			ID:       id,
		})
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", id, err)
		}

		l[id] = m
	}

	return l, nil
}
