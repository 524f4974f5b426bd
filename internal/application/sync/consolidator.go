package sync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Consolidation policy
// ---------------------------------------------------------------------------

// ConsolidationPolicy decides whether two orders belong in the same shipment
// group. The matching rule is injected so tenants can plug in their own
// grouping logic without touching the sync pipeline.
type ConsolidationPolicy interface {
	// SameGroup reports whether a and b should ship together
	SameGroup(a, b *integration.CanonicalOrder) bool
}

// SameAddressSameDayPolicy groups orders with an identical shipping address
// placed on the same calendar day. Address comparison is case-insensitive
// using Turkish casing rules, since dotted/dotless I otherwise splits
// otherwise-identical addresses into separate groups.
type SameAddressSameDayPolicy struct {
	lower cases.Caser
}

// NewSameAddressSameDayPolicy creates the default consolidation policy
func NewSameAddressSameDayPolicy() *SameAddressSameDayPolicy {
	return &SameAddressSameDayPolicy{lower: cases.Lower(language.Turkish)}
}

// SameGroup reports whether a and b should ship together
func (p *SameAddressSameDayPolicy) SameGroup(a, b *integration.CanonicalOrder) bool {
	if !sameCalendarDay(a.OrderedAt, b.OrderedAt) {
		return false
	}
	return p.addressKey(a.ShippingAddress) == p.addressKey(b.ShippingAddress)
}

func (p *SameAddressSameDayPolicy) addressKey(addr integration.Address) string {
	if addr.IsZero() {
		return ""
	}
	parts := []string{
		addr.FullName,
		addr.AddressLine,
		addr.District,
		addr.City,
		addr.PostalCode,
		addr.CountryCode,
	}
	for i, part := range parts {
		parts[i] = p.lower.String(strings.Join(strings.Fields(part), " "))
	}
	return strings.Join(parts, "|")
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var _ ConsolidationPolicy = (*SameAddressSameDayPolicy)(nil)

// ---------------------------------------------------------------------------
// Consolidator
// ---------------------------------------------------------------------------

// Consolidator assigns incoming orders to shipment groups. Grouping is
// opt-in per connection; orders on connections without consolidation pass
// through untouched.
type Consolidator struct {
	orders integration.OrderRepository
	policy ConsolidationPolicy
	logger *zap.Logger
}

// NewConsolidator creates a consolidator with the given grouping policy
func NewConsolidator(orders integration.OrderRepository, policy ConsolidationPolicy, logger *zap.Logger) *Consolidator {
	if policy == nil {
		policy = NewSameAddressSameDayPolicy()
	}
	return &Consolidator{orders: orders, policy: policy, logger: logger}
}

// Assign sets order.ConsolidatedGroupID when a stored order from the same
// connection matches the policy. A matching order that already belongs to a
// group pulls the incoming order into that group; otherwise a fresh group is
// minted for the pair. Lookup failures degrade to no grouping rather than
// failing the sync.
func (c *Consolidator) Assign(ctx context.Context, conn *integration.PlatformConnection, order *integration.CanonicalOrder) {
	if !conn.ConsolidationEnabled || order.ConsolidatedGroupID != nil {
		return
	}
	if order.ShippingAddress.IsZero() || order.OrderedAt.IsZero() {
		return
	}

	dayStart := time.Date(order.OrderedAt.Year(), order.OrderedAt.Month(), order.OrderedAt.Day(), 0, 0, 0, 0, order.OrderedAt.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	candidates, err := c.orders.FindAll(ctx, order.TenantID, integration.OrderFilter{
		ConnectionID: &order.ConnectionID,
		OrderedFrom:  &dayStart,
		OrderedUntil: &dayEnd,
	})
	if err != nil {
		c.logger.Warn("Consolidation candidate lookup failed",
			zap.String("connection_id", order.ConnectionID.String()), zap.Error(err))
		return
	}

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ExternalOrderID == order.ExternalOrderID {
			continue
		}
		if !c.policy.SameGroup(order, candidate) {
			continue
		}

		if candidate.ConsolidatedGroupID != nil {
			order.ConsolidatedGroupID = candidate.ConsolidatedGroupID
			return
		}

		groupID := uuid.New()
		candidate.ConsolidatedGroupID = &groupID
		if err := c.orders.Update(ctx, candidate); err != nil {
			c.logger.Warn("Failed to tag consolidation peer",
				zap.String("order_id", candidate.ID.String()), zap.Error(err))
			return
		}
		order.ConsolidatedGroupID = &groupID
		return
	}
}
