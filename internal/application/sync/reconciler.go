package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
)

// ---------------------------------------------------------------------------
// Upsert result
// ---------------------------------------------------------------------------

// UpsertAction describes what the reconciler did with an incoming order
type UpsertAction string

const (
	// ActionInserted means no row existed for (externalOrderID, connectionID)
	ActionInserted UpsertAction = "inserted"
	// ActionUpdated means the incoming order was newer than the stored row
	ActionUpdated UpsertAction = "updated"
	// ActionSkipped means the stored row was as fresh or fresher
	ActionSkipped UpsertAction = "skipped"
)

// UpsertResult reports the outcome of reconciling one order
type UpsertResult struct {
	Action UpsertAction
	ID     uuid.UUID
}

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

// Reconciler deduplicates incoming canonical orders against the store and
// links order lines to local catalog products. The reconciliation key is
// (externalOrderID, connectionID); freshness is decided by the platform's
// last-modified timestamp, where an equal timestamp counts as stale so that
// re-delivery of the same payload is a skip.
type Reconciler struct {
	orders   integration.OrderRepository
	products catalog.ProductReader
	logger   *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(orders integration.OrderRepository, products catalog.ProductReader, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		orders:   orders,
		products: products,
		logger:   logger,
	}
}

// Upsert reconciles one canonical order into the store
func (r *Reconciler) Upsert(ctx context.Context, order *integration.CanonicalOrder) (*UpsertResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "upsert",
		attribute.String(telemetry.SpanAttrExternalID, order.ExternalOrderID),
		attribute.String(telemetry.SpanAttrConnectionID, order.ConnectionID.String()),
	)
	defer span.End()

	result, err := r.upsert(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("reconcile.action", string(result.Action)))
	telemetry.SetOK(span)
	return result, nil
}

func (r *Reconciler) upsert(ctx context.Context, order *integration.CanonicalOrder) (*UpsertResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	r.linkProducts(ctx, order)
	order.LastSyncedAt = time.Now().UTC()

	existing, err := r.orders.FindByExternalID(ctx, order.ConnectionID, order.ExternalOrderID)
	if err != nil {
		if !errors.Is(err, integration.ErrOrderNotFound) {
			return nil, err
		}
		return r.insert(ctx, order)
	}

	if !order.IsNewerThan(existing) {
		r.logger.Debug("Skipping stale order payload",
			zap.String("external_order_id", order.ExternalOrderID),
			zap.Time("incoming_modified_at", order.LastModifiedAt),
			zap.Time("stored_modified_at", existing.LastModifiedAt),
		)
		return &UpsertResult{Action: ActionSkipped, ID: existing.ID}, nil
	}

	return r.update(ctx, order, existing)
}

func (r *Reconciler) insert(ctx context.Context, order *integration.CanonicalOrder) (*UpsertResult, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := r.orders.Insert(ctx, order); err != nil {
		return nil, err
	}
	return &UpsertResult{Action: ActionInserted, ID: order.ID}, nil
}

func (r *Reconciler) update(ctx context.Context, order, existing *integration.CanonicalOrder) (*UpsertResult, error) {
	// local identity and grouping survive the refresh
	order.ID = existing.ID
	order.CreatedAt = existing.CreatedAt
	if order.ConsolidatedGroupID == nil {
		order.ConsolidatedGroupID = existing.ConsolidatedGroupID
	}
	order.UpdatedAt = time.Now().UTC()

	if err := r.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return &UpsertResult{Action: ActionUpdated, ID: order.ID}, nil
}

// linkProducts resolves each order line to a local catalog product, matching
// by barcode first and merchant SKU second. Lines with no match keep a nil
// product reference for manual reconciliation.
func (r *Reconciler) linkProducts(ctx context.Context, order *integration.CanonicalOrder) {
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.ProductID != nil {
			continue
		}

		if line.Barcode != "" {
			if product, err := r.products.FindByBarcode(ctx, order.TenantID, line.Barcode); err == nil {
				line.ProductID = &product.ID
				continue
			} else if !errors.Is(err, shared.ErrNotFound) {
				r.logger.Warn("Product barcode lookup failed",
					zap.String("barcode", line.Barcode), zap.Error(err))
			}
		}

		if line.MerchantSKU != "" {
			if product, err := r.products.FindBySKU(ctx, order.TenantID, line.MerchantSKU); err == nil {
				line.ProductID = &product.ID
			} else if !errors.Is(err, shared.ErrNotFound) {
				r.logger.Warn("Product SKU lookup failed",
					zap.String("sku", line.MerchantSKU), zap.Error(err))
			}
		}
	}
}
