package event

import (
	"context"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockMonitor watches committed allocations and raises a
// StockBelowThresholdEvent when a product's remaining pieces drop to or below
// the configured threshold. The check runs after the allocation committed, so
// it never holds up or fails a sale.
type LowStockMonitor struct {
	batches   inventory.StockBatchRepository
	publisher shared.EventPublisher
	threshold int64
	logger    *zap.Logger
}

// NewLowStockMonitor creates a LowStockMonitor
func NewLowStockMonitor(batches inventory.StockBatchRepository, publisher shared.EventPublisher, threshold int64, logger *zap.Logger) *LowStockMonitor {
	return &LowStockMonitor{
		batches:   batches,
		publisher: publisher,
		threshold: threshold,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (m *LowStockMonitor) EventTypes() []string {
	return []string{inventory.EventTypeStockAllocated}
}

// Handle checks the allocated product's remaining stock against the threshold
func (m *LowStockMonitor) Handle(ctx context.Context, event shared.DomainEvent) error {
	allocated, ok := event.(*inventory.StockAllocatedEvent)
	if !ok {
		return nil
	}

	available, err := m.batches.FindAvailable(ctx, allocated.ProductID, nil)
	if err != nil {
		return err
	}

	var remaining int64
	for _, b := range available {
		remaining += b.RemainingPieces
	}
	if remaining > m.threshold {
		return nil
	}

	m.logger.Warn("product stock at or below threshold",
		zap.String("product_id", allocated.ProductID.String()),
		zap.Int64("remaining_pieces", remaining),
		zap.Int64("threshold", m.threshold),
	)

	if m.publisher == nil {
		return nil
	}
	return m.publisher.Publish(ctx, inventory.NewStockBelowThresholdEvent(allocated.ProductID, remaining, m.threshold))
}

var _ shared.EventHandler = (*LowStockMonitor)(nil)
