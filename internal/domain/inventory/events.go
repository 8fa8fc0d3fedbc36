package inventory

import (
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeBatchCreated        = "inventory.batch.created"
	EventTypeStockAllocated      = "inventory.stock.allocated"
	EventTypeAllocationReversed  = "inventory.allocation.reversed"
	EventTypeStockBelowThreshold = "inventory.stock.below_threshold"
)

// AggregateTypeStockBatch is the aggregate type used in ledger events
const AggregateTypeStockBatch = "StockBatch"

// BatchCreatedEvent is emitted when an inward invoice line posts a new batch
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	LocationID  uuid.UUID `json:"location_id"`
	TotalPieces int64     `json:"total_pieces"`
	CostPerBox  string    `json:"cost_per_box"`
}

// NewBatchCreatedEvent creates a BatchCreatedEvent from a batch
func NewBatchCreatedEvent(b *StockBatch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, AggregateTypeStockBatch, b.ID),
		ProductID:       b.ProductID,
		VendorID:        b.VendorID,
		LocationID:      b.LocationID,
		TotalPieces:     b.TotalPieces,
		CostPerBox:      b.CostPerBox.String(),
	}
}

// StockAllocatedEvent is emitted once per committed allocation
type StockAllocatedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID   `json:"product_id"`
	OutwardLineID uuid.UUID   `json:"outward_line_id"`
	TotalPieces   int64       `json:"total_pieces"`
	COGS          string      `json:"cogs"`
	BatchIDs      []uuid.UUID `json:"batch_ids"`
}

// NewStockAllocatedEvent creates a StockAllocatedEvent from a committed result
func NewStockAllocatedEvent(productID, outwardLineID uuid.UUID, result *AllocationResult) *StockAllocatedEvent {
	batchIDs := make([]uuid.UUID, len(result.Movements))
	for i, m := range result.Movements {
		batchIDs[i] = m.BatchID
	}
	return &StockAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAllocated, AggregateTypeStockBatch, outwardLineID),
		ProductID:       productID,
		OutwardLineID:   outwardLineID,
		TotalPieces:     result.TotalPieces,
		COGS:            result.TotalCost.String(),
		BatchIDs:        batchIDs,
	}
}

// AllocationReversedEvent is emitted when an outward line's movements are
// reversed (line edited or voided)
type AllocationReversedEvent struct {
	shared.BaseDomainEvent
	OutwardLineID  uuid.UUID   `json:"outward_line_id"`
	RestoredPieces int64       `json:"restored_pieces"`
	BatchIDs       []uuid.UUID `json:"batch_ids"`
}

// NewAllocationReversedEvent creates an AllocationReversedEvent
func NewAllocationReversedEvent(outwardLineID uuid.UUID, restoredPieces int64, batchIDs []uuid.UUID) *AllocationReversedEvent {
	return &AllocationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReversed, AggregateTypeStockBatch, outwardLineID),
		OutwardLineID:   outwardLineID,
		RestoredPieces:  restoredPieces,
		BatchIDs:        batchIDs,
	}
}

// StockBelowThresholdEvent is emitted when a product's remaining pieces drop
// to or below the configured low-stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID `json:"product_id"`
	RemainingPieces int64     `json:"remaining_pieces"`
	Threshold       int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a StockBelowThresholdEvent
func NewStockBelowThresholdEvent(productID uuid.UUID, remainingPieces, threshold int64) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStockBatch, productID),
		ProductID:       productID,
		RemainingPieces: remainingPieces,
		Threshold:       threshold,
	}
}
