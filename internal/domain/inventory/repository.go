package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockBatchRepository defines the interface for stock batch persistence.
// Batches are append-and-mutate only: they are created when an inward line
// posts and their remaining quantity changes on allocation or reversal, but
// they are never deleted, so history survives for valuation and audit.
type StockBatchRepository interface {
	// FindByID finds a stock batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)

	// FindByProduct finds all batches for a product, optionally scoped to a
	// location, in FIFO order (inward date ascending, batch id ascending)
	FindByProduct(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID, filter shared.Filter) ([]*StockBatch, error)

	// FindAvailable finds batches with remaining stock for a product,
	// optionally scoped to a location, in FIFO order
	FindAvailable(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) ([]*StockBatch, error)

	// FindAvailableForUpdate is FindAvailable under row locks. It must be
	// called inside a transaction; lock acquisition has a bounded wait and
	// fails with ErrContention rather than blocking.
	FindAvailableForUpdate(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) ([]*StockBatch, error)

	// FindByIDsForUpdate loads the given batches under row locks, in FIFO
	// order, failing with ErrContention on lock timeout
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*StockBatch, error)

	// FindAll finds batches across all products, optionally scoped to a
	// location, for summary roll-ups
	FindAll(ctx context.Context, locationID *uuid.UUID) ([]*StockBatch, error)

	// Save creates or updates a stock batch
	Save(ctx context.Context, batch *StockBatch) error

	// SaveAll persists multiple batches
	SaveAll(ctx context.Context, batches []*StockBatch) error

	// Count counts batches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// MovementRepository defines the interface for inventory movement persistence.
// Movements are owned by their outward line: reversing the line deletes its
// movements after the batch quantities have been restored.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryMovement, error)

	// FindByOutwardLine finds all movements emitted for an outward line
	FindByOutwardLine(ctx context.Context, outwardLineID uuid.UUID) ([]*InventoryMovement, error)

	// FindByBatch finds all movements that consumed from a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]*InventoryMovement, error)

	// SaveAll persists the movement set of one allocation
	SaveAll(ctx context.Context, movements []*InventoryMovement) error

	// DeleteByOutwardLine removes an outward line's movements after reversal
	DeleteByOutwardLine(ctx context.Context, outwardLineID uuid.UUID) error
}
