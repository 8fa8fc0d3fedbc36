package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// StockBatch represents one purchase lot of one product at one location.
// Conversion ratios and cost basis are fixed at creation and never change
// as the batch depletes, so per-batch FIFO cost stays stable. Batches are
// never deleted; a fully consumed batch remains for valuation and audit.
type StockBatch struct {
	shared.BaseAggregateRoot
	ProductID  uuid.UUID
	VendorID   uuid.UUID
	LocationID uuid.UUID
	InwardDate time.Time

	Boxes           int64 // original boxes purchased
	Spec            valueobject.PackSpec
	TotalPieces     int64
	RemainingPieces int64 // authoritative remaining quantity

	CostPerBox valueobject.Money
}

// NewStockBatch creates a batch from a posted inward invoice line.
// Remaining quantity starts equal to the original total.
func NewStockBatch(
	productID, vendorID, locationID uuid.UUID,
	inwardDate time.Time,
	boxes int64,
	spec valueobject.PackSpec,
	costPerBox valueobject.Money,
) (*StockBatch, error) {
	if boxes <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if spec.IsZero() {
		return nil, shared.ErrInvalidRatio
	}
	if costPerBox.IsNegative() {
		return nil, shared.ErrInvalidCost
	}

	total := boxes * spec.PiecesPerBox()
	b := &StockBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		VendorID:          vendorID,
		LocationID:        locationID,
		InwardDate:        inwardDate,
		Boxes:             boxes,
		Spec:              spec,
		TotalPieces:       total,
		RemainingPieces:   total,
		CostPerBox:        costPerBox,
	}
	b.AddDomainEvent(NewBatchCreatedEvent(b))
	return b, nil
}

// TotalPacks returns the original pack count
func (b *StockBatch) TotalPacks() int64 {
	return b.Boxes * b.Spec.PacksPerBox()
}

// CostPerPack returns the fixed per-pack cost derived from the box cost
func (b *StockBatch) CostPerPack() valueobject.Money {
	cost, _ := b.CostPerBox.Div(decimal.NewFromInt(b.Spec.PacksPerBox()))
	return cost
}

// CostPerPiece returns the fixed per-piece cost derived from the box cost
func (b *StockBatch) CostPerPiece() valueobject.Money {
	cost, _ := b.CostPerBox.Div(decimal.NewFromInt(b.Spec.PiecesPerBox()))
	return cost
}

// RemainingPacks returns the whole packs still in stock.
// This is a floor projection of RemainingPieces; a partial pack shows only
// in the piece count.
func (b *StockBatch) RemainingPacks() int64 {
	return b.Spec.ProjectPacks(b.RemainingPieces)
}

// RemainingBoxes returns the whole boxes still in stock (floor projection)
func (b *StockBatch) RemainingBoxes() int64 {
	return b.Spec.ProjectBoxes(b.RemainingPieces)
}

// ConsumedPieces returns how many pieces have been consumed so far
func (b *StockBatch) ConsumedPieces() int64 {
	return b.TotalPieces - b.RemainingPieces
}

// HasStock returns true if the batch still has remaining pieces
func (b *StockBatch) HasStock() bool {
	return b.RemainingPieces > 0
}

// IsFullyConsumed returns true once every piece has been allocated
func (b *StockBatch) IsFullyConsumed() bool {
	return b.RemainingPieces == 0
}

// Decrement consumes pieces from the batch. It is a consistency guard behind
// the AllocationService: the allocation plan must already have validated
// availability, and a request for more than remains is rejected here without
// mutating the batch.
func (b *StockBatch) Decrement(pieces int64) error {
	if pieces <= 0 {
		return shared.ErrInvalidQuantity
	}
	if pieces > b.RemainingPieces {
		return &InsufficientStockError{
			RequestedPieces: pieces,
			AvailablePieces: b.RemainingPieces,
		}
	}
	b.RemainingPieces -= pieces
	b.Touch()
	return nil
}

// Increment restores pieces to the batch when a sale is reversed.
// Remaining stock can never exceed the original purchased quantity.
func (b *StockBatch) Increment(pieces int64) error {
	if pieces <= 0 {
		return shared.ErrInvalidQuantity
	}
	if b.RemainingPieces+pieces > b.TotalPieces {
		return shared.ErrExceedsOriginal
	}
	b.RemainingPieces += pieces
	b.Touch()
	return nil
}

// Value returns the remaining stock value at the batch's fixed cost basis
func (b *StockBatch) Value() valueobject.Money {
	return b.CostPerPiece().MulInt(b.RemainingPieces).Round()
}
