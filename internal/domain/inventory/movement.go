package inventory

import (
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// InventoryMovement records pieces consumed from one batch by one outward
// invoice line, with the batch's per-piece cost captured at consumption time.
// Movements are owned by the outward line: editing or voiding the line must
// reverse its exact movements before any reallocation.
type InventoryMovement struct {
	shared.BaseEntity
	BatchID       uuid.UUID
	OutwardLineID uuid.UUID
	Pieces        int64
	CostPerPiece  valueobject.Money
}

// NewInventoryMovement creates a movement for a batch consumption
func NewInventoryMovement(batchID, outwardLineID uuid.UUID, pieces int64, costPerPiece valueobject.Money) *InventoryMovement {
	return &InventoryMovement{
		BaseEntity:    shared.NewBaseEntity(),
		BatchID:       batchID,
		OutwardLineID: outwardLineID,
		Pieces:        pieces,
		CostPerPiece:  costPerPiece,
	}
}

// Cost returns the movement's contribution to cost of goods sold
func (m *InventoryMovement) Cost() valueobject.Money {
	return m.CostPerPiece.MulInt(m.Pieces)
}
