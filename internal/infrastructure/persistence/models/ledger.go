package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// StockBatchModel is the persistence model for the StockBatch aggregate.
// Remaining pieces is the authoritative quantity; box and pack counts are
// derived in the domain from the fixed ratios.
type StockBatchModel struct {
	AggregateModel
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_batches_product_location,priority:1"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_batches_product_location,priority:2"`
	InwardDate      time.Time       `gorm:"type:date;not null;index"`
	Boxes           int64           `gorm:"not null"`
	PacksPerBox     int64           `gorm:"not null"`
	PiecesPerPack   int64           `gorm:"not null"`
	TotalPieces     int64           `gorm:"not null"`
	RemainingPieces int64           `gorm:"not null"`
	CostPerBox      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the persistence model to a domain StockBatch.
// Legacy rows persisted without ratios map to the 1x1 spec.
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	spec, err := valueobject.NewPackSpec(m.PacksPerBox, m.PiecesPerPack)
	if err != nil {
		spec = valueobject.UnitPackSpec()
	}
	return &inventory.StockBatch{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ProductID:       m.ProductID,
		VendorID:        m.VendorID,
		LocationID:      m.LocationID,
		InwardDate:      m.InwardDate,
		Boxes:           m.Boxes,
		Spec:            spec,
		TotalPieces:     m.TotalPieces,
		RemainingPieces: m.RemainingPieces,
		CostPerBox:      valueobject.NewMoney(m.CostPerBox),
	}
}

// FromDomain populates the persistence model from a domain StockBatch
func (m *StockBatchModel) FromDomain(b *inventory.StockBatch) {
	m.AggregateModel = newAggregateModel(b.BaseAggregateRoot)
	m.ProductID = b.ProductID
	m.VendorID = b.VendorID
	m.LocationID = b.LocationID
	m.InwardDate = b.InwardDate
	m.Boxes = b.Boxes
	m.PacksPerBox = b.Spec.PacksPerBox()
	m.PiecesPerPack = b.Spec.PiecesPerPack()
	m.TotalPieces = b.TotalPieces
	m.RemainingPieces = b.RemainingPieces
	m.CostPerBox = b.CostPerBox.Amount()
}

// StockBatchModelFromDomain creates a new persistence model from a domain StockBatch
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{}
	m.FromDomain(b)
	return m
}

// InventoryMovementModel is the persistence model for InventoryMovement.
// Movements are deleted when their outward line is reversed.
type InventoryMovementModel struct {
	BaseModel
	BatchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutwardLineID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Pieces        int64           `gorm:"not null"`
	CostPerPiece  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InventoryMovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain InventoryMovement
func (m *InventoryMovementModel) ToDomain() *inventory.InventoryMovement {
	return &inventory.InventoryMovement{
		BaseEntity:    m.BaseModel.ToDomain(),
		BatchID:       m.BatchID,
		OutwardLineID: m.OutwardLineID,
		Pieces:        m.Pieces,
		CostPerPiece:  valueobject.NewMoney(m.CostPerPiece),
	}
}

// FromDomain populates the persistence model from a domain InventoryMovement
func (m *InventoryMovementModel) FromDomain(mv *inventory.InventoryMovement) {
	m.BaseModel = newBaseModel(mv.BaseEntity)
	m.BatchID = mv.BatchID
	m.OutwardLineID = mv.OutwardLineID
	m.Pieces = mv.Pieces
	m.CostPerPiece = mv.CostPerPiece.Amount()
}

// InventoryMovementModelFromDomain creates a new persistence model from a domain movement
func InventoryMovementModelFromDomain(mv *inventory.InventoryMovement) *InventoryMovementModel {
	m := &InventoryMovementModel{}
	m.FromDomain(mv)
	return m
}
