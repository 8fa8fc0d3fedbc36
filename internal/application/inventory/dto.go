package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// CreateBatchRequest represents a posted inward invoice line
type CreateBatchRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	VendorID       uuid.UUID       `json:"vendor_id" binding:"required"`
	LocationID     uuid.UUID       `json:"location_id" binding:"required"`
	InwardDate     time.Time       `json:"inward_date" binding:"required"`
	Boxes          int64           `json:"boxes" binding:"required"`
	PacksPerBox    int64           `json:"packs_per_box" binding:"required"`
	PiecesPerPack  int64           `json:"pieces_per_pack" binding:"required"`
	CostPerBox     decimal.Decimal `json:"cost_per_box" binding:"required"`
	GSTRatePercent decimal.Decimal `json:"gst_rate_percent"`
}

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID              uuid.UUID         `json:"id"`
	ProductID       uuid.UUID         `json:"product_id"`
	VendorID        uuid.UUID         `json:"vendor_id"`
	LocationID      uuid.UUID         `json:"location_id"`
	InwardDate      time.Time         `json:"inward_date"`
	Boxes           int64             `json:"boxes"`
	PacksPerBox     int64             `json:"packs_per_box"`
	PiecesPerPack   int64             `json:"pieces_per_pack"`
	TotalPieces     int64             `json:"total_pieces"`
	RemainingBoxes  int64             `json:"remaining_boxes"`
	RemainingPacks  int64             `json:"remaining_packs"`
	RemainingPieces int64             `json:"remaining_pieces"`
	CostPerBox      valueobject.Money `json:"cost_per_box"`
	CostPerPack     valueobject.Money `json:"cost_per_pack"`
	CostPerPiece    valueobject.Money `json:"cost_per_piece"`
	Value           valueobject.Money `json:"value"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewBatchResponse converts a domain batch into a response
func NewBatchResponse(b *inventory.StockBatch) *BatchResponse {
	return &BatchResponse{
		ID:              b.ID,
		ProductID:       b.ProductID,
		VendorID:        b.VendorID,
		LocationID:      b.LocationID,
		InwardDate:      b.InwardDate,
		Boxes:           b.Boxes,
		PacksPerBox:     b.Spec.PacksPerBox(),
		PiecesPerPack:   b.Spec.PiecesPerPack(),
		TotalPieces:     b.TotalPieces,
		RemainingBoxes:  b.RemainingBoxes(),
		RemainingPacks:  b.RemainingPacks(),
		RemainingPieces: b.RemainingPieces,
		CostPerBox:      b.CostPerBox,
		CostPerPack:     b.CostPerPack().Round(),
		CostPerPiece:    b.CostPerPiece().Round(),
		Value:           b.Value(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// CreateBatchResponse carries the new batch and its purchase line valuation
type CreateBatchResponse struct {
	Batch     *BatchResponse    `json:"batch"`
	LineBase  valueobject.Money `json:"line_base"`
	LineGST   valueobject.Money `json:"line_gst"`
	LineTotal valueobject.Money `json:"line_total"`
}

// AllocateRequest represents a sale demand from an outward invoice line
type AllocateRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	LocationID    *uuid.UUID `json:"location_id"`
	OutwardLineID uuid.UUID  `json:"outward_line_id" binding:"required"`
	Quantity      int64      `json:"quantity" binding:"required"`
	Unit          string     `json:"unit" binding:"required,oneof=box pack piece"`
}

// MovementResponse represents one batch consumption in API responses
type MovementResponse struct {
	ID            uuid.UUID         `json:"id"`
	BatchID       uuid.UUID         `json:"batch_id"`
	OutwardLineID uuid.UUID         `json:"outward_line_id"`
	Pieces        int64             `json:"pieces"`
	CostPerPiece  valueobject.Money `json:"cost_per_piece"`
	Cost          valueobject.Money `json:"cost"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewMovementResponse converts a domain movement into a response
func NewMovementResponse(m *inventory.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		BatchID:       m.BatchID,
		OutwardLineID: m.OutwardLineID,
		Pieces:        m.Pieces,
		CostPerPiece:  m.CostPerPiece.Round(),
		Cost:          m.Cost().Round(),
		CreatedAt:     m.CreatedAt,
	}
}

// AllocationResponse represents a committed allocation
type AllocationResponse struct {
	OutwardLineID uuid.UUID          `json:"outward_line_id"`
	TotalPieces   int64              `json:"total_pieces"`
	COGS          valueobject.Money  `json:"cogs"`
	Movements     []MovementResponse `json:"movements"`
}

// ReverseRequest asks for an outward line's movements to be undone
type ReverseRequest struct {
	OutwardLineID uuid.UUID `json:"outward_line_id" binding:"required"`
}

// ReversalResponse reports the pieces restored by a reversal
type ReversalResponse struct {
	OutwardLineID  uuid.UUID   `json:"outward_line_id"`
	RestoredPieces int64       `json:"restored_pieces"`
	BatchIDs       []uuid.UUID `json:"batch_ids"`
}

// PurchaseLineValuationRequest prices an inward line without posting it
type PurchaseLineValuationRequest struct {
	Boxes          int64           `json:"boxes" binding:"required"`
	RatePerBox     decimal.Decimal `json:"rate_per_box" binding:"required"`
	GSTRatePercent decimal.Decimal `json:"gst_rate_percent"`
}

// PurchaseLineValuationResponse carries the priced parts of the line
type PurchaseLineValuationResponse struct {
	Base  valueobject.Money `json:"base"`
	GST   valueobject.Money `json:"gst"`
	Total valueobject.Money `json:"total"`
}

// AvailableStockFilter scopes an available-stock listing
type AvailableStockFilter struct {
	ProductID  uuid.UUID  `form:"product_id" binding:"required"`
	LocationID *uuid.UUID `form:"location_id"`
}

// StockSummaryFilter controls the stock summary projection
type StockSummaryFilter struct {
	LocationID        *uuid.UUID `form:"location_id"`
	LowStockThreshold int64      `form:"low_stock_threshold"`
	IncludeLocations  bool       `form:"include_locations"`
}

// LocationStockResponse is the per-location slice of a product summary
type LocationStockResponse struct {
	LocationID      uuid.UUID         `json:"location_id"`
	RemainingBoxes  int64             `json:"remaining_boxes"`
	RemainingPacks  int64             `json:"remaining_packs"`
	RemainingPieces int64             `json:"remaining_pieces"`
	Value           valueobject.Money `json:"value"`
}

// ProductSummaryResponse is a per-product stock roll-up
type ProductSummaryResponse struct {
	ProductID       uuid.UUID               `json:"product_id"`
	RemainingBoxes  int64                   `json:"remaining_boxes"`
	RemainingPacks  int64                   `json:"remaining_packs"`
	RemainingPieces int64                   `json:"remaining_pieces"`
	Value           valueobject.Money       `json:"value"`
	LowStock        bool                    `json:"low_stock"`
	Locations       []LocationStockResponse `json:"locations,omitempty"`
}

// NewProductSummaryResponse converts a domain summary into a response
func NewProductSummaryResponse(s inventory.ProductSummary) ProductSummaryResponse {
	resp := ProductSummaryResponse{
		ProductID:       s.ProductID,
		RemainingBoxes:  s.RemainingBoxes,
		RemainingPacks:  s.RemainingPacks,
		RemainingPieces: s.RemainingPieces,
		Value:           s.Value,
		LowStock:        s.LowStock,
	}
	for _, ls := range s.Locations {
		resp.Locations = append(resp.Locations, LocationStockResponse{
			LocationID:      ls.LocationID,
			RemainingBoxes:  ls.RemainingBoxes,
			RemainingPacks:  ls.RemainingPacks,
			RemainingPieces: ls.RemainingPieces,
			Value:           ls.Value,
		})
	}
	return resp
}

// MovementListFilter scopes a movement listing
type MovementListFilter struct {
	OutwardLineID *uuid.UUID `form:"outward_line_id"`
	BatchID       *uuid.UUID `form:"batch_id"`
}
