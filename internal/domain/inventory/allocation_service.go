package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// AllocationState tracks an allocation request through its lifecycle
type AllocationState string

const (
	AllocationStateRequested AllocationState = "requested"
	AllocationStateValidated AllocationState = "validated"
	AllocationStateReserved  AllocationState = "reserved"
	AllocationStateCommitted AllocationState = "committed"
	AllocationStateRejected  AllocationState = "rejected"
)

// String returns the string representation
func (s AllocationState) String() string {
	return string(s)
}

// AllocationRequest is a sale demand against available stock.
// Quantity is expressed in any of the three units; conversion to pieces
// happens per batch, since batches of the same product may carry different
// pack ratios.
type AllocationRequest struct {
	ProductID     uuid.UUID
	LocationID    *uuid.UUID // nil means all locations for the product
	OutwardLineID uuid.UUID
	Quantity      int64
	Unit          valueobject.Unit
}

// Validate checks the request fields
func (r AllocationRequest) Validate() error {
	if r.Quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	if !r.Unit.IsValid() {
		return shared.ErrInvalidUnit
	}
	return nil
}

// BatchConsumption is one planned deduction from one batch
type BatchConsumption struct {
	Batch  *StockBatch
	Pieces int64
}

// AllocationPlan is the computed consumption set before any batch is mutated.
// A plan holds no reservations outside the enclosing transaction; it exists
// so validation and mutation are separate steps and rejection has no side
// effects.
type AllocationPlan struct {
	State        AllocationState
	Request      AllocationRequest
	Consumptions []BatchConsumption
	TotalPieces  int64
	TotalCost    valueobject.Money
}

// AllocationResult is the outcome of a committed allocation
type AllocationResult struct {
	State       AllocationState
	Movements   []*InventoryMovement
	TotalPieces int64
	TotalCost   valueobject.Money
}

// SortFIFO orders batches for consumption: inward date ascending, ties broken
// by ascending batch id so identical inputs always allocate identically.
func SortFIFO(batches []*StockBatch) {
	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].InwardDate.Equal(batches[j].InwardDate) {
			return batches[i].InwardDate.Before(batches[j].InwardDate)
		}
		return batches[i].ID.String() < batches[j].ID.String()
	})
}

// AllocationService satisfies sale demands against stock batches in FIFO
// order. It is a pure domain service: callers load the candidate batches
// (under row locks inside a transaction) and persist the mutated batches and
// emitted movements afterwards.
type AllocationService struct{}

// NewAllocationService creates a new allocation service
func NewAllocationService() *AllocationService {
	return &AllocationService{}
}

// Plan walks the batches in FIFO order and computes the consumption set
// without mutating any batch. Demand is carried as whole units in the
// requested unit plus loose pieces; the whole-unit portion is re-converted
// against each batch's own pack ratios, so a request for boxes spans batches
// with different box sizes correctly. If the batches cannot cover the demand
// the whole plan is rejected with InsufficientStockError carrying the
// shortfall.
func (s *AllocationService) Plan(req AllocationRequest, batches []*StockBatch) (*AllocationPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	SortFIFO(batches)

	wholeUnits := req.Quantity
	loosePieces := int64(0)
	if req.Unit == valueobject.UnitPiece {
		wholeUnits, loosePieces = 0, req.Quantity
	}

	plan := &AllocationPlan{
		State:     AllocationStateValidated,
		Request:   req,
		TotalCost: valueobject.ZeroMoney(),
	}

	// Ratio used to express any shortfall in pieces. Falls back to 1x1 when
	// no batch was seen at all.
	lastSpec := valueobject.UnitPackSpec()

	for _, b := range batches {
		if wholeUnits == 0 && loosePieces == 0 {
			break
		}
		if !b.HasStock() {
			continue
		}
		lastSpec = b.Spec

		perUnit, err := b.Spec.ToPieces(1, req.Unit)
		if err != nil {
			return nil, err
		}
		needed := wholeUnits*perUnit + loosePieces
		take := min(needed, b.RemainingPieces)

		plan.Consumptions = append(plan.Consumptions, BatchConsumption{Batch: b, Pieces: take})
		plan.TotalPieces += take
		plan.TotalCost = plan.TotalCost.Add(b.CostPerPiece().MulInt(take))

		outstanding := needed - take
		wholeUnits = outstanding / perUnit
		loosePieces = outstanding % perUnit
	}

	if wholeUnits > 0 || loosePieces > 0 {
		perUnit, err := lastSpec.ToPieces(1, req.Unit)
		if err != nil {
			return nil, err
		}
		shortfall := wholeUnits*perUnit + loosePieces
		plan.State = AllocationStateRejected
		return nil, &InsufficientStockError{
			RequestedPieces: plan.TotalPieces + shortfall,
			AvailablePieces: plan.TotalPieces,
		}
	}

	plan.State = AllocationStateReserved
	return plan, nil
}

// Commit applies a reserved plan: decrements every planned batch and emits
// one movement per batch carrying that batch's per-piece cost at consumption
// time. A decrement failure rolls back the in-memory decrements already
// applied, so a failed commit leaves every batch unchanged.
func (s *AllocationService) Commit(plan *AllocationPlan) (*AllocationResult, error) {
	if plan == nil || plan.State != AllocationStateReserved {
		return nil, shared.ErrInvalidInput
	}

	movements := make([]*InventoryMovement, 0, len(plan.Consumptions))
	applied := make([]BatchConsumption, 0, len(plan.Consumptions))
	for _, c := range plan.Consumptions {
		if err := c.Batch.Decrement(c.Pieces); err != nil {
			for _, a := range applied {
				_ = a.Batch.Increment(a.Pieces)
			}
			return nil, err
		}
		applied = append(applied, c)
		movements = append(movements, NewInventoryMovement(
			c.Batch.ID, plan.Request.OutwardLineID, c.Pieces, c.Batch.CostPerPiece()))
	}

	plan.State = AllocationStateCommitted
	return &AllocationResult{
		State:       AllocationStateCommitted,
		Movements:   movements,
		TotalPieces: plan.TotalPieces,
		TotalCost:   COGSForMovements(movements),
	}, nil
}

// Allocate plans and commits in one call
func (s *AllocationService) Allocate(req AllocationRequest, batches []*StockBatch) (*AllocationResult, error) {
	plan, err := s.Plan(req, batches)
	if err != nil {
		return nil, err
	}
	return s.Commit(plan)
}

// Reverse restores a previously committed movement set onto its batches,
// returning the total pieces restored. Reversal is exact: each batch gets
// back precisely the pieces its movement took, so remaining quantities return
// to their pre-allocation values. A failure rolls back the increments already
// applied.
func (s *AllocationService) Reverse(movements []*InventoryMovement, batches []*StockBatch) (int64, error) {
	byID := make(map[uuid.UUID]*StockBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	var restored int64
	applied := make([]*InventoryMovement, 0, len(movements))
	for _, m := range movements {
		batch, ok := byID[m.BatchID]
		if !ok {
			s.rollbackReversal(applied, byID)
			return 0, shared.ErrNotFound
		}
		if err := batch.Increment(m.Pieces); err != nil {
			s.rollbackReversal(applied, byID)
			return 0, err
		}
		applied = append(applied, m)
		restored += m.Pieces
	}
	return restored, nil
}

func (s *AllocationService) rollbackReversal(applied []*InventoryMovement, byID map[uuid.UUID]*StockBatch) {
	for _, m := range applied {
		if batch, ok := byID[m.BatchID]; ok {
			_ = batch.Decrement(m.Pieces)
		}
	}
}
