package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// LedgerService orchestrates the stock ledger use cases. Every mutating
// operation runs inside a TransactionScope so multi-batch changes commit or
// roll back as one unit; reads go through the same scope for repository
// access but hold no locks.
type LedgerService struct {
	txScope        TransactionScope
	allocator      *inventory.AllocationService
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txScope TransactionScope) *LedgerService {
	return &LedgerService{
		txScope:   txScope,
		allocator: inventory.NewAllocationService(),
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Event delivery is best-effort; the transaction already committed.
	_ = s.eventPublisher.Publish(ctx, events...)
}

// CreateBatch posts an inward invoice line: it creates the cost-bearing batch
// and returns the line's valuation alongside it.
func (s *LedgerService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*CreateBatchResponse, error) {
	spec, err := valueobject.NewPackSpec(req.PacksPerBox, req.PiecesPerPack)
	if err != nil {
		return nil, err
	}
	costPerBox := valueobject.NewMoney(req.CostPerBox)

	totals, err := inventory.PurchaseLineTotal(req.Boxes, costPerBox, req.GSTRatePercent)
	if err != nil {
		return nil, err
	}

	batch, err := inventory.NewStockBatch(
		req.ProductID, req.VendorID, req.LocationID,
		req.InwardDate, req.Boxes, spec, costPerBox,
	)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.BatchRepo().Save(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, batch.GetDomainEvents()...)
	batch.ClearDomainEvents()

	return &CreateBatchResponse{
		Batch:     NewBatchResponse(batch),
		LineBase:  totals.Base,
		LineGST:   totals.GST,
		LineTotal: totals.Total,
	}, nil
}

// GetBatch returns one batch by id
func (s *LedgerService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	var batch *inventory.StockBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.BatchRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewBatchResponse(batch), nil
}

// ListAvailable returns the batches with remaining stock for a product in
// FIFO order, the same order an allocation would consume them.
func (s *LedgerService) ListAvailable(ctx context.Context, filter AvailableStockFilter) ([]*BatchResponse, error) {
	var batches []*inventory.StockBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.BatchRepo().FindAvailable(ctx, filter.ProductID, filter.LocationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]*BatchResponse, 0, len(batches))
	for _, b := range batches {
		result = append(result, NewBatchResponse(b))
	}
	return result, nil
}

// Allocate satisfies an outward invoice line from available batches in FIFO
// order. The candidate batches are loaded under row locks, so concurrent
// allocations against the same product serialize; a lock timeout surfaces as
// ErrContention and the caller may retry. Rejection leaves no side effects.
func (s *LedgerService) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResponse, error) {
	unit, err := valueobject.ParseUnit(req.Unit)
	if err != nil {
		return nil, err
	}

	domainReq := inventory.AllocationRequest{
		ProductID:     req.ProductID,
		LocationID:    req.LocationID,
		OutwardLineID: req.OutwardLineID,
		Quantity:      req.Quantity,
		Unit:          unit,
	}
	if err := domainReq.Validate(); err != nil {
		return nil, err
	}

	var result *inventory.AllocationResult
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.BatchRepo().FindAvailableForUpdate(ctx, req.ProductID, req.LocationID)
		if err != nil {
			return err
		}

		result, err = s.allocator.Allocate(domainReq, batches)
		if err != nil {
			return err
		}

		touched := make([]*inventory.StockBatch, 0, len(result.Movements))
		seen := make(map[uuid.UUID]bool)
		for _, b := range batches {
			for _, m := range result.Movements {
				if m.BatchID == b.ID && !seen[b.ID] {
					touched = append(touched, b)
					seen[b.ID] = true
				}
			}
		}
		if err := repos.BatchRepo().SaveAll(ctx, touched); err != nil {
			return err
		}
		return repos.MovementRepo().SaveAll(ctx, result.Movements)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockAllocatedEvent(req.ProductID, req.OutwardLineID, result))

	resp := &AllocationResponse{
		OutwardLineID: req.OutwardLineID,
		TotalPieces:   result.TotalPieces,
		COGS:          result.TotalCost,
	}
	for _, m := range result.Movements {
		resp.Movements = append(resp.Movements, NewMovementResponse(m))
	}
	return resp, nil
}

// Reverse undoes an outward line's allocation: every movement's pieces go
// back to its batch, then the movements are deleted. Runs as one transaction
// so an edit can reverse-then-reallocate atomically.
func (s *LedgerService) Reverse(ctx context.Context, req ReverseRequest) (*ReversalResponse, error) {
	var resp *ReversalResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.MovementRepo().FindByOutwardLine(ctx, req.OutwardLineID)
		if err != nil {
			return err
		}
		if len(movements) == 0 {
			return shared.ErrNotFound
		}

		batchIDs := make([]uuid.UUID, 0, len(movements))
		seen := make(map[uuid.UUID]bool)
		for _, m := range movements {
			if !seen[m.BatchID] {
				batchIDs = append(batchIDs, m.BatchID)
				seen[m.BatchID] = true
			}
		}

		batches, err := repos.BatchRepo().FindByIDsForUpdate(ctx, batchIDs)
		if err != nil {
			return err
		}

		restored, err := s.allocator.Reverse(movements, batches)
		if err != nil {
			return err
		}

		if err := repos.BatchRepo().SaveAll(ctx, batches); err != nil {
			return err
		}
		if err := repos.MovementRepo().DeleteByOutwardLine(ctx, req.OutwardLineID); err != nil {
			return err
		}

		resp = &ReversalResponse{
			OutwardLineID:  req.OutwardLineID,
			RestoredPieces: restored,
			BatchIDs:       batchIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewAllocationReversedEvent(req.OutwardLineID, resp.RestoredPieces, resp.BatchIDs))
	return resp, nil
}

// Summarize rolls the current batch set up into per-product summaries.
// The low-stock threshold is a policy input supplied by the caller.
func (s *LedgerService) Summarize(ctx context.Context, filter StockSummaryFilter) ([]ProductSummaryResponse, error) {
	var batches []*inventory.StockBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.BatchRepo().FindAll(ctx, filter.LocationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	summaries := inventory.Summarize(batches, inventory.SummarizeOptions{
		LocationID:        filter.LocationID,
		LowStockThreshold: filter.LowStockThreshold,
		IncludeLocations:  filter.IncludeLocations,
	})

	result := make([]ProductSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		result = append(result, NewProductSummaryResponse(s))
	}
	return result, nil
}

// ValuatePurchaseLine prices an inward line without posting it
func (s *LedgerService) ValuatePurchaseLine(req PurchaseLineValuationRequest) (*PurchaseLineValuationResponse, error) {
	totals, err := inventory.PurchaseLineTotal(req.Boxes, valueobject.NewMoney(req.RatePerBox), req.GSTRatePercent)
	if err != nil {
		return nil, err
	}
	return &PurchaseLineValuationResponse{
		Base:  totals.Base,
		GST:   totals.GST,
		Total: totals.Total,
	}, nil
}

// ListMovements returns movements for an outward line or a batch
func (s *LedgerService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, error) {
	if filter.OutwardLineID == nil && filter.BatchID == nil {
		return nil, shared.ErrInvalidInput
	}

	var movements []*inventory.InventoryMovement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if filter.OutwardLineID != nil {
			movements, err = repos.MovementRepo().FindByOutwardLine(ctx, *filter.OutwardLineID)
		} else {
			movements, err = repos.MovementRepo().FindByBatch(ctx, *filter.BatchID, shared.DefaultFilter())
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, NewMovementResponse(m))
	}
	return result, nil
}
