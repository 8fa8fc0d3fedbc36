// Package inventory implements the stock-batch inventory ledger.
//
// Every posted purchase line creates a cost-bearing StockBatch holding stock
// in three nested units (boxes, packs, pieces) with conversion ratios and a
// cost basis fixed at creation. Sales consume batches in FIFO order through
// the AllocationService, which emits one InventoryMovement per batch touched;
// movements are the traceability record and the exact inverse used when an
// outward line is edited or voided. Remaining stock is tracked in pieces as
// the single source of truth; box and pack counts are floor projections.
package inventory
