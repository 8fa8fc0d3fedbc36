package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgLockNotAvailable is the Postgres error code raised by NOWAIT when a row
// lock is already held, and by lock_timeout expiry on implicit locks.
const pgLockNotAvailable = "55P03"

// fifoOrder is the deterministic consumption order: inward date ascending,
// ties broken by batch id ascending.
const fifoOrder = "inward_date ASC, id ASC"

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a stock batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var model models.StockBatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct finds all batches for a product in FIFO order
func (r *GormStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID, filter shared.Filter) ([]*inventory.StockBatch, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order(fifoOrder)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}
	query = applyPagination(query, filter)

	var rows []models.StockBatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// FindAvailable finds batches with remaining stock in FIFO order
func (r *GormStockBatchRepository) FindAvailable(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) ([]*inventory.StockBatch, error) {
	return r.findAvailable(ctx, productID, locationID, false)
}

// FindAvailableForUpdate finds batches with remaining stock in FIFO order,
// locking the rows for the duration of the enclosing transaction. The lock
// does not wait: contended rows fail immediately with ErrContention so the
// caller can retry instead of queueing behind a long transaction.
func (r *GormStockBatchRepository) FindAvailableForUpdate(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) ([]*inventory.StockBatch, error) {
	return r.findAvailable(ctx, productID, locationID, true)
}

func (r *GormStockBatchRepository) findAvailable(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID, forUpdate bool) ([]*inventory.StockBatch, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND remaining_pieces > 0", productID).
		Order(fifoOrder)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}
	if forUpdate {
		query = r.lockRows(query)
	}

	var rows []models.StockBatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, mapLockError(err)
	}
	return toDomainBatches(rows), nil
}

// FindByIDsForUpdate loads the given batches under row locks in FIFO order
func (r *GormStockBatchRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	query := r.lockRows(
		r.db.WithContext(ctx).
			Where("id IN ?", ids).
			Order(fifoOrder),
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, mapLockError(err)
	}
	return toDomainBatches(rows), nil
}

// FindAll finds batches across all products, optionally scoped to a location
func (r *GormStockBatchRepository) FindAll(ctx context.Context, locationID *uuid.UUID) ([]*inventory.StockBatch, error) {
	query := r.db.WithContext(ctx).Order(fifoOrder)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var rows []models.StockBatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// Save creates or updates a stock batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	model := models.StockBatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll persists multiple batches
func (r *GormStockBatchRepository) SaveAll(ctx context.Context, batches []*inventory.StockBatch) error {
	if len(batches) == 0 {
		return nil
	}
	rows := make([]*models.StockBatchModel, len(batches))
	for i, b := range batches {
		rows[i] = models.StockBatchModelFromDomain(b)
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

// Count counts batches matching the filter
func (r *GormStockBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StockBatchModel{})
	for field, value := range filter.Filters {
		query = query.Where(field+" = ?", value)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// lockRows adds FOR UPDATE NOWAIT on dialects that support it. SQLite (used
// by the repository tests) serializes writers itself, so the clause is
// skipped there.
func (r *GormStockBatchRepository) lockRows(query *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() != "postgres" {
		return query
	}
	return query.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"})
}

// mapLockError maps a NOWAIT lock failure to the retryable contention error
func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgLockNotAvailable {
		return shared.ErrContention
	}
	// The pgx driver used by gorm's postgres dialect reports the SQLSTATE in
	// the message rather than a pq.Error.
	if err != nil && strings.Contains(err.Error(), pgLockNotAvailable) {
		return shared.ErrContention
	}
	return err
}

func toDomainBatches(rows []models.StockBatchModel) []*inventory.StockBatch {
	batches := make([]*inventory.StockBatch, len(rows))
	for i := range rows {
		batches[i] = rows[i].ToDomain()
	}
	return batches
}

func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
