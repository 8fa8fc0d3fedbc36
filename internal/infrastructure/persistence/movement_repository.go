package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryMovement, error) {
	var model models.InventoryMovementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOutwardLine finds all movements emitted for an outward line
func (r *GormMovementRepository) FindByOutwardLine(ctx context.Context, outwardLineID uuid.UUID) ([]*inventory.InventoryMovement, error) {
	var rows []models.InventoryMovementModel
	if err := r.db.WithContext(ctx).
		Where("outward_line_id = ?", outwardLineID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(rows), nil
}

// FindByBatch finds all movements that consumed from a batch
func (r *GormMovementRepository) FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]*inventory.InventoryMovement, error) {
	query := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC, id ASC")
	query = applyPagination(query, filter)

	var rows []models.InventoryMovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(rows), nil
}

// SaveAll persists the movement set of one allocation
func (r *GormMovementRepository) SaveAll(ctx context.Context, movements []*inventory.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.InventoryMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.InventoryMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// DeleteByOutwardLine removes an outward line's movements after reversal
func (r *GormMovementRepository) DeleteByOutwardLine(ctx context.Context, outwardLineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("outward_line_id = ?", outwardLineID).
		Delete(&models.InventoryMovementModel{}).Error
}

func toDomainMovements(rows []models.InventoryMovementModel) []*inventory.InventoryMovement {
	movements := make([]*inventory.InventoryMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
