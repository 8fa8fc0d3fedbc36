package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// BaseModel maps the domain's BaseEntity columns. Timestamps come from the
// domain; gorm's auto-update is not relied on.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func newBaseModel(e shared.BaseEntity) BaseModel {
	return BaseModel{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// AggregateModel adds the optimistic lock version to BaseModel.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func newAggregateModel(a shared.BaseAggregateRoot) AggregateModel {
	return AggregateModel{
		BaseModel: newBaseModel(a.BaseEntity),
		Version:   a.Version,
	}
}
