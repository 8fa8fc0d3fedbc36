package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingHandler struct {
	types  []string
	events []shared.DomainEvent
	err    error
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestInMemoryEventBus(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers events to matching handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := &recordingHandler{types: []string{inventory.EventTypeBatchCreated}}
		reversed := &recordingHandler{types: []string{inventory.EventTypeAllocationReversed}}
		bus.Subscribe(created)
		bus.Subscribe(reversed)

		err := bus.Publish(ctx, inventory.NewAllocationReversedEvent(uuid.New(), 10, nil))
		require.NoError(t, err)

		assert.Empty(t, created.events)
		require.Len(t, reversed.events, 1)
		assert.Equal(t, inventory.EventTypeAllocationReversed, reversed.events[0].EventType())
	})

	t.Run("a failing handler does not stop delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{inventory.EventTypeAllocationReversed}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{inventory.EventTypeAllocationReversed}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, inventory.NewAllocationReversedEvent(uuid.New(), 5, nil))
		require.NoError(t, err)
		assert.Len(t, healthy.events, 1)
	})
}

func setupBatchRepo(t *testing.T) inventory.StockBatchRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockBatchModel{}, &models.InventoryMovementModel{}))
	return persistence.NewGormStockBatchRepository(db)
}

func seedBatch(t *testing.T, repo inventory.StockBatchRepository, productID uuid.UUID, consumed int64) {
	t.Helper()
	cost, err := valueobject.NewMoneyFromString("1000.00")
	require.NoError(t, err)
	b, err := inventory.NewStockBatch(
		productID, uuid.New(), uuid.New(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		1, valueobject.MustNewPackSpec(10, 10), cost,
	)
	require.NoError(t, err)
	if consumed > 0 {
		require.NoError(t, b.Decrement(consumed))
	}
	require.NoError(t, repo.Save(context.Background(), b))
}

func TestLowStockMonitor(t *testing.T) {
	ctx := context.Background()

	allocatedEvent := func(productID uuid.UUID) *inventory.StockAllocatedEvent {
		return inventory.NewStockAllocatedEvent(productID, uuid.New(), &inventory.AllocationResult{
			TotalPieces: 95,
			TotalCost:   valueobject.ZeroMoney(),
		})
	}

	t.Run("raises below-threshold event when stock drops under the line", func(t *testing.T) {
		repo := setupBatchRepo(t)
		productID := uuid.New()
		seedBatch(t, repo, productID, 95) // 5 pieces left

		bus := NewInMemoryEventBus(zap.NewNop())
		alerts := &recordingHandler{types: []string{inventory.EventTypeStockBelowThreshold}}
		bus.Subscribe(alerts)
		bus.Subscribe(NewLowStockMonitor(repo, bus, 10, zap.NewNop()))

		require.NoError(t, bus.Publish(ctx, allocatedEvent(productID)))

		require.Len(t, alerts.events, 1)
		alert := alerts.events[0].(*inventory.StockBelowThresholdEvent)
		assert.Equal(t, productID, alert.ProductID)
		assert.Equal(t, int64(5), alert.RemainingPieces)
		assert.Equal(t, int64(10), alert.Threshold)
	})

	t.Run("stays quiet while stock is above the threshold", func(t *testing.T) {
		repo := setupBatchRepo(t)
		productID := uuid.New()
		seedBatch(t, repo, productID, 50) // 50 pieces left

		bus := NewInMemoryEventBus(zap.NewNop())
		alerts := &recordingHandler{types: []string{inventory.EventTypeStockBelowThreshold}}
		bus.Subscribe(alerts)
		bus.Subscribe(NewLowStockMonitor(repo, bus, 10, zap.NewNop()))

		require.NoError(t, bus.Publish(ctx, allocatedEvent(productID)))
		assert.Empty(t, alerts.events)
	})
}
