package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("commits batch and movements together", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		scope := NewGormTransactionScope(db)
		batch := newTestBatch(t, uuid.New(), uuid.New(), day1, 1, "1000.00")
		outwardLineID := uuid.New()

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.BatchRepo().Save(ctx, batch); err != nil {
				return err
			}
			return repos.MovementRepo().SaveAll(ctx, []*inventory.InventoryMovement{
				newTestMovement(t, batch.ID, outwardLineID, 10, "10.0000"),
			})
		})
		require.NoError(t, err)

		found, err := NewGormStockBatchRepository(db).FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, batch.ID, found.ID)

		movements, err := NewGormMovementRepository(db).FindByOutwardLine(ctx, outwardLineID)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})

	t.Run("rolls everything back on error", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		scope := NewGormTransactionScope(db)
		batch := newTestBatch(t, uuid.New(), uuid.New(), day1, 1, "1000.00")
		boom := errors.New("boom")

		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.BatchRepo().Save(ctx, batch); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormStockBatchRepository(db).FindByID(ctx, batch.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
