package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
)

// twoBatchFixture returns batch A (100 pieces at 10.00/piece, older) and
// batch B (100 pieces at 12.00/piece, newer).
func twoBatchFixture(t *testing.T) (*StockBatch, *StockBatch) {
	t.Helper()
	spec := valueobject.MustNewPackSpec(10, 10)
	a := createTestBatch(t, day1, 1, spec, "1000.00")
	b := createTestBatch(t, day2, 1, spec, "1200.00")
	return a, b
}

func pieceRequest(qty int64) AllocationRequest {
	return AllocationRequest{
		ProductID:     uuid.New(),
		OutwardLineID: uuid.New(),
		Quantity:      qty,
		Unit:          valueobject.UnitPiece,
	}
}

func TestAllocationRequestValidate(t *testing.T) {
	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.ErrorIs(t, pieceRequest(0).Validate(), shared.ErrInvalidQuantity)
		assert.ErrorIs(t, pieceRequest(-7).Validate(), shared.ErrInvalidQuantity)
	})

	t.Run("rejects invalid unit", func(t *testing.T) {
		req := pieceRequest(1)
		req.Unit = valueobject.Unit("carton")
		assert.ErrorIs(t, req.Validate(), shared.ErrInvalidUnit)
	})
}

func TestAllocateFIFO(t *testing.T) {
	svc := NewAllocationService()

	t.Run("sale satisfiable from oldest batch touches it alone", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(60), []*StockBatch{b, a})
		require.NoError(t, err)

		assert.Equal(t, AllocationStateCommitted, result.State)
		require.Len(t, result.Movements, 1)
		assert.Equal(t, a.ID, result.Movements[0].BatchID)
		assert.Equal(t, int64(60), result.Movements[0].Pieces)
		assert.Equal(t, "600.00", result.TotalCost.String())

		assert.Equal(t, int64(40), a.RemainingPieces)
		assert.Equal(t, int64(100), b.RemainingPieces)
	})

	t.Run("sale spanning batches drains oldest then newer", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(150), []*StockBatch{b, a})
		require.NoError(t, err)

		require.Len(t, result.Movements, 2)
		assert.Equal(t, a.ID, result.Movements[0].BatchID)
		assert.Equal(t, int64(100), result.Movements[0].Pieces)
		assert.Equal(t, b.ID, result.Movements[1].BatchID)
		assert.Equal(t, int64(50), result.Movements[1].Pieces)

		// 100x10.00 + 50x12.00
		assert.Equal(t, "1600.00", result.TotalCost.String())
		assert.Equal(t, int64(150), result.TotalPieces)

		assert.True(t, a.IsFullyConsumed())
		assert.Equal(t, int64(50), b.RemainingPieces)
	})

	t.Run("equal inward dates break ties by ascending batch id", func(t *testing.T) {
		spec := valueobject.MustNewPackSpec(1, 100)
		x := createTestBatch(t, day1, 1, spec, "100.00")
		y := createTestBatch(t, day1, 1, spec, "100.00")
		first, second := x, y
		if y.ID.String() < x.ID.String() {
			first, second = y, x
		}

		result, err := svc.Allocate(pieceRequest(10), []*StockBatch{second, first})
		require.NoError(t, err)

		require.Len(t, result.Movements, 1)
		assert.Equal(t, first.ID, result.Movements[0].BatchID)
		assert.Equal(t, int64(90), first.RemainingPieces)
		assert.Equal(t, int64(100), second.RemainingPieces)
	})

	t.Run("skips fully consumed batches", func(t *testing.T) {
		a, b := twoBatchFixture(t)
		require.NoError(t, a.Decrement(100))

		result, err := svc.Allocate(pieceRequest(30), []*StockBatch{a, b})
		require.NoError(t, err)

		require.Len(t, result.Movements, 1)
		assert.Equal(t, b.ID, result.Movements[0].BatchID)
	})
}

func TestAllocateInsufficientStock(t *testing.T) {
	svc := NewAllocationService()

	t.Run("rejects whole allocation and leaves batches untouched", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		_, err := svc.Allocate(pieceRequest(201), []*StockBatch{a, b})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		var insufficient *InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(1), insufficient.ShortfallPieces())
		assert.Equal(t, int64(201), insufficient.RequestedPieces)
		assert.Equal(t, int64(200), insufficient.AvailablePieces)

		assert.Equal(t, int64(100), a.RemainingPieces)
		assert.Equal(t, int64(100), b.RemainingPieces)
	})

	t.Run("no batches at all reports full shortfall", func(t *testing.T) {
		_, err := svc.Allocate(pieceRequest(5), nil)
		require.Error(t, err)

		var insufficient *InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(5), insufficient.ShortfallPieces())
		assert.Equal(t, int64(0), insufficient.AvailablePieces)
	})
}

func TestAllocateUnitConversion(t *testing.T) {
	svc := NewAllocationService()

	t.Run("box demand converts per batch ratio", func(t *testing.T) {
		spec := valueobject.MustNewPackSpec(2, 6) // 12 pieces per box
		b := createTestBatch(t, day1, 3, spec, "120.00")

		req := pieceRequest(2)
		req.Unit = valueobject.UnitBox

		result, err := svc.Allocate(req, []*StockBatch{b})
		require.NoError(t, err)

		assert.Equal(t, int64(24), result.TotalPieces)
		assert.Equal(t, int64(12), b.RemainingPieces)
	})

	t.Run("box demand spans batches with different ratios", func(t *testing.T) {
		// Batch A holds exactly one 12-piece box; batch B's boxes are 20 pieces.
		a := createTestBatch(t, day1, 1, valueobject.MustNewPackSpec(2, 6), "120.00")
		b := createTestBatch(t, day2, 2, valueobject.MustNewPackSpec(4, 5), "200.00")

		req := pieceRequest(2)
		req.Unit = valueobject.UnitBox

		result, err := svc.Allocate(req, []*StockBatch{a, b})
		require.NoError(t, err)

		// One box from A at its ratio, one box from B at its own ratio.
		require.Len(t, result.Movements, 2)
		assert.Equal(t, int64(12), result.Movements[0].Pieces)
		assert.Equal(t, int64(20), result.Movements[1].Pieces)
		assert.True(t, a.IsFullyConsumed())
		assert.Equal(t, int64(20), b.RemainingPieces)
	})

	t.Run("pack demand uses pieces per pack", func(t *testing.T) {
		spec := valueobject.MustNewPackSpec(4, 25)
		b := createTestBatch(t, day1, 1, spec, "400.00")

		req := pieceRequest(3)
		req.Unit = valueobject.UnitPack

		result, err := svc.Allocate(req, []*StockBatch{b})
		require.NoError(t, err)

		assert.Equal(t, int64(75), result.TotalPieces)
		assert.Equal(t, int64(25), b.RemainingPieces)
	})
}

func TestAllocationCOGS(t *testing.T) {
	svc := NewAllocationService()

	t.Run("movement carries per-piece cost at consumption time", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(150), []*StockBatch{a, b})
		require.NoError(t, err)

		assert.Equal(t, "10.00", result.Movements[0].CostPerPiece.String())
		assert.Equal(t, "12.00", result.Movements[1].CostPerPiece.String())
		assert.Equal(t, "1000.00", result.Movements[0].Cost().String())
		assert.Equal(t, "600.00", result.Movements[1].Cost().String())
	})

	t.Run("repeated small sales match one large sale in total cost", func(t *testing.T) {
		spec := valueobject.MustNewPackSpec(3, 7) // uneven per-piece cost
		small := createTestBatch(t, day1, 1, spec, "100.00")
		large := createTestBatch(t, day1, 1, spec, "100.00")

		total := valueobject.ZeroMoney()
		for i := 0; i < 21; i++ {
			r, err := svc.Allocate(pieceRequest(1), []*StockBatch{small})
			require.NoError(t, err)
			total = total.Add(r.Movements[0].Cost())
		}

		one, err := svc.Allocate(pieceRequest(21), []*StockBatch{large})
		require.NoError(t, err)

		assert.Equal(t, one.TotalCost.String(), total.Round().String())
	})
}

func TestReverse(t *testing.T) {
	svc := NewAllocationService()

	t.Run("restores every batch to pre-allocation quantities", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(150), []*StockBatch{a, b})
		require.NoError(t, err)

		restored, err := svc.Reverse(result.Movements, []*StockBatch{a, b})
		require.NoError(t, err)

		assert.Equal(t, int64(150), restored)
		assert.Equal(t, int64(100), a.RemainingPieces)
		assert.Equal(t, int64(100), b.RemainingPieces)
	})

	t.Run("reverse then reallocate is deterministic", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		first, err := svc.Allocate(pieceRequest(120), []*StockBatch{a, b})
		require.NoError(t, err)
		_, err = svc.Reverse(first.Movements, []*StockBatch{a, b})
		require.NoError(t, err)

		second, err := svc.Allocate(pieceRequest(120), []*StockBatch{a, b})
		require.NoError(t, err)

		require.Len(t, second.Movements, len(first.Movements))
		for i := range first.Movements {
			assert.Equal(t, first.Movements[i].BatchID, second.Movements[i].BatchID)
			assert.Equal(t, first.Movements[i].Pieces, second.Movements[i].Pieces)
		}
	})

	t.Run("unknown batch fails with not found and rolls back", func(t *testing.T) {
		a, b := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(150), []*StockBatch{a, b})
		require.NoError(t, err)

		// Only hand back one of the two touched batches.
		_, err = svc.Reverse(result.Movements, []*StockBatch{a})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(0), a.RemainingPieces)
	})

	t.Run("over-restoring fails with exceeds original", func(t *testing.T) {
		a, _ := twoBatchFixture(t)

		result, err := svc.Allocate(pieceRequest(50), []*StockBatch{a})
		require.NoError(t, err)

		// Reversing twice would push the batch past its original quantity.
		_, err = svc.Reverse(result.Movements, []*StockBatch{a})
		require.NoError(t, err)
		_, err = svc.Reverse(result.Movements, []*StockBatch{a})
		assert.ErrorIs(t, err, shared.ErrExceedsOriginal)
		assert.Equal(t, int64(100), a.RemainingPieces)
	})
}

func TestCommit(t *testing.T) {
	svc := NewAllocationService()

	t.Run("rejects a plan that is not reserved", func(t *testing.T) {
		_, err := svc.Commit(nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.Commit(&AllocationPlan{State: AllocationStateRejected})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("conservation across allocations", func(t *testing.T) {
		a, b := twoBatchFixture(t)
		totalBefore := a.RemainingPieces + b.RemainingPieces

		result, err := svc.Allocate(pieceRequest(130), []*StockBatch{a, b})
		require.NoError(t, err)

		var consumed int64
		for _, m := range result.Movements {
			consumed += m.Pieces
		}
		assert.Equal(t, totalBefore, a.RemainingPieces+b.RemainingPieces+consumed)
	})
}
