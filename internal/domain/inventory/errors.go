package inventory

import (
	"fmt"

	"github.com/stockledger/backend/internal/domain/shared"
)

// InsufficientStockError is returned when an allocation cannot be fully
// satisfied from the available batches. It carries the shortfall so callers
// can tell the user exactly how many pieces are missing; it is an expected
// business outcome, not a system fault.
type InsufficientStockError struct {
	RequestedPieces int64
	AvailablePieces int64
}

// ShortfallPieces returns the number of pieces the request fell short by
func (e *InsufficientStockError) ShortfallPieces() int64 {
	return e.RequestedPieces - e.AvailablePieces
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d pieces, available %d, short %d",
		e.RequestedPieces, e.AvailablePieces, e.ShortfallPieces())
}

// Is makes the error match shared.ErrInsufficientStock under errors.Is
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}
