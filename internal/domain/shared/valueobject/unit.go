package valueobject

import (
	"strings"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Unit is the stock unit a quantity is expressed in.
// Piece is the finest-grained unit and the single source of truth for
// remaining stock; box and pack are derived through a batch's PackSpec.
type Unit string

const (
	UnitBox   Unit = "box"
	UnitPack  Unit = "pack"
	UnitPiece Unit = "piece"
)

// IsValid checks if the unit is one of box, pack, piece
func (u Unit) IsValid() bool {
	switch u {
	case UnitBox, UnitPack, UnitPiece:
		return true
	}
	return false
}

// String returns the string representation
func (u Unit) String() string {
	return string(u)
}

// AllUnits returns all valid stock units
func AllUnits() []Unit {
	return []Unit{UnitBox, UnitPack, UnitPiece}
}

// ParseUnit parses a unit string (case-insensitive)
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", shared.ErrInvalidUnit
	}
	return u, nil
}

// PackSpec is a value object holding a batch's fixed unit conversion ratios:
// one box holds PacksPerBox packs, one pack holds PiecesPerPack pieces.
// It is immutable; ratios are fixed when the batch is created.
type PackSpec struct {
	packsPerBox   int64
	piecesPerPack int64
}

// NewPackSpec creates a PackSpec, rejecting non-positive ratios
func NewPackSpec(packsPerBox, piecesPerPack int64) (PackSpec, error) {
	if packsPerBox <= 0 || piecesPerPack <= 0 {
		return PackSpec{}, shared.ErrInvalidRatio
	}
	return PackSpec{packsPerBox: packsPerBox, piecesPerPack: piecesPerPack}, nil
}

// MustNewPackSpec creates a PackSpec and panics on error.
// Use only when the inputs are known to be valid.
func MustNewPackSpec(packsPerBox, piecesPerPack int64) PackSpec {
	s, err := NewPackSpec(packsPerBox, piecesPerPack)
	if err != nil {
		panic(err)
	}
	return s
}

// UnitPackSpec returns the 1x1 spec used for legacy records that carry no
// pack-level ratios: every box is one pack and every pack is one piece.
func UnitPackSpec() PackSpec {
	return PackSpec{packsPerBox: 1, piecesPerPack: 1}
}

// PacksPerBox returns the packs-per-box ratio
func (s PackSpec) PacksPerBox() int64 {
	return s.packsPerBox
}

// PiecesPerPack returns the pieces-per-pack ratio
func (s PackSpec) PiecesPerPack() int64 {
	return s.piecesPerPack
}

// PiecesPerBox returns the derived pieces-per-box ratio
func (s PackSpec) PiecesPerBox() int64 {
	return s.packsPerBox * s.piecesPerPack
}

// IsZero returns true for the zero-value PackSpec
func (s PackSpec) IsZero() bool {
	return s.packsPerBox == 0 && s.piecesPerPack == 0
}

// ToPieces converts a quantity in the given unit to pieces
func (s PackSpec) ToPieces(qty int64, unit Unit) (int64, error) {
	switch unit {
	case UnitBox:
		return qty * s.PiecesPerBox(), nil
	case UnitPack:
		return qty * s.piecesPerPack, nil
	case UnitPiece:
		return qty, nil
	default:
		return 0, shared.ErrInvalidUnit
	}
}

// FromPieces converts a piece count to the given unit, truncating toward zero.
// Physical unit counts are whole numbers; a partial box or pack is reported
// as the next lower whole count, with the exact remainder kept in pieces.
func (s PackSpec) FromPieces(pieces int64, unit Unit) (int64, error) {
	switch unit {
	case UnitBox:
		return pieces / s.PiecesPerBox(), nil
	case UnitPack:
		return pieces / s.piecesPerPack, nil
	case UnitPiece:
		return pieces, nil
	default:
		return 0, shared.ErrInvalidUnit
	}
}

// ProjectPacks returns the whole packs contained in a piece count
func (s PackSpec) ProjectPacks(pieces int64) int64 {
	return pieces / s.piecesPerPack
}

// ProjectBoxes returns the whole boxes contained in a piece count
func (s PackSpec) ProjectBoxes(pieces int64) int64 {
	return pieces / s.PiecesPerBox()
}

// Equals returns true if both specs carry the same ratios
func (s PackSpec) Equals(other PackSpec) bool {
	return s.packsPerBox == other.packsPerBox && s.piecesPerPack == other.piecesPerPack
}
