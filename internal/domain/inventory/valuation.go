package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

var oneHundred = decimal.NewFromInt(100)

// GSTAmount returns base × rate / 100, rounded half away from zero at
// currency precision. The rate is the flat per-category GST percent.
func GSTAmount(base valueobject.Money, gstRatePercent decimal.Decimal) valueobject.Money {
	return base.Mul(gstRatePercent.Div(oneHundred)).Round()
}

// PurchaseLineTotals holds the priced parts of one inward invoice line
type PurchaseLineTotals struct {
	Base  valueobject.Money
	GST   valueobject.Money
	Total valueobject.Money
}

// PurchaseLineTotal prices an inward invoice line: base = boxes × ratePerBox,
// plus GST at the category rate.
func PurchaseLineTotal(boxes int64, ratePerBox valueobject.Money, gstRatePercent decimal.Decimal) (PurchaseLineTotals, error) {
	if boxes <= 0 {
		return PurchaseLineTotals{}, shared.ErrInvalidQuantity
	}
	if ratePerBox.IsNegative() {
		return PurchaseLineTotals{}, shared.ErrInvalidCost
	}
	if gstRatePercent.IsNegative() {
		return PurchaseLineTotals{}, shared.ErrInvalidCost
	}

	base := ratePerBox.MulInt(boxes).Round()
	gst := GSTAmount(base, gstRatePercent)
	return PurchaseLineTotals{
		Base:  base,
		GST:   gst,
		Total: base.Add(gst),
	}, nil
}

// BatchValue returns the value of a batch's remaining stock at its fixed
// cost basis.
func BatchValue(b *StockBatch) valueobject.Money {
	return b.Value()
}

// COGSForMovements sums the cost of the given movements. This is the
// authoritative cost of goods sold for a sale line: it depends only on the
// batches actually consumed, never on the sale price.
func COGSForMovements(movements []*InventoryMovement) valueobject.Money {
	cogs := valueobject.ZeroMoney()
	for _, m := range movements {
		cogs = cogs.Add(m.Cost())
	}
	return cogs.Round()
}
