package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// LocationStock is the per-location slice of one product's summary
type LocationStock struct {
	LocationID      uuid.UUID
	RemainingBoxes  int64
	RemainingPacks  int64
	RemainingPieces int64
	Value           valueobject.Money
}

// ProductSummary is a per-product roll-up of remaining stock across batches.
// It is derived on demand from the batch set and never persisted; remaining
// pieces stay the source of truth, box and pack totals are the sums of each
// batch's floor projections.
type ProductSummary struct {
	ProductID       uuid.UUID
	RemainingBoxes  int64
	RemainingPacks  int64
	RemainingPieces int64
	Value           valueobject.Money
	LowStock        bool
	Locations       []LocationStock
}

// SummarizeOptions controls the roll-up
type SummarizeOptions struct {
	LocationID        *uuid.UUID // nil means all locations
	LowStockThreshold int64      // pieces; a product at or below is flagged
	IncludeLocations  bool       // populate the per-location breakdown
}

// Summarize rolls batches up into per-product summaries. Fully consumed
// batches contribute zero to every total but still keep their product in the
// result, so a sold-out product reports as zero stock rather than vanishing.
// Results are ordered by product id for stable output.
func Summarize(batches []*StockBatch, opts SummarizeOptions) []ProductSummary {
	type locKey struct {
		product  uuid.UUID
		location uuid.UUID
	}

	products := make(map[uuid.UUID]*ProductSummary)
	locations := make(map[locKey]*LocationStock)

	for _, b := range batches {
		if opts.LocationID != nil && b.LocationID != *opts.LocationID {
			continue
		}

		ps, ok := products[b.ProductID]
		if !ok {
			ps = &ProductSummary{ProductID: b.ProductID, Value: valueobject.ZeroMoney()}
			products[b.ProductID] = ps
		}
		ps.RemainingBoxes += b.RemainingBoxes()
		ps.RemainingPacks += b.RemainingPacks()
		ps.RemainingPieces += b.RemainingPieces
		ps.Value = ps.Value.Add(b.Value())

		if opts.IncludeLocations {
			k := locKey{product: b.ProductID, location: b.LocationID}
			ls, ok := locations[k]
			if !ok {
				ls = &LocationStock{LocationID: b.LocationID, Value: valueobject.ZeroMoney()}
				locations[k] = ls
			}
			ls.RemainingBoxes += b.RemainingBoxes()
			ls.RemainingPacks += b.RemainingPacks()
			ls.RemainingPieces += b.RemainingPieces
			ls.Value = ls.Value.Add(b.Value())
		}
	}

	result := make([]ProductSummary, 0, len(products))
	for _, ps := range products {
		ps.Value = ps.Value.Round()
		ps.LowStock = ps.RemainingPieces <= opts.LowStockThreshold

		if opts.IncludeLocations {
			for k, ls := range locations {
				if k.product != ps.ProductID {
					continue
				}
				ls.Value = ls.Value.Round()
				ps.Locations = append(ps.Locations, *ls)
			}
			sort.Slice(ps.Locations, func(i, j int) bool {
				return ps.Locations[i].LocationID.String() < ps.Locations[j].LocationID.String()
			})
		}
		result = append(result, *ps)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID.String() < result[j].ProductID.String()
	})
	return result
}
