package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles the inventory ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService            *ledgerapp.LedgerService
	defaultLowStockThreshold int64
}

// NewLedgerHandler creates a new LedgerHandler. The default low-stock
// threshold applies to stock summaries when the caller does not pass one.
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService, defaultLowStockThreshold int64) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:            ledgerService,
		defaultLowStockThreshold: defaultLowStockThreshold,
	}
}

// RegisterRoutes registers all inventory ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.POST("/batches", h.CreateBatch)
		inv.GET("/batches/:id", h.GetBatch)
		inv.GET("/available-stock", h.ListAvailable)
		inv.POST("/allocations", h.Allocate)
		inv.POST("/reversals", h.Reverse)
		inv.POST("/valuations/purchase-line", h.ValuatePurchaseLine)
		inv.GET("/stock-summary", h.StockSummary)
		inv.GET("/movements", h.ListMovements)
	}
}

// parseOptionalUUID reads an optional UUID query parameter
func parseOptionalUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// CreateBatch posts an inward invoice line and creates its stock batch
func (h *LedgerHandler) CreateBatch(c *gin.Context) {
	var req ledgerapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.ledgerService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetBatch returns one batch by id
func (h *LedgerHandler) GetBatch(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	resp, err := h.ledgerService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListAvailable returns a product's batches with remaining stock, in the
// order an allocation would consume them
func (h *LedgerHandler) ListAvailable(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing product_id")
		return
	}
	locationID, ok := parseOptionalUUID(c, "location_id")
	if !ok {
		h.BadRequest(c, "Invalid location_id format")
		return
	}

	resp, err := h.ledgerService.ListAvailable(c.Request.Context(), ledgerapp.AvailableStockFilter{
		ProductID:  productID,
		LocationID: locationID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Allocate satisfies an outward invoice line from available stock
func (h *LedgerHandler) Allocate(c *gin.Context) {
	var req ledgerapp.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.ledgerService.Allocate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Reverse undoes an outward line's allocation
func (h *LedgerHandler) Reverse(c *gin.Context) {
	var req ledgerapp.ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.ledgerService.Reverse(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ValuatePurchaseLine prices an inward line without posting it
func (h *LedgerHandler) ValuatePurchaseLine(c *gin.Context) {
	var req ledgerapp.PurchaseLineValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	resp, err := h.ledgerService.ValuatePurchaseLine(req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// StockSummary returns per-product stock roll-ups
func (h *LedgerHandler) StockSummary(c *gin.Context) {
	locationID, ok := parseOptionalUUID(c, "location_id")
	if !ok {
		h.BadRequest(c, "Invalid location_id format")
		return
	}

	threshold := h.defaultLowStockThreshold
	if raw := c.Query("low_stock_threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "low_stock_threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}

	includeLocations := false
	if raw := c.Query("include_locations"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "include_locations must be a boolean")
			return
		}
		includeLocations = parsed
	}

	resp, err := h.ledgerService.Summarize(c.Request.Context(), ledgerapp.StockSummaryFilter{
		LocationID:        locationID,
		LowStockThreshold: threshold,
		IncludeLocations:  includeLocations,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMovements returns movements for an outward line or a batch
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	outwardLineID, ok := parseOptionalUUID(c, "outward_line_id")
	if !ok {
		h.BadRequest(c, "Invalid outward_line_id format")
		return
	}
	batchID, ok := parseOptionalUUID(c, "batch_id")
	if !ok {
		h.BadRequest(c, "Invalid batch_id format")
		return
	}
	if outwardLineID == nil && batchID == nil {
		h.BadRequest(c, "Either outward_line_id or batch_id is required")
		return
	}

	resp, err := h.ledgerService.ListMovements(c.Request.Context(), ledgerapp.MovementListFilter{
		OutwardLineID: outwardLineID,
		BatchID:       batchID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
