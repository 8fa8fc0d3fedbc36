package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/persistence/models"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupLedgerAPI(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockBatchModel{}, &models.InventoryMovementModel{}))

	svc := ledgerapp.NewLedgerService(persistence.NewGormTransactionScope(db))
	h := NewLedgerHandler(svc, 10)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, "expected success, got %s", w.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %s", w.Body.String())
	return data
}

func batchBody(productID uuid.UUID, inwardDate string, boxes int64, costPerBox string) map[string]any {
	return map[string]any{
		"product_id":       productID.String(),
		"vendor_id":        uuid.NewString(),
		"location_id":      uuid.NewString(),
		"inward_date":      inwardDate,
		"boxes":            boxes,
		"packs_per_box":    10,
		"pieces_per_pack":  10,
		"cost_per_box":     costPerBox,
		"gst_rate_percent": "18",
	}
}

func createBatch(t *testing.T, engine *gin.Engine, body map[string]any) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/batches", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataMap(t, w)
	batch := data["batch"].(map[string]any)
	return batch["id"].(string)
}

func TestCreateBatchEndpoint(t *testing.T) {
	t.Run("creates a batch and returns the line valuation", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/batches",
			batchBody(uuid.New(), "2024-03-01T00:00:00Z", 1, "1000"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		data := dataMap(t, w)
		batch := data["batch"].(map[string]any)
		assert.Equal(t, float64(100), batch["total_pieces"])
		assert.Equal(t, float64(100), batch["remaining_pieces"])
		assert.Equal(t, "10", batch["cost_per_piece"])
		assert.Equal(t, "1000", data["line_base"])
		assert.Equal(t, "180", data["line_gst"])
		assert.Equal(t, "1180", data["line_total"])
	})

	t.Run("rejects a non-positive pack ratio", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		body := batchBody(uuid.New(), "2024-03-01T00:00:00Z", 1, "1000")
		body["packs_per_box"] = -2

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/batches", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidRatio, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/batches",
			bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBatchEndpoint(t *testing.T) {
	t.Run("returns a batch by id", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		id := createBatch(t, engine, batchBody(uuid.New(), "2024-03-01T00:00:00Z", 2, "500"))

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/batches/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := dataMap(t, w)
		assert.Equal(t, id, data["id"])
		assert.Equal(t, float64(200), data["total_pieces"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/batches/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/batches/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAllocateEndpoint(t *testing.T) {
	t.Run("consumes batches oldest first and reports COGS", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))
		createBatch(t, engine, batchBody(productID, "2024-03-02T00:00:00Z", 1, "1200"))

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": uuid.NewString(),
			"quantity":        150,
			"unit":            "piece",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := dataMap(t, w)
		assert.Equal(t, float64(150), data["total_pieces"])
		assert.Equal(t, "1600", data["cogs"])
		movements := data["movements"].([]any)
		require.Len(t, movements, 2)
		first := movements[0].(map[string]any)
		assert.Equal(t, float64(100), first["pieces"])
	})

	t.Run("shortfall rejects the whole request with 422", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 2, "1000"))

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": uuid.NewString(),
			"quantity":        201,
			"unit":            "piece",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "short 1")

		// Rejection leaves stock untouched
		w = doJSON(t, engine, http.MethodGet,
			fmt.Sprintf("/api/v1/inventory/available-stock?product_id=%s", productID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		listed := decodeResponse(t, w).Data.([]any)
		require.Len(t, listed, 1)
		assert.Equal(t, float64(200), listed[0].(map[string]any)["remaining_pieces"])
	})

	t.Run("unknown unit fails request validation", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      uuid.NewString(),
			"outward_line_id": uuid.NewString(),
			"quantity":        1,
			"unit":            "crate",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReverseEndpoint(t *testing.T) {
	t.Run("restores consumed pieces and deletes movements", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		outwardLineID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))

		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": outwardLineID.String(),
			"quantity":        60,
			"unit":            "piece",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, engine, http.MethodPost, "/api/v1/inventory/reversals", map[string]any{
			"outward_line_id": outwardLineID.String(),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := dataMap(t, w)
		assert.Equal(t, float64(60), data["restored_pieces"])

		w = doJSON(t, engine, http.MethodGet,
			fmt.Sprintf("/api/v1/inventory/available-stock?product_id=%s", productID), nil)
		listed := decodeResponse(t, w).Data.([]any)
		require.Len(t, listed, 1)
		assert.Equal(t, float64(100), listed[0].(map[string]any)["remaining_pieces"])
	})

	t.Run("reversing a line twice is 404", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		outwardLineID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))

		doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": outwardLineID.String(),
			"quantity":        10,
			"unit":            "piece",
		})

		body := map[string]any{"outward_line_id": outwardLineID.String()}
		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/reversals", body)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, engine, http.MethodPost, "/api/v1/inventory/reversals", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestValuatePurchaseLineEndpoint(t *testing.T) {
	engine := setupLedgerAPI(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/valuations/purchase-line", map[string]any{
		"boxes":            5,
		"rate_per_box":     "240",
		"gst_rate_percent": "12",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataMap(t, w)
	assert.Equal(t, "1200", data["base"])
	assert.Equal(t, "144", data["gst"])
	assert.Equal(t, "1344", data["total"])
}

func TestStockSummaryEndpoint(t *testing.T) {
	t.Run("applies the default low-stock threshold", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))

		doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": uuid.NewString(),
			"quantity":        95,
			"unit":            "piece",
		})

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/stock-summary", nil)
		require.Equal(t, http.StatusOK, w.Code)

		listed := decodeResponse(t, w).Data.([]any)
		require.Len(t, listed, 1)
		summary := listed[0].(map[string]any)
		assert.Equal(t, float64(5), summary["remaining_pieces"])
		assert.Equal(t, true, summary["low_stock"])
	})

	t.Run("caller-supplied threshold overrides the default", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))

		doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": uuid.NewString(),
			"quantity":        95,
			"unit":            "piece",
		})

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/stock-summary?low_stock_threshold=1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		listed := decodeResponse(t, w).Data.([]any)
		summary := listed[0].(map[string]any)
		assert.Equal(t, false, summary["low_stock"])
	})

	t.Run("rejects a negative threshold", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/stock-summary?low_stock_threshold=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListMovementsEndpoint(t *testing.T) {
	t.Run("requires a filter", func(t *testing.T) {
		engine := setupLedgerAPI(t)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/movements", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists movements for an outward line", func(t *testing.T) {
		engine := setupLedgerAPI(t)
		productID := uuid.New()
		outwardLineID := uuid.New()
		createBatch(t, engine, batchBody(productID, "2024-03-01T00:00:00Z", 1, "1000"))

		doJSON(t, engine, http.MethodPost, "/api/v1/inventory/allocations", map[string]any{
			"product_id":      productID.String(),
			"outward_line_id": outwardLineID.String(),
			"quantity":        30,
			"unit":            "piece",
		})

		w := doJSON(t, engine, http.MethodGet,
			fmt.Sprintf("/api/v1/inventory/movements?outward_line_id=%s", outwardLineID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		listed := decodeResponse(t, w).Data.([]any)
		require.Len(t, listed, 1)
		assert.Equal(t, float64(30), listed[0].(map[string]any)["pieces"])
	})
}
