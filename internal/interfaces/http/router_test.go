package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventory-ledger/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiFixture struct {
	t       *testing.T
	app     *fiber.App
	store   *memory.Store
	idem    *cache.InMemoryIdempotencyStore
	admin   string
	storer  string
	metrics *metrics.Metrics
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	m := metrics.New()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName: "inventory-ledger-test",
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		AdjustmentUC: inventory.NewAdjustmentUseCase(store, store.Adjustments(), store.Warehouses(), store.Products(),
			m.InstrumentPublisher(inventory.NopPublisher{}), nil),
		TransferUC: inventory.NewTransferUseCase(store, store.Transfers(), store.Warehouses(), store.Products(),
			m.InstrumentPublisher(inventory.NopPublisher{}), nil),
		StockQueryUC: inventory.NewStockQueryUseCase(store.Levels(), store.Warehouses(), store.Adjustments(),
			store.Transfers(), store.Movements(), domaininv.Thresholds{}),
		JWTSecret:   authSecret,
		Metrics:     m,
		Idempotency: idem,
	})

	admin, err := pkgjwt.Generate(authSecret, "admin-1", pkgjwt.RoleAdmin, authIssuer, 60)
	require.NoError(t, err)
	storer, err := pkgjwt.Generate(authSecret, "bodega-1", pkgjwt.RoleBodeguero, authIssuer, 60)
	require.NoError(t, err)

	return &apiFixture{t: t, app: app, store: store, idem: idem, admin: admin, storer: storer, metrics: m}
}

func (f *apiFixture) do(method, path, token string, body interface{}, headers ...string) (int, envelope, http.Header) {
	f.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	if len(raw) > 0 {
		require.NoError(f.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env, resp.Header
}

func (f *apiFixture) createWarehouse(code string) string {
	f.t.Helper()
	status, env, _ := f.do(http.MethodPost, "/api/admin/warehouses", f.admin, map[string]string{"code": code, "name": "Bodega " + code})
	require.Equal(f.t, http.StatusCreated, status, env.Message)
	var w struct {
		ID string `json:"id"`
	}
	require.NoError(f.t, json.Unmarshal(env.Data, &w))
	return w.ID
}

func (f *apiFixture) createProduct(sku string) string {
	f.t.Helper()
	status, env, _ := f.do(http.MethodPost, "/api/admin/products", f.admin, map[string]interface{}{
		"sku": sku, "name": "Producto " + sku, "low_stock_threshold": 10, "critical_threshold": 3,
	})
	require.Equal(f.t, http.StatusCreated, status, env.Message)
	var p struct {
		ID string `json:"id"`
	}
	require.NoError(f.t, json.Unmarshal(env.Data, &p))
	return p.ID
}

func (f *apiFixture) setStock(warehouseID, productID string, qty int64) {
	f.t.Helper()
	require.NoError(f.t, f.store.Stock().Upsert(context.Background(), &entity.Stock{
		ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.NewFromInt(qty),
	}))
}

func (f *apiFixture) quantity(warehouseID, productID string) decimal.Decimal {
	f.t.Helper()
	s, err := f.store.Stock().Get(context.Background(), productID, warehouseID)
	require.NoError(f.t, err)
	if s == nil {
		return decimal.Zero
	}
	return s.Quantity
}

type docRef struct {
	ID     string `json:"id"`
	Number string `json:"adjustment_number"`
	Status string `json:"status"`
	Items  []struct {
		Difference decimal.Decimal `json:"difference"`
	} `json:"items"`
}

func TestAdjustmentLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	w := f.createWarehouse("W1")
	p := f.createProduct("P1")
	f.setStock(w, p, 10)

	status, env, _ := f.do(http.MethodPost, "/api/admin/inventory/adjustments", f.storer, map[string]interface{}{
		"warehouse_id": w,
		"type":         "damaged",
		"reason":       "Broken in transit",
		"items":        []map[string]interface{}{{"product_id": p, "previous_quantity": 10, "new_quantity": 7}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	var adj docRef
	require.NoError(t, json.Unmarshal(env.Data, &adj))
	assert.Equal(t, "pending", adj.Status)
	assert.Equal(t, "ADJ000001", adj.Number)
	require.Len(t, adj.Items, 1)
	assert.True(t, adj.Items[0].Difference.Equal(decimal.NewFromInt(-3)))

	// bodeguero no puede aprobar
	status, env, _ = f.do(http.MethodPatch, "/api/admin/inventory/adjustments/"+adj.ID, f.storer, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, env, _ = f.do(http.MethodPatch, "/api/admin/inventory/adjustments/"+adj.ID, f.admin, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &adj))
	assert.Equal(t, "approved", adj.Status)
	assert.True(t, f.quantity(w, p).Equal(decimal.NewFromInt(7)))

	// aprobar dos veces no vuelve a aplicar la diferencia
	status, env, _ = f.do(http.MethodPatch, "/api/admin/inventory/adjustments/"+adj.ID, f.admin, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeInvalidTransition, env.Code)
	assert.True(t, f.quantity(w, p).Equal(decimal.NewFromInt(7)))

	// un ajuste aprobado no se elimina
	status, env, _ = f.do(http.MethodDelete, "/api/admin/inventory/adjustments/"+adj.ID, f.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeInvalidTransition, env.Code)

	status, env, _ = f.do(http.MethodGet, "/api/admin/inventory/movements?warehouse_id="+w, f.storer, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var moves struct {
		Items []struct {
			Type      string `json:"type"`
			Reference string `json:"reference"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &moves))
	require.Len(t, moves.Items, 1)
	assert.Equal(t, "ADJ000001", moves.Items[0].Reference)
}

func TestCreateAdjustment_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)
	w := f.createWarehouse("W1")

	status, env, _ := f.do(http.MethodPost, "/api/admin/inventory/adjustments", f.storer, map[string]interface{}{
		"warehouse_id": w,
		"type":         "damaged",
		"reason":       "sin items",
		"items":        []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, apphttp.CodeValidation, env.Code)
	assert.Contains(t, env.Message, "items")

	status, env, _ = f.do(http.MethodPost, "/api/admin/inventory/adjustments", f.storer, map[string]interface{}{
		"warehouse_id": w,
		"type":         "evaporated",
		"reason":       "tipo inválido",
		"items":        []map[string]interface{}{{"product_id": "x", "new_quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "type")
}

func TestAdjustmentNotFound(t *testing.T) {
	f := newAPIFixture(t)
	status, env, _ := f.do(http.MethodGet, "/api/admin/inventory/adjustments/no-existe", f.storer, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apphttp.CodeNotFound, env.Code)
}

func TestTransferLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	w1 := f.createWarehouse("W1")
	w2 := f.createWarehouse("W2")
	p := f.createProduct("P1")
	f.setStock(w1, p, 20)

	status, env, _ := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, map[string]interface{}{
		"from_warehouse_id": w1,
		"to_warehouse_id":   w2,
		"items":             []map[string]interface{}{{"product_id": p, "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var tr struct {
		ID     string `json:"id"`
		Number string `json:"transfer_number"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tr))
	assert.Equal(t, "TRF000001", tr.Number)

	// completar desde pending no está permitido
	status, env, _ = f.do(http.MethodPatch, "/api/admin/warehouses/transfers/"+tr.ID, f.admin, map[string]string{"action": "complete"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeInvalidTransition, env.Code)

	for _, action := range []string{"approve", "complete"} {
		status, env, _ = f.do(http.MethodPatch, "/api/admin/warehouses/transfers/"+tr.ID, f.admin, map[string]string{"action": action})
		require.Equal(t, http.StatusOK, status, env.Message)
	}
	require.NoError(t, json.Unmarshal(env.Data, &tr))
	assert.Equal(t, "completed", tr.Status)
	assert.True(t, f.quantity(w1, p).Equal(decimal.NewFromInt(15)))
	assert.True(t, f.quantity(w2, p).Equal(decimal.NewFromInt(5)))

	status, env, _ = f.do(http.MethodGet, "/api/admin/warehouses/transfers/"+tr.ID, f.storer, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env, _ = f.do(http.MethodGet, "/api/admin/warehouses/"+w2+"/inventory", f.storer, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var levels []struct {
		ProductID string          `json:"product_id"`
		Quantity  decimal.Decimal `json:"quantity"`
		IsLow     bool            `json:"is_low_stock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &levels))
	require.Len(t, levels, 1)
	assert.True(t, levels[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, levels[0].IsLow)
}

func TestCreateTransfer_SameWarehouse(t *testing.T) {
	f := newAPIFixture(t)
	w := f.createWarehouse("W1")
	p := f.createProduct("P1")

	status, env, _ := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, map[string]interface{}{
		"from_warehouse_id": w,
		"to_warehouse_id":   w,
		"items":             []map[string]interface{}{{"product_id": p, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "to_warehouse_id")
}

func TestApproveTransfer_InsufficientStock(t *testing.T) {
	f := newAPIFixture(t)
	w1 := f.createWarehouse("W1")
	w2 := f.createWarehouse("W2")
	p := f.createProduct("P1")
	f.setStock(w1, p, 2)

	status, env, _ := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, map[string]interface{}{
		"from_warehouse_id": w1,
		"to_warehouse_id":   w2,
		"items":             []map[string]interface{}{{"product_id": p, "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var tr struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tr))

	status, env, _ = f.do(http.MethodPatch, "/api/admin/warehouses/transfers/"+tr.ID, f.admin, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeInsufficientStock, env.Code)
}

func TestIdempotencyKey_ReplaysResponse(t *testing.T) {
	f := newAPIFixture(t)
	w1 := f.createWarehouse("W1")
	w2 := f.createWarehouse("W2")
	p := f.createProduct("P1")
	body := map[string]interface{}{
		"from_warehouse_id": w1,
		"to_warehouse_id":   w2,
		"items":             []map[string]interface{}{{"product_id": p, "quantity": 1}},
	}

	status, first, h1 := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, status, first.Message)
	assert.Empty(t, h1.Get(apphttp.HeaderReplayed))

	status, second, h2 := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "true", h2.Get(apphttp.HeaderReplayed))
	assert.JSONEq(t, string(first.Data), string(second.Data))

	status, env, _ := f.do(http.MethodGet, "/api/admin/warehouses/transfers", f.storer, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Items, 1, "la repetición no debe crear otro traslado")

	// una respuesta de error no se guarda: la clave queda libre
	bad := map[string]interface{}{"from_warehouse_id": w1, "to_warehouse_id": w2, "items": []interface{}{}}
	status, _, _ = f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, bad, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _, h3 := f.do(http.MethodPost, "/api/admin/warehouses/transfers", f.storer, body, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusCreated, status)
	assert.Empty(t, h3.Get(apphttp.HeaderReplayed))
}

func TestIdempotencyKey_InProgress(t *testing.T) {
	f := newAPIFixture(t)

	// la clave de un POST pendiente queda reservada con el alcance usuario:método:ruta:clave
	ok, err := f.idem.Reserve(context.Background(), "bodega-1:POST:/api/admin/inventory/adjustments:k-9", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	status, env, _ := f.do(http.MethodPost, "/api/admin/inventory/adjustments", f.storer, map[string]interface{}{}, apphttp.HeaderIdempotencyKey, "k-9")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "IDEMPOTENCY_IN_PROGRESS", env.Code)
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	f := newAPIFixture(t)
	status, env, _ := f.do(http.MethodPost, "/api/admin/warehouses", f.storer, map[string]string{"code": "W9", "name": "Bodega"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apphttp.CodeForbidden, env.Code)

	f.createWarehouse("W1")
	status, env, _ = f.do(http.MethodPost, "/api/admin/warehouses", f.admin, map[string]string{"code": "W1", "name": "Otra"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeDuplicate, env.Code)
}

func TestDeleteWarehouseWithStock_Conflict(t *testing.T) {
	f := newAPIFixture(t)
	w := f.createWarehouse("W1")
	p := f.createProduct("P1")
	f.setStock(w, p, 1)

	status, env, _ := f.do(http.MethodDelete, "/api/admin/warehouses/"+w, f.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.CodeConflict, env.Code)

	empty := f.createWarehouse("W2")
	status, _, _ = f.do(http.MethodDelete, "/api/admin/warehouses/"+empty, f.admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = f.do(http.MethodGet, "/api/admin/warehouses/"+empty, f.storer, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatsAndLowStock(t *testing.T) {
	f := newAPIFixture(t)
	w := f.createWarehouse("W1")
	p1 := f.createProduct("P1")
	p2 := f.createProduct("P2")
	f.setStock(w, p1, 2)
	f.setStock(w, p2, 50)

	status, env, _ := f.do(http.MethodGet, "/api/admin/inventory/low-stock?warehouse_id="+w, f.storer, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var low []struct {
		ProductID  string `json:"product_id"`
		AlertLevel string `json:"alert_level"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &low))
	require.Len(t, low, 1)
	assert.Equal(t, p1, low[0].ProductID)
	assert.Equal(t, "critical", low[0].AlertLevel)

	status, env, _ = f.do(http.MethodGet, "/api/admin/inventory/stats", f.storer, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var stats struct {
		ProductsTracked int             `json:"products_tracked"`
		TotalQuantity   decimal.Decimal `json:"total_quantity"`
		CriticalCount   int             `json:"critical_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.ProductsTracked)
	assert.True(t, stats.TotalQuantity.Equal(decimal.NewFromInt(52)))
	assert.Equal(t, 1, stats.CriticalCount)

	status, _, _ = f.do(http.MethodGet, "/api/admin/inventory/stats?warehouse_id=no-existe", f.storer, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMovements_InvalidDate(t *testing.T) {
	f := newAPIFixture(t)
	status, env, _ := f.do(http.MethodGet, "/api/admin/inventory/movements?from=ayer", f.storer, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "from")
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.do(http.MethodGet, "/api/admin/products", f.storer, nil)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "inventory_ledger_http_requests_total")
	assert.Contains(t, string(raw), `route="/api/admin/products`)
}
