package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/observability"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// newTestAPI arma la app completa sobre el store en memoria y un Redis falso.
func newTestAPI(t *testing.T) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	repos := store.Repos()
	log := logger.Nop()
	metrics := observability.NewMetrics()
	ledger := inventory.NewLedgerUseCase(store, repos.Products, repos.Levels, repos.Movements, log)

	return apphttp.NewApp(apphttp.ServerConfig{AppName: "pos-test", RequestTimeout: 5 * time.Second}, log, apphttp.RouterDeps{
		CatalogUC:  catalog.NewUseCase(store, repos.Products, repos.Barcodes, repos.Levels, log),
		LedgerUC:   ledger,
		LowStockUC: inventory.NewLowStockUseCase(repos.Levels),
		CheckoutUC: sales.NewCheckoutUseCase(store, ledger, repos.Orders, cache.NewIdempotencyStore(client, time.Hour), metrics, log),
		OrdersUC:   sales.NewOrderQueryUseCase(repos.Orders),
		ReceiptUC:  sales.NewReceiptUseCase(repos.Orders, pdf.NewMarotoReceiptGenerator("Tienda Test")),
		Metrics:    metrics,
		JWTSecret:  testJWTSecret,
	})
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func createProduct(t *testing.T, app *fiber.App, sku, price string, qty int) dto.ProductResponse {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/products", "admin", map[string]any{
		"sku": sku, "name": "Producto " + sku, "price": price, "cost": "1.00", "initial_qty": qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestAPI_Health(t *testing.T) {
	app := newTestAPI(t)
	resp, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestAPI_CreateProduct_Roles(t *testing.T) {
	app := newTestAPI(t)

	resp, _ := call(t, app, http.MethodPost, "/api/products", "cashier", map[string]any{"sku": "X-1", "name": "X", "price": "1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/products", "", map[string]any{"sku": "X-1", "name": "X", "price": "1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	p := createProduct(t, app, "SKU-COFFEE-001", "12.50", 40)
	assert.Equal(t, 40, p.QtyOnHand)
	assert.Equal(t, 10, p.ReorderLevel)

	resp, body := call(t, app, http.MethodPost, "/api/products", "admin", map[string]any{"sku": "SKU-COFFEE-001", "name": "Otro", "price": "1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_SKU", decodeError(t, body).Code)

	resp, body = call(t, app, http.MethodPost, "/api/products", "admin", map[string]any{"name": "Sin SKU", "price": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, body).Code)
}

func TestAPI_ListAndGetProducts(t *testing.T) {
	app := newTestAPI(t)
	coffee := createProduct(t, app, "SKU-COFFEE-001", "12.50", 5)
	createProduct(t, app, "SKU-TEA-001", "8.00", 5)

	resp, body := call(t, app, http.MethodGet, "/api/products?page=1&pageSize=10&keyword=coffee", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ProductListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, coffee.ID, list.Items[0].ID)
	assert.Equal(t, 1, list.Page.Total)

	resp, _ = call(t, app, http.MethodGet, "/api/products/"+coffee.ID, "cashier", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/api/products/no-existe", "cashier", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)
}

func TestAPI_BarcodeFlow(t *testing.T) {
	app := newTestAPI(t)
	p := createProduct(t, app, "SKU-MILK-001", "3.20", 12)

	resp, body := call(t, app, http.MethodPost, "/api/products/"+p.ID+"/barcodes", "admin", map[string]any{
		"format": " ean_13 ", "code_value": "7701234567890", "is_primary": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodPost, "/api/products/"+p.ID+"/barcodes", "admin", map[string]any{
		"format": "EAN_13", "code_value": "7701234567890",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_BARCODE", decodeError(t, body).Code)

	resp, body = call(t, app, http.MethodPost, "/api/products/"+p.ID+"/barcodes", "admin", map[string]any{
		"format": "AZTEC", "code_value": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decodeError(t, body).Code)

	resp, body = call(t, app, http.MethodGet, "/api/barcodes/7701234567890", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found dto.BarcodeLookupResponse
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Equal(t, p.ID, found.ProductID)
	assert.Equal(t, "EAN_13", found.Format)

	resp, _ = call(t, app, http.MethodGet, "/api/barcodes/000", "cashier", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CheckoutFlow(t *testing.T) {
	app := newTestAPI(t)
	coffee := createProduct(t, app, "SKU-COFFEE-001", "12.50", 10)
	tea := createProduct(t, app, "SKU-TEA-001", "8.00", 3)

	cart := map[string]any{
		"items": []map[string]any{
			{"product_id": coffee.ID, "qty": 2},
			{"product_id": tea.ID, "qty": 1},
		},
		"payment_method": "cash",
		"paid_amount":    "50",
		"discount":       "3.00",
	}
	resp, body := call(t, app, http.MethodPost, "/api/checkout", "cashier", cart, apphttp.HeaderIdempotencyKey, "caja-1-0001")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "CASH", order.PaymentMethod)
	assert.True(t, decimal.RequireFromString("33").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("30").Equal(order.Total))
	assert.True(t, decimal.RequireFromString("20").Equal(order.ChangeAmount))
	assert.True(t, strings.HasPrefix(order.OrderNo, "SO"))
	require.Len(t, order.Items, 2)

	// reintento con la misma clave: misma orden, sin descontar otra vez
	resp, body = call(t, app, http.MethodPost, "/api/checkout", "cashier", cart, apphttp.HeaderIdempotencyKey, "caja-1-0001")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var replay dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &replay))
	assert.Equal(t, order.ID, replay.ID)

	resp, body = call(t, app, http.MethodGet, "/api/products/"+coffee.ID, "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var after dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 8, after.QtyOnHand)

	resp, body = call(t, app, http.MethodGet, "/api/orders", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders dto.OrderListResponse
	require.NoError(t, json.Unmarshal(body, &orders))
	assert.Equal(t, 1, orders.Page.Total)
	assert.Equal(t, 2, orders.Items[0].ItemCount)

	resp, _ = call(t, app, http.MethodGet, "/api/orders/"+order.ID, "cashier", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/api/orders/"+order.ID+"/receipt", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recibo_"+order.OrderNo+".pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = call(t, app, http.MethodGet, "/api/orders/no-existe/receipt", "cashier", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CheckoutRejections(t *testing.T) {
	app := newTestAPI(t)
	p := createProduct(t, app, "SKU-BREAD-001", "100.00", 2)

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "stock insuficiente",
			body:   map[string]any{"items": []map[string]any{{"product_id": p.ID, "qty": 3}}, "payment_method": "CASH", "paid_amount": "500"},
			status: http.StatusConflict, code: "INSUFFICIENT_STOCK",
		},
		{
			name:   "tarjeta con monto distinto",
			body:   map[string]any{"items": []map[string]any{{"product_id": p.ID, "qty": 2}}, "payment_method": "CARD", "paid_amount": "199.99"},
			status: http.StatusBadRequest, code: "CARD_AMOUNT_MISMATCH",
		},
		{
			name:   "efectivo insuficiente",
			body:   map[string]any{"items": []map[string]any{{"product_id": p.ID, "qty": 1}}, "payment_method": "CASH", "paid_amount": "99.99"},
			status: http.StatusBadRequest, code: "INSUFFICIENT_PAYMENT",
		},
		{
			name:   "descuento mayor al subtotal",
			body:   map[string]any{"items": []map[string]any{{"product_id": p.ID, "qty": 1}}, "payment_method": "CASH", "paid_amount": "100", "discount": "100.01"},
			status: http.StatusBadRequest, code: "DISCOUNT_EXCEEDS_SUBTOTAL",
		},
		{
			name:   "producto inexistente",
			body:   map[string]any{"items": []map[string]any{{"product_id": "00000000-0000-0000-0000-00000000dead", "qty": 1}}, "payment_method": "CASH", "paid_amount": "100"},
			status: http.StatusNotFound, code: "PRODUCT_NOT_FOUND",
		},
		{
			name:   "carrito vacío",
			body:   map[string]any{"items": []map[string]any{}, "payment_method": "CASH", "paid_amount": "100"},
			status: http.StatusBadRequest, code: "VALIDATION",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := call(t, app, http.MethodPost, "/api/checkout", "cashier", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.Equal(t, tc.code, decodeError(t, body).Code)
		})
	}

	resp, body := call(t, app, http.MethodGet, "/api/products/"+p.ID, "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var after dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 2, after.QtyOnHand, "los rechazos no tocan el stock")
}

func TestAPI_InventoryEndpoints(t *testing.T) {
	app := newTestAPI(t)
	p := createProduct(t, app, "SKU-SUGAR-001", "2.00", 4)

	resp, body := call(t, app, http.MethodGet, "/api/inventory/low-stock", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.LowStockReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 1, report.Count)

	resp, _ = call(t, app, http.MethodPost, "/api/inventory/in", "cashier", map[string]any{"product_id": p.ID, "qty": 5})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/inventory/in", "admin", map[string]any{"product_id": p.ID, "qty": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decodeError(t, body).Code)

	resp, body = call(t, app, http.MethodPost, "/api/inventory/in", "admin", map[string]any{"product_id": p.ID, "qty": 20, "reason": "Compra proveedor"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var in dto.StockInResponse
	require.NoError(t, json.Unmarshal(body, &in))
	assert.Equal(t, 24, in.QtyOnHand)

	resp, body = call(t, app, http.MethodGet, "/api/inventory/"+p.ID+"/movements?pageSize=1", "cashier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.MovementListResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	assert.Equal(t, 2, movs.Page.Total)
	require.Len(t, movs.Items, 1)

	resp, _ = call(t, app, http.MethodGet, "/api/inventory/"+p.ID+"/reconcile", "cashier", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, "/api/inventory/"+p.ID+"/reconcile", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.True(t, rec.Balanced)
	assert.Equal(t, 24, rec.TotalIn)
}

func TestAPI_DeactivateProduct(t *testing.T) {
	app := newTestAPI(t)
	p := createProduct(t, app, "SKU-OLD-001", "1.00", 1)

	resp, _ := call(t, app, http.MethodDelete, "/api/products/"+p.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/checkout", "cashier", map[string]any{
		"items": []map[string]any{{"product_id": p.ID, "qty": 1}}, "payment_method": "CASH", "paid_amount": "1",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, body).Code)
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	app := newTestAPI(t)
	call(t, app, http.MethodGet, "/health", "", nil)

	resp, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pos_http_requests_total")
}
