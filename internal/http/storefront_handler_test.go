package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/money"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSource struct{}

func (stubSource) Fetch(context.Context) ([]domain.Product, error) {
	return []domain.Product{
		{ID: "A", Title: "Mate", Description: "Calabaza", Category: "hogar", Price: 1000, Stock: 5},
		{ID: "B", Title: "Bombilla", Description: "Acero", Category: "hogar", Price: 50, Stock: 2},
		{ID: "C", Title: "Yerba", Description: "1kg", Category: "almacen", Price: 30, Stock: 10},
	}, nil
}

func setupRouter(t *testing.T) http.Handler {
	logger := zaptest.NewLogger(t)
	m := metrics.New()
	sf, err := storefront.New(context.Background(), storefront.Options{
		Store:   store.NewMemoryStore(),
		Source:  stubSource{},
		Metrics: m,
		Locale:  "es-AR",
		Logger:  logger,
	})
	require.NoError(t, err)

	h := NewStorefrontHandler(sf, money.NewFormatter("es-AR"), logger, 5*time.Second)
	return NewRouter(h, m.Handler(), 5*time.Second)
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestListProducts_FiltersAndSort(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/products?category=hogar&sort=price-asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]ProductDTO](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "B", products[0].ID)
	assert.Equal(t, "A", products[1].ID)
	assert.NotEmpty(t, products[1].PriceFormatted)
}

func TestListProducts_TextQuery(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/products?q=ACERO", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]ProductDTO](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "B", products[0].ID)
}

func TestListProducts_BadParams(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{
		"/api/v1/products?min_price=abc",
		"/api/v1/products?max_price=-1",
		"/api/v1/products?sort=random",
	} {
		rec := do(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetProductAndCategories(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/products/C", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Yerba", decode[ProductDTO](t, rec).Title)

	rec = do(t, router, http.MethodGet, "/api/v1/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"almacen", "hogar"}, decode[[]string](t, rec))
}

func TestCartFlow(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "A", "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	added := decode[AddItemResponseDTO](t, rec)
	assert.Equal(t, 3, added.Quantity)
	assert.Equal(t, 3, added.Cart.Count)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "A", "quantity": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", decode[ErrorResponse](t, rec).Code)

	// quantity defaults to 1
	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, decode[AddItemResponseDTO](t, rec).Quantity)

	rec = do(t, router, http.MethodPut, "/api/v1/cart/items/B", map[string]interface{}{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	set := decode[SetQuantityResponseDTO](t, rec)
	assert.True(t, set.Adjusted)
	assert.Equal(t, 2, set.Quantity)
	assert.Equal(t, 5, set.Cart.Count)

	rec = do(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[CartDTO](t, rec)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3100.0, cart.Total)
	assert.NotEmpty(t, cart.TotalFormatted)

	rec = do(t, router, http.MethodDelete, "/api/v1/cart/items/A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[CartDTO](t, rec).Count)

	rec = do(t, router, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[CartDTO](t, rec).Count)
}

func TestAddItem_BadRequests(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "A", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "nope", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateQuantity_NotInCart(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodPut, "/api/v1/cart/items/A", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_in_cart", decode[ErrorResponse](t, rec).Code)
}

func TestCheckout(t *testing.T) {
	router := setupRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "A", "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com", "address": "Calle 1",
		"method": "card", "card_number": "1234", "cvv": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_payment_details", decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com", "address": "Calle 1",
		"method": "card", "card_number": "1111 2222 3333 4444", "cvv": "123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[OrderDTO](t, rec)
	assert.Contains(t, order.ID, "ord-")
	assert.Equal(t, []domain.OrderItem{{ProductID: "A", Quantity: 3}}, order.Items)
	assert.Equal(t, 3000.0, order.Total)

	rec = do(t, router, http.MethodGet, "/api/v1/products/A", nil)
	assert.Equal(t, 2, decode[ProductDTO](t, rec).Stock)

	rec = do(t, router, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]OrderDTO](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decode[OrderDTO](t, rec).ID)

	rec = do(t, router, http.MethodGet, "/api/v1/orders/ord-0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com", "address": "Calle 1", "method": "cash",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(t)
	do(t, router, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "A", "quantity": 1})

	rec := do(t, router, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_cart_operations_total{operation="add",result="ok"} 1`)
}
