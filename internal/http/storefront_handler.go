package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/money"
	"github.com/fjod/go_cart/storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Commands is the storefront surface the handlers drive.
type Commands interface {
	OnQueryChange(f domain.Filters) []domain.Product
	Product(id string) (domain.Product, error)
	Categories() []string
	Cart() storefront.CartView
	OnAddToCart(ctx context.Context, productID string, quantity int) (int, storefront.CartView, error)
	OnSetCartQuantity(ctx context.Context, productID string, quantity int) (cart.SetResult, storefront.CartView, error)
	OnRemoveFromCart(ctx context.Context, productID string) (storefront.CartView, error)
	OnClearCart(ctx context.Context) (storefront.CartView, error)
	OnSubmitCheckout(ctx context.Context, form checkout.Form) (*domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (*domain.Order, error)
}

type StorefrontHandler struct {
	commands Commands
	money    *money.Formatter
	logger   *zap.Logger
	timeout  time.Duration
}

func NewStorefrontHandler(commands Commands, formatter *money.Formatter, logger *zap.Logger, timeout time.Duration) *StorefrontHandler {
	return &StorefrontHandler{
		commands: commands,
		money:    formatter,
		logger:   logger,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ProductDTO struct {
	domain.Product
	PriceFormatted string `json:"price_formatted"`
}

type LineItemDTO struct {
	Product           ProductDTO `json:"product"`
	Quantity          int        `json:"quantity"`
	Subtotal          float64    `json:"subtotal"`
	SubtotalFormatted string     `json:"subtotal_formatted"`
}

type CartDTO struct {
	Items          []LineItemDTO `json:"items"`
	Count          int           `json:"count"`
	Total          float64       `json:"total"`
	TotalFormatted string        `json:"total_formatted"`
}

type AddItemResponseDTO struct {
	Quantity int     `json:"quantity"`
	Cart     CartDTO `json:"cart"`
}

type SetQuantityResponseDTO struct {
	Quantity int     `json:"quantity"`
	Adjusted bool    `json:"adjusted"`
	Cart     CartDTO `json:"cart"`
}

type OrderDTO struct {
	domain.Order
	TotalFormatted string `json:"total_formatted"`
}

func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.Filters{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Sort:     domain.SortMode(q.Get("sort")),
	}

	var ok bool
	if filters.MinPrice, ok = parsePrice(q.Get("min_price")); !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_min_price", "min_price must be a non-negative number")
		return
	}
	if filters.MaxPrice, ok = parsePrice(q.Get("max_price")); !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_max_price", "max_price must be a non-negative number")
		return
	}
	if !filters.Sort.Valid() {
		h.respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be one of price-asc, price-desc, name-asc")
		return
	}

	products := h.commands.OnQueryChange(filters)
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = h.product(p)
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.commands.Product(chi.URLParam(r, "product_id"))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.product(p))
}

func (h *StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.commands.Categories()
	if categories == nil {
		categories = []string{}
	}
	h.respondJSON(w, http.StatusOK, categories)
}

func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.cart(h.commands.Cart()))
}

func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	lineQty, view, err := h.commands.OnAddToCart(ctx, req.ProductID, quantity)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, AddItemResponseDTO{
		Quantity: lineQty,
		Cart:     h.cart(view),
	})
}

func (h *StorefrontHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, view, err := h.commands.OnSetCartQuantity(ctx, productID, req.Quantity)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SetQuantityResponseDTO{
		Quantity: res.Quantity,
		Adjusted: res.Adjusted,
		Cart:     h.cart(view),
	})
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.commands.OnRemoveFromCart(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cart(view))
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.commands.OnClearCart(ctx)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cart(view))
}

func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.commands.OnSubmitCheckout(ctx, form)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, h.order(*order))
}

func (h *StorefrontHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.commands.Orders(ctx)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	out := make([]OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = h.order(o)
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *StorefrontHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.commands.Order(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.order(*order))
}

func (h *StorefrontHandler) product(p domain.Product) ProductDTO {
	return ProductDTO{Product: p, PriceFormatted: h.money.Format(p.Price)}
}

func (h *StorefrontHandler) cart(v storefront.CartView) CartDTO {
	items := make([]LineItemDTO, len(v.Items))
	for i, it := range v.Items {
		items[i] = LineItemDTO{
			Product:           h.product(it.Product),
			Quantity:          it.Quantity,
			Subtotal:          it.Subtotal,
			SubtotalFormatted: h.money.Format(it.Subtotal),
		}
	}
	return CartDTO{
		Items:          items,
		Count:          v.Count,
		Total:          v.Total,
		TotalFormatted: h.money.Format(v.Total),
	}
}

func (h *StorefrontHandler) order(o domain.Order) OrderDTO {
	return OrderDTO{Order: o, TotalFormatted: h.money.Format(o.Total)}
}

// parsePrice treats an empty value as "no bound".
func parsePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
