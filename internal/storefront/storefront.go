// Package storefront is the command surface the presentation layer talks to.
// Each command runs to completion under one lock, so the catalog, the cart
// and the order history always move together as a single session.
package storefront

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/source"
	"github.com/fjod/go_cart/storefront/internal/store"
	"go.uber.org/zap"
)

// CartView is what the presentation layer renders for the cart.
type CartView struct {
	Items []domain.LineItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

type Storefront struct {
	mu sync.Mutex

	catalog  *catalog.Service
	cart     *cart.Manager
	checkout *checkout.Processor
	orders   *orders.Repository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

type Options struct {
	Store     store.Store
	Source    source.Source
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Locale    string
	Logger    *zap.Logger
}

// New wires the components and loads the catalog and the cart. It fails only
// when there is no catalog snapshot and the source cannot be reached.
func New(ctx context.Context, opts Options) (*Storefront, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	cat := catalog.NewService(opts.Store, opts.Source, opts.Locale, logger.Named("catalog"))
	if _, err := cat.LoadInitial(ctx); err != nil {
		return nil, err
	}

	c := cart.NewManager(opts.Store, cat, logger.Named("cart"))
	if err := c.Load(ctx); err != nil {
		return nil, err
	}

	hist := orders.NewRepository(opts.Store, logger.Named("orders"))

	return &Storefront{
		catalog:  cat,
		cart:     c,
		checkout: checkout.NewProcessor(cat, c, hist, opts.Publisher, logger.Named("checkout")),
		orders:   hist,
		metrics:  m,
		logger:   logger,
	}, nil
}

func (s *Storefront) OnQueryChange(f domain.Filters) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Query(f)
}

func (s *Storefront) Product(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.catalog.FindByID(id)
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *Storefront) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Categories()
}

func (s *Storefront) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

// OnAddToCart returns the line quantity after the add alongside the cart.
func (s *Storefront) OnAddToCart(ctx context.Context, productID string, quantity int) (int, CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lineQty, err := s.cart.Add(ctx, productID, quantity)
	s.metrics.CartOperations.WithLabelValues("add", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Debug("add to cart rejected", zap.String("product_id", productID), zap.Int("quantity", quantity), zap.Error(err))
		return 0, CartView{}, err
	}
	return lineQty, s.cartView(), nil
}

func (s *Storefront) OnSetCartQuantity(ctx context.Context, productID string, quantity int) (cart.SetResult, CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.cart.SetQuantity(ctx, productID, quantity)
	s.metrics.CartOperations.WithLabelValues("set_quantity", metrics.Result(err)).Inc()
	if err != nil {
		return cart.SetResult{}, CartView{}, err
	}
	return res, s.cartView(), nil
}

func (s *Storefront) OnRemoveFromCart(ctx context.Context, productID string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.cart.Remove(ctx, productID)
	s.metrics.CartOperations.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		return CartView{}, err
	}
	return s.cartView(), nil
}

func (s *Storefront) OnClearCart(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.cart.Clear(ctx)
	s.metrics.CartOperations.WithLabelValues("clear", metrics.Result(err)).Inc()
	if err != nil {
		return CartView{}, err
	}
	return s.cartView(), nil
}

func (s *Storefront) OnSubmitCheckout(ctx context.Context, form checkout.Form) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.checkout.Submit(ctx, form)
	s.metrics.Checkouts.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	for _, it := range order.Items {
		s.metrics.UnitsSold.WithLabelValues(it.ProductID).Add(float64(it.Quantity))
	}
	return order, nil
}

func (s *Storefront) Orders(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.List(ctx)
}

func (s *Storefront) Order(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Get(ctx, id)
}

func (s *Storefront) cartView() CartView {
	return CartView{
		Items: s.cart.LineItems(),
		Count: s.cart.TotalItemCount(),
		Total: s.cart.Total(),
	}
}
