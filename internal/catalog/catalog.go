package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/source"
	"github.com/fjod/go_cart/storefront/internal/store"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Service owns the in-memory product list. It is not safe for concurrent
// use; callers serialize access.
type Service struct {
	store  store.Store
	source source.Source
	logger *zap.Logger
	lang   language.Tag

	products []domain.Product
	index    map[string]int // productID -> position in products
}

func NewService(st store.Store, src source.Source, locale string, logger *zap.Logger) *Service {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Service{
		store:  st,
		source: src,
		logger: logger,
		lang:   tag,
		index:  make(map[string]int),
	}
}

// LoadInitial restores the persisted catalog snapshot, or fetches the catalog
// from the source and persists a copy when there is no usable snapshot.
func (s *Service) LoadInitial(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := store.LoadJSON(ctx, s.store, store.KeyProducts, &products)
	switch {
	case err == nil:
		s.set(products)
		s.logger.Info("catalog restored from snapshot", zap.Int("products", len(s.products)))
		return s.Products(), nil
	case errors.Is(err, domain.ErrStoreRead):
		s.logger.Warn("catalog snapshot unreadable, refetching", zap.Error(err))
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	products, err = s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.set(products)

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("catalog loaded from source", zap.Int("products", len(s.products)))
	return s.Products(), nil
}

func (s *Service) FindByID(id string) (domain.Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Products returns a copy of the catalog in catalog order.
func (s *Service) Products() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Categories returns the distinct categories, sorted.
func (s *Service) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// DecrementStock removes quantity units of a product and persists the catalog.
func (s *Service) DecrementStock(ctx context.Context, id string, quantity int) error {
	return s.DecrementStocks(ctx, []domain.CartLine{{ProductID: id, Quantity: quantity}})
}

// CheckStock verifies that every line fits in the current stock without
// changing anything.
func (s *Service) CheckStock(lines []domain.CartLine) error {
	need := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return fmt.Errorf("%w: quantity for %s must be at least 1", domain.ErrValidation, l.ProductID)
		}
		need[l.ProductID] += l.Quantity
	}

	for _, l := range lines {
		p, ok := s.FindByID(l.ProductID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
		}
		if need[l.ProductID] > p.Stock {
			return fmt.Errorf("%w: %s has %d, requested %d",
				domain.ErrInsufficientStock, p.ID, p.Stock, need[l.ProductID])
		}
	}
	return nil
}

// DecrementStocks applies all lines or none and persists the catalog once.
// If the snapshot cannot be written the in-memory stock is restored.
func (s *Service) DecrementStocks(ctx context.Context, lines []domain.CartLine) error {
	if err := s.CheckStock(lines); err != nil {
		return err
	}

	before := s.Products()
	for _, l := range lines {
		s.products[s.index[l.ProductID]].Stock -= l.Quantity
	}

	if err := s.persist(ctx); err != nil {
		s.products = before
		return err
	}
	return nil
}

// RestoreStocks gives back stock taken by DecrementStocks. Used to compensate
// a checkout whose order could not be recorded.
func (s *Service) RestoreStocks(ctx context.Context, lines []domain.CartLine) error {
	for _, l := range lines {
		if i, ok := s.index[l.ProductID]; ok {
			s.products[i].Stock += l.Quantity
		}
	}
	return s.persist(ctx)
}

func (s *Service) set(products []domain.Product) {
	s.products = make([]domain.Product, 0, len(products))
	s.index = make(map[string]int, len(products))
	for _, p := range products {
		if _, dup := s.index[p.ID]; dup {
			s.logger.Warn("duplicate product id ignored", zap.String("product_id", p.ID))
			continue
		}
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
}

func (s *Service) persist(ctx context.Context) error {
	if err := store.SaveJSON(ctx, s.store, store.KeyProducts, s.products); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	return nil
}
