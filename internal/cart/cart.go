package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
	"go.uber.org/zap"
)

// Catalog is the read side of the catalog the cart needs.
type Catalog interface {
	FindByID(id string) (domain.Product, bool)
}

// SetResult reports the quantity actually stored by SetQuantity.
type SetResult struct {
	Quantity int  `json:"quantity"`
	Adjusted bool `json:"adjusted"`
}

// Manager owns the cart lines. Every mutation persists the whole cart before
// returning. Not safe for concurrent use.
type Manager struct {
	store   store.Store
	catalog Catalog
	logger  *zap.Logger
	lines   []domain.CartLine
}

func NewManager(st store.Store, catalog Catalog, logger *zap.Logger) *Manager {
	return &Manager{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// Load restores the persisted cart and reconciles it with the catalog.
// Missing or malformed data yields an empty cart.
func (m *Manager) Load(ctx context.Context) error {
	var lines []domain.CartLine
	err := store.LoadJSON(ctx, m.store, store.KeyCart, &lines)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		lines = nil
	case errors.Is(err, domain.ErrStoreRead):
		m.logger.Warn("cart snapshot unreadable, starting empty", zap.Error(err))
		lines = nil
	default:
		return fmt.Errorf("load cart: %w", err)
	}

	m.lines = m.lines[:0]
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i := m.find(l.ProductID); i >= 0 {
			m.lines[i].Quantity += l.Quantity
			continue
		}
		m.lines = append(m.lines, l)
	}

	if next, changed := m.reconcile(); changed {
		if err := m.commit(ctx, next); err != nil {
			m.logger.Warn("reconciled cart not persisted", zap.Error(err))
			m.lines = next
		}
	}
	return nil
}

// reconcile drops lines whose product is gone or out of stock and clamps the
// rest to the current stock.
func (m *Manager) reconcile() ([]domain.CartLine, bool) {
	next := make([]domain.CartLine, 0, len(m.lines))
	changed := false
	for _, l := range m.lines {
		p, ok := m.catalog.FindByID(l.ProductID)
		if !ok || p.Stock < 1 {
			m.logger.Info("dropping restored cart line",
				zap.String("product_id", l.ProductID), zap.Bool("known", ok))
			changed = true
			continue
		}
		if l.Quantity > p.Stock {
			m.logger.Info("clamping restored cart line to stock",
				zap.String("product_id", l.ProductID),
				zap.Int("quantity", l.Quantity),
				zap.Int("stock", p.Stock))
			l.Quantity = p.Stock
			changed = true
		}
		next = append(next, l)
	}
	return next, changed
}

// Add puts quantity units of a product in the cart and returns the resulting
// line quantity. The cart is left untouched when the total would exceed stock.
func (m *Manager) Add(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	p, ok := m.catalog.FindByID(productID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	i := m.find(productID)
	inCart := 0
	if i >= 0 {
		inCart = m.lines[i].Quantity
	}
	if inCart+quantity > p.Stock {
		return 0, fmt.Errorf("%w: available %d", domain.ErrInsufficientStock, max(p.Stock-inCart, 0))
	}

	next := m.snapshot()
	if i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, domain.CartLine{ProductID: productID, Quantity: quantity})
	}
	if err := m.commit(ctx, next); err != nil {
		return 0, err
	}
	return inCart + quantity, nil
}

// SetQuantity replaces the quantity of a line, clamped to [1, stock].
func (m *Manager) SetQuantity(ctx context.Context, productID string, quantity int) (SetResult, error) {
	p, ok := m.catalog.FindByID(productID)
	if !ok {
		return SetResult{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	i := m.find(productID)
	if i < 0 {
		return SetResult{}, fmt.Errorf("%w: %s", domain.ErrNotInCart, productID)
	}
	if p.Stock < 1 {
		return SetResult{}, fmt.Errorf("%w: %s is out of stock", domain.ErrInsufficientStock, productID)
	}

	clamped := min(max(quantity, 1), p.Stock)

	next := m.snapshot()
	next[i].Quantity = clamped
	if err := m.commit(ctx, next); err != nil {
		return SetResult{}, err
	}
	return SetResult{Quantity: clamped, Adjusted: clamped != quantity}, nil
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (m *Manager) Remove(ctx context.Context, productID string) error {
	i := m.find(productID)
	if i < 0 {
		return nil
	}
	next := m.snapshot()
	next = append(next[:i], next[i+1:]...)
	return m.commit(ctx, next)
}

// Clear empties the cart. The in-memory cart is emptied even when the write
// fails, so a placed order cannot be submitted twice.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.commit(ctx, []domain.CartLine{}); err != nil {
		m.lines = []domain.CartLine{}
		return err
	}
	return nil
}

func (m *Manager) TotalItemCount() int {
	total := 0
	for _, l := range m.lines {
		total += l.Quantity
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (m *Manager) Lines() []domain.CartLine {
	return m.snapshot()
}

// LineItems joins the cart with the catalog. Lines whose product no longer
// resolves are skipped.
func (m *Manager) LineItems() []domain.LineItem {
	items := make([]domain.LineItem, 0, len(m.lines))
	for _, l := range m.lines {
		p, ok := m.catalog.FindByID(l.ProductID)
		if !ok {
			m.logger.Debug("cart line references unknown product", zap.String("product_id", l.ProductID))
			continue
		}
		items = append(items, domain.LineItem{
			Product:  p,
			Quantity: l.Quantity,
			Subtotal: p.Price * float64(l.Quantity),
		})
	}
	return items
}

func (m *Manager) Total() float64 {
	total := 0.0
	for _, it := range m.LineItems() {
		total += it.Subtotal
	}
	return total
}

func (m *Manager) find(productID string) int {
	for i, l := range m.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshot() []domain.CartLine {
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

// commit persists next and only then makes it the current cart.
func (m *Manager) commit(ctx context.Context, next []domain.CartLine) error {
	if err := store.SaveJSON(ctx, m.store, store.KeyCart, next); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	m.lines = next
	return nil
}
