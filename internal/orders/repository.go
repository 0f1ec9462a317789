package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
	"go.uber.org/zap"
)

// Repository is the append-only order history kept under store.KeyOrders.
type Repository struct {
	store  store.Store
	logger *zap.Logger
}

func NewRepository(st store.Store, logger *zap.Logger) *Repository {
	return &Repository{store: st, logger: logger}
}

// List returns every recorded order, oldest first. An unreadable history is
// treated as empty.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := store.LoadJSON(ctx, r.store, store.KeyOrders, &orders)
	switch {
	case err == nil:
		return orders, nil
	case errors.Is(err, store.ErrNotFound):
		return []domain.Order{}, nil
	case errors.Is(err, domain.ErrStoreRead):
		r.logger.Warn("order history unreadable, treating as empty", zap.Error(err))
		return []domain.Order{}, nil
	default:
		return nil, fmt.Errorf("load orders: %w", err)
	}
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
}

func (r *Repository) Append(ctx context.Context, order domain.Order) error {
	orders, err := r.List(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, order)
	if err := store.SaveJSON(ctx, r.store, store.KeyOrders, orders); err != nil {
		return fmt.Errorf("persist orders: %w", err)
	}
	return nil
}
