package checkout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"go.uber.org/zap"
)

type Catalog interface {
	CheckStock(lines []domain.CartLine) error
	DecrementStocks(ctx context.Context, lines []domain.CartLine) error
	RestoreStocks(ctx context.Context, lines []domain.CartLine) error
}

type Cart interface {
	Lines() []domain.CartLine
	Total() float64
	Clear(ctx context.Context) error
}

type OrderHistory interface {
	Append(ctx context.Context, order domain.Order) error
}

// Processor turns the current cart into an order: validate, check stock,
// then commit. Nothing is written unless validation and the stock check pass.
type Processor struct {
	catalog   Catalog
	cart      Cart
	orders    OrderHistory
	publisher events.Publisher
	logger    *zap.Logger

	now    func() time.Time
	lastID int64
}

func NewProcessor(catalog Catalog, cart Cart, orders OrderHistory, publisher events.Publisher, logger *zap.Logger) *Processor {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Processor{
		catalog:   catalog,
		cart:      cart,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Processor) Submit(ctx context.Context, form Form) (*domain.Order, error) {
	form = form.normalized()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	lines := p.cart.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// all lines must fit before anything is touched
	if err := p.catalog.CheckStock(lines); err != nil {
		return nil, err
	}

	total := p.cart.Total()
	if err := p.catalog.DecrementStocks(ctx, lines); err != nil {
		return nil, err
	}

	order := p.newOrder(form, lines, total)
	if err := p.orders.Append(ctx, order); err != nil {
		if rErr := p.catalog.RestoreStocks(ctx, lines); rErr != nil {
			p.logger.Error("failed to restore stock after order write failure",
				zap.String("order_id", order.ID), zap.Error(rErr))
		}
		return nil, fmt.Errorf("record order: %w", err)
	}

	if err := p.cart.Clear(ctx); err != nil {
		p.logger.Error("order recorded but cleared cart was not persisted",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	if err := p.publisher.PublishOrderPlaced(ctx, order); err != nil {
		p.logger.Warn("failed to publish order event", zap.String("order_id", order.ID), zap.Error(err))
	}

	p.logger.Info("checkout completed",
		zap.String("order_id", order.ID),
		zap.Stringer("method", order.PaymentMethod),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))
	return &order, nil
}

func (p *Processor) newOrder(form Form, lines []domain.CartLine, total float64) domain.Order {
	now := p.now().UTC()
	items := make([]domain.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = domain.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return domain.Order{
		ID:              p.nextID(now),
		CustomerName:    form.Name,
		CustomerEmail:   form.Email,
		CustomerAddress: form.Address,
		PaymentMethod:   form.PaymentMethod,
		Items:           items,
		Total:           total,
		Timestamp:       now,
	}
}

// nextID derives the order id from the clock in milliseconds, stepping past
// the previous id when two checkouts land in the same millisecond.
func (p *Processor) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= p.lastID {
		ms = p.lastID + 1
	}
	p.lastID = ms
	return "ord-" + strconv.FormatInt(ms, 10)
}
