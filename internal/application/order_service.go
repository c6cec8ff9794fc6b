package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// PlaceOrderInput identifies the product by ID or, failing that, by name.
type PlaceOrderInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Address     string
	Phone       string
	PaymentType string
}

type OrderService struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   OutboxWriter
	logger   *zap.Logger
}

func NewOrderService(
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox OutboxWriter,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{products: products, orders: orders, outbox: outbox, logger: logger}
}

// PlaceOrder stores a PENDING order for the caller and enqueues OrderPlacedEvent
// so inventory can reserve stock for it.
func (s *OrderService) PlaceOrder(ctx context.Context, caller domain.Principal, in PlaceOrderInput) (*domain.Order, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PaymentType = strings.TrimSpace(in.PaymentType)

	if (in.ProductID <= 0 && in.ProductName == "") || in.Quantity < 1 || in.Address == "" || in.Phone == "" {
		return nil, domain.ErrBadOrder
	}

	product, err := s.findProduct(ctx, in)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(caller.UserID, product.ID, in.Quantity, in.Address, in.Phone, in.PaymentType)
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	ev := domain.NewOrderPlacedEvent(order.PublicID, caller.PublicID, order.PaymentType,
		[]domain.OrderPlacedLine{{Sku: product.EffectiveSku(), Quantity: order.Quantity}})
	if err := s.outbox.Enqueue(ctx, ev); err != nil {
		// The order is already stored; it stays PENDING until someone replays it.
		s.logger.Error("enqueue OrderPlacedEvent failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", caller.UserID),
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", order.Quantity))
	return order, nil
}

func (s *OrderService) findProduct(ctx context.Context, in PlaceOrderInput) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	if in.ProductID > 0 {
		product, err = s.products.GetByID(ctx, in.ProductID)
	} else {
		product, err = s.products.FindByName(ctx, catalog.NormalizeName(in.ProductName))
	}
	if err != nil {
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (s *OrderService) ListMine(ctx context.Context, caller domain.Principal) ([]domain.OrderView, error) {
	return s.orders.ListByUser(ctx, caller.UserID)
}

// ConfirmOrder and RejectOrder apply the inventory verdict. Unknown orders and
// orders already settled are ignored.
func (s *OrderService) ConfirmOrder(ctx context.Context, publicID uuid.UUID) error {
	return s.settle(ctx, publicID, func(o *domain.Order) bool { return o.MarkConfirmed() })
}

func (s *OrderService) RejectOrder(ctx context.Context, publicID uuid.UUID, reason string) error {
	return s.settle(ctx, publicID, func(o *domain.Order) bool { return o.MarkRejected(reason) })
}

func (s *OrderService) settle(ctx context.Context, publicID uuid.UUID, apply func(*domain.Order) bool) error {
	order, err := s.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if order == nil {
		s.logger.Warn("inventory verdict for unknown order", zap.String("order_id", publicID.String()))
		return nil
	}
	if !apply(order) {
		s.logger.Debug("order already settled",
			zap.String("order_id", publicID.String()), zap.String("status", string(order.Status)))
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return fmt.Errorf("update order %s: %w", publicID, err)
	}
	s.logger.Info("order settled",
		zap.String("order_id", publicID.String()), zap.String("status", string(order.Status)))
	return nil
}
