package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type EventHandler interface {
	Handle(ctx context.Context, ev primitives.Event) error
}

// decodeEnvelope returns false for anything that is not an envelope of
// eventType with a decodable payload; those messages are acked and dropped.
func decodeEnvelope(logger *zap.Logger, ev primitives.Event, eventType string, into any) bool {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		logger.Warn("unexpected event", zap.String("go_type", fmt.Sprintf("%T", ev)))
		return false
	}
	if env.Type != eventType {
		return false
	}
	if err := json.Unmarshal([]byte(env.PayloadJSON), into); err != nil {
		logger.Warn("undecodable payload", zap.String("type", env.Type), zap.Error(err))
		return false
	}
	return true
}

// StockReservedHandler

type StockReservedHandler struct {
	service *OrderService
	logger  *zap.Logger
}

func NewStockReservedHandler(s *OrderService, logger *zap.Logger) *StockReservedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockReservedHandler{service: s, logger: logger.Named("stock-reserved")}
}

func (h *StockReservedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	var payload domain.StockReservedPayload
	if !decodeEnvelope(h.logger, ev, "StockReserved", &payload) {
		return nil
	}
	if payload.OrderID == uuid.Nil {
		h.logger.Warn("missing orderId")
		return nil
	}
	return h.service.ConfirmOrder(ctx, payload.OrderID)
}

// StockReservationFailedHandler

type StockReservationFailedHandler struct {
	service *OrderService
	logger  *zap.Logger
}

func NewStockReservationFailedHandler(s *OrderService, logger *zap.Logger) *StockReservationFailedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockReservationFailedHandler{service: s, logger: logger.Named("stock-reservation-failed")}
}

func (h *StockReservationFailedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	var payload domain.StockReservationFailedPayload
	if !decodeEnvelope(h.logger, ev, "StockReservationFailed", &payload) {
		return nil
	}
	if payload.OrderID == uuid.Nil {
		h.logger.Warn("missing orderId")
		return nil
	}
	return h.service.RejectOrder(ctx, payload.OrderID, payload.Reason)
}
