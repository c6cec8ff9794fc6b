package messaging

import (
	"context"
	"fmt"

	messaging "github.com/rodolfodevapp/eventshop-messaging-go/rabbitmq"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
)

const (
	OrdersExchange    = "orders.events"
	CatalogExchange   = "catalog.events"
	InventoryExchange = "inventory.events"

	prefetch     = 32
	retryDelayMs = 30000
)

// Buses holds the producer for orders.events and the consumers for the
// exchanges the storefront listens to.
type Buses struct {
	Producer          *messaging.RabbitMqEventBus
	CatalogConsumer   *messaging.RabbitMqEventBus
	InventoryConsumer *messaging.RabbitMqEventBus
}

func options(uri, exchange, queuePrefix string) messaging.RabbitMqOptions {
	return messaging.RabbitMqOptions{
		URI:          uri,
		ExchangeName: exchange,
		QueuePrefix:  queuePrefix,
		Prefetch:     prefetch,
		RetryDelayMs: retryDelayMs,
	}
}

func NewBuses(rabbitURI string) Buses {
	return Buses{
		Producer: messaging.NewRabbitMqEventBus(
			options(rabbitURI, OrdersExchange, "storefront.dispatcher.v1"), nil, nil),
		CatalogConsumer: messaging.NewRabbitMqEventBus(
			options(rabbitURI, CatalogExchange, "storefront.catalog-events.v1"), nil, nil),
		InventoryConsumer: messaging.NewRabbitMqEventBus(
			options(rabbitURI, InventoryExchange, "storefront.inventory-events.v1"), nil, nil),
	}
}

func RegisterCatalogSubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	productCreated application.EventHandler,
	logger *zap.Logger,
) error {
	bus.Subscribe("ProductCreated", productCreated)

	if err := bus.StartConsumers(ctx); err != nil {
		return fmt.Errorf("start %s consumers: %w", CatalogExchange, err)
	}
	logger.Info("consuming", zap.String("exchange", CatalogExchange))
	return nil
}

func RegisterInventorySubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	stockReserved application.EventHandler,
	stockReservationFailed application.EventHandler,
	logger *zap.Logger,
) error {
	bus.Subscribe("StockReserved", stockReserved)
	bus.Subscribe("StockReservationFailed", stockReservationFailed)

	if err := bus.StartConsumers(ctx); err != nil {
		return fmt.Errorf("start %s consumers: %w", InventoryExchange, err)
	}
	logger.Info("consuming", zap.String("exchange", InventoryExchange))
	return nil
}
