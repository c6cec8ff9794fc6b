package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
)

// =========== Incoming payloads ===========

// ProductCreated (catalog.events)
type ProductCreatedPayload struct {
	ProductID     uuid.UUID `json:"productId"`
	VendorID      uuid.UUID `json:"vendorId"`
	Sku           string    `json:"sku"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAtUtc  time.Time `json:"createdAtUtc"`
	IsActive      bool      `json:"isActive"`
	Description   string    `json:"description"`
	MainImageURL  string    `json:"mainImageUrl"`
	ImageURLs     []string  `json:"imageUrls"`
}

// StockReserved (inventory.events)
type StockReservedPayload struct {
	OrderID       uuid.UUID `json:"orderId"`
	UserID        uuid.UUID `json:"userId"`
	ReservedAtUtc time.Time `json:"reservedAtUtc"`
}

// StockReservationFailed (inventory.events)
type StockReservationFailedPayload struct {
	OrderID     uuid.UUID `json:"orderId"`
	UserID      uuid.UUID `json:"userId"`
	Reason      string    `json:"reason"`
	FailedAtUtc time.Time `json:"failedAtUtc"`
}

// =========== Outgoing events Storefront -> orders.events ===========

type OrderPlacedLine struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type OrderPlacedEvent struct {
	primitives.BaseEvent
	OrderID     uuid.UUID         `json:"orderId"`
	UserID      uuid.UUID         `json:"userId"`
	PaymentType string            `json:"paymentType"`
	PlacedAtUtc time.Time         `json:"placedAtUtc"`
	Lines       []OrderPlacedLine `json:"lines"`
}

func NewOrderPlacedEvent(orderID, userID uuid.UUID, payment string, lines []OrderPlacedLine) *OrderPlacedEvent {
	ev := &OrderPlacedEvent{
		BaseEvent:   primitives.NewBaseEvent(),
		OrderID:     orderID,
		UserID:      userID,
		PaymentType: payment,
		PlacedAtUtc: time.Now().UTC(),
		Lines:       lines,
	}
	ev.SetRoutingKey("OrderPlacedEvent")
	return ev
}
