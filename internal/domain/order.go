package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderRejected  OrderStatus = "REJECTED"
)

const DefaultPaymentType = "not specified"

type Order struct {
	ID           int64
	PublicID     uuid.UUID
	UserID       int64
	ProductID    int64
	Quantity     int
	Address      string
	Phone        string
	PaymentType  string
	Status       OrderStatus
	StatusReason string
	CreatedAtUtc time.Time
	UpdatedAtUtc time.Time
}

// OrderView is an order joined with the product it references; the product
// may have been removed from the catalog since.
type OrderView struct {
	Order
	ProductName *string
	Price       *float64
}

func NewOrder(userID, productID int64, quantity int, address, phone, payment string) *Order {
	now := time.Now().UTC()
	if payment == "" {
		payment = DefaultPaymentType
	}
	return &Order{
		PublicID:     uuid.New(),
		UserID:       userID,
		ProductID:    productID,
		Quantity:     quantity,
		Address:      address,
		Phone:        phone,
		PaymentType:  payment,
		Status:       OrderPending,
		CreatedAtUtc: now,
		UpdatedAtUtc: now,
	}
}

func (o *Order) MarkConfirmed() bool {
	if o.Status != OrderPending {
		return false
	}
	o.Status = OrderConfirmed
	o.UpdatedAtUtc = time.Now().UTC()
	return true
}

func (o *Order) MarkRejected(reason string) bool {
	if o.Status != OrderPending {
		return false
	}
	o.Status = OrderRejected
	o.StatusReason = reason
	o.UpdatedAtUtc = time.Now().UTC()
	return true
}
