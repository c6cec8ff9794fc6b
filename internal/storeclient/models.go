package storeclient

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Sku         string    `json:"sku,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OrderRequest is the POST /api/orders body. Either ProductID or ProductName
// is set; with only a name the server resolves the product itself.
type OrderRequest struct {
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	PaymentType string `json:"payment_type"`
}

type OrderReceipt struct {
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

type Order struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName *string   `json:"product_name"`
	Price       *float64  `json:"price"`
	Quantity    int       `json:"quantity"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	PaymentType string    `json:"payment_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
