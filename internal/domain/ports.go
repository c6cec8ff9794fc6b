package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Insert(ctx context.Context, u *User) error
}

type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	UpsertBySku(ctx context.Context, p *Product) error
}

type OrderRepository interface {
	Insert(ctx context.Context, o *Order) error
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]OrderView, error)
	UpdateStatus(ctx context.Context, o *Order) error
}

type OutboxRepository interface {
	Insert(ctx context.Context, msg OutboxMessage) error
	GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]OutboxMessage, error)
	Save(ctx context.Context, msg OutboxMessage) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(p Principal) (string, error)
	Verify(token string) (Principal, error)
}

type OutboxMessage struct {
	ID             uuid.UUID
	Type           string
	PayloadJSON    string
	OccurredAtUtc  int64 // unix seconds
	RetryCount     int
	ProcessedAtUtc *int64
}
