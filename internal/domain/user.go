package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           int64
	PublicID     uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAtUtc time.Time
}

func NewUser(name, email, passwordHash string) *User {
	return &User{
		PublicID:     uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAtUtc: time.Now().UTC(),
	}
}

// Principal is the authenticated caller carried by a bearer token.
type Principal struct {
	UserID   int64
	PublicID uuid.UUID
	Email    string
}
