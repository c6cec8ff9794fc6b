package domain

import "errors"

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 6

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("wrong password")
	ErrMissingFields      = errors.New("fill all fields")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrBadOrder           = errors.New("bad order data")
	ErrProductNotFound    = errors.New("product not found")
	ErrUnauthorized       = errors.New("unauthorized")
)
