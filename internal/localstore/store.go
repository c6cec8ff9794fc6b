// Package localstore is the storefront client's durable local state: the
// signed-in session and orders that could not be sent to the store API.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/localstore/migrations"
)

const (
	sessionTokenKey = "token"
	sessionUserKey  = "user"
)

// Order is an order recorded on this machine because it could not be
// submitted to the store. A human reconciles these later.
type Order struct {
	ID          string `json:"id"`
	UserID      *int64 `json:"userId,omitempty"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Payment     string `json:"payment"`
	CreatedAtMs int64  `json:"createdAtEpochMs"`
}

type SessionUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the SQLite file at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("local store path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("create local store dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendOrder adds o at the end of the local order list. A zero CreatedAtMs
// is stamped with the current time.
func (s *Store) AppendOrder(ctx context.Context, o Order) error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("local order id is required")
	}
	if o.CreatedAtMs == 0 {
		o.CreatedAtMs = s.now().UTC().UnixMilli()
	}

	var userID sql.NullInt64
	if o.UserID != nil {
		userID = sql.NullInt64{Int64: *o.UserID, Valid: true}
	}

	q := `
        insert into local_orders
        (id, user_id, product_id, product_name, quantity, name, phone, address, payment, created_at_ms)
        values (?,?,?,?,?,?,?,?,?,?)
    `
	if _, err := s.sqlDB.ExecContext(ctx, q,
		o.ID, userID, o.ProductID, o.ProductName, o.Quantity,
		o.Name, o.Phone, o.Address, o.Payment, o.CreatedAtMs,
	); err != nil {
		return fmt.Errorf("insert local order %s: %w", o.ID, err)
	}
	return nil
}

// ListOrders returns local orders in the order they were appended.
func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	q := `
        select id, user_id, product_id, product_name, quantity, name, phone, address, payment, created_at_ms
        from local_orders
        order by seq asc
    `
	rows, err := s.sqlDB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query local orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var userID sql.NullInt64
		if err := rows.Scan(
			&o.ID, &userID, &o.ProductID, &o.ProductName, &o.Quantity,
			&o.Name, &o.Phone, &o.Address, &o.Payment, &o.CreatedAtMs,
		); err != nil {
			return nil, fmt.Errorf("scan local order: %w", err)
		}
		if userID.Valid {
			id := userID.Int64
			o.UserID = &id
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetSession stores the bearer token and user returned by login or register.
func (s *Store) SetSession(ctx context.Context, token string, user SessionUser) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := `
        insert into session (name, value, updated_at) values (?,?,?)
        on conflict (name) do update set value = excluded.value, updated_at = excluded.updated_at
    `
	now := s.now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, q, sessionTokenKey, token, now); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, q, sessionUserKey, string(userJSON), now); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `delete from session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.sessionValue(ctx, sessionTokenKey)
	if err != nil {
		return "", err
	}
	return v, nil
}

// User returns the stored user, or nil when signed out or unreadable.
func (s *Store) User(ctx context.Context) (*SessionUser, error) {
	v, err := s.sessionValue(ctx, sessionUserKey)
	if err != nil || v == "" {
		return nil, err
	}
	var u SessionUser
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &u, nil
}

func (s *Store) sessionValue(ctx context.Context, key string) (string, error) {
	var v string
	err := s.sqlDB.QueryRowContext(ctx, `select value from session where name = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session %s: %w", key, err)
	}
	return v, nil
}
