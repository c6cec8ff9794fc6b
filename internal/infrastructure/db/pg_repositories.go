package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// Users

type PgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, public_id, name, email, password_hash, created_at_utc`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.PublicID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAtUtc,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `select ` + userColumns + ` from users where lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `select ` + userColumns + ` from users where id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PgUserRepository) Insert(ctx context.Context, u *domain.User) error {
	if u.PublicID == uuid.Nil {
		u.PublicID = uuid.New()
	}
	if u.CreatedAtUtc.IsZero() {
		u.CreatedAtUtc = time.Now().UTC()
	}

	query := `
        insert into users (public_id, name, email, password_hash, created_at_utc)
        values ($1,$2,$3,$4,$5)
        returning id
    `
	err := r.db.QueryRowContext(
		ctx, query,
		u.PublicID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.CreatedAtUtc,
	).Scan(&u.ID)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// Products

type PgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) *PgProductRepository {
	return &PgProductRepository{db: db}
}

const productColumns = `id, coalesce(sku, ''), name, description, category, price::float8, image_url, created_at_utc`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Sku,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.ImageURL,
		&p.CreatedAtUtc,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `select ` + productColumns + ` from products order by id desc`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `select ` + productColumns + ` from products where id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// FindByName matches on the lower-cased, whitespace-collapsed name. name is
// expected to be normalized the same way already. The newest row wins.
func (r *PgProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `
        select ` + productColumns + `
        from products
        where lower(regexp_replace(btrim(name), '\s+', ' ', 'g')) = $1
        order by id desc
        limit 1
    `
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PgProductRepository) UpsertBySku(ctx context.Context, p *domain.Product) error {
	if p.CreatedAtUtc.IsZero() {
		p.CreatedAtUtc = time.Now().UTC()
	}

	query := `
        insert into products (sku, name, description, category, price, image_url, created_at_utc)
        values ($1,$2,$3,$4,$5,$6,$7)
        on conflict (sku) do update
        set name = excluded.name,
            description = excluded.description,
            price = excluded.price,
            image_url = excluded.image_url
        returning id
    `
	return r.db.QueryRowContext(
		ctx, query,
		p.Sku,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.ImageURL,
		p.CreatedAtUtc,
	).Scan(&p.ID)
}

// Orders

type PgOrderRepository struct {
	db *sql.DB
}

func NewPgOrderRepository(db *sql.DB) *PgOrderRepository {
	return &PgOrderRepository{db: db}
}

func (r *PgOrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if o.PublicID == uuid.Nil {
		o.PublicID = uuid.New()
	}

	query := `
        insert into orders
        (public_id, user_id, product_id, quantity, address, phone, payment_type,
         status, status_reason, created_at_utc, updated_at_utc)
        values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        returning id
    `
	return r.db.QueryRowContext(
		ctx, query,
		o.PublicID,
		o.UserID,
		o.ProductID,
		o.Quantity,
		o.Address,
		o.Phone,
		o.PaymentType,
		string(o.Status),
		o.StatusReason,
		o.CreatedAtUtc,
		o.UpdatedAtUtc,
	).Scan(&o.ID)
}

func (r *PgOrderRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Order, error) {
	query := `
        select id, public_id, user_id, coalesce(product_id, 0), quantity, address, phone,
               payment_type, status, status_reason, created_at_utc, updated_at_utc
        from orders
        where public_id = $1
    `
	var o domain.Order
	var status string
	err := r.db.QueryRowContext(ctx, query, publicID).Scan(
		&o.ID,
		&o.PublicID,
		&o.UserID,
		&o.ProductID,
		&o.Quantity,
		&o.Address,
		&o.Phone,
		&o.PaymentType,
		&status,
		&o.StatusReason,
		&o.CreatedAtUtc,
		&o.UpdatedAtUtc,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (r *PgOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.OrderView, error) {
	query := `
        select o.id, o.public_id, o.user_id, coalesce(o.product_id, 0), o.quantity, o.address,
               o.phone, o.payment_type, o.status, o.status_reason, o.created_at_utc, o.updated_at_utc,
               p.name, p.price::float8
        from orders o
        left join products p on p.id = o.product_id
        where o.user_id = $1
        order by o.created_at_utc desc
    `
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.OrderView{}
	for rows.Next() {
		var v domain.OrderView
		var status string
		var productName sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(
			&v.ID,
			&v.PublicID,
			&v.UserID,
			&v.ProductID,
			&v.Quantity,
			&v.Address,
			&v.Phone,
			&v.PaymentType,
			&status,
			&v.StatusReason,
			&v.CreatedAtUtc,
			&v.UpdatedAtUtc,
			&productName,
			&price,
		); err != nil {
			return nil, err
		}
		v.Status = domain.OrderStatus(status)
		if productName.Valid {
			name := productName.String
			v.ProductName = &name
		}
		if price.Valid {
			pr := price.Float64
			v.Price = &pr
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *PgOrderRepository) UpdateStatus(ctx context.Context, o *domain.Order) error {
	query := `
        update orders
        set status = $2,
            status_reason = $3,
            updated_at_utc = $4
        where id = $1
    `
	_, err := r.db.ExecContext(
		ctx, query,
		o.ID,
		string(o.Status),
		o.StatusReason,
		o.UpdatedAtUtc,
	)
	return err
}

// isUniqueViolation matches SQLSTATE 23505 without importing pgconn types
// into the repositories.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
