package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// PgOutboxRepository stores integration events written in the same unit of
// work as the order that produced them.
type PgOutboxRepository struct {
	db *sql.DB
}

func NewPgOutboxRepository(db *sql.DB) *PgOutboxRepository {
	return &PgOutboxRepository{db: db}
}

func (r *PgOutboxRepository) Insert(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.OccurredAtUtc == 0 {
		msg.OccurredAtUtc = time.Now().UTC().Unix()
	}

	query := `
        insert into outbox_messages
        (id, type, payload_json, occurred_at_utc, retry_count, processed_at_utc)
        values ($1,$2,$3,to_timestamp($4),$5,null)
    `
	_, err := r.db.ExecContext(
		ctx, query,
		msg.ID,
		msg.Type,
		msg.PayloadJSON,
		msg.OccurredAtUtc,
		msg.RetryCount,
	)
	return err
}

// GetPendingBatch returns unprocessed messages that still have retries left,
// oldest first.
func (r *PgOutboxRepository) GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]domain.OutboxMessage, error) {
	query := `
        select id, type, payload_json,
               extract(epoch from occurred_at_utc)::float8,
               retry_count,
               processed_at_utc
        from outbox_messages
        where processed_at_utc is null
          and retry_count < $1
        order by occurred_at_utc asc
        limit $2
    `
	rows, err := r.db.QueryContext(ctx, query, maxRetry, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		var occurredSec float64
		var processedAt sql.NullTime
		if err := rows.Scan(
			&msg.ID,
			&msg.Type,
			&msg.PayloadJSON,
			&occurredSec,
			&msg.RetryCount,
			&processedAt,
		); err != nil {
			return nil, err
		}
		msg.OccurredAtUtc = int64(occurredSec)
		if processedAt.Valid {
			sec := processedAt.Time.Unix()
			msg.ProcessedAtUtc = &sec
		}
		batch = append(batch, msg)
	}
	return batch, rows.Err()
}

func (r *PgOutboxRepository) Save(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == uuid.Nil {
		return errors.New("outbox message id is empty")
	}

	// A typed NULL keeps the driver from guessing the type of $3.
	var processed sql.NullFloat64
	if msg.ProcessedAtUtc != nil {
		processed = sql.NullFloat64{Float64: float64(*msg.ProcessedAtUtc), Valid: true}
	}

	query := `
        update outbox_messages
        set retry_count = $2,
            processed_at_utc = coalesce(to_timestamp($3), processed_at_utc)
        where id = $1
    `
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.RetryCount, processed)
	return err
}
