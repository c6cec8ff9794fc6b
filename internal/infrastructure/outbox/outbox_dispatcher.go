package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// Publisher is the slice of the event bus the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, ev primitives.Event) error
}

type Dispatcher struct {
	repo      domain.OutboxRepository
	bus       Publisher
	maxRetry  int
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

func NewDispatcher(
	repo domain.OutboxRepository,
	bus Publisher,
	maxRetry, batchSize int,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		repo:      repo,
		bus:       bus,
		maxRetry:  maxRetry,
		batchSize: batchSize,
		logger:    logger.Named("outbox"),
		now:       time.Now,
	}
}

// DispatchOnce publishes one batch of pending messages wrapped in the
// standard integration envelope. Failures bump the retry count; messages
// that run out of retries stay in the table unprocessed.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	msgs, err := d.repo.GetPendingBatch(ctx, d.maxRetry, d.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for i := range msgs {
		msg := &msgs[i]

		if !json.Valid([]byte(msg.PayloadJSON)) {
			d.logger.Warn("payload is not valid JSON", zap.String("id", msg.ID.String()), zap.String("type", msg.Type))
			msg.RetryCount++
			d.save(ctx, msg)
			continue
		}

		envelope := primitives.NewIntegrationEventEnvelope(msg.Type, msg.PayloadJSON)
		envelope.SetRoutingKey(msg.Type)

		if err := d.bus.Publish(ctx, &envelope); err != nil {
			msg.RetryCount++
			d.logger.Warn("publish failed",
				zap.String("id", msg.ID.String()),
				zap.String("type", msg.Type),
				zap.Int("retry_count", msg.RetryCount),
				zap.Error(err))
		} else {
			now := d.now().UTC().Unix()
			msg.ProcessedAtUtc = &now
			published++
		}
		d.save(ctx, msg)
	}
	return published, nil
}

func (d *Dispatcher) save(ctx context.Context, msg *domain.OutboxMessage) {
	if err := d.repo.Save(ctx, *msg); err != nil {
		d.logger.Error("save outbox message failed", zap.String("id", msg.ID.String()), zap.Error(err))
	}
}
