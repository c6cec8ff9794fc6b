package application

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// OutboxWriter records integration events for the dispatcher to publish.
type OutboxWriter interface {
	Enqueue(ctx context.Context, ev primitives.Event) error
}

type outboxWriter struct {
	repo domain.OutboxRepository
	now  func() time.Time
}

func NewOutboxWriter(repo domain.OutboxRepository) OutboxWriter {
	return &outboxWriter{repo: repo, now: time.Now}
}

func (w *outboxWriter) Enqueue(ctx context.Context, ev primitives.Event) error {
	if ev == nil {
		return fmt.Errorf("enqueue: nil event")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventTypeOf(ev), err)
	}

	msg := domain.OutboxMessage{
		ID:            uuid.New(),
		Type:          eventTypeOf(ev),
		PayloadJSON:   string(payload),
		OccurredAtUtc: w.now().UTC().Unix(),
	}
	return w.repo.Insert(ctx, msg)
}

// eventTypeOf prefers the routing key and falls back to the Go type name.
func eventTypeOf(ev primitives.Event) string {
	if key := ev.GetRoutingKey(); key != "" {
		return key
	}
	t := reflect.TypeOf(ev)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
