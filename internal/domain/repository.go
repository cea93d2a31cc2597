package domain

import (
	"context"
	"time"
)

// OrderRepository persists ingested batches for audit and restart
// recovery. The in-memory store remains the read path for queries.
type OrderRepository interface {
	SaveBatch(ctx context.Context, orders []*Order) error
	FindByBatch(ctx context.Context, batchID string) ([]*Order, error)
	ConfirmOrders(ctx context.Context, orderIDs []string, at time.Time) (int64, error)
}

// EventPublisher pushes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
