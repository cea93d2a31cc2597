package kafka

import (
	"context"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/kafka"
	"github.com/wms-platform/sla-service/pkg/logging"
	"github.com/wms-platform/sla-service/pkg/metrics"
	"github.com/wms-platform/sla-service/pkg/resilience"
)

const eventSource = "sla-service"

// EventPublisher publishes domain events, one topic per event type.
// A circuit breaker keeps a broken broker from wedging the refresher
// during an alert storm.
type EventPublisher struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewEventPublisher wires the publisher
func NewEventPublisher(producer *kafka.Producer, breaker *resilience.CircuitBreaker, logger *logging.Logger, m *metrics.Metrics) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		breaker:  breaker,
		logger:   logger.WithComponent("event_publisher"),
		metrics:  m,
	}
}

// Publish sends one event to the topic named after its type
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	topic := event.EventType()
	envelope := kafka.NewEnvelope(event.EventType(), eventSource, event.Subject(), event)

	started := time.Now()
	_, err := p.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, topic, envelope)
	})
	duration := time.Since(started)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.EventType(), err == nil, duration)
	}
	p.logger.KafkaPublish(ctx, topic, event.EventType(), err == nil, duration)

	return err
}

// PublishAll sends a slice of events, stopping at the first failure
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying producer
func (p *EventPublisher) Close() error {
	return p.producer.Close()
}
