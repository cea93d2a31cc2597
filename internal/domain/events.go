package domain

import "time"

// Event types published to Kafka.
const (
	EventTypeOrderBreached = "sla.order.breached"
	EventTypeBatchIngested = "sla.batch.ingested"
)

// DomainEvent is implemented by everything the service publishes.
type DomainEvent interface {
	EventType() string
	Subject() string
}

// SLABreachedEvent is emitted when a refresh tick moves an order into
// the expired level. It fires once per transition, not on every tick.
type SLABreachedEvent struct {
	OrderID       string    `json:"orderId"`
	CustomerName  string    `json:"customerName"`
	Platform      Platform  `json:"platform"`
	Carrier       string    `json:"suggestedCarrier"`
	OrderValue    float64   `json:"orderValue"`
	OrderTime     time.Time `json:"orderTime"`
	PriorityScore float64   `json:"priorityScore"`
	BreachedAt    time.Time `json:"breachedAt"`
}

func (e SLABreachedEvent) EventType() string { return EventTypeOrderBreached }
func (e SLABreachedEvent) Subject() string   { return e.OrderID }

// NewSLABreachedEvent captures the order state at the moment the
// breach was detected.
func NewSLABreachedEvent(order *Order, at time.Time) SLABreachedEvent {
	return SLABreachedEvent{
		OrderID:       order.OrderID,
		CustomerName:  order.CustomerName,
		Platform:      order.Platform,
		Carrier:       order.SuggestedCarrier,
		OrderValue:    order.OrderValue,
		OrderTime:     order.OrderTime,
		PriorityScore: order.Priority,
		BreachedAt:    at,
	}
}

// BatchIngestedEvent summarizes the outcome of one ingest run.
type BatchIngestedEvent struct {
	BatchID    string    `json:"batchId"`
	Total      int       `json:"total"`
	Clean      int       `json:"clean"`
	Errors     int       `json:"errors"`
	Duplicates int       `json:"duplicates"`
	IngestedAt time.Time `json:"ingestedAt"`
}

func (e BatchIngestedEvent) EventType() string { return EventTypeBatchIngested }
func (e BatchIngestedEvent) Subject() string   { return e.BatchID }
