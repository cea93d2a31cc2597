package application

import (
	"math"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
)

// OrderDTO is the wire representation of an enriched order.
// TimeRemainingHours is nil when no policy entry applies, since the
// internal +Inf sentinel has no JSON encoding.
type OrderDTO struct {
	OrderID            string     `json:"orderId"`
	CustomerName       string     `json:"customerName"`
	Platform           string     `json:"platform"`
	OrderValue         float64    `json:"orderValue"`
	OrderTime          time.Time  `json:"orderTime"`
	SuggestedCarrier   string     `json:"suggestedCarrier"`
	SLALevel           string     `json:"slaLevel"`
	Urgency            string     `json:"urgency"`
	TimeRemainingHours *float64   `json:"timeRemainingHours"`
	Priority           float64    `json:"priority"`
	Status             string     `json:"status"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	NeedsCleaning      bool       `json:"needsCleaning"`
	BatchID            string     `json:"batchId"`
}

// ToOrderDTO maps a domain order to its wire form
func ToOrderDTO(order *domain.Order) OrderDTO {
	dto := OrderDTO{
		OrderID:          order.OrderID,
		CustomerName:     order.CustomerName,
		Platform:         string(order.Platform),
		OrderValue:       order.OrderValue,
		OrderTime:        order.OrderTime,
		SuggestedCarrier: order.SuggestedCarrier,
		SLALevel:         string(order.SLA.Level),
		Urgency:          string(order.SLA.Urgency),
		Priority:         order.Priority,
		Status:           string(order.Status),
		ConfirmedAt:      order.ConfirmedAt,
		NeedsCleaning:    order.NeedsCleaning,
		BatchID:          order.BatchID,
	}
	if !math.IsInf(order.TimeRemainingHours, 1) {
		remaining := order.TimeRemainingHours
		dto.TimeRemainingHours = &remaining
	}
	return dto
}

// ToOrderDTOs maps a batch
func ToOrderDTOs(orders []*domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = ToOrderDTO(order)
	}
	return dtos
}

// IngestResult is returned from ingest and demo-data runs
type IngestResult struct {
	BatchID string         `json:"batchId"`
	Orders  []OrderDTO     `json:"orders"`
	Quality QualitySummary `json:"quality"`
}

// RefresherStatus describes the tick loop for the control endpoints
type RefresherStatus struct {
	Running    bool   `json:"running"`
	IntervalMs int64  `json:"intervalMs"`
	BatchSize  int    `json:"batchSize"`
	BatchID    string `json:"batchId"`
}
