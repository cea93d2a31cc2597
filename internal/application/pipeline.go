package application

import (
	"math"
	"sort"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
)

// QualitySummary reports per-batch normalization outcomes. Records are
// never silently dropped; every exclusion shows up in Errors or
// Duplicates.
type QualitySummary struct {
	Total      int `json:"total"`
	Clean      int `json:"clean"`
	Errors     int `json:"errors"`
	Duplicates int `json:"duplicates"`
	Cleaned    int `json:"cleaned"`
}

// PipelineResult is the outcome of one ingest run
type PipelineResult struct {
	Orders  []*domain.Order `json:"orders"`
	Quality QualitySummary  `json:"quality"`
}

// Pipeline runs normalize, carrier suggestion and state derivation
// over a raw batch.
type Pipeline struct {
	normalizer *Normalizer
	matrix     *domain.PolicyMatrix
	now        func() time.Time
}

// NewPipeline creates a pipeline against a policy matrix
func NewPipeline(matrix *domain.PolicyMatrix, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		normalizer: NewNormalizer(now),
		matrix:     matrix,
		now:        now,
	}
}

// Process enriches a raw batch. Duplicate order ids keep their first
// occurrence; later collisions are counted and excluded. The canonical
// output order is ascending remaining time, unknown-policy orders last.
func (p *Pipeline) Process(rawRecords []map[string]any, batchID string) PipelineResult {
	now := p.now().UTC()
	orders := make([]*domain.Order, 0, len(rawRecords))
	seen := make(map[string]struct{}, len(rawRecords))
	quality := QualitySummary{Total: len(rawRecords)}

	for i, raw := range rawRecords {
		order, err := p.normalizer.Normalize(raw, i)
		if err != nil {
			quality.Errors++
			continue
		}

		if _, dup := seen[order.OrderID]; dup {
			quality.Duplicates++
			continue
		}
		seen[order.OrderID] = struct{}{}

		order.BatchID = batchID
		order.SuggestedCarrier = domain.SuggestCarrier(order.Platform, order.OrderValue)
		order.ApplyDerivedState(domain.DeriveOrderState(order, p.matrix, now), now)

		if order.NeedsCleaning {
			quality.Cleaned++
		}
		quality.Clean++
		orders = append(orders, order)
	}

	SortByTimeRemaining(orders)

	return PipelineResult{Orders: orders, Quality: quality}
}

// SortByTimeRemaining orders a batch ascending by remaining time, the
// pipeline's canonical output order. +Inf sorts last, ties keep their
// relative order.
func SortByTimeRemaining(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i].TimeRemainingHours, orders[j].TimeRemainingHours
		if math.IsInf(a, 1) {
			return false
		}
		if math.IsInf(b, 1) {
			return true
		}
		return a < b
	})
}
