package application

import (
	"sync"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
)

// BatchStore owns the active order batch. Refreshes replace the whole
// slice with re-derived clones, so concurrent readers observe either
// the pre-tick or the post-tick state, never a half-updated record.
type BatchStore struct {
	mu      sync.RWMutex
	orders  []*domain.Order
	quality QualitySummary
	batchID string
}

// NewBatchStore creates an empty store
func NewBatchStore() *BatchStore {
	return &BatchStore{}
}

// ReplaceBatch installs a newly ingested batch, discarding the
// previous one wholesale.
func (s *BatchStore) ReplaceBatch(batchID string, orders []*domain.Order, quality QualitySummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchID = batchID
	s.orders = orders
	s.quality = quality
}

// Snapshot returns the current batch. The slice is shared with the
// store but never mutated after installation; callers treat it as
// read-only.
func (s *BatchStore) Snapshot() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders
}

// Quality returns the quality summary of the active batch
func (s *BatchStore) Quality() QualitySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quality
}

// BatchID returns the id of the active batch
func (s *BatchStore) BatchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchID
}

// Len returns the number of orders in the active batch
func (s *BatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Refresh re-derives every order against the given instant and swaps
// in the recomputed batch. It returns the new snapshot together with
// the orders that crossed into expired on this pass.
func (s *BatchStore) Refresh(matrix *domain.PolicyMatrix, now time.Time) ([]*domain.Order, []*domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refreshed := make([]*domain.Order, len(s.orders))
	var newlyBreached []*domain.Order

	for i, order := range s.orders {
		clone := order.Clone()
		wasExpired := clone.SLA.Level == domain.SLALevelExpired
		clone.ApplyDerivedState(domain.DeriveOrderState(clone, matrix, now), now)
		if !wasExpired && clone.SLA.Level == domain.SLALevelExpired {
			newlyBreached = append(newlyBreached, clone)
		}
		refreshed[i] = clone
	}

	SortByTimeRemaining(refreshed)
	s.orders = refreshed

	return refreshed, newlyBreached
}

// Confirm marks the orders with the given ids as confirmed and swaps
// in an updated batch. Already confirmed and unknown ids are skipped;
// the count of orders actually confirmed is returned.
func (s *BatchStore) Confirm(orderIDs []string, at time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}

	updated := make([]*domain.Order, len(s.orders))
	confirmed := 0
	for i, order := range s.orders {
		if _, ok := wanted[order.OrderID]; !ok {
			updated[i] = order
			continue
		}
		clone := order.Clone()
		if err := clone.Confirm(at); err == nil {
			confirmed++
		}
		updated[i] = clone
	}

	s.orders = updated
	return confirmed
}
