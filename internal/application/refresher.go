package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/logging"
	"github.com/wms-platform/sla-service/pkg/metrics"
)

// TickFunc receives the recomputed batch after every completed pass
type TickFunc func(orders []*domain.Order, summary Summary, at time.Time)

// Refresher periodically re-derives the active batch against the wall
// clock. One ticker per instance; Start rejects a second concurrent
// run and Stop may be called any number of times.
type Refresher struct {
	store     *BatchStore
	matrix    *domain.PolicyMatrix
	publisher domain.EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	now       func() time.Time

	// OnTick, when set, is invoked after each completed pass with a
	// consistent post-tick view.
	OnTick TickFunc

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewRefresher creates a refresher. A nil clock falls back to
// time.Now; the clock is only consulted at tick boundaries.
func NewRefresher(
	store *BatchStore,
	matrix *domain.PolicyMatrix,
	publisher domain.EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
	interval time.Duration,
	now func() time.Time,
) *Refresher {
	if now == nil {
		now = time.Now
	}
	return &Refresher{
		store:     store,
		matrix:    matrix,
		publisher: publisher,
		logger:    logger.WithComponent("refresher"),
		metrics:   m,
		interval:  interval,
		now:       now,
	}
}

// Start launches the tick loop. Starting an already running refresher
// is an error; the existing loop keeps ticking.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("refresher already running")
	}

	r.running = true
	r.stopChan = make(chan struct{})
	r.doneChan = make(chan struct{})

	r.logger.Info("refresher started", "interval", r.interval.String())
	go r.loop(ctx, r.stopChan, r.doneChan)

	return nil
}

// Stop terminates the tick loop and waits for a pass in flight to
// finish. Stopping an idle refresher is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopChan)
	done := r.doneChan
	r.mu.Unlock()

	<-done
	r.logger.Info("refresher stopped")
}

// Running reports whether the tick loop is active
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Interval returns the configured tick interval
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

func (r *Refresher) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.markStopped()
			return
		case <-stop:
			return
		case <-ticker.C:
			// A tick already queued when Stop is called must not fire
			select {
			case <-stop:
				return
			default:
			}
			r.tick(ctx)
		}
	}
}

// markStopped clears the running flag when the loop exits through
// context cancellation rather than Stop
func (r *Refresher) markStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

// tick runs one full recomputation pass. The pass completes before
// OnTick fires, so the callback always sees a consistent batch.
func (r *Refresher) tick(ctx context.Context) {
	started := r.now()
	now := started.UTC()

	orders, newlyBreached := r.store.Refresh(r.matrix, now)
	summary := Summarize(orders)

	r.publishBreaches(ctx, newlyBreached, now)

	if r.metrics != nil {
		r.metrics.RecordRefreshTick()
		r.metrics.SetOrdersByLevel(map[string]int{
			string(domain.SLALevelExpired): summary.ExpiredCount,
			string(domain.SLALevelWarning): summary.WarningCount,
			string(domain.SLALevelSafe):    summary.SafeCount,
			string(domain.SLALevelUnknown): summary.UnknownCount,
		})
	}

	r.logger.RefreshTick(ctx, len(orders), len(newlyBreached), r.now().Sub(started))

	if r.OnTick != nil {
		r.OnTick(orders, summary, now)
	}
}

// publishBreaches emits one breach event per newly expired order.
// Publish failures are logged and never interrupt the tick.
func (r *Refresher) publishBreaches(ctx context.Context, breached []*domain.Order, now time.Time) {
	if r.publisher == nil {
		return
	}

	for _, order := range breached {
		event := domain.NewSLABreachedEvent(order, now)
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.WithError(err).Error("failed to publish breach event",
				"orderId", order.OrderID)
			continue
		}
		if r.metrics != nil {
			r.metrics.RecordSLABreach(string(order.Platform))
		}
	}
}
