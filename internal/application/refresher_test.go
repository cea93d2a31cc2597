package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/logging"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("sla-service-test")
	config.Output = io.Discard
	return logging.New(config)
}

type capturedEvents struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	err    error
}

func (c *capturedEvents) Publish(_ context.Context, event domain.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := c.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (c *capturedEvents) all() []domain.DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.DomainEvent(nil), c.events...)
}

func TestRefresherLifecycle(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store, matrix := storeFixture(t, now)
	refresher := NewRefresher(store, matrix, nil, testLogger(), nil, time.Hour, fixedClock(now))

	t.Run("double start is rejected", func(t *testing.T) {
		require.NoError(t, refresher.Start(context.Background()))
		assert.True(t, refresher.Running())

		err := refresher.Start(context.Background())
		assert.ErrorContains(t, err, "already running")

		refresher.Stop()
		assert.False(t, refresher.Running())
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		refresher.Stop()
		refresher.Stop()
		assert.False(t, refresher.Running())
	})

	t.Run("restart after stop works", func(t *testing.T) {
		require.NoError(t, refresher.Start(context.Background()))
		refresher.Stop()
	})
}

func TestRefresherTick(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store, matrix := storeFixture(t, now)
	publisher := &capturedEvents{}

	// the clock jumps two hours past ingest, so ORD-A breaches on the
	// first tick
	clock := fixedClock(now.Add(2 * time.Hour))
	refresher := NewRefresher(store, matrix, publisher, testLogger(), nil, 5*time.Millisecond, clock)

	ticks := make(chan Summary, 1)
	refresher.OnTick = func(orders []*domain.Order, summary Summary, at time.Time) {
		select {
		case ticks <- summary:
		default:
		}
	}

	require.NoError(t, refresher.Start(context.Background()))
	defer refresher.Stop()

	select {
	case summary := <-ticks:
		assert.Equal(t, 1, summary.ExpiredCount)
		assert.Equal(t, 1, summary.SafeCount)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick observed")
	}

	assert.Eventually(t, func() bool {
		events := publisher.all()
		return len(events) == 1 && events[0].EventType() == domain.EventTypeOrderBreached
	}, 2*time.Second, 10*time.Millisecond)

	// breach events fire on the transition only, later ticks stay quiet
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, publisher.all(), 1)
}

func TestRefresherContextCancel(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store, matrix := storeFixture(t, now)
	refresher := NewRefresher(store, matrix, nil, testLogger(), nil, 5*time.Millisecond, fixedClock(now))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, refresher.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool {
		return !refresher.Running()
	}, 2*time.Second, 10*time.Millisecond)
}
