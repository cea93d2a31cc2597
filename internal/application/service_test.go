package application

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/api"
)

type fakeRepository struct {
	mu        sync.Mutex
	saved     []*domain.Order
	confirmed []string
}

func (r *fakeRepository) SaveBatch(_ context.Context, orders []*domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = orders
	return nil
}

func (r *fakeRepository) FindByBatch(context.Context, string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, nil
}

func (r *fakeRepository) ConfirmOrders(_ context.Context, orderIDs []string, _ time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = orderIDs
	return int64(len(orderIDs)), nil
}

func newTestService(t *testing.T, now time.Time) (*SLAService, *fakeRepository, *capturedEvents) {
	t.Helper()
	repo := &fakeRepository{}
	publisher := &capturedEvents{}
	service := NewSLAService(
		NewBatchStore(),
		domain.DefaultPolicyMatrix(),
		repo,
		publisher,
		testLogger(),
		nil,
		fixedClock(now),
	)
	return service, repo, publisher
}

func TestSLAServiceIngestOrders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, repo, publisher := newTestService(t, now)

	result := service.IngestOrders(context.Background(), []map[string]any{
		{"orderId": "ORD-1", "customerName": "An", "platform": "tiktok", "orderValue": 800_000.0, "orderTime": now.Add(-time.Hour).Format(time.RFC3339)},
		{"orderId": "ORD-2", "customerName": "Bich", "platform": "shopee", "orderValue": 300_000.0, "orderTime": now.Add(-46 * time.Hour).Format(time.RFC3339)},
	})

	require.Len(t, result.Orders, 2)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.Quality.Clean)

	// canonical order: ORD-2 has 2h left on its 48h deadline
	assert.Equal(t, "ORD-2", result.Orders[0].OrderID)
	require.NotNil(t, result.Orders[0].TimeRemainingHours)
	assert.InDelta(t, 2.0, *result.Orders[0].TimeRemainingHours, 1e-9)

	// batch mirrored and announced
	assert.Len(t, repo.saved, 2)
	events := publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeBatchIngested, events[0].EventType())

	// a second ingest replaces the batch wholesale
	service.IngestOrders(context.Background(), []map[string]any{
		{"orderId": "ORD-3", "customerName": "Cuong", "platform": "website", "orderValue": 100_000.0, "orderTime": now.Format(time.RFC3339)},
	})
	assert.Equal(t, 1, service.GetQuality().Total)
}

func TestSLAServiceGenerateDemoOrders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, _, _ := newTestService(t, now)

	result := service.GenerateDemoOrders(context.Background(), 50)

	assert.Equal(t, 50, result.Quality.Total)
	assert.Equal(t, 50, result.Quality.Clean+result.Quality.Errors+result.Quality.Duplicates)
	assert.NotEmpty(t, result.Orders)
}

func TestSLAServiceListOrders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, _, _ := newTestService(t, now)
	service.GenerateDemoOrders(context.Background(), 30)

	page := service.ListOrders(FilterSpec{}, SortSpec{Field: "priority", Direction: "desc"}, api.PageRequest{Page: 1, PageSize: 10})

	assert.Len(t, page.Data, 10)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	for i := 1; i < len(page.Data); i++ {
		assert.GreaterOrEqual(t, page.Data[i-1].Priority, page.Data[i].Priority)
	}

	filtered := service.ListOrders(FilterSpec{Platform: "tiktok"}, SortSpec{}, api.PageRequest{Page: 1, PageSize: 50})
	for _, order := range filtered.Data {
		assert.Equal(t, "tiktok", order.Platform)
	}
}

func TestSLAServiceConfirmOrders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, repo, _ := newTestService(t, now)
	service.IngestOrders(context.Background(), []map[string]any{
		{"orderId": "ORD-1", "customerName": "An", "platform": "tiktok", "orderValue": 800_000.0, "orderTime": now.Format(time.RFC3339)},
		{"orderId": "ORD-2", "customerName": "Bich", "platform": "shopee", "orderValue": 300_000.0, "orderTime": now.Format(time.RFC3339)},
	})

	confirmed, err := service.ConfirmOrders(context.Background(), []string{"ORD-1", "ORD-MISSING"})

	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, []string{"ORD-1", "ORD-MISSING"}, repo.confirmed)

	_, err = service.ConfirmOrders(context.Background(), nil)
	assert.Error(t, err)
}

func TestSLAServiceExportCSV(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, _, _ := newTestService(t, now)
	service.IngestOrders(context.Background(), []map[string]any{
		{"orderId": "ORD-1", "customerName": "An", "platform": "tiktok", "orderValue": 800_000.0, "orderTime": now.Format(time.RFC3339)},
	})

	var buf bytes.Buffer
	require.NoError(t, service.ExportCSV(&buf, FilterSpec{}, SortSpec{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "ORD-1")
}

func TestSLAServiceRestoreBatch(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	service, _, _ := newTestService(t, now)
	ingested := service.IngestOrders(context.Background(), []map[string]any{
		{"orderId": "ORD-1", "customerName": "An", "platform": "tiktok", "orderValue": 800_000.0, "orderTime": now.Add(-time.Hour).Format(time.RFC3339)},
	})

	// a fresh service against the same repository picks the batch up
	restored, _, _ := newTestService(t, now)
	restored.repository = service.repository

	count, err := restored.RestoreBatch(context.Background(), ingested.BatchID)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, restored.store.Len())
}
