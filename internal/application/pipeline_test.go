package application

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/sla-service/internal/domain"
)

func TestPipelineProcess(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pipeline := NewPipeline(domain.DefaultPolicyMatrix(), fixedClock(now))

	t.Run("enriches records and sorts by remaining time", func(t *testing.T) {
		raw := []map[string]any{
			{
				"orderId":      "ORD-SAFE",
				"customerName": "Nguyen Van An",
				"platform":     "shopee",
				"orderValue":   300_000.0,
				"orderTime":    now.Add(-2 * time.Hour).Format(time.RFC3339),
			},
			{
				"orderId":      "ORD-EXPIRED",
				"customerName": "Tran Thi Bich",
				"platform":     "tiktok",
				"orderValue":   900_000.0,
				"orderTime":    now.Add(-30 * time.Hour).Format(time.RFC3339),
			},
			{
				"orderId":      "ORD-WARNING",
				"customerName": "Le Hoang Cuong",
				"platform":     "tiktok",
				"orderValue":   500_000.0,
				"orderTime":    now.Add(-21 * time.Hour).Format(time.RFC3339),
			},
		}

		result := pipeline.Process(raw, "batch-1")

		require.Len(t, result.Orders, 3)
		assert.Equal(t, "ORD-EXPIRED", result.Orders[0].OrderID)
		assert.Equal(t, "ORD-WARNING", result.Orders[1].OrderID)
		assert.Equal(t, "ORD-SAFE", result.Orders[2].OrderID)

		expired := result.Orders[0]
		assert.Equal(t, domain.SLALevelExpired, expired.SLA.Level)
		assert.Equal(t, domain.CarrierJTExpress, expired.SuggestedCarrier)
		assert.Equal(t, 0.0, expired.TimeRemainingHours)
		assert.Greater(t, expired.Priority, result.Orders[2].Priority)
		assert.Equal(t, "batch-1", expired.BatchID)

		assert.Equal(t, QualitySummary{Total: 3, Clean: 3}, result.Quality)
	})

	t.Run("unknown policy pairs sort last", func(t *testing.T) {
		raw := []map[string]any{
			{
				"orderId":    "ORD-NOPOLICY",
				"platform":   "lazada",
				"orderValue": 100_000.0,
				"orderTime":  now.Add(-time.Hour).Format(time.RFC3339),
			},
			{
				"orderId":    "ORD-KNOWN",
				"platform":   "tiktok",
				"orderValue": 100_000.0,
				"orderTime":  now.Add(-time.Hour).Format(time.RFC3339),
			},
		}

		result := pipeline.Process(raw, "batch-2")

		require.Len(t, result.Orders, 2)
		assert.Equal(t, "ORD-KNOWN", result.Orders[0].OrderID)
		assert.Equal(t, "ORD-NOPOLICY", result.Orders[1].OrderID)
		assert.True(t, math.IsInf(result.Orders[1].TimeRemainingHours, 1))
		assert.Equal(t, domain.SLALevelUnknown, result.Orders[1].SLA.Level)
	})

	t.Run("duplicate ids keep the first occurrence", func(t *testing.T) {
		raw := []map[string]any{
			{"orderId": "ORD-DUP", "customerName": "first", "platform": "tiktok", "orderValue": 100_000.0, "orderTime": now.Format(time.RFC3339)},
			{"orderId": "ORD-DUP", "customerName": "second", "platform": "tiktok", "orderValue": 200_000.0, "orderTime": now.Format(time.RFC3339)},
			{"orderId": "ORD-OTHER", "customerName": "third", "platform": "tiktok", "orderValue": 300_000.0, "orderTime": now.Format(time.RFC3339)},
		}

		result := pipeline.Process(raw, "batch-3")

		require.Len(t, result.Orders, 2)
		assert.Equal(t, 1, result.Quality.Duplicates)
		assert.Equal(t, 2, result.Quality.Clean)

		for _, order := range result.Orders {
			if order.OrderID == "ORD-DUP" {
				assert.Equal(t, "first", order.CustomerName)
			}
		}
	})

	t.Run("empty and nil records count as errors", func(t *testing.T) {
		raw := []map[string]any{
			nil,
			{},
			{"orderId": "ORD-OK", "platform": "website", "orderValue": 100_000.0, "orderTime": now.Format(time.RFC3339)},
		}

		result := pipeline.Process(raw, "batch-4")

		assert.Equal(t, 3, result.Quality.Total)
		assert.Equal(t, 2, result.Quality.Errors)
		assert.Equal(t, 1, result.Quality.Clean)
		require.Len(t, result.Orders, 1)
	})

	t.Run("dirty records are counted as cleaned but still included", func(t *testing.T) {
		raw := []map[string]any{
			{"orderId": "ORD-D1", "platform": "shopee", "orderValue": "1.200.000 ₫", "orderTime": now.Format(time.RFC3339)},
		}

		result := pipeline.Process(raw, "batch-5")

		require.Len(t, result.Orders, 1)
		assert.Equal(t, 1, result.Quality.Cleaned)
		assert.Equal(t, 1, result.Quality.Clean)
		assert.Equal(t, 1_200_000.0, result.Orders[0].OrderValue)
	})
}

func TestPipelineDemoRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	pipeline := NewPipeline(domain.DefaultPolicyMatrix(), fixedClock(now))
	generator := NewDemoGenerator(7, fixedClock(now))

	result := pipeline.Process(generator.Generate(50), "demo-batch")

	assert.Equal(t, 50, result.Quality.Total)
	assert.Equal(t, 50, result.Quality.Clean+result.Quality.Errors+result.Quality.Duplicates)
	assert.NotEmpty(t, result.Orders)

	// canonical ordering holds across the generated spread
	remaining := make([]float64, len(result.Orders))
	for i, order := range result.Orders {
		remaining[i] = order.TimeRemainingHours
		assert.GreaterOrEqual(t, order.TimeRemainingHours, 0.0)
		assert.NotEmpty(t, order.SuggestedCarrier)
	}
	assert.True(t, sort.Float64sAreSorted(remaining))
}
