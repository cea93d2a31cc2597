package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/sla-service/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	normalizer := NewNormalizer(fixedClock(now))

	t.Run("well formed record passes through untouched", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":      "ORD-00001",
			"customerName": "Nguyen Van An",
			"platform":     "tiktok",
			"orderValue":   1_500_000.0,
			"orderTime":    "2026-08-28T08:00:00Z",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, "ORD-00001", order.OrderID)
		assert.Equal(t, "Nguyen Van An", order.CustomerName)
		assert.Equal(t, domain.PlatformTikTok, order.Platform)
		assert.Equal(t, 1_500_000.0, order.OrderValue)
		assert.Equal(t, time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC), order.OrderTime)
		assert.Equal(t, domain.StatusPending, order.Status)
		assert.False(t, order.NeedsCleaning)
	})

	t.Run("nil record fails", func(t *testing.T) {
		_, err := normalizer.Normalize(nil, 3)

		var normErr *NormalizationError
		require.ErrorAs(t, err, &normErr)
		assert.Equal(t, 3, normErr.Index)
	})

	t.Run("empty record fails", func(t *testing.T) {
		_, err := normalizer.Normalize(map[string]any{}, 0)
		assert.Error(t, err)
	})

	t.Run("missing order id is generated and flagged", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"customerName": "Tran Thi Bich",
			"platform":     "shopee",
			"orderValue":   400_000.0,
		}, 0)

		require.NoError(t, err)
		assert.Regexp(t, `^ORD-[0-9a-f-]{8}$`, order.OrderID)
		assert.True(t, order.NeedsCleaning)
	})

	t.Run("alternate key spellings are accepted", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"order_id":      "ORD-X1",
			"customer_name": "Le Hoang Cuong",
			"channel":       "Shopee",
			"amount":        250_000.0,
			"created_at":    "2026-08-27 09:30:00",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, "ORD-X1", order.OrderID)
		assert.Equal(t, "Le Hoang Cuong", order.CustomerName)
		assert.Equal(t, domain.PlatformShopee, order.Platform)
		assert.Equal(t, 250_000.0, order.OrderValue)
		assert.False(t, order.NeedsCleaning)
	})

	t.Run("currency string is stripped and flagged", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":    "ORD-C1",
			"orderValue": "2.500.000 ₫",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, 2_500_000.0, order.OrderValue)
		assert.True(t, order.NeedsCleaning)
	})

	t.Run("plain numeric string stays clean on the value axis", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":      "ORD-C2",
			"customerName": "Pham Minh Duc",
			"platform":     "website",
			"orderValue":   "750000",
			"orderTime":    "2026-08-28T10:00:00Z",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, 750_000.0, order.OrderValue)
		assert.False(t, order.NeedsCleaning)
	})

	t.Run("unparseable value degrades to zero", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":    "ORD-C3",
			"orderValue": "call for pricing",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, 0.0, order.OrderValue)
		assert.True(t, order.NeedsCleaning)
	})

	t.Run("unparseable timestamp substitutes now and flags", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":   "ORD-T1",
			"orderTime": "yesterday afternoon",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, now, order.OrderTime)
		assert.True(t, order.NeedsCleaning)
	})

	t.Run("platform is lowercased and defaults to website", func(t *testing.T) {
		order, err := normalizer.Normalize(map[string]any{
			"orderId":  "ORD-P1",
			"platform": " TikTok ",
		}, 0)

		require.NoError(t, err)
		assert.Equal(t, domain.PlatformTikTok, order.Platform)

		order, err = normalizer.Normalize(map[string]any{"orderId": "ORD-P2"}, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformWebsite, order.Platform)
		assert.True(t, order.NeedsCleaning)
	})
}
