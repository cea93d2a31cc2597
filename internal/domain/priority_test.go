package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		name               string
		platform           Platform
		orderValue         float64
		timeRemainingHours float64
		expected           float64
	}{
		{
			name:               "expired tiktok order scores highest",
			platform:           PlatformTikTok,
			orderValue:         1_000_000,
			timeRemainingHours: 0,
			expected:           9 + 20 + 1,
		},
		{
			name:               "under one hour counts as most urgent",
			platform:           PlatformShopee,
			orderValue:         500_000,
			timeRemainingHours: 0.5,
			expected:           3 + 20 + 0.5,
		},
		{
			name:               "under four hours is the middle tier",
			platform:           PlatformWebsite,
			orderValue:         2_000_000,
			timeRemainingHours: 3.9,
			expected:           6 + 10 + 2,
		},
		{
			name:               "exactly four hours drops to the lowest tier",
			platform:           PlatformWebsite,
			orderValue:         2_000_000,
			timeRemainingHours: 4,
			expected:           6 + 2 + 2,
		},
		{
			name:               "order value contribution is capped",
			platform:           PlatformShopee,
			orderValue:         50_000_000,
			timeRemainingHours: 10,
			expected:           3 + 2 + 3,
		},
		{
			name:               "unknown policy remaining time is least urgent",
			platform:           PlatformTikTok,
			orderValue:         0,
			timeRemainingHours: math.Inf(1),
			expected:           9 + 2 + 0,
		},
		{
			name:               "unrecognized platform uses the base weight",
			platform:           Platform("lazada"),
			orderValue:         1_500_000,
			timeRemainingHours: 12,
			expected:           3 + 2 + 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PriorityScore(tt.platform, tt.orderValue, tt.timeRemainingHours), 1e-9)
		})
	}
}

func TestPriorityScoreOrdering(t *testing.T) {
	// A breached order on a low weight platform must outrank a safe
	// order on the highest weight platform.
	breached := PriorityScore(PlatformShopee, 100_000, 0)
	safe := PriorityScore(PlatformTikTok, 100_000, 40)

	assert.Greater(t, breached, safe)
}
