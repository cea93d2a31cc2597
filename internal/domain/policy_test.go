package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyMatrix(t *testing.T) {
	matrix := DefaultPolicyMatrix()

	assert.Equal(t, 8, matrix.Len())

	entry, ok := matrix.Lookup(PlatformTikTok, CarrierJTExpress)
	require.True(t, ok)
	assert.Equal(t, 24.0, entry.ConfirmDeadlineHours)
	assert.Equal(t, 48.0, entry.HandoverDeadlineHours)

	entry, ok = matrix.Lookup(PlatformWebsite, CarrierGHTK)
	require.True(t, ok)
	assert.Equal(t, 72.0, entry.ConfirmDeadlineHours)

	_, ok = matrix.Lookup(PlatformTikTok, CarrierGHTK)
	assert.False(t, ok, "tiktok never ships economy")
}

func TestNewPolicyMatrixCopiesEntries(t *testing.T) {
	entries := map[PolicyKey]PolicyEntry{
		{PlatformShopee, CarrierGHTK}: {ConfirmDeadlineHours: 48},
	}
	matrix := NewPolicyMatrix(entries)

	entries[PolicyKey{PlatformShopee, CarrierGHTK}] = PolicyEntry{ConfirmDeadlineHours: 1}

	entry, ok := matrix.Lookup(PlatformShopee, CarrierGHTK)
	require.True(t, ok)
	assert.Equal(t, 48.0, entry.ConfirmDeadlineHours)
}

func TestLoadPolicyMatrix(t *testing.T) {
	writePolicy := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "policies.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("valid file loads all cells", func(t *testing.T) {
		path := writePolicy(t, `
policies:
  - platform: tiktok
    carrier: "J&T Express"
    confirmDeadlineHours: 12
    handoverDeadlineHours: 24
  - platform: shopee
    carrier: GHTK
    confirmDeadlineHours: 36
    handoverDeadlineHours: 60
`)

		matrix, err := LoadPolicyMatrix(path)

		require.NoError(t, err)
		assert.Equal(t, 2, matrix.Len())
		entry, ok := matrix.Lookup(PlatformTikTok, CarrierJTExpress)
		require.True(t, ok)
		assert.Equal(t, 12.0, entry.ConfirmDeadlineHours)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadPolicyMatrix(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty policy list fails", func(t *testing.T) {
		path := writePolicy(t, "policies: []\n")
		_, err := LoadPolicyMatrix(path)
		assert.ErrorContains(t, err, "no policies")
	})

	t.Run("missing carrier fails", func(t *testing.T) {
		path := writePolicy(t, `
policies:
  - platform: tiktok
    confirmDeadlineHours: 12
`)
		_, err := LoadPolicyMatrix(path)
		assert.ErrorContains(t, err, "platform and carrier are required")
	})

	t.Run("non positive deadline fails", func(t *testing.T) {
		path := writePolicy(t, `
policies:
  - platform: tiktok
    carrier: GHTK
    confirmDeadlineHours: 0
`)
		_, err := LoadPolicyMatrix(path)
		assert.ErrorContains(t, err, "must be positive")
	})
}
