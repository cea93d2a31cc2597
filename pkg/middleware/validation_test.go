package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmPayload struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,dive,order_id"`
}

type queryPayload struct {
	Platform  string `json:"platform" validate:"omitempty,platform"`
	Status    string `json:"status" validate:"omitempty,order_status"`
	Direction string `json:"direction" validate:"omitempty,sort_direction"`
}

func TestCustomValidators(t *testing.T) {
	t.Run("valid order ids pass", func(t *testing.T) {
		appErr := ValidateStruct(confirmPayload{OrderIDs: []string{"ORD-00001", "ORD_2b"}})
		assert.Nil(t, appErr)
	})

	t.Run("malformed order id fails with field detail", func(t *testing.T) {
		appErr := ValidateStruct(confirmPayload{OrderIDs: []string{"bad id!"}})

		require.NotNil(t, appErr)
		assert.NotEmpty(t, appErr.Details)
	})

	t.Run("empty id list fails", func(t *testing.T) {
		appErr := ValidateStruct(confirmPayload{})
		assert.NotNil(t, appErr)
	})

	t.Run("platform status and direction tags", func(t *testing.T) {
		assert.Nil(t, ValidateStruct(queryPayload{Platform: "tiktok", Status: "pending", Direction: "desc"}))
		assert.NotNil(t, ValidateStruct(queryPayload{Platform: "TikTok"}))
		assert.NotNil(t, ValidateStruct(queryPayload{Status: "shipped"}))
		assert.NotNil(t, ValidateStruct(queryPayload{Direction: "sideways"}))
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\x00 "))
	assert.Equal(t, "", SanitizeString("\x00"))
}
