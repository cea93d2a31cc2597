package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResponse(t *testing.T) {
	page := NewPageResponse([]string{"a", "b"}, 2, 2, 5)

	assert.Equal(t, int64(2), page.Page)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)

	empty := NewPageResponse([]string{}, 1, 50, 0)
	assert.Equal(t, int64(1), empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, PageRequest{Page: 1, PageSize: 2}))
	assert.Equal(t, []int{3, 4}, Slice(items, PageRequest{Page: 2, PageSize: 2}))
	assert.Equal(t, []int{5}, Slice(items, PageRequest{Page: 3, PageSize: 2}))
	assert.Empty(t, Slice(items, PageRequest{Page: 4, PageSize: 2}))
	assert.Empty(t, Slice([]int{}, PageRequest{Page: 1, PageSize: 50}))
}
