package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	from, limit := Calculate(0, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, DefaultPageSize, limit)

	from, limit = Calculate(3, 20)
	assert.Equal(t, 40, from)
	assert.Equal(t, 20, limit)

	_, limit = Calculate(1, 1000)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 2, ParseIntDefault(" 2 ", 7))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, meta := Page(items, 2, 2)
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, int64(5), meta["total"])
	assert.Equal(t, int64(3), meta["total_pages"])
	assert.Equal(t, true, meta["has_prev"])
	assert.Equal(t, true, meta["has_next"])

	got, meta = Page(items, 9, 2)
	assert.Empty(t, got)
	assert.Equal(t, false, meta["has_next"])
}
