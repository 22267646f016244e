package util

import (
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Page cuts items to the window from Calculate and builds the meta block.
func Page[T any](items []T, page, size int) ([]T, map[string]any) {
	if page < 1 {
		page = 1
	}
	from, limit := Calculate(page, size)
	total := len(items)

	start := min(from, total)
	end := min(from+limit, total)

	return items[start:end], Meta(page, limit, int64(total))
}

func Meta(page, limit int, total int64) map[string]any {
	if page < 1 {
		page = 1
	}
	from := (page - 1) * limit
	return map[string]any{
		"page":        page,
		"size":        limit,
		"total":       total,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
		"has_prev":    page > 1,
		"has_next":    int64(from+limit) < total,
	}
}
