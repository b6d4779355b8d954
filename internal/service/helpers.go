package service

import (
	"strconv"
	"strings"
)

func itoa(v int) string { return strconv.Itoa(v) }

func intPtr(v int) *int { return &v }

// clampLimit 把分页大小限制在 [1, max]
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func trimmed(s string) string { return strings.TrimSpace(s) }
