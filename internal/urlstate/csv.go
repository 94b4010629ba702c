// Package urlstate maps URL query parameters to search state and back.
package urlstate

import (
	"math"
	"strconv"
	"strings"
)

// DecodeCSV parses a comma-separated list of integer ids. Blank segments and
// segments that are not finite whole numbers are dropped; it never fails.
func DecodeCSV(raw string) []int64 {
	ids := []int64{}
	if raw == "" {
		return ids
	}

	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if id, ok := parseWhole(segment); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// EncodeCSV joins ids with commas in the given order. An empty list encodes
// to the absent value "", which removes the parameter when patched.
func EncodeCSV(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// parseWhole accepts anything strconv reads as a float ("7", "7.0", "1e2")
// as long as it is finite, integral and fits in an int64.
func parseWhole(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
