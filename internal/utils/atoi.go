// Package utils provides small, domain-free helpers shared across layers:
// lenient integer parsing for query parameters and UTC day-bucket math.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// plain integer. Query parameters go through this so a malformed value never
// fails a request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
