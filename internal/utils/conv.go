package utils

import (
	"strconv"
)

// ParseID converts a path segment to a database id. Zero, negative and
// non-numeric input is rejected.
func ParseID(s string) (uint, bool) {
	i, err := strconv.ParseUint(s, 10, 64)
	if err != nil || i == 0 {
		return 0, false
	}
	return uint(i), true
}
