package utils

import (
	"time"
)

// DaysSinceJoined returns whole days elapsed since createdAt.
func DaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}
