// nationportal/utils/system.go
package utils

import (
	"time"
)

// GetTime returns the current time. Useful for mocking in tests.
func GetTime() time.Time {
	return time.Now()
}

// GetUTCTime returns the current time in UTC, used for file names.
func GetUTCTime() time.Time {
	return time.Now().UTC()
}
