package services

import (
	"time"

	"github.com/EduNet2023/NovoApkPesca/types"
)

// sessionDurationMinutes derives a session's duration from its date and
// clock times. An end time earlier than the start time means the session
// ran past midnight, so the end lands on the next day.
func sessionDurationMinutes(date types.Date, start, end types.ClockTime) int {
	startAt := date.At(start)
	endAt := date.At(end)
	if endAt.Before(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return int(endAt.Sub(startAt) / time.Minute)
}
