package services

import (
	"testing"
	"time"

	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(t *testing.T, value string) types.ClockTime {
	t.Helper()
	c, err := types.ParseClockTime(value)
	require.NoError(t, err)
	return c
}

func TestSessionDurationMinutes(t *testing.T) {
	date := types.NewDate(2025, time.June, 14)

	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "same day", start: "20:00", end: "23:30", want: 210},
		{name: "past midnight", start: "22:00", end: "02:00", want: 240},
		{name: "just before midnight", start: "23:45", end: "00:15", want: 30},
		{name: "equal times", start: "08:00", end: "08:00", want: 0},
		{name: "one minute", start: "08:00", end: "08:01", want: 1},
		{name: "full day minus one", start: "12:01", end: "12:00", want: 1439},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionDurationMinutes(date, clock(t, tt.start), clock(t, tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}
