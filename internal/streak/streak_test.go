package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	today := "2024-01-10"

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{
			name:  "no progress at all",
			dates: nil,
			want:  0,
		},
		{
			name:  "four consecutive days ending today",
			dates: []string{"2024-01-07", "2024-01-08", "2024-01-09", "2024-01-10"},
			want:  4,
		},
		{
			name:  "gap two days back caps the streak",
			dates: []string{"2024-01-05", "2024-01-06", "2024-01-07", "2024-01-09", "2024-01-10"},
			want:  2,
		},
		{
			name:  "pending today keeps yesterday's streak",
			dates: []string{"2024-01-07", "2024-01-08", "2024-01-09"},
			want:  3,
		},
		{
			name:  "only today",
			dates: []string{"2024-01-10"},
			want:  1,
		},
		{
			name:  "missed yesterday and today",
			dates: []string{"2024-01-06", "2024-01-07", "2024-01-08"},
			want:  0,
		},
		{
			name:  "streak across month boundary",
			dates: []string{"2023-12-30", "2023-12-31", "2024-01-01"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Current(today, FromDates(tt.dates)))
		})
	}
}

func TestCurrentAcrossYearBoundary(t *testing.T) {
	dates := []string{"2023-12-30", "2023-12-31", "2024-01-01"}
	assert.Equal(t, 3, Current("2024-01-01", FromDates(dates)))
	assert.Equal(t, 3, Current("2024-01-02", FromDates(dates)))
}

func TestCurrentInvalidToday(t *testing.T) {
	assert.Equal(t, 0, Current("not-a-date", func(string) bool { return true }))
}

func TestCurrentStopsOnUnboundedLookup(t *testing.T) {
	assert.Equal(t, maxWalk, Current("2024-01-01", func(string) bool { return true }))
}

func TestLongest(t *testing.T) {
	dates := []string{
		"2024-01-01", "2024-01-02",
		"2024-01-05", "2024-01-06", "2024-01-07",
		"2024-01-07", // duplicate
		"garbage",
	}
	assert.Equal(t, 3, Longest(dates))
	assert.Equal(t, 0, Longest(nil))
}
