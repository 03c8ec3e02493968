package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTrigger_Next(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	trigger := DateTrigger{At: at}

	tests := []struct {
		name     string
		after    time.Time
		expected time.Time
		ok       bool
	}{
		{
			name:     "before fire time",
			after:    at.Add(-time.Hour),
			expected: at,
			ok:       true,
		},
		{
			name:  "at fire time",
			after: at,
			ok:    false,
		},
		{
			name:  "after fire time",
			after: at.Add(time.Minute),
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := trigger.Next(tt.after)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, next)
			}
		})
	}
}

func TestIntervalTrigger_Next(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	trigger := IntervalTrigger{Start: start, End: end, Every: 24 * time.Hour}

	tests := []struct {
		name     string
		after    time.Time
		expected time.Time
		ok       bool
	}{
		{
			name:     "before window starts at anchor",
			after:    start.Add(-time.Hour),
			expected: start,
			ok:       true,
		},
		{
			name:     "exactly at anchor moves to next occurrence",
			after:    start,
			expected: start.Add(24 * time.Hour),
			ok:       true,
		},
		{
			name:     "mid interval snaps to anchor grid",
			after:    start.Add(30 * time.Hour),
			expected: start.Add(48 * time.Hour),
			ok:       true,
		},
		{
			name:     "last occurrence inside window",
			after:    end.Add(-time.Hour),
			expected: end,
			ok:       true,
		},
		{
			name:  "window exhausted",
			after: end,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := trigger.Next(tt.after)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, next)
			}
		})
	}
}

func TestIntervalTrigger_NextOpenEnded(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	trigger := IntervalTrigger{Start: start, Every: 24 * time.Hour}

	next, ok := trigger.Next(start.Add(365 * 24 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, start.Add(366*24*time.Hour), next)
}

func TestIntervalTrigger_NextZeroInterval(t *testing.T) {
	trigger := IntervalTrigger{Start: time.Now()}

	_, ok := trigger.Next(time.Now())
	assert.False(t, ok)
}

func TestNewCronTrigger(t *testing.T) {
	t.Run("valid expression", func(t *testing.T) {
		trigger, err := NewCronTrigger("0 10 * * *")
		require.NoError(t, err)

		after := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		next, ok := trigger.Next(after)
		require.True(t, ok)
		assert.Equal(t, 10, next.Hour())
		assert.Equal(t, 1, next.Day())
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := NewCronTrigger("not a cron")
		assert.Error(t, err)
	})
}
