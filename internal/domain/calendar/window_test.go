package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlinWindow(t *testing.T) Window {
	t.Helper()
	w, err := LoadWindow(2024, time.December, DefaultTimezone)
	require.NoError(t, err)
	return w
}

func TestWindow_Day(t *testing.T) {
	w := berlinWindow(t)
	berlin := w.Location()

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before window", time.Date(2024, time.November, 30, 23, 59, 0, 0, berlin), 0},
		{"first day", time.Date(2024, time.December, 1, 0, 0, 0, 0, berlin), 1},
		{"mid window", time.Date(2024, time.December, 15, 12, 0, 0, 0, berlin), 15},
		{"last day", time.Date(2024, time.December, 24, 23, 59, 59, 0, berlin), 24},
		{"after window", time.Date(2024, time.December, 25, 0, 0, 0, 0, berlin), 0},
		// 23:30 UTC on Dec 2 is already Dec 3 in Berlin.
		{"converts to berlin", time.Date(2024, time.December, 2, 23, 30, 0, 0, time.UTC), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Day(tc.now))
			assert.Equal(t, tc.want != 0, w.Contains(tc.now))
		})
	}
}

func TestWindow_DoorOpen(t *testing.T) {
	w := berlinWindow(t)
	now := time.Date(2024, time.December, 14, 18, 0, 0, 0, w.Location())

	assert.True(t, w.DoorOpen(1, now))
	assert.True(t, w.DoorOpen(14, now))
	assert.False(t, w.DoorOpen(15, now))
	assert.False(t, w.DoorOpen(0, now))
	assert.False(t, w.DoorOpen(25, now))

	after := time.Date(2025, time.January, 5, 0, 0, 0, 0, w.Location())
	assert.True(t, w.DoorOpen(24, after))
}

func TestWindow_ZeroYearFollowsEvaluationDate(t *testing.T) {
	w, err := LoadWindow(0, time.November, DefaultTimezone)
	require.NoError(t, err)

	now := time.Date(2031, time.November, 3, 9, 0, 0, 0, w.Location())
	assert.Equal(t, 3, w.Day(now))
	assert.Equal(t, "2031-11-03", w.DayDate(now))
	assert.Equal(t, time.Date(2031, time.November, 25, 0, 0, 0, 0, w.Location()), w.End(now))
}

func TestWindow_ZeroYearDoorsStayOpenAfterWindow(t *testing.T) {
	w, err := LoadWindow(0, time.December, DefaultTimezone)
	require.NoError(t, err)

	jan := time.Date(2027, time.January, 5, 12, 0, 0, 0, time.UTC)
	assert.False(t, w.Contains(jan))
	assert.Zero(t, w.Day(jan))
	assert.True(t, w.DoorOpen(5, jan))
	assert.True(t, w.DoorOpen(24, jan))
	assert.Equal(t, time.Date(2026, time.December, 5, 0, 0, 0, 0, w.Location()), w.DoorOpensAt(5, jan))

	// Inside the window the current year's doors still gate by day.
	dec := time.Date(2027, time.December, 4, 12, 0, 0, 0, w.Location())
	assert.True(t, w.DoorOpen(4, dec))
	assert.False(t, w.DoorOpen(5, dec))
	assert.Equal(t, time.Date(2027, time.December, 5, 0, 0, 0, 0, w.Location()), w.DoorOpensAt(5, dec))
}

func TestNewWindow_RejectsInvalidMonth(t *testing.T) {
	_, err := NewWindow(2024, time.Month(13), time.UTC)
	require.Error(t, err)

	_, err = LoadWindow(2024, time.December, "Mars/Olympus")
	require.Error(t, err)
}
