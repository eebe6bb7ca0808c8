package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampUTC(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Microseconds",
			raw:      "2024-01-08 15:00:00.388884 UTC",
			expected: time.Date(2024, 1, 8, 15, 0, 0, 388884000, time.UTC),
		},
		{
			name:     "No fraction",
			raw:      "2024-01-08 15:00:00 UTC",
			expected: time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC),
		},
		{
			name:     "Missing zone suffix",
			raw:      "2024-01-08 15:00:00.5",
			expected: time.Date(2024, 1, 8, 15, 0, 0, 500000000, time.UTC),
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  2023-01-22 12:09:39.000000 UTC ",
			expected: time.Date(2023, 1, 22, 12, 9, 39, 0, time.UTC),
		},
		{name: "Garbage", raw: "yesterday", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Bad month", raw: "2024-13-08 15:00:00.000000 UTC", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := TimestampUTC(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tc.expected.Equal(ts), "got %s", ts)
			assert.Equal(t, time.UTC, ts.Location())
		})
	}
}

func TestClock(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  int
		expectErr bool
	}{
		{raw: "00:00:00", expected: 0},
		{raw: "23:59:59", expected: 86399},
		{raw: "9:30:00", expected: 9*3600 + 30*60},
		{raw: "10:00:01", expected: 36001},
		{raw: "24:00:00", expectErr: true},
		{raw: "12:60:00", expectErr: true},
		{raw: "12:00", expectErr: true},
		{raw: "noon", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			secs, err := Clock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, secs)
		})
	}
}

func TestWeekday(t *testing.T) {
	for _, raw := range []string{"0", "3", "6", " 2 "} {
		_, err := Weekday(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"7", "-1", "mon", ""} {
		_, err := Weekday(raw)
		assert.Error(t, err, raw)
	}
}

func TestStatus(t *testing.T) {
	up, err := Status("active")
	assert.NoError(t, err)
	assert.True(t, up)

	up, err = Status("Inactive")
	assert.NoError(t, err)
	assert.False(t, up)

	_, err = Status("unknown")
	assert.Error(t, err)
}
