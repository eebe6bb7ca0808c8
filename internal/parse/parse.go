package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts of the upstream data sets.
const (
	TimestampLayout = "2006-01-02 15:04:05.999999 UTC"
	ClockLayout     = "15:04:05"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)

// TimestampUTC parses an observation timestamp such as "2024-01-08 15:00:00.000000 UTC".
// The fractional part is optional.
func TimestampUTC(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	ts, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		// Some exports drop the zone suffix.
		if ts, err2 := time.ParseInLocation("2006-01-02 15:04:05.999999", s, time.UTC); err2 == nil {
			return ts, nil
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return ts, nil
}

// Clock parses a local "HH:MM:SS" wall-clock value into seconds since midnight.
func Clock(raw string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	if h > 23 || mi > 59 || s > 59 {
		return 0, fmt.Errorf("clock value out of range %q", raw)
	}
	return h*3600 + mi*60 + s, nil
}

// Weekday parses "0".."6" where 0 is Monday.
func Weekday(raw string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || d < 0 || d > 6 {
		return 0, fmt.Errorf("invalid weekday %q", raw)
	}
	return d, nil
}

// Status maps "active"/"inactive" to true/false.
func Status(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return true, nil
	case "inactive":
		return false, nil
	}
	return false, fmt.Errorf("unknown status %q", raw)
}
