package uptime

import "time"

// WindowPolicy turns a site's hourly buckets into uptime figures. now is the
// processing instant expressed in the site's local timezone.
type WindowPolicy interface {
	Aggregate(h HourlyBuckets, now time.Time) Uptime
}

// WeeklyRecurrencePolicy treats history as one recurring week.
//
// "Last day" is the whole bucket of the weekday before today's local weekday,
// "last hour" is the hour before now's local hour within that same bucket, and
// "last week" sums every bucket. Today's bucket only contributes to the week.
type WeeklyRecurrencePolicy struct{}

// Aggregate implements WindowPolicy.
func (WeeklyRecurrencePolicy) Aggregate(h HourlyBuckets, now time.Time) Uptime {
	lastDay := WeekdayOf(now).Prev()
	lastHour := now.Add(-time.Hour).Hour()

	var u Uptime
	u.LastDayHours = h[lastDay].Sum()
	if mean, ok := h[lastDay].At(lastHour); ok {
		u.LastHourMinutes = mean * HourWindowMinutes
	}
	for d := range h {
		u.LastWeekHours += h[d].Sum()
	}
	return u
}
