// Package uptime estimates per-site uptime from sparse active/inactive pings.
//
// The pipeline runs per site: observations are converted to the site's local
// time and bucketed by weekday (Normalize), restricted to business hours
// (FilterBusinessHours), reduced to one mean value per local clock hour
// (Downsample) and finally aggregated into hour/day/week figures by a
// WindowPolicy.
package uptime

import (
	"fmt"
	"time"
)

// Weekday is a local day of week, 0 = Monday .. 6 = Sunday.
type Weekday int

const DaysPerWeek = 7

// WeekdayOf returns the Monday-based weekday of t in t's location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % DaysPerWeek)
}

// Prev returns the previous weekday, wrapping Monday to Sunday.
func (d Weekday) Prev() Weekday {
	return Weekday((int(d) + DaysPerWeek - 1) % DaysPerWeek)
}

// TimeOfDay is a local wall-clock time in whole seconds since midnight.
type TimeOfDay int

const (
	StartOfDay TimeOfDay = 0
	EndOfDay   TimeOfDay = 23*3600 + 59*60 + 59
)

// ClockOf returns the wall-clock time of t, truncated to the second.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(h*3600 + m*60 + s)
}

// Hour returns the clock hour (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)%3600/60, int(t)%60)
}

// Observation is a raw status ping as stored by the producer.
type Observation struct {
	SiteID       string
	TimestampUTC string
	Status       string
}

// Sample is a normalized observation inside a weekday bucket.
type Sample struct {
	At TimeOfDay
	Up bool
}

// WeekdayBuckets holds a site's samples grouped by local weekday.
type WeekdayBuckets [DaysPerWeek][]Sample

// Len returns the total number of samples across all weekdays.
func (b *WeekdayBuckets) Len() int {
	n := 0
	for _, day := range b {
		n += len(day)
	}
	return n
}

// HourlyEntry is the mean status of one local clock hour that had at least one sample.
type HourlyEntry struct {
	Hour int
	Mean float64
}

// HourlySeries is ordered by Hour ascending. Hours without samples have no entry.
type HourlySeries []HourlyEntry

// At returns the mean for hour and whether the hour was observed.
func (s HourlySeries) At(hour int) (float64, bool) {
	for _, e := range s {
		if e.Hour == hour {
			return e.Mean, true
		}
	}
	return 0, false
}

// Sum adds up the means of all observed hours.
func (s HourlySeries) Sum() float64 {
	var total float64
	for _, e := range s {
		total += e.Mean
	}
	return total
}

// HourlyBuckets holds the downsampled series for each weekday.
type HourlyBuckets [DaysPerWeek]HourlySeries

// Nominal window lengths.
const (
	HourWindowMinutes = 60
	DayWindowHours    = 24
	WeekWindowHours   = 168
)

// Uptime is the result of a WindowPolicy.
type Uptime struct {
	LastHourMinutes float64
	LastDayHours    float64
	LastWeekHours   float64
}

// Row is the per-site report line.
type Row struct {
	SiteID                  string  `json:"store_id"`
	UptimeLastHourMinutes   float64 `json:"uptime_last_hour"`
	DowntimeLastHourMinutes float64 `json:"downtime_last_hour"`
	UptimeLastDayHours      float64 `json:"uptime_last_day"`
	DowntimeLastDayHours    float64 `json:"downtime_last_day"`
	UptimeLastWeekHours     float64 `json:"uptime_last_week"`
	DowntimeLastWeekHours   float64 `json:"downtime_last_week"`
}

// NewRow derives downtime as the nominal window length minus uptime.
func NewRow(siteID string, u Uptime) Row {
	return Row{
		SiteID:                  siteID,
		UptimeLastHourMinutes:   u.LastHourMinutes,
		DowntimeLastHourMinutes: HourWindowMinutes - u.LastHourMinutes,
		UptimeLastDayHours:      u.LastDayHours,
		DowntimeLastDayHours:    DayWindowHours - u.LastDayHours,
		UptimeLastWeekHours:     u.LastWeekHours,
		DowntimeLastWeekHours:   WeekWindowHours - u.LastWeekHours,
	}
}
