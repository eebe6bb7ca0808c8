package uptime

import (
	"cmp"
	"context"
	"log"
	"slices"

	"uptime-report-backend/internal/parse"
)

// Interval is a local open interval, inclusive on both ends.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// FullDay is the interval substituted for weekdays without rules.
var FullDay = Interval{Start: StartOfDay, End: EndOfDay}

// Contains reports whether t lies in [Start, End].
func (i Interval) Contains(t TimeOfDay) bool {
	return i.Start <= t && t <= i.End
}

// Schedule holds the open intervals of each weekday.
type Schedule [DaysPerWeek][]Interval

// FullWeek returns a schedule open all day every day.
func FullWeek() Schedule {
	var s Schedule
	for d := range s {
		s[d] = []Interval{FullDay}
	}
	return s
}

// Open reports whether t falls inside any interval of day.
func (s *Schedule) Open(day Weekday, t TimeOfDay) bool {
	for _, iv := range s[day] {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// HoursRule is a raw business-hours record.
type HoursRule struct {
	Weekday        string
	StartTimeLocal string
	EndTimeLocal   string
}

// HoursLookup returns the business-hours rules declared for a site.
type HoursLookup interface {
	BusinessHours(ctx context.Context, siteID string) ([]HoursRule, error)
}

// BusinessHoursResolver builds a site's weekly schedule.
type BusinessHoursResolver struct {
	lookup HoursLookup
}

// NewBusinessHoursResolver creates a resolver over lookup.
func NewBusinessHoursResolver(lookup HoursLookup) *BusinessHoursResolver {
	return &BusinessHoursResolver{lookup: lookup}
}

// Resolve returns the site's schedule. Weekdays without a usable rule are open
// all day. Unparseable rules are skipped.
func (r *BusinessHoursResolver) Resolve(ctx context.Context, siteID string) (Schedule, error) {
	var rules []HoursRule
	if r.lookup != nil {
		var err error
		if rules, err = r.lookup.BusinessHours(ctx, siteID); err != nil {
			return Schedule{}, err
		}
	}
	return BuildSchedule(siteID, rules), nil
}

// BuildSchedule groups rules by weekday, ordering each day's intervals by start.
func BuildSchedule(siteID string, rules []HoursRule) Schedule {
	var s Schedule
	for _, rule := range rules {
		iv, day, err := parseRule(rule)
		if err != nil {
			log.Printf("Warning: skipping business hours rule for site %s: %v", siteID, err)
			continue
		}
		s[day] = append(s[day], iv)
	}
	for d := range s {
		if len(s[d]) == 0 {
			s[d] = []Interval{FullDay}
			continue
		}
		slices.SortStableFunc(s[d], func(a, b Interval) int { return cmp.Compare(a.Start, b.Start) })
	}
	return s
}

func parseRule(rule HoursRule) (Interval, Weekday, error) {
	day, err := parse.Weekday(rule.Weekday)
	if err != nil {
		return Interval{}, 0, err
	}
	start, err := parse.Clock(rule.StartTimeLocal)
	if err != nil {
		return Interval{}, 0, err
	}
	end, err := parse.Clock(rule.EndTimeLocal)
	if err != nil {
		return Interval{}, 0, err
	}
	return Interval{Start: TimeOfDay(start), End: TimeOfDay(end)}, Weekday(day), nil
}

// FilterBusinessHours keeps the samples that fall inside the schedule and
// sorts each weekday by time of day. A sample matching several intervals is
// kept once. The input is not modified.
func FilterBusinessHours(b WeekdayBuckets, s Schedule) WeekdayBuckets {
	var out WeekdayBuckets
	for d := range b {
		day := Weekday(d)
		kept := make([]Sample, 0, len(b[d]))
		for _, smp := range b[d] {
			if s.Open(day, smp.At) {
				kept = append(kept, smp)
			}
		}
		slices.SortStableFunc(kept, func(x, y Sample) int { return cmp.Compare(x.At, y.At) })
		out[d] = kept
	}
	return out
}
