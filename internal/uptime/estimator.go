package uptime

import (
	"context"
	"fmt"
	"time"
)

// Estimate is the outcome of running the pipeline for one site.
type Estimate struct {
	Row   Row
	Stats NormalizeStats
}

// Estimator runs the full per-site pipeline.
type Estimator struct {
	timezones *TimezoneResolver
	hours     *BusinessHoursResolver
	policy    WindowPolicy
}

// NewEstimator wires the resolvers and the window policy. A nil policy means
// WeeklyRecurrencePolicy.
func NewEstimator(tz *TimezoneResolver, hours *BusinessHoursResolver, policy WindowPolicy) *Estimator {
	if policy == nil {
		policy = WeeklyRecurrencePolicy{}
	}
	return &Estimator{timezones: tz, hours: hours, policy: policy}
}

// Estimate computes the report row for siteID from its observations as of now.
func (e *Estimator) Estimate(ctx context.Context, siteID string, obs []Observation, now time.Time) (Estimate, error) {
	loc, err := e.timezones.Resolve(ctx, siteID)
	if err != nil {
		return Estimate{}, fmt.Errorf("resolve timezone: %w", err)
	}
	schedule, err := e.hours.Resolve(ctx, siteID)
	if err != nil {
		return Estimate{}, fmt.Errorf("resolve business hours: %w", err)
	}

	buckets, stats := Normalize(obs, loc, now)
	hourly := DownsampleWeek(FilterBusinessHours(buckets, schedule))
	u := e.policy.Aggregate(hourly, now.In(loc))

	return Estimate{Row: NewRow(siteID, u), Stats: stats}, nil
}
