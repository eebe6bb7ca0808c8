package uptime

import (
	"time"

	"uptime-report-backend/internal/parse"
)

// NormalizeStats counts observations that did not make it into a bucket.
type NormalizeStats struct {
	Future    int
	Malformed int
}

// Normalize converts raw observations into local-time weekday buckets.
//
// Records stamped after now are dropped. Records whose timestamp or status
// cannot be parsed are skipped individually. Each instant is converted with
// the zone rules in effect at that instant, so offsets follow DST changes.
// Bucket contents keep input order.
func Normalize(obs []Observation, loc *time.Location, now time.Time) (WeekdayBuckets, NormalizeStats) {
	var (
		buckets WeekdayBuckets
		stats   NormalizeStats
	)
	for _, o := range obs {
		ts, err := parse.TimestampUTC(o.TimestampUTC)
		if err != nil {
			stats.Malformed++
			continue
		}
		if ts.After(now) {
			stats.Future++
			continue
		}
		up, err := parse.Status(o.Status)
		if err != nil {
			stats.Malformed++
			continue
		}

		local := ts.In(loc)
		day := WeekdayOf(local)
		buckets[day] = append(buckets[day], Sample{At: ClockOf(local), Up: up})
	}
	return buckets, stats
}
