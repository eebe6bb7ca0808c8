package uptime

// Downsample collapses one weekday's samples into the mean status per local
// clock hour. Only hours holding at least one sample produce an entry; the
// result is ordered by hour.
func Downsample(samples []Sample) HourlySeries {
	if len(samples) == 0 {
		return nil
	}

	var (
		up    [24]int
		total [24]int
	)
	for _, s := range samples {
		h := s.At.Hour()
		total[h]++
		if s.Up {
			up[h]++
		}
	}

	series := make(HourlySeries, 0, 24)
	for h := range total {
		if total[h] == 0 {
			continue
		}
		series = append(series, HourlyEntry{Hour: h, Mean: float64(up[h]) / float64(total[h])})
	}
	return series
}

// DownsampleWeek applies Downsample to every weekday.
func DownsampleWeek(b WeekdayBuckets) HourlyBuckets {
	var out HourlyBuckets
	for d := range b {
		out[d] = Downsample(b[d])
	}
	return out
}
