package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock. Calendar-day logic (streaks,
// daily totals) depends on the local zone, so it is not converted to UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
