package domain

import (
	"fmt"
	"time"

	apperrors "fastrack/internal/platform/errors"
)

// Record is one completed fast. Duration and MetGoal are derived from
// Start, End and Goal and are never set independently.
type Record struct {
	ID       int64
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Goal     float64
	MetGoal  bool
}

func NewRecord(id int64, start, end time.Time, goalHours float64) (Record, error) {
	r := Record{ID: id, Goal: goalHours}
	return r.WithTimes(start, end)
}

// WithTimes replaces the interval and recomputes the derived fields against
// the record's own goal. The receiver is untouched on error.
func (r Record) WithTimes(start, end time.Time) (Record, error) {
	if !end.After(start) {
		return Record{}, fmt.Errorf("%w: end %s must be after start %s", apperrors.ErrInvalidRange,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	r.Start = start
	r.End = end
	r.Duration = end.Sub(start)
	r.MetGoal = MetGoal(r.Duration, r.Goal)
	return r, nil
}

// MetGoal compares in hours like the stored goal; the boundary counts as met.
func MetGoal(d time.Duration, goalHours float64) bool {
	return d.Hours() >= goalHours
}
