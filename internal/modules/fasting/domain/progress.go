package domain

import (
	"fmt"
	"math"
	"time"
)

// Progress is a reading of the active fast against its goal.
type Progress struct {
	At          time.Time
	Elapsed     time.Duration
	Fraction    float64
	GoalReached bool
}

// Elapsed is now minus the session start, or zero when idle. A start in the
// future (clock skew) also reads as zero.
func Elapsed(session SessionState, now time.Time) time.Duration {
	if !session.IsFasting || session.StartTime == nil {
		return 0
	}
	if d := now.Sub(*session.StartTime); d > 0 {
		return d
	}
	return 0
}

// ProgressFraction is elapsed over the goal, capped at 1.
func ProgressFraction(elapsed time.Duration, goalHours float64) float64 {
	goal := goalHours * float64(time.Hour)
	if goal <= 0 {
		return 1
	}
	return math.Max(0, math.Min(float64(elapsed)/goal, 1))
}

// GoalReached has no cap: a fast can run well past its goal.
func GoalReached(elapsed time.Duration, goalHours float64) bool {
	return MetGoal(elapsed, goalHours)
}

func MeasureProgress(session SessionState, goalHours float64, now time.Time) Progress {
	elapsed := Elapsed(session, now)
	return Progress{
		At:          now,
		Elapsed:     elapsed,
		Fraction:    ProgressFraction(elapsed, goalHours),
		GoalReached: session.IsFasting && GoalReached(elapsed, goalHours),
	}
}

// FormatClock renders d as HH:MM:SS; hours are not wrapped at 24.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
