package domain

import (
	"sort"
	"time"
)

type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time, loc *time.Location) civilDay {
	y, m, d := t.In(loc).Date()
	return civilDay{year: y, month: m, day: d}
}

func (c civilDay) midnight(loc *time.Location) time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, loc)
}

func (c civilDay) prev(loc *time.Location) civilDay {
	return dayOf(c.midnight(loc).AddDate(0, 0, -1), loc)
}

// goalDays collects the calendar days, in loc, on which a goal-meeting fast ended.
func goalDays(history []Record, loc *time.Location) map[civilDay]struct{} {
	days := make(map[civilDay]struct{}, len(history))
	for _, r := range history {
		if r.MetGoal {
			days[dayOf(r.End, loc)] = struct{}{}
		}
	}
	return days
}

// ComputeStreak counts consecutive goal-met days ending today, or ending
// yesterday when today has none yet. Several fasts on one day count once.
// Days are taken in today's location.
func ComputeStreak(history []Record, today time.Time) int {
	loc := today.Location()
	days := goalDays(history, loc)
	if len(days) == 0 {
		return 0
	}

	day := dayOf(today, loc)
	if _, ok := days[day]; !ok {
		day = day.prev(loc)
		if _, ok := days[day]; !ok {
			return 0
		}
	}
	streak := 0
	for {
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
		day = day.prev(loc)
	}
}

// BestStreak is the longest run of consecutive goal-met days anywhere in history.
func BestStreak(history []Record, loc *time.Location) int {
	days := goalDays(history, loc)
	ordered := make([]time.Time, 0, len(days))
	for d := range days {
		ordered = append(ordered, d.midnight(loc))
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	best, run := 0, 0
	for i, d := range ordered {
		if i > 0 && dayOf(ordered[i-1].AddDate(0, 0, 1), loc) == dayOf(d, loc) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
