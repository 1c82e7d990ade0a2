package domain

import "time"

type Stats struct {
	TotalFasts    int
	GoalsMet      int
	Longest       time.Duration
	Average       time.Duration
	Total         time.Duration
	CurrentStreak int
	BestStreak    int
}

func ComputeStats(history []Record, today time.Time) Stats {
	stats := Stats{
		TotalFasts:    len(history),
		CurrentStreak: ComputeStreak(history, today),
		BestStreak:    BestStreak(history, today.Location()),
	}
	for _, r := range history {
		stats.Total += r.Duration
		if r.Duration > stats.Longest {
			stats.Longest = r.Duration
		}
		if r.MetGoal {
			stats.GoalsMet++
		}
	}
	if stats.TotalFasts > 0 {
		stats.Average = stats.Total / time.Duration(stats.TotalFasts)
	}
	return stats
}

// DailyTotal aggregates the fasts that ended on one calendar day.
type DailyTotal struct {
	Day      string
	Fasts    int
	GoalsMet int
	Total    time.Duration
}

const DayLayout = "2006-01-02"
