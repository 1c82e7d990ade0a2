package domain_test

import (
	"testing"
	"time"

	"fastrack/internal/modules/fasting/domain"
)

var berlin = time.FixedZone("CET", 3600)

// day returns a time on Day n of October 2026 in berlin, at the given hour.
func day(n, hour int) time.Time {
	return time.Date(2026, 10, n, hour, 0, 0, 0, berlin)
}

func goalMet(id int64, end time.Time) domain.Record {
	r, err := domain.NewRecord(id, end.Add(-17*time.Hour), end, 16)
	if err != nil {
		panic(err)
	}
	return r
}

func goalMissed(id int64, end time.Time) domain.Record {
	r, err := domain.NewRecord(id, end.Add(-2*time.Hour), end, 16)
	if err != nil {
		panic(err)
	}
	return r
}

func TestComputeStreakScenarios(t *testing.T) {
	t.Parallel()
	today := day(10, 15)
	cases := []struct {
		name    string
		history []domain.Record
		want    int
	}{
		{name: "empty", history: nil, want: 0},
		{name: "today and yesterday", history: []domain.Record{goalMet(2, day(10, 9)), goalMet(1, day(9, 9))}, want: 2},
		{name: "gap before yesterday", history: []domain.Record{goalMet(1, day(8, 9))}, want: 0},
		{name: "yesterday grace", history: []domain.Record{goalMet(1, day(9, 9))}, want: 1},
		{name: "same day dedup", history: []domain.Record{goalMet(2, day(10, 12)), goalMet(1, day(10, 1))}, want: 1},
		{name: "missed goals ignored", history: []domain.Record{goalMissed(2, day(10, 9)), goalMet(1, day(9, 9))}, want: 1},
		{name: "run stops at first gap", history: []domain.Record{goalMet(4, day(10, 9)), goalMet(3, day(9, 9)), goalMet(2, day(8, 9)), goalMet(1, day(6, 9))}, want: 3},
		{name: "yesterday grace counts back", history: []domain.Record{goalMet(3, day(9, 9)), goalMet(2, day(8, 9)), goalMet(1, day(7, 9))}, want: 3},
	}
	for _, tc := range cases {
		if got := domain.ComputeStreak(tc.history, today); got != tc.want {
			t.Fatalf("%s: expected streak %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestComputeStreakUsesTodaysLocation(t *testing.T) {
	t.Parallel()
	// 23:30 UTC on Day 9 is 00:30 on Day 10 in berlin.
	end := time.Date(2026, 10, 9, 23, 30, 0, 0, time.UTC)
	history := []domain.Record{goalMet(1, end)}
	if got := domain.ComputeStreak(history, day(11, 8)); got != 1 {
		t.Fatalf("expected the fast to land on Day 10 locally, got streak %d", got)
	}
	if got := domain.ComputeStreak(history, time.Date(2026, 10, 11, 8, 0, 0, 0, time.UTC)); got != 0 {
		t.Fatalf("expected no streak in UTC where the fast ended on Day 9, got %d", got)
	}
}

func TestComputeStreakAcrossDSTChange(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Clocks go back on 2026-10-25.
	history := []domain.Record{
		goalMet(3, time.Date(2026, 10, 26, 9, 0, 0, 0, loc)),
		goalMet(2, time.Date(2026, 10, 25, 9, 0, 0, 0, loc)),
		goalMet(1, time.Date(2026, 10, 24, 9, 0, 0, 0, loc)),
	}
	if got := domain.ComputeStreak(history, time.Date(2026, 10, 26, 20, 0, 0, 0, loc)); got != 3 {
		t.Fatalf("expected streak 3 across DST, got %d", got)
	}
}

func TestBestStreak(t *testing.T) {
	t.Parallel()
	history := []domain.Record{
		goalMet(6, day(10, 9)),
		goalMet(5, day(6, 9)),
		goalMet(4, day(5, 9)),
		goalMet(3, day(5, 20)),
		goalMet(2, day(4, 9)),
		goalMissed(1, day(3, 9)),
	}
	if got := domain.BestStreak(history, berlin); got != 3 {
		t.Fatalf("expected best streak 3, got %d", got)
	}
	if got := domain.BestStreak(nil, berlin); got != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got)
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()
	history := []domain.Record{goalMet(2, day(10, 9)), goalMissed(1, day(9, 9))}
	stats := domain.ComputeStats(history, day(10, 12))
	if stats.TotalFasts != 2 || stats.GoalsMet != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.Longest != 17*time.Hour || stats.Total != 19*time.Hour {
		t.Fatalf("unexpected durations %+v", stats)
	}
	if stats.Average != 9*time.Hour+30*time.Minute {
		t.Fatalf("unexpected average %s", stats.Average)
	}
	if stats.CurrentStreak != 1 || stats.BestStreak != 1 {
		t.Fatalf("unexpected streaks %+v", stats)
	}
}
