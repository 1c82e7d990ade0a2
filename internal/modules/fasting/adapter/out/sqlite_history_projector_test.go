package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	fastingoutadapter "fastrack/internal/modules/fasting/adapter/out"
	"fastrack/internal/modules/fasting/domain"
)

func mustRecord(t *testing.T, id int64, start time.Time, d time.Duration, goal float64) domain.Record {
	t.Helper()
	record, err := domain.NewRecord(id, start, start.Add(d), goal)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return record
}

func TestProjectorDailyTotals(t *testing.T) {
	t.Parallel()
	projector, err := fastingoutadapter.NewSQLiteHistoryProjector(filepath.Join(t.TempDir(), ".fastrack", "fastrack.db"), time.UTC)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}
	defer projector.Close()
	ctx := context.Background()

	day1 := time.Date(2026, 10, 8, 2, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 9, 2, 0, 0, 0, time.UTC)
	records := []domain.Record{
		mustRecord(t, 1, day1, 16*time.Hour, 16),
		mustRecord(t, 2, day2, 10*time.Hour, 16),
		mustRecord(t, 3, day2.Add(11*time.Hour), 2*time.Hour, 16),
	}
	for _, r := range records {
		if err := projector.UpsertRecord(ctx, r); err != nil {
			t.Fatalf("upsert %d: %v", r.ID, err)
		}
	}

	totals, err := projector.DailyTotals(ctx, time.Time{})
	if err != nil {
		t.Fatalf("daily totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected two days, got %+v", totals)
	}
	if totals[0].Day != "2026-10-09" || totals[0].Fasts != 2 || totals[0].GoalsMet != 0 || totals[0].Total != 12*time.Hour {
		t.Fatalf("unexpected newest day %+v", totals[0])
	}
	if totals[1].Day != "2026-10-08" || totals[1].GoalsMet != 1 {
		t.Fatalf("unexpected oldest day %+v", totals[1])
	}

	since, err := projector.DailyTotals(ctx, time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("daily totals since: %v", err)
	}
	if len(since) != 1 || since[0].Day != "2026-10-09" {
		t.Fatalf("expected since filter, got %+v", since)
	}
}

func TestProjectorUpsertDeleteReset(t *testing.T) {
	t.Parallel()
	projector, err := fastingoutadapter.NewSQLiteHistoryProjector(filepath.Join(t.TempDir(), "fastrack.db"), time.UTC)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}
	defer projector.Close()
	ctx := context.Background()

	start := time.Date(2026, 10, 8, 2, 0, 0, 0, time.UTC)
	record := mustRecord(t, 7, start, time.Hour, 16)
	if err := projector.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	edited, err := record.WithTimes(start, start.Add(17*time.Hour))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := projector.UpsertRecord(ctx, edited); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	totals, _ := projector.DailyTotals(ctx, time.Time{})
	if len(totals) != 1 || totals[0].Fasts != 1 || totals[0].Total != 17*time.Hour || totals[0].GoalsMet != 1 {
		t.Fatalf("upsert must replace the row, got %+v", totals)
	}

	if err := projector.DeleteRecord(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := projector.DeleteRecord(ctx, 7); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	totals, _ = projector.DailyTotals(ctx, time.Time{})
	if len(totals) != 0 {
		t.Fatalf("expected empty projection, got %+v", totals)
	}

	if err := projector.UpsertRecord(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := projector.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	totals, _ = projector.DailyTotals(ctx, time.Time{})
	if len(totals) != 0 {
		t.Fatalf("expected reset projection, got %+v", totals)
	}
}
