package domain_test

import (
	"errors"
	"testing"
	"time"

	"fastrack/internal/modules/fasting/domain"
	apperrors "fastrack/internal/platform/errors"
)

func TestNewRecordDerivesDurationAndGoal(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	r, err := domain.NewRecord(7, start, start.Add(16*time.Hour), 16)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if r.Duration != 16*time.Hour || !r.MetGoal {
		t.Fatalf("expected exact boundary to meet goal, got %+v", r)
	}
	short, err := domain.NewRecord(8, start, start.Add(16*time.Hour-time.Millisecond), 16)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if short.MetGoal {
		t.Fatalf("one millisecond short must not meet goal")
	}
}

func TestRecordRejectsNonPositiveRange(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	if _, err := domain.NewRecord(1, start, start, 16); !errors.Is(err, apperrors.ErrInvalidRange) {
		t.Fatalf("expected invalid range for equal times, got %v", err)
	}
	r, _ := domain.NewRecord(1, start, start.Add(time.Hour), 16)
	if _, err := r.WithTimes(start, start.Add(-time.Hour)); !errors.Is(err, apperrors.ErrInvalidRange) {
		t.Fatalf("expected invalid range for reversed times, got %v", err)
	}
	if r.Duration != time.Hour {
		t.Fatalf("receiver must be untouched, got %+v", r)
	}
}

func TestWithTimesKeepsOriginalGoal(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	r, _ := domain.NewRecord(1, start, start.Add(10*time.Hour), 18)
	edited, err := r.WithTimes(start.Add(-10*time.Hour), start.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Goal != 18 || !edited.MetGoal || edited.Duration != 20*time.Hour || edited.ID != 1 {
		t.Fatalf("unexpected edited record %+v", edited)
	}
}
