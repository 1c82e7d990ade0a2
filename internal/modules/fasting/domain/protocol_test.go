package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"fastrack/internal/modules/fasting/domain"
	apperrors "fastrack/internal/platform/errors"
)

func TestCatalogDefaultsAndLookup(t *testing.T) {
	t.Parallel()
	if domain.DefaultProtocol().Label != "16:8 (Lean Gains)" {
		t.Fatalf("unexpected default %+v", domain.DefaultProtocol())
	}
	cat := domain.Catalog()
	cat[0].Hours = 99
	if domain.Catalog()[0].Hours != 16 {
		t.Fatalf("catalog must be copied")
	}
	if p, ok := domain.LookupProtocol("3"); !ok || p.Hours != 20 {
		t.Fatalf("expected OMAD for index 3, got %+v %t", p, ok)
	}
	if p, ok := domain.LookupProtocol("12:12"); !ok || p.Hours != 12 {
		t.Fatalf("expected beginner for label prefix, got %+v %t", p, ok)
	}
	if _, ok := domain.LookupProtocol("9"); ok {
		t.Fatalf("out of range index must not resolve")
	}
}

func TestProtocolValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.Protocol{Label: "36h", Hours: 36}).Validate(); err != nil {
		t.Fatalf("custom protocol should be valid: %v", err)
	}
	for _, p := range []domain.Protocol{{Label: "", Hours: 1}, {Label: "zero", Hours: 0}, {Label: "nan", Hours: math.NaN()}} {
		if err := p.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", p, err)
		}
	}
}

func TestProtocolRatioAndLabels(t *testing.T) {
	t.Parallel()
	if got := domain.DefaultProtocol().Ratio(); got != "16:8" {
		t.Fatalf("unexpected ratio %s", got)
	}
	if got := domain.LabelForGoal(20); got != "20:4 (OMAD)" {
		t.Fatalf("unexpected label %s", got)
	}
	if got := domain.LabelForGoal(36); got != "36h" {
		t.Fatalf("unexpected custom label %s", got)
	}
}

func TestProgressMath(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	session := domain.ActiveSession(start)
	if got := domain.Elapsed(session, start.Add(90*time.Minute)); got != 90*time.Minute {
		t.Fatalf("unexpected elapsed %s", got)
	}
	if got := domain.Elapsed(domain.IdleSession(), start); got != 0 {
		t.Fatalf("idle elapsed must be zero, got %s", got)
	}
	if got := domain.ProgressFraction(8*time.Hour, 16); got != 0.5 {
		t.Fatalf("unexpected fraction %v", got)
	}
	if got := domain.ProgressFraction(20*time.Hour, 16); got != 1 {
		t.Fatalf("fraction must cap at 1, got %v", got)
	}
	if !domain.GoalReached(20*time.Hour, 16) || domain.GoalReached(15*time.Hour, 16) {
		t.Fatalf("unexpected goal reached results")
	}
	p := domain.MeasureProgress(session, 16, start.Add(17*time.Hour))
	if !p.GoalReached || p.Fraction != 1 || p.Elapsed != 17*time.Hour {
		t.Fatalf("unexpected progress %+v", p)
	}
	if got := domain.FormatClock(26*time.Hour + 3*time.Minute + 9*time.Second); got != "26:03:09" {
		t.Fatalf("unexpected clock %s", got)
	}
}

func TestNormalizeRepairsState(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	good, _ := domain.NewRecord(2, start, start.Add(17*time.Hour), 16)
	bad := domain.Record{ID: 1, Start: start, End: start, Goal: 16}
	state := domain.AppState{
		History:  []domain.Record{good, bad},
		Selected: domain.Protocol{Label: "", Hours: 0},
		Session:  domain.SessionState{IsFasting: true},
	}
	fixed, dropped := state.Normalize()
	if dropped != 1 || len(fixed.History) != 1 || fixed.History[0].ID != 2 {
		t.Fatalf("expected invalid record dropped, got %d %+v", dropped, fixed.History)
	}
	if fixed.Session.IsFasting || fixed.Selected != domain.DefaultProtocol() {
		t.Fatalf("expected idle session and default protocol, got %+v", fixed)
	}
}
