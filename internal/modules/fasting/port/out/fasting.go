package out

import (
	"context"
	"time"

	"fastrack/internal/modules/fasting/domain"
)

// StateStore persists the whole AppState as one blob. Load returns a usable
// state even when it also returns an apperrors.ErrPersistence warning.
type StateStore interface {
	Load(ctx context.Context) (domain.AppState, error)
	Save(ctx context.Context, state domain.AppState) error
}

type HistoryProjector interface {
	Reset(ctx context.Context) error
	UpsertRecord(ctx context.Context, record domain.Record) error
	DeleteRecord(ctx context.Context, id int64) error
	DailyTotals(ctx context.Context, since time.Time) ([]domain.DailyTotal, error)
}

type JournalStore interface {
	RenderNote(record domain.Record) (string, error)
	Export(ctx context.Context, records []domain.Record, stats domain.Stats) (string, error)
}
