package in

import (
	"context"

	"fastrack/internal/modules/fasting/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Stop(ctx context.Context) (dto.RecordOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Watch(ctx context.Context, input dto.WatchInput) (<-chan struct{}, error)
	History(ctx context.Context) ([]dto.RecordOutput, error)
	EditRecord(ctx context.Context, input dto.EditRecordInput) (dto.RecordOutput, error)
	DeleteRecord(ctx context.Context, input dto.DeleteRecordInput) (dto.DeleteRecordOutput, error)
	ClearHistory(ctx context.Context) error
	Protocols(ctx context.Context) ([]dto.ProtocolOutput, error)
	SetProtocol(ctx context.Context, input dto.SetProtocolInput) (dto.ProtocolOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	DailyTotals(ctx context.Context, input dto.DailyTotalsInput) ([]dto.DailyTotalOutput, error)
	RecordNote(ctx context.Context, id int64) (dto.NoteOutput, error)
	ExportJournal(ctx context.Context) (dto.ExportOutput, error)
	Reindex(ctx context.Context) error
}
