package in

import (
	"context"
	"time"

	"fastrack/internal/modules/fasting/dto"
	fastingin "fastrack/internal/modules/fasting/port/in"
)

type CLIHandler struct {
	usecase fastingin.Usecase
}

func NewCLIHandler(usecase fastingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Start begins a fast now, or at the given time when at is non-nil.
func (h CLIHandler) Start(ctx context.Context, at *time.Time) (dto.SessionOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{At: at})
}

func (h CLIHandler) Stop(ctx context.Context) (dto.RecordOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Watch(ctx context.Context, interval time.Duration, onTick func(dto.StatusOutput)) (<-chan struct{}, error) {
	return h.usecase.Watch(ctx, dto.WatchInput{Interval: interval, OnTick: onTick})
}

func (h CLIHandler) History(ctx context.Context) ([]dto.RecordOutput, error) {
	return h.usecase.History(ctx)
}

func (h CLIHandler) EditRecord(ctx context.Context, id int64, start, end time.Time) (dto.RecordOutput, error) {
	return h.usecase.EditRecord(ctx, dto.EditRecordInput{ID: id, Start: start, End: end})
}

func (h CLIHandler) DeleteRecord(ctx context.Context, id int64) (dto.DeleteRecordOutput, error) {
	return h.usecase.DeleteRecord(ctx, dto.DeleteRecordInput{ID: id})
}

func (h CLIHandler) ClearHistory(ctx context.Context) error {
	return h.usecase.ClearHistory(ctx)
}

func (h CLIHandler) Protocols(ctx context.Context) ([]dto.ProtocolOutput, error) {
	return h.usecase.Protocols(ctx)
}

// SelectProtocol picks a catalog entry by index or label prefix.
func (h CLIHandler) SelectProtocol(ctx context.Context, query string) (dto.ProtocolOutput, error) {
	return h.usecase.SetProtocol(ctx, dto.SetProtocolInput{Query: query})
}

func (h CLIHandler) CustomProtocol(ctx context.Context, label string, hours float64) (dto.ProtocolOutput, error) {
	return h.usecase.SetProtocol(ctx, dto.SetProtocolInput{Label: label, Hours: hours})
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) DailyTotals(ctx context.Context, since time.Time) ([]dto.DailyTotalOutput, error) {
	return h.usecase.DailyTotals(ctx, dto.DailyTotalsInput{Since: since})
}

func (h CLIHandler) RecordNote(ctx context.Context, id int64) (dto.NoteOutput, error) {
	return h.usecase.RecordNote(ctx, id)
}

func (h CLIHandler) ExportJournal(ctx context.Context) (dto.ExportOutput, error) {
	return h.usecase.ExportJournal(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
