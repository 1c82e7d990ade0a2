package usecase

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/modules/fasting/dto"
	fastingin "fastrack/internal/modules/fasting/port/in"
	fastingout "fastrack/internal/modules/fasting/port/out"
	"fastrack/internal/modules/fasting/service"
	apperrors "fastrack/internal/platform/errors"
)

type Interactor struct {
	svc       *service.TrackerService
	projector fastingout.HistoryProjector
	journal   fastingout.JournalStore
	logger    hclog.Logger
}

// NewInteractor wires the tracker to its read-side adapters. projector and
// journal may be nil; the operations that need them then fail with
// ErrInvalidState.
func NewInteractor(svc *service.TrackerService, projector fastingout.HistoryProjector, journal fastingout.JournalStore, logger hclog.Logger) fastingin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, projector: projector, journal: journal, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error) {
	var (
		session domain.SessionState
		err     error
	)
	if input.At != nil {
		session, err = i.svc.StartAt(ctx, *input.At)
	} else {
		session, err = i.svc.Start(ctx)
	}
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return dto.SessionOutput{StartedAt: *session.StartTime, Protocol: protocolOutput(i.svc.Snapshot().Selected, true)}, nil
}

func (i *Interactor) Stop(ctx context.Context) (dto.RecordOutput, error) {
	record, err := i.svc.Stop(ctx)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	i.project(ctx, "upsert", func(p fastingout.HistoryProjector) error { return p.UpsertRecord(ctx, record) })
	return recordOutput(record), nil
}

func (i *Interactor) Status(_ context.Context) (dto.StatusOutput, error) {
	snap := i.svc.Snapshot()
	progress := i.svc.Progress()
	out := statusOutput(snap, progress)
	out.Streak = i.svc.Streak()
	if warning := i.svc.LastWarning(); warning != nil {
		out.Warning = warning.Error()
	}
	return out, nil
}

func (i *Interactor) Watch(ctx context.Context, input dto.WatchInput) (<-chan struct{}, error) {
	if input.OnTick == nil {
		return nil, fmt.Errorf("%w: watch callback is required", apperrors.ErrInvalidInput)
	}
	// Each tick re-reads the state so a protocol change shows up mid-watch.
	return i.svc.Watch(ctx, input.Interval, func(progress domain.Progress) {
		snap := i.svc.Snapshot()
		if !snap.Session.IsFasting {
			return
		}
		progress = domain.MeasureProgress(snap.Session, snap.Selected.Hours, progress.At)
		out := statusOutput(snap, progress)
		out.Streak = i.svc.Streak()
		input.OnTick(out)
	})
}

func (i *Interactor) History(_ context.Context) ([]dto.RecordOutput, error) {
	history := i.svc.Snapshot().History
	out := make([]dto.RecordOutput, 0, len(history))
	for _, record := range history {
		out = append(out, recordOutput(record))
	}
	return out, nil
}

func (i *Interactor) EditRecord(ctx context.Context, input dto.EditRecordInput) (dto.RecordOutput, error) {
	record, err := i.svc.EditRecord(ctx, input.ID, input.Start, input.End)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	i.project(ctx, "upsert", func(p fastingout.HistoryProjector) error { return p.UpsertRecord(ctx, record) })
	return recordOutput(record), nil
}

func (i *Interactor) DeleteRecord(ctx context.Context, input dto.DeleteRecordInput) (dto.DeleteRecordOutput, error) {
	deleted := i.svc.DeleteRecord(ctx, input.ID)
	if deleted {
		i.project(ctx, "delete", func(p fastingout.HistoryProjector) error { return p.DeleteRecord(ctx, input.ID) })
	}
	return dto.DeleteRecordOutput{ID: input.ID, Deleted: deleted}, nil
}

func (i *Interactor) ClearHistory(ctx context.Context) error {
	i.svc.ClearHistory(ctx)
	i.project(ctx, "reset", func(p fastingout.HistoryProjector) error { return p.Reset(ctx) })
	return nil
}

func (i *Interactor) Protocols(_ context.Context) ([]dto.ProtocolOutput, error) {
	selected := i.svc.Snapshot().Selected
	catalog := domain.Catalog()
	out := make([]dto.ProtocolOutput, 0, len(catalog)+1)
	for _, p := range catalog {
		out = append(out, protocolOutput(p, p == selected))
	}
	if !selected.InCatalog() {
		out = append(out, protocolOutput(selected, true))
	}
	return out, nil
}

func (i *Interactor) SetProtocol(ctx context.Context, input dto.SetProtocolInput) (dto.ProtocolOutput, error) {
	protocol := domain.Protocol{Label: input.Label, Hours: input.Hours}
	if input.Query != "" {
		found, ok := domain.LookupProtocol(input.Query)
		if !ok {
			return dto.ProtocolOutput{}, fmt.Errorf("%w: protocol %q", apperrors.ErrNotFound, input.Query)
		}
		protocol = found
	} else if protocol.Label == "" && protocol.Hours > 0 {
		protocol.Label = domain.LabelForGoal(protocol.Hours)
	}
	selected, err := i.svc.SetProtocol(ctx, protocol)
	if err != nil {
		return dto.ProtocolOutput{}, err
	}
	return protocolOutput(selected, true), nil
}

func (i *Interactor) Stats(_ context.Context) (dto.StatsOutput, error) {
	stats := i.svc.Stats()
	return dto.StatsOutput{
		TotalFasts:    stats.TotalFasts,
		GoalsMet:      stats.GoalsMet,
		Longest:       stats.Longest,
		Average:       stats.Average,
		Total:         stats.Total,
		CurrentStreak: stats.CurrentStreak,
		BestStreak:    stats.BestStreak,
	}, nil
}

func (i *Interactor) DailyTotals(ctx context.Context, input dto.DailyTotalsInput) ([]dto.DailyTotalOutput, error) {
	if i.projector == nil {
		return nil, fmt.Errorf("%w: history index is not configured", apperrors.ErrInvalidState)
	}
	totals, err := i.projector.DailyTotals(ctx, input.Since)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DailyTotalOutput, 0, len(totals))
	for _, total := range totals {
		out = append(out, dto.DailyTotalOutput{Day: total.Day, Fasts: total.Fasts, GoalsMet: total.GoalsMet, Total: total.Total})
	}
	return out, nil
}

func (i *Interactor) RecordNote(_ context.Context, id int64) (dto.NoteOutput, error) {
	if i.journal == nil {
		return dto.NoteOutput{}, fmt.Errorf("%w: journal is not configured", apperrors.ErrInvalidState)
	}
	snap := i.svc.Snapshot()
	idx := snap.IndexOf(id)
	if idx < 0 {
		return dto.NoteOutput{}, fmt.Errorf("%w: record %d", apperrors.ErrNotFound, id)
	}
	body, err := i.journal.RenderNote(snap.History[idx])
	if err != nil {
		return dto.NoteOutput{}, err
	}
	return dto.NoteOutput{ID: id, Markdown: body}, nil
}

func (i *Interactor) ExportJournal(ctx context.Context) (dto.ExportOutput, error) {
	if i.journal == nil {
		return dto.ExportOutput{}, fmt.Errorf("%w: journal is not configured", apperrors.ErrInvalidState)
	}
	history := i.svc.Snapshot().History
	indexPath, err := i.journal.Export(ctx, history, i.svc.Stats())
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{IndexPath: indexPath, Notes: len(history)}, nil
}

// Reindex rebuilds the projection from the persisted history.
func (i *Interactor) Reindex(ctx context.Context) error {
	if i.projector == nil {
		return fmt.Errorf("%w: history index is not configured", apperrors.ErrInvalidState)
	}
	if err := i.projector.Reset(ctx); err != nil {
		return fmt.Errorf("reset history index: %w", err)
	}
	for _, record := range i.svc.Snapshot().History {
		if err := i.projector.UpsertRecord(ctx, record); err != nil {
			return fmt.Errorf("index record %d: %w", record.ID, err)
		}
	}
	return nil
}

func (i *Interactor) project(ctx context.Context, op string, fn func(fastingout.HistoryProjector) error) {
	if i.projector == nil || ctx.Err() != nil {
		return
	}
	if err := fn(i.projector); err != nil {
		i.logger.Warn("history index update failed", "op", op, "error", err)
	}
}

func recordOutput(record domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		ID:       record.ID,
		Start:    record.Start,
		End:      record.End,
		Duration: record.Duration,
		Goal:     record.Goal,
		GoalName: domain.LabelForGoal(record.Goal),
		MetGoal:  record.MetGoal,
	}
}

func protocolOutput(p domain.Protocol, selected bool) dto.ProtocolOutput {
	out := dto.ProtocolOutput{Label: p.Label, Hours: p.Hours, Ratio: p.Ratio(), Selected: selected}
	for idx, c := range domain.Catalog() {
		if c == p {
			out.Index = idx + 1
			break
		}
	}
	return out
}

func statusOutput(snap domain.AppState, progress domain.Progress) dto.StatusOutput {
	out := dto.StatusOutput{
		Active:      snap.Session.IsFasting,
		Now:         progress.At,
		Elapsed:     progress.Elapsed,
		Progress:    progress.Fraction,
		GoalReached: progress.GoalReached,
		Protocol:    protocolOutput(snap.Selected, true),
	}
	if snap.Session.StartTime != nil {
		out.StartedAt = *snap.Session.StartTime
	}
	return out
}
