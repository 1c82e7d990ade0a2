package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"fastrack/internal/modules/fasting/domain"
	fastingout "fastrack/internal/modules/fasting/port/out"
	"fastrack/internal/platform/clock"
	apperrors "fastrack/internal/platform/errors"
	"fastrack/internal/platform/id"
)

// TrackerService owns the AppState. Every mutation goes through one of its
// methods and is followed by a save; save failures are logged, not returned.
type TrackerService struct {
	clock  clock.Clock
	ids    id.Allocator
	store  fastingout.StateStore
	logger hclog.Logger

	mu          sync.Mutex
	state       domain.AppState
	lastWarning error
	stopWatch   context.CancelFunc
}

// NewTrackerService loads the persisted state once. A load problem is logged
// and the tracker continues with whatever the store could recover.
func NewTrackerService(ctx context.Context, clock clock.Clock, ids id.Allocator, store fastingout.StateStore, logger hclog.Logger) *TrackerService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &TrackerService{clock: clock, ids: ids, store: store, logger: logger}

	state, err := store.Load(ctx)
	if err != nil {
		s.warn("load state failed", err)
		if !errors.Is(err, apperrors.ErrPersistence) {
			state = domain.DefaultState()
		}
	}
	state, dropped := state.Normalize()
	if dropped > 0 {
		s.logger.Warn("dropped invalid history records", "count", dropped)
	}
	s.state = state
	return s
}

func (s *TrackerService) Start(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, s.now())
}

// StartAt backfills a session that began earlier; it cannot start in the future.
func (s *TrackerService) StartAt(ctx context.Context, at time.Time) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Session.IsFasting {
		return domain.SessionState{}, apperrors.ErrActiveSessionExists
	}
	at = at.Truncate(time.Millisecond)
	if now := s.now(); at.After(now) {
		return domain.SessionState{}, fmt.Errorf("%w: start %s is after now %s", apperrors.ErrInvalidTime,
			at.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return s.startLocked(ctx, at)
}

func (s *TrackerService) startLocked(ctx context.Context, at time.Time) (domain.SessionState, error) {
	if s.state.Session.IsFasting {
		return domain.SessionState{}, apperrors.ErrActiveSessionExists
	}
	s.state.Session = domain.ActiveSession(at)
	s.saveLocked(ctx)
	s.logger.Debug("session started", "start", at)
	return s.state.Clone().Session, nil
}

// Stop ends the active session and prepends the finished fast to history.
func (s *TrackerService) Stop(ctx context.Context) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Session.IsFasting {
		return domain.Record{}, apperrors.ErrNoActiveSession
	}
	start := *s.state.Session.StartTime
	end := s.now()
	if !end.After(start) {
		end = start.Add(time.Millisecond)
	}
	record, err := domain.NewRecord(s.ids.Next(end, s.hasRecordLocked), start, end, s.state.Selected.Hours)
	if err != nil {
		return domain.Record{}, err
	}

	history := make([]domain.Record, 0, len(s.state.History)+1)
	s.state.History = append(append(history, record), s.state.History...)
	s.state.Session = domain.IdleSession()
	s.cancelWatchLocked()
	s.saveLocked(ctx)
	s.logger.Debug("session stopped", "id", record.ID, "duration", record.Duration, "met_goal", record.MetGoal)
	return record, nil
}

// Elapsed never mutates state; it is what the display ticker polls.
func (s *TrackerService) Elapsed(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Elapsed(s.state.Session, now)
}

// Progress measures the active session against the selected protocol.
func (s *TrackerService) Progress() domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.MeasureProgress(s.state.Session, s.state.Selected.Hours, s.now())
}

// EditRecord replaces a record's interval. The goal recorded at the time of
// the fast is kept; history is unchanged when the edit is rejected.
func (s *TrackerService) EditRecord(ctx context.Context, recordID int64, start, end time.Time) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.state.IndexOf(recordID)
	if idx < 0 {
		return domain.Record{}, fmt.Errorf("%w: record %d", apperrors.ErrNotFound, recordID)
	}
	updated, err := s.state.History[idx].WithTimes(start.Truncate(time.Millisecond), end.Truncate(time.Millisecond))
	if err != nil {
		return domain.Record{}, err
	}
	s.state.History[idx] = updated
	s.saveLocked(ctx)
	return updated, nil
}

// DeleteRecord is idempotent; it reports whether a record was removed.
func (s *TrackerService) DeleteRecord(ctx context.Context, recordID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.state.IndexOf(recordID)
	if idx < 0 {
		return false
	}
	history := make([]domain.Record, 0, len(s.state.History)-1)
	history = append(history, s.state.History[:idx]...)
	s.state.History = append(history, s.state.History[idx+1:]...)
	s.saveLocked(ctx)
	return true
}

// SetProtocol only affects fasts stopped from now on.
func (s *TrackerService) SetProtocol(ctx context.Context, protocol domain.Protocol) (domain.Protocol, error) {
	if err := protocol.Validate(); err != nil {
		return domain.Protocol{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = protocol
	s.saveLocked(ctx)
	return protocol, nil
}

func (s *TrackerService) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = []domain.Record{}
	s.saveLocked(ctx)
}

func (s *TrackerService) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStreak(s.state.History, s.now())
}

func (s *TrackerService) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.state.History, s.now())
}

func (s *TrackerService) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *TrackerService) Now() time.Time {
	return s.now()
}

// LastWarning returns the most recent persistence problem, or nil.
func (s *TrackerService) LastWarning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWarning
}

func (s *TrackerService) now() time.Time {
	return s.clock.Now().Truncate(time.Millisecond)
}

func (s *TrackerService) hasRecordLocked(recordID int64) bool {
	return s.state.IndexOf(recordID) >= 0
}

func (s *TrackerService) saveLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.state.Clone()); err != nil {
		s.warn("save state failed", err)
		return
	}
	s.lastWarning = nil
}

func (s *TrackerService) warn(msg string, err error) {
	s.lastWarning = err
	s.logger.Warn(msg, "error", err)
}
