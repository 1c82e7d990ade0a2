package service

import (
	"context"
	"fmt"
	"time"

	"fastrack/internal/modules/fasting/domain"
	apperrors "fastrack/internal/platform/errors"
)

// Watch calls fn with a fresh progress reading every interval while the
// session is active. The ticker belongs to the session: Stop cancels it, and
// a later Watch replaces it. The returned channel closes once ticking ends.
func (s *TrackerService) Watch(ctx context.Context, interval time.Duration, fn func(domain.Progress)) (<-chan struct{}, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: watch interval must be positive", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	if !s.state.Session.IsFasting {
		s.mu.Unlock()
		return nil, apperrors.ErrNoActiveSession
	}
	s.cancelWatchLocked()
	runCtx, cancel := context.WithCancel(ctx)
	s.stopWatch = cancel
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				progress, active := s.tick()
				if !active || runCtx.Err() != nil {
					return
				}
				fn(progress)
			}
		}
	}()
	return done, nil
}

func (s *TrackerService) tick() (domain.Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Session.IsFasting {
		return domain.Progress{}, false
	}
	return domain.MeasureProgress(s.state.Session, s.state.Selected.Hours, s.now()), true
}

func (s *TrackerService) cancelWatchLocked() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
}
