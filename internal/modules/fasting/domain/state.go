package domain

import "time"

const SchemaVersion = 1

// SessionState is the in-progress fast, if any. IsFasting is true exactly
// when StartTime is set.
type SessionState struct {
	IsFasting bool
	StartTime *time.Time
}

func IdleSession() SessionState {
	return SessionState{}
}

func ActiveSession(start time.Time) SessionState {
	return SessionState{IsFasting: true, StartTime: &start}
}

func (s SessionState) Valid() bool {
	return s.IsFasting == (s.StartTime != nil)
}

// AppState is everything that is persisted as one unit.
type AppState struct {
	History  []Record
	Selected Protocol
	Session  SessionState
}

func DefaultState() AppState {
	return AppState{
		History:  []Record{},
		Selected: DefaultProtocol(),
		Session:  IdleSession(),
	}
}

// Clone returns a copy that shares no slices or pointers with s.
func (s AppState) Clone() AppState {
	out := AppState{
		History:  make([]Record, len(s.History)),
		Selected: s.Selected,
		Session:  IdleSession(),
	}
	copy(out.History, s.History)
	if s.Session.IsFasting && s.Session.StartTime != nil {
		out.Session = ActiveSession(*s.Session.StartTime)
	}
	return out
}

// Normalize repairs invariants a store could not guarantee: an inconsistent
// session becomes idle, an invalid protocol falls back to the default, and
// history entries are recomputed or dropped when end is not after start.
// It reports how many records were dropped.
func (s AppState) Normalize() (AppState, int) {
	out := s.Clone()
	if !s.Session.Valid() {
		out.Session = IdleSession()
	}
	if out.Selected.Validate() != nil {
		out.Selected = DefaultProtocol()
	}
	kept := make([]Record, 0, len(out.History))
	for _, r := range out.History {
		fixed, err := r.WithTimes(r.Start, r.End)
		if err != nil {
			continue
		}
		kept = append(kept, fixed)
	}
	return AppState{History: kept, Selected: out.Selected, Session: out.Session}, len(out.History) - len(kept)
}

func (s AppState) IndexOf(id int64) int {
	for i, r := range s.History {
		if r.ID == id {
			return i
		}
	}
	return -1
}
