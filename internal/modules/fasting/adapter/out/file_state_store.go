package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fastrack/internal/modules/fasting/domain"
	fastingout "fastrack/internal/modules/fasting/port/out"
	apperrors "fastrack/internal/platform/errors"
)

// FileStateStore keeps the AppState as a single JSON blob. The layout matches
// the browser build's localStorage value so exported blobs load unchanged.
type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) fastingout.StateStore {
	return &FileStateStore{path: path}
}

type wireRecord struct {
	ID       int64   `json:"id"`
	Start    int64   `json:"start"`
	End      int64   `json:"end"`
	Duration int64   `json:"duration"`
	Goal     float64 `json:"goal"`
	MetGoal  bool    `json:"metGoal"`
}

type wireProtocol struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

type wireState struct {
	History      []wireRecord `json:"history"`
	SelectedMode wireProtocol `json:"selectedMode"`
	IsFasting    bool         `json:"isFasting"`
	StartTime    *int64       `json:"startTime"`
}

func (s *FileStateStore) Save(_ context.Context, state domain.AppState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create state dir: %v", apperrors.ErrPersistence, err)
	}
	payload, err := json.MarshalIndent(toWire(state), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal state: %v", apperrors.ErrPersistence, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp state: %v", apperrors.ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write state: %v", apperrors.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close state: %v", apperrors.ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace state: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

// Load never fails outright. A missing file is the default state; anything
// unreadable is defaulted field by field and reported as ErrPersistence.
func (s *FileStateStore) Load(_ context.Context) (domain.AppState, error) {
	state := domain.DefaultState()
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, fmt.Errorf("%w: read state: %v", apperrors.ErrPersistence, err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return state, fmt.Errorf("%w: decode state: %v", apperrors.ErrPersistence, err)
	}

	var problems []string
	if raw, ok := fields["history"]; ok {
		history, dropped, err := decodeHistory(raw)
		switch {
		case err != nil:
			problems = append(problems, "history: "+err.Error())
		default:
			state.History = history
			if dropped > 0 {
				problems = append(problems, fmt.Sprintf("history: dropped %d malformed records", dropped))
			}
		}
	}

	raw, ok := fields["selectedMode"]
	if !ok {
		raw, ok = fields["selectedProtocol"]
	}
	if ok {
		protocol, err := decodeProtocol(raw)
		if err != nil {
			problems = append(problems, "selectedMode: "+err.Error())
		} else {
			state.Selected = protocol
		}
	}

	fasting := false
	if raw, ok := fields["isFasting"]; ok {
		if err := json.Unmarshal(raw, &fasting); err != nil {
			problems = append(problems, "isFasting: "+err.Error())
		}
	}
	var start *time.Time
	if raw, ok := fields["startTime"]; ok && !isNull(raw) {
		ms, err := decodeMillis(raw)
		if err != nil {
			problems = append(problems, "startTime: "+err.Error())
		} else {
			at := time.UnixMilli(ms)
			start = &at
		}
	}
	if fasting && start != nil {
		state.Session = domain.ActiveSession(*start)
	} else if fasting != (start != nil) {
		problems = append(problems, "session: isFasting and startTime disagree, loaded as idle")
	}

	if len(problems) > 0 {
		return state, fmt.Errorf("%w: %s", apperrors.ErrPersistence, strings.Join(problems, "; "))
	}
	return state, nil
}

func decodeHistory(raw json.RawMessage) ([]domain.Record, int, error) {
	if isNull(raw) {
		return []domain.Record{}, 0, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 0, err
	}
	history := make([]domain.Record, 0, len(entries))
	dropped := 0
	for _, rawEntry := range entries {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(rawEntry, &entry); err != nil || entry == nil {
			dropped++
			continue
		}
		record, err := decodeRecord(entry)
		if err != nil {
			dropped++
			continue
		}
		history = append(history, record)
	}
	return history, dropped, nil
}

// decodeRecord trusts only id, start, end and goal; duration and metGoal are
// recomputed so a hand-edited blob cannot disagree with itself.
func decodeRecord(entry map[string]json.RawMessage) (domain.Record, error) {
	start, err := decodeMillis(entry["start"])
	if err != nil {
		return domain.Record{}, fmt.Errorf("start: %w", err)
	}
	end, err := decodeMillis(entry["end"])
	if err != nil {
		return domain.Record{}, fmt.Errorf("end: %w", err)
	}
	id := end
	if raw, ok := entry["id"]; ok {
		if id, err = decodeMillis(raw); err != nil {
			return domain.Record{}, fmt.Errorf("id: %w", err)
		}
	}
	var goal float64
	if err := json.Unmarshal(entry["goal"], &goal); err != nil {
		return domain.Record{}, fmt.Errorf("goal: %w", err)
	}
	if math.IsNaN(goal) || goal <= 0 {
		return domain.Record{}, fmt.Errorf("goal must be positive")
	}
	return domain.NewRecord(id, time.UnixMilli(start), time.UnixMilli(end), goal)
}

func decodeProtocol(raw json.RawMessage) (domain.Protocol, error) {
	var wire wireProtocol
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Protocol{}, err
	}
	protocol := domain.Protocol{Label: wire.Label, Hours: wire.Hours}
	if err := protocol.Validate(); err != nil {
		return domain.Protocol{}, err
	}
	return protocol, nil
}

// decodeMillis accepts integral JSON numbers, including ones written with a
// fractional or exponent form.
func decodeMillis(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || isNull(raw) {
		return 0, fmt.Errorf("missing timestamp")
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, fmt.Errorf("timestamp %v is not an integer", value)
	}
	return int64(value), nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func toWire(state domain.AppState) wireState {
	out := wireState{
		History:      make([]wireRecord, 0, len(state.History)),
		SelectedMode: wireProtocol{Label: state.Selected.Label, Hours: state.Selected.Hours},
		IsFasting:    state.Session.IsFasting,
	}
	for _, r := range state.History {
		out.History = append(out.History, wireRecord{
			ID:       r.ID,
			Start:    r.Start.UnixMilli(),
			End:      r.End.UnixMilli(),
			Duration: r.Duration.Milliseconds(),
			Goal:     r.Goal,
			MetGoal:  r.MetGoal,
		})
	}
	if state.Session.IsFasting && state.Session.StartTime != nil {
		ms := state.Session.StartTime.UnixMilli()
		out.StartTime = &ms
	}
	return out
}
