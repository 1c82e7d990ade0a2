package dto

import "time"

type StartInput struct {
	// At backfills the start; nil means now.
	At *time.Time
}

type SessionOutput struct {
	StartedAt time.Time
	Protocol  ProtocolOutput
}

type ProtocolOutput struct {
	Index    int
	Label    string
	Hours    float64
	Ratio    string
	Selected bool
}

type RecordOutput struct {
	ID       int64
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Goal     float64
	GoalName string
	MetGoal  bool
}

type StatusOutput struct {
	Active      bool
	StartedAt   time.Time
	Now         time.Time
	Elapsed     time.Duration
	Progress    float64
	GoalReached bool
	Protocol    ProtocolOutput
	Streak      int
	// Warning carries the last persistence problem, if any.
	Warning string
}

type WatchInput struct {
	Interval time.Duration
	OnTick   func(StatusOutput)
}

type EditRecordInput struct {
	ID    int64
	Start time.Time
	End   time.Time
}

type DeleteRecordInput struct {
	ID int64
}

type DeleteRecordOutput struct {
	ID      int64
	Deleted bool
}

type SetProtocolInput struct {
	// Query selects a catalog entry by 1-based index or label prefix.
	Query string
	// Label and Hours define a custom protocol when Query is empty.
	Label string
	Hours float64
}

type StatsOutput struct {
	TotalFasts    int
	GoalsMet      int
	Longest       time.Duration
	Average       time.Duration
	Total         time.Duration
	CurrentStreak int
	BestStreak    int
}

type DailyTotalsInput struct {
	Since time.Time
}

type DailyTotalOutput struct {
	Day      string
	Fasts    int
	GoalsMet int
	Total    time.Duration
}

type ExportOutput struct {
	IndexPath string
	Notes     int
}

type NoteOutput struct {
	ID       int64
	Markdown string
}
