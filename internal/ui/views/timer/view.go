package timer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/modules/fasting/dto"
	"fastrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Status(ctx context.Context) (dto.StatusOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatusMsg struct {
	Status dto.StatusOutput
	Err    error
}

// TickMsg belongs to the session that started at Session. Ticks from an
// earlier session are dropped, which ends their chain.
type TickMsg struct {
	Session time.Time
	At      time.Time
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	interval time.Duration
	status   dto.StatusOutput
	bar      progress.Model
	session  time.Time
	err      error
	width    int
	height   int
}

func New(port Port, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	bar := progress.New(progress.WithGradient(string(theme.Peach), string(theme.Green)), progress.WithoutPercentage())
	return Model{port: port, interval: interval, bar: bar}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the status; the tick chain follows from the result.
func (m Model) Refresh() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return StatusMsg{Err: fmt.Errorf("timer port not configured")}
		}
		status, err := port.Status(context.Background())
		return StatusMsg{Status: status, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(m.width-8, 60))

	case StatusMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.status = msg.Status
		if !msg.Status.Active {
			m.session = time.Time{}
			return m, nil
		}
		if msg.Status.StartedAt.Equal(m.session) {
			return m, nil
		}
		m.session = msg.Status.StartedAt
		return m, m.tickCmd()

	case TickMsg:
		if m.session.IsZero() || !msg.Session.Equal(m.session) {
			return m, nil
		}
		return m, tea.Batch(m.Refresh(), m.tickCmd())
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	s := m.status

	sb.WriteString(theme.Title.Render("Fasting timer") + "\n\n")
	sb.WriteString(theme.Clock.Render(domain.FormatClock(s.Elapsed)) + "\n\n")
	sb.WriteString(m.bar.ViewAs(s.Progress) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%.0f%% of %s goal", s.Progress*100, goalText(s.Protocol))) + "\n\n")

	switch {
	case !s.Active:
		sb.WriteString(theme.Muted.Render("Not fasting. Press s to start.") + "\n")
	case s.GoalReached:
		sb.WriteString(theme.Good.Render("Goal reached!") + " " +
			theme.Muted.Render("Started "+s.StartedAt.Format("Mon 15:04")) + "\n")
	default:
		remaining := time.Duration(s.Protocol.Hours*float64(time.Hour)) - s.Elapsed
		sb.WriteString(theme.Hot.Render("Fasting") + " " +
			theme.Muted.Render("since "+s.StartedAt.Format("Mon 15:04")+", "+domain.FormatClock(remaining)+" to go") + "\n")
	}

	sb.WriteString("\n" + theme.Muted.Render("Protocol: ") + s.Protocol.Label + "\n")
	sb.WriteString(theme.Muted.Render("Eating window: ") + eatingWindow(s.Protocol) + "\n")
	if s.Streak > 0 {
		sb.WriteString("\n" + theme.Badge.Render(fmt.Sprintf("%d day streak", s.Streak)) + "\n")
	}
	if s.Warning != "" {
		sb.WriteString("\n" + theme.Bad.Render("not saved: "+s.Warning) + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + theme.Bad.Render("Error: "+m.err.Error()) + "\n")
	}

	pane := theme.PaneActive.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
}

func (m Model) Active() bool { return m.status.Active }

func (m Model) tickCmd() tea.Cmd {
	session := m.session
	return tea.Tick(m.interval, func(at time.Time) tea.Msg {
		return TickMsg{Session: session, At: at}
	})
}

func goalText(p dto.ProtocolOutput) string {
	return strconv.FormatFloat(p.Hours, 'f', -1, 64) + "h"
}

func eatingWindow(p dto.ProtocolOutput) string {
	eating := 24 - p.Hours
	if eating <= 0 {
		return "none"
	}
	return strconv.FormatFloat(eating, 'f', -1, 64) + "h after the goal"
}
