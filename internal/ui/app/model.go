package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/modules/fasting/dto"
	apperrors "fastrack/internal/platform/errors"
	"fastrack/internal/ui/components"
	"fastrack/internal/ui/theme"
	historyview "fastrack/internal/ui/views/history"
	timerview "fastrack/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// fastingPort is everything the orchestration layer drives. Sub-views get a
// narrower bridge.

type fastingPort interface {
	Start(ctx context.Context, at *time.Time) (dto.SessionOutput, error)
	Stop(ctx context.Context) (dto.RecordOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	History(ctx context.Context) ([]dto.RecordOutput, error)
	EditRecord(ctx context.Context, id int64, start, end time.Time) (dto.RecordOutput, error)
	DeleteRecord(ctx context.Context, id int64) (dto.DeleteRecordOutput, error)
	ClearHistory(ctx context.Context) error
	SelectProtocol(ctx context.Context, query string) (dto.ProtocolOutput, error)
	CustomProtocol(ctx context.Context, label string, hours float64) (dto.ProtocolOutput, error)
	DailyTotals(ctx context.Context, since time.Time) ([]dto.DailyTotalOutput, error)
	RecordNote(ctx context.Context, id int64) (dto.NoteOutput, error)
	ExportJournal(ctx context.Context) (dto.ExportOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Timer", "History"}

// ─── async messages ──────────────────────────────────────────────────────────

// actionMsg reports the result of a command that changes tracker state.
// Every successful action refreshes both views.
type actionMsg struct {
	status string
	err    error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Start   key.Binding
	Stop    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start fast")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop fast")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit selected fast")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected fast")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Start, k.Stop, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Start, k.Stop},
		{k.Edit, k.Delete},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; tracker work goes through the fasting port.
type Model struct {
	dataDir string
	fasting fastingPort

	timerView   timerview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(dataDir string, interval time.Duration, fasting fastingPort) Model {
	var timerV timerview.Model
	var historyV historyview.Model
	if fasting != nil {
		timerV = timerview.New(timerPortBridge{p: fasting}, interval)
		historyV = historyview.New(historyPortBridge{p: fasting})
	} else {
		timerV = timerview.New(nil, interval)
		historyV = historyview.New(nil)
	}
	return Model{
		dataDir:     dataDir,
		fasting:     fasting,
		timerView:   timerV,
		historyView: historyV,
		activeTab:   tabTimer,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "data in " + dataDir,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.historyView.Init(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Async results bypass tab routing and the palette so the timer keeps
	// ticking whatever has focus.
	switch msg := msg.(type) {
	case timerview.StatusMsg, timerview.TickMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd

	case historyview.LoadedMsg, historyview.NoteMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, tea.Batch(m.timerView.Refresh(), m.historyView.Reload())
	}

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.activeTab == tabHistory && m.historyView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open("")
		case "s":
			return m, m.startCmd(nil)
		case "x":
			return m, m.stopCmd()
		case "d":
			if m.activeTab == tabHistory {
				if id, ok := m.historyView.SelectedRecordID(); ok {
					return m, m.palette.Open("history:delete " + strconv.FormatInt(id, 10))
				}
			}
		case "e":
			if m.activeTab == tabHistory {
				if id, ok := m.historyView.SelectedRecordID(); ok {
					return m, m.palette.Open("history:edit " + strconv.FormatInt(id, 10) + " ")
				}
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "fastrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.timerView.Active() {
		left = theme.Hot.Render("● fasting") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "fast:start":
		return m, m.startCmd(nil)

	case "fast:start-at":
		if len(parts) < 2 {
			m.status = "usage: fast:start-at <2006-01-02T15:04>"
			return m, nil
		}
		at, err := parsePaletteTime(parts[1])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.startCmd(&at)

	case "fast:stop":
		return m, m.stopCmd()

	case "history:edit":
		if len(parts) < 4 {
			m.status = "usage: history:edit <id> <start> <end>"
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.status = "invalid id: " + parts[1]
			return m, nil
		}
		start, err := parsePaletteTime(parts[2])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		end, err := parsePaletteTime(parts[3])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.activeTab = tabHistory
		return m, m.editCmd(id, start, end)

	case "history:delete":
		if len(parts) < 2 {
			m.status = "usage: history:delete <id>"
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.status = "invalid id: " + parts[1]
			return m, nil
		}
		return m, m.deleteCmd(id)

	case "history:clear":
		return m, m.clearCmd()

	case "history:export":
		return m, m.exportCmd()

	case "protocol:set":
		if len(parts) < 2 {
			m.status = "usage: protocol:set <index|label>"
			return m, nil
		}
		return m, m.selectProtocolCmd(strings.Join(parts[1:], " "))

	case "protocol:custom":
		if len(parts) < 2 {
			m.status = "usage: protocol:custom <hours> [label]"
			return m, nil
		}
		hours, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			m.status = "invalid hours: " + parts[1]
			return m, nil
		}
		return m, m.customProtocolCmd(strings.Join(parts[2:], " "), hours)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func parsePaletteTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want 2006-01-02T15:04", raw)
	}
	return t, nil
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) run(fn func(ctx context.Context, p fastingPort) (string, error)) tea.Cmd {
	p := m.fasting
	return func() tea.Msg {
		if p == nil {
			return actionMsg{err: errors.New("fasting adapter not configured")}
		}
		status, err := fn(context.Background(), p)
		return actionMsg{status: status, err: err}
	}
}

func (m Model) startCmd(at *time.Time) tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		out, err := p.Start(ctx, at)
		if errors.Is(err, apperrors.ErrActiveSessionExists) {
			return "", errors.New("already fasting")
		}
		if err != nil {
			return "", fmt.Errorf("start failed: %w", err)
		}
		return "fast started " + out.StartedAt.Format("Mon 15:04") + " (" + out.Protocol.Label + ")", nil
	})
}

func (m Model) stopCmd() tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		rec, err := p.Stop(ctx)
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return "", errors.New("not fasting")
		}
		if err != nil {
			return "", fmt.Errorf("stop failed: %w", err)
		}
		result := "goal missed"
		if rec.MetGoal {
			result = "goal met"
		}
		return "fast ended after " + domain.FormatClock(rec.Duration) + ", " + result, nil
	})
}

func (m Model) editCmd(id int64, start, end time.Time) tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		rec, err := p.EditRecord(ctx, id, start, end)
		if err != nil {
			return "", fmt.Errorf("edit failed: %w", err)
		}
		return "fast updated: " + domain.FormatClock(rec.Duration), nil
	})
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		out, err := p.DeleteRecord(ctx, id)
		if err != nil {
			return "", fmt.Errorf("delete failed: %w", err)
		}
		if !out.Deleted {
			return "no fast with id " + strconv.FormatInt(id, 10), nil
		}
		return "fast deleted", nil
	})
}

func (m Model) clearCmd() tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		if err := p.ClearHistory(ctx); err != nil {
			return "", fmt.Errorf("clear failed: %w", err)
		}
		return "history cleared", nil
	})
}

func (m Model) exportCmd() tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		out, err := p.ExportJournal(ctx)
		if err != nil {
			return "", fmt.Errorf("export failed: %w", err)
		}
		return fmt.Sprintf("exported %d notes to %s", out.Notes, out.IndexPath), nil
	})
}

func (m Model) selectProtocolCmd(query string) tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		out, err := p.SelectProtocol(ctx, query)
		if err != nil {
			return "", fmt.Errorf("protocol: %w", err)
		}
		return "protocol set: " + out.Label, nil
	})
}

func (m Model) customProtocolCmd(label string, hours float64) tea.Cmd {
	return m.run(func(ctx context.Context, p fastingPort) (string, error) {
		out, err := p.CustomProtocol(ctx, label, hours)
		if err != nil {
			return "", fmt.Errorf("protocol: %w", err)
		}
		return "protocol set: " + out.Label, nil
	})
}

// ─── port bridges ────────────────────────────────────────────────────────────

type timerPortBridge struct{ p fastingPort }

func (b timerPortBridge) Status(ctx context.Context) (dto.StatusOutput, error) {
	return b.p.Status(ctx)
}

type historyPortBridge struct{ p fastingPort }

func (b historyPortBridge) History(ctx context.Context) ([]dto.RecordOutput, error) {
	return b.p.History(ctx)
}

func (b historyPortBridge) RecordNote(ctx context.Context, id int64) (dto.NoteOutput, error) {
	return b.p.RecordNote(ctx, id)
}

func (b historyPortBridge) DailyTotals(ctx context.Context, since time.Time) ([]dto.DailyTotalOutput, error) {
	return b.p.DailyTotals(ctx, since)
}
