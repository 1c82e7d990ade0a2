package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/modules/fasting/dto"
	"fastrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	History(ctx context.Context) ([]dto.RecordOutput, error)
	RecordNote(ctx context.Context, id int64) (dto.NoteOutput, error)
	DailyTotals(ctx context.Context, since time.Time) ([]dto.DailyTotalOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Records []dto.RecordOutput
	Totals  []dto.DailyTotalOutput
	Err     error
}

type NoteMsg struct {
	Note dto.NoteOutput
	Err  error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record dto.RecordOutput
}

func (i recordItem) Title() string {
	return i.record.Start.Format("Mon 02 Jan 15:04") + "  " + domain.FormatClock(i.record.Duration)
}

func (i recordItem) Description() string {
	if i.record.MetGoal {
		return "✓ " + i.record.GoalName
	}
	return "✗ " + i.record.GoalName
}

func (i recordItem) FilterValue() string {
	return i.record.Start.Format("2006-01-02") + " " + i.record.GoalName
}

// ─── model ───────────────────────────────────────────────────────────────────

const totalsDays = 7

type Model struct {
	port     Port
	list     list.Model
	detail   viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	totals   []dto.DailyTotalOutput
	loading  bool
	err      error
	now      func() time.Time
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		list:     l,
		detail:   vp,
		spinner:  sp,
		renderer: r,
		loading:  true,
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches history and the last week of daily totals.
func (m Model) Reload() tea.Cmd {
	port := m.port
	since := dayStart(m.now(), totalsDays-1)
	return func() tea.Msg {
		if port == nil {
			return LoadedMsg{Err: fmt.Errorf("history port not configured")}
		}
		records, err := port.History(context.Background())
		if err != nil {
			return LoadedMsg{Err: err}
		}
		totals, err := port.DailyTotals(context.Background(), since)
		return LoadedMsg{Records: records, Totals: totals, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		m.totals = msg.Totals
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Records) == 0 {
			m.detail.SetContent(theme.Muted.Render("No fasts yet."))
		} else if id, ok := m.SelectedRecordID(); ok {
			cmds = append(cmds, m.loadNoteCmd(id))
		}

	case NoteMsg:
		// Notes for a record that is no longer selected arrive late; skip them.
		if id, ok := m.SelectedRecordID(); !ok || id != msg.Note.ID {
			break
		}
		if msg.Err != nil {
			m.detail.SetContent(theme.Bad.Render("Error: " + msg.Err.Error()))
			break
		}
		m.detail.SetContent(m.render(msg.Note.Markdown))
		m.detail.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if id, ok := m.SelectedRecordID(); ok {
				cmds = append(cmds, m.loadNoteCmd(id))
			}
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW
	totals := m.renderTotals()
	totalsH := lipgloss.Height(totals)

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(detailW - 2).
		Height(max(1, m.height-totalsH-2)).
		Render(m.detail.View())

	right := lipgloss.JoinVertical(lipgloss.Left, detailPane, totals)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, right)
}

func (m Model) SelectedRecordID() (int64, bool) {
	if item, ok := m.list.SelectedItem().(recordItem); ok {
		return item.record.ID, true
	}
	return 0, false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = max(1, m.height-totalsDays-6)
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.detail.Width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) render(markdown string) string {
	if m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

func (m Model) renderTotals() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Last 7 days") + "\n")
	if m.err != nil {
		sb.WriteString(theme.Bad.Render(m.err.Error()) + "\n")
	}
	if len(m.totals) == 0 {
		sb.WriteString(theme.Muted.Render("no fasts") + "\n")
	}
	for _, d := range m.totals {
		goals := theme.Muted.Render(fmt.Sprintf("%d/%d goals", d.GoalsMet, d.Fasts))
		if d.GoalsMet > 0 {
			goals = theme.Good.Render(fmt.Sprintf("%d/%d goals", d.GoalsMet, d.Fasts))
		}
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", d.Day, domain.FormatClock(d.Total), goals))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}

func (m Model) loadNoteCmd(id int64) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		note, err := port.RecordNote(context.Background(), id)
		note.ID = id
		return NoteMsg{Note: note, Err: err}
	}
}

func dayStart(t time.Time, daysBack int) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -daysBack)
}
