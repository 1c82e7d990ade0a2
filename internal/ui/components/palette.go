package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fastrack/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// hints must stay in sync with the switch in app/model.go executePalette.
var paletteHints = []string{
	"fast:start",
	"fast:start-at <2006-01-02T15:04>",
	"fast:stop",
	"history:edit <id> <start> <end>",
	"history:delete <id>",
	"history:clear",
	"history:export",
	"protocol:set <index|label>",
	"protocol:custom <hours> [label]",
}

const maxHints = 5

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 128
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, optionally prefilled, and returns the focus command.
func (p *Palette) Open(prefill string) tea.Cmd {
	p.visible = true
	p.input.SetValue(prefill)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if hints := matchingHints(p.input.Value()); len(hints) == 1 {
				p.input.SetValue(strings.Fields(hints[0])[0] + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if hints := matchingHints(p.input.Value()); len(hints) > 0 {
		sb.WriteString("\n")
		for _, h := range hints {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// matchingHints filters on the command word only, so hints stay visible
// while arguments are typed.
func matchingHints(value string) []string {
	word := strings.ToLower(value)
	if fields := strings.Fields(word); len(fields) > 0 {
		word = fields[0]
	}
	var out []string
	for _, h := range paletteHints {
		if word == "" || strings.HasPrefix(h, word) {
			out = append(out, h)
			if len(out) == maxHints {
				break
			}
		}
	}
	return out
}
