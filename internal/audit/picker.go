package audit

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(1, 0, 1, 2)
	pickerItem   = lipgloss.NewStyle().PaddingLeft(4)
	pickerCursor = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).PaddingLeft(2)
	pickerHint   = lipgloss.NewStyle().Foreground(colorMuted).Padding(1, 0, 0, 2)
)

// Picker outcomes other than a label index.
const (
	pickerPending = -1
	pickerQuit    = -2
)

type pickerModel struct {
	labels []string
	topics []string
	keys   keyMap
	cursor int
	chosen int
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		m.chosen = pickerQuit
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(km, m.keys.Down):
		m.cursor = clamp(m.cursor+1, 0, max(len(m.labels)-1, 0))
	case key.Matches(km, m.keys.Open) && len(m.labels) > 0:
		m.chosen = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	title := "Source Preview: select a source"
	if len(m.topics) > 0 {
		title += " (topics: " + strings.Join(m.topics, ", ") + ")"
	}

	var b strings.Builder
	b.WriteString(pickerTitle.Render(title) + "\n")
	for i, label := range m.labels {
		if i == m.cursor {
			b.WriteString(pickerCursor.Render("> "+label) + "\n")
		} else {
			b.WriteString(pickerItem.Render(label) + "\n")
		}
	}
	b.WriteString(pickerHint.Render(helpLine(m.keys.Up, m.keys.Down, m.keys.Open, m.keys.Quit)))
	return b.String()
}

// RunSourcePicker asks the user to pick one of labels. It returns the chosen
// index, or -1 when the user quit.
func RunSourcePicker(labels, topics []string) (int, error) {
	result, err := tea.NewProgram(pickerModel{
		labels: labels,
		topics: topics,
		keys:   defaultKeys(),
		chosen: pickerPending,
	}).Run()
	if err != nil {
		return -1, err
	}
	return max(result.(pickerModel).chosen, -1), nil
}
