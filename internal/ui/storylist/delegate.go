package storylist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6600"))

	selectedDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6600")).
			Width(4).
			Align(lipgloss.Right)
)

// Delegate renders a story as an index and title line over a meta line.
type Delegate struct {
	Now func() time.Time
}

func (d Delegate) Height() int                             { return 2 }
func (d Delegate) Spacing() int                            { return 1 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(Item)
	if !ok {
		return
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	idx := indexStyle.Render(fmt.Sprintf("%d.", item.Index+1))
	titleWidth := max(m.Width()-6, 10)
	title := truncate(item.Title(), titleWidth)
	desc := truncate(item.Description(now()), titleWidth)

	if index == m.Index() {
		title = selectedTitleStyle.Render(title)
		desc = selectedDescStyle.Render(desc)
	} else {
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s %s\n     %s", idx, title, desc)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
