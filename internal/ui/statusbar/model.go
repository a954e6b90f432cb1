package statusbar

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	appStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF6600")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#333333")).
				Foreground(lipgloss.Color("#888888")).
				Padding(0, 1)

	cachedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Pane labels, in focus order.
var tabs = []string{"Stories", "Preview"}

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	focus      int
	cached     int
	statusText string
	isError    bool
}

// New creates a new status bar.
func New() Model {
	return Model{}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetFocus highlights the pane at index i of the focus order.
func (m *Model) SetFocus(i int) {
	m.focus = i
}

// SetCached sets the number of stories in the preview cache.
func (m *Model) SetCached(n int) {
	m.cached = n
}

// SetStatus sets the status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// Status returns the current status message.
func (m Model) Status() string {
	return m.statusText
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	left := appStyle.Render("hnpeek")
	for i, t := range tabs {
		if i == m.focus {
			left += activeTabStyle.Render(t)
		} else {
			left += inactiveTabStyle.Render(t)
		}
	}

	right := cachedStyle.Render(fmt.Sprintf("%d cached", m.cached))
	if m.statusText != "" {
		if m.isError {
			right += errorStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
}
