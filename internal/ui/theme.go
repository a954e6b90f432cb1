package ui

import "github.com/charmbracelet/lipgloss"

var (
	hnOrange = lipgloss.Color("#FF6600")

	focusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(hnOrange)

	blurredPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444"))
)

// paneFrame is the horizontal and vertical space a pane border takes.
const paneFrame = 2
