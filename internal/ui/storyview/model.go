package storyview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hnpeek/internal/preview"
	"github.com/fragmede/hnpeek/internal/render"
)

var (
	depthColors = []lipgloss.Color{
		"#FF6600", "#828282", "#00BFFF", "#32CD32", "#FFD700", "#FF69B4", "#9370DB", "#20B2AA",
	}

	commentAuthorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600")).Bold(true)
	commentMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	commentOPStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#FF6600")).Bold(true)
	commentSelStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	storyHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	storyMetaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(0, 1)
	storyTextStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 1)
	spinnerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))
	separatorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const scrollStep = 3

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the preview pane. It renders whatever preview.State it is given
// and never loads anything itself.
type Model struct {
	viewport    viewport.Model
	spinner     spinner.Model
	state       preview.State
	shown       int
	comments    []FlatComment
	offsets     []commentOffset
	selectedIdx int
	collapse    CollapseState
	width       int
	height      int
	now         func() time.Time
}

// New creates an empty preview pane.
func New() Model {
	return Model{
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		state:    preview.Unset{},
		collapse: make(CollapseState),
		now:      time.Now,
	}
}

// SetSize updates pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

// SetState switches the pane to st. The returned command starts the spinner
// when loading begins.
func (m *Model) SetState(st preview.State) tea.Cmd {
	_, wasLoading := m.state.(preview.Loading)
	m.state = st

	var cmd tea.Cmd
	switch st := st.(type) {
	case preview.Unset:
		m.shown = 0
		m.comments = nil
	case preview.Loading:
		m.shown = 0
		m.comments = nil
		if !wasLoading {
			cmd = m.spinner.Tick
		}
	case preview.Loaded:
		if st.Data.ID != m.shown {
			m.shown = st.Data.ID
			m.selectedIdx = 0
			m.collapse = make(CollapseState)
			m.viewport.GotoTop()
		}
		m.rebuildComments()
	}
	m.resizeViewport()
	m.rebuildContent()
	return cmd
}

// State returns the state being displayed.
func (m Model) State() preview.State {
	return m.state
}

// Comments returns the visible flattened comments.
func (m Model) Comments() []FlatComment {
	return m.comments
}

// SelectedIndex returns the index of the highlighted comment.
func (m Model) SelectedIndex() int {
	return m.selectedIdx
}

func (m *Model) resizeViewport() {
	headerLines := strings.Count(m.renderHeader(), "\n") + 1
	m.viewport.Height = max(m.height-headerLines, 1)
}

// Update handles spinner ticks and, while a story is shown, navigation keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if _, ok := m.state.(preview.Loading); !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if _, ok := m.state.(preview.Loaded); !ok {
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.endLine >= m.viewport.YOffset+m.viewport.Height {
					// Long comment: scroll within it before moving on.
					m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
					return m, nil
				}
			}
			if m.selectedIdx < len(m.comments)-1 {
				m.selectedIdx++
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "k", "up":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.startLine < m.viewport.YOffset {
					m.viewport.SetYOffset(max(m.viewport.YOffset-scrollStep, off.startLine))
					return m, nil
				}
			}
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "enter", " ":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.comments) {
				id := m.comments[m.selectedIdx].Comment.ID
				m.collapse[id] = !m.collapse[id]
				m.rebuildComments()
				m.rebuildContent()
			}
			return m, nil
		case "z":
			// Collapse everything if anything is expanded, otherwise expand all.
			anyExpanded := false
			for _, fc := range m.comments {
				if !fc.IsCollapsed && len(fc.Comment.SubComments) > 0 {
					anyExpanded = true
					break
				}
			}
			for _, fc := range m.comments {
				if len(fc.Comment.SubComments) > 0 {
					m.collapse[fc.Comment.ID] = anyExpanded
				}
			}
			m.rebuildComments()
			m.rebuildContent()
			if anyExpanded {
				m.viewport.GotoTop()
				m.selectedIdx = 0
			}
			return m, nil
		case "[", "p":
			if idx := FindParentIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "]":
			if idx := FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "g", "home":
			m.selectedIdx = 0
			m.rebuildContent()
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			if len(m.comments) > 0 {
				m.selectedIdx = len(m.comments) - 1
				m.rebuildContent()
				m.viewport.GotoBottom()
			}
			return m, nil
		case "ctrl+d", "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "ctrl+u", "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m *Model) rebuildComments() {
	loaded, ok := m.state.(preview.Loaded)
	if !ok {
		m.comments = nil
		return
	}
	m.comments = FlattenTree(loaded.Data, m.collapse)
	m.selectedIdx = min(m.selectedIdx, len(m.comments)-1)
	m.selectedIdx = max(m.selectedIdx, 0)
}

func (m *Model) rebuildContent() {
	loaded, ok := m.state.(preview.Loaded)
	if !ok {
		m.offsets = nil
		m.viewport.SetContent("")
		return
	}

	var sb strings.Builder
	lineCount := 0
	availWidth := max(m.width-2, 20)

	if loaded.Data.Text != nil && *loaded.Data.Text != "" {
		text := storyTextStyle.Render(render.Indent(render.Text(*loaded.Data.Text, availWidth-1), " "))
		sb.WriteString(text + "\n\n")
		lineCount += strings.Count(text, "\n") + 2
	}

	if len(m.comments) == 0 {
		m.offsets = nil
		sb.WriteString(hintStyle.Render("No comments yet."))
		m.viewport.SetContent(sb.String())
		return
	}

	m.offsets = make([]commentOffset, len(m.comments))
	now := m.now()
	for i, fc := range m.comments {
		startLine := lineCount
		indent := min(fc.Depth*2, 30)
		indentStr := strings.Repeat(" ", indent)

		barColor := depthColors[fc.Depth%len(depthColors)]
		selected := i == m.selectedIdx
		if selected {
			barColor = "#FF6600"
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")

		header := commentAuthorStyle.Render(fc.Comment.Author)
		header += " " + commentMetaStyle.Render(render.TimeAgo(fc.Comment.Time, now))
		if fc.IsOP {
			header += " " + commentOPStyle.Render(" OP ")
		}
		if fc.IsCollapsed {
			header += " " + commentMetaStyle.Render(fmt.Sprintf("[+%d]", fc.ChildCount))
		}
		if n := fc.Unloaded(); n > 0 {
			header += " " + commentMetaStyle.Render(fmt.Sprintf("(%d more not shown)", n))
		}

		headerLine := indentStr + bar + " " + header
		if selected {
			headerLine = commentSelStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		if !fc.IsCollapsed {
			body := render.Text(fc.Comment.Text, max(availWidth-indent-2, 20))
			for _, line := range strings.Split(body, "\n") {
				bodyLine := indentStr + bar + " " + line
				if selected {
					bodyLine = commentSelStyle.Render(bodyLine)
				}
				sb.WriteString(bodyLine + "\n")
				lineCount++
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	width := max(m.width, 20)

	switch st := m.state.(type) {
	case preview.Unset:
		return hintStyle.Width(width).Render("Move the cursor onto a story to preview it.")

	case preview.Loading:
		return hintStyle.Render(fmt.Sprintf("%s Loading story %d...", m.spinner.View(), st.StoryID))

	case preview.Loaded:
		s := st.Data
		parts := []string{
			storyHeaderStyle.Width(width).Render(s.Title),
			storyMetaStyle.Width(width).Render(fmt.Sprintf(
				"%d points | by %s | %s | %d comments",
				s.Score, s.Author, render.TimeAgo(s.Time, m.now()), s.Descendants,
			)),
		}
		if host := render.Host(s.URL); host != "" {
			parts = append(parts, storyMetaStyle.Render(host))
		}
		parts = append(parts,
			separatorStyle.Render(strings.Repeat("─", width)),
			hintStyle.Render("j/k:move  [:parent  ]:sibling  space:collapse  z:fold all"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)

	default:
		panic(fmt.Sprintf("storyview: unknown state %T", st))
	}
}
