package storylist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/ui/messages"
)

const title = "Top Stories"

// Model is the story list pane. Moving the cursor onto a story selects it.
type Model struct {
	list     list.Model
	loading  bool
	selected int
}

// New creates an empty story list waiting for its first load.
func New() Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = title + " (loading...)"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true}
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.StoriesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = title + " (failed)"
			return m, nil
		}
		items := make([]list.Item, len(msg.Stories))
		for i, s := range msg.Stories {
			items[i] = Item{Story: s, Index: i}
		}
		cmd := m.list.SetItems(items)
		m.list.Select(0)
		m.list.Title = title
		return m, tea.Batch(cmd, m.selectionChanged())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.selectionChanged())
}

// selectionChanged emits StorySelectedMsg when the cursor has moved onto a
// different story since the last call.
func (m *Model) selectionChanged() tea.Cmd {
	s, ok := m.Selected()
	if !ok || s.ID == m.selected {
		return nil
	}
	m.selected = s.ID
	id := s.ID
	return func() tea.Msg { return messages.StorySelectedMsg{StoryID: id} }
}

// View renders the story list.
func (m Model) View() string {
	return m.list.View()
}

// Selected returns the story under the cursor.
func (m Model) Selected() (api.StoryItem, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return api.StoryItem{}, false
	}
	return item.Story, true
}

// Len returns the number of listed stories.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Loading reports whether the first load is still outstanding.
func (m Model) Loading() bool {
	return m.loading
}
