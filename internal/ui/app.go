package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/preview"
	"github.com/fragmede/hnpeek/internal/ui/messages"
	"github.com/fragmede/hnpeek/internal/ui/statusbar"
	"github.com/fragmede/hnpeek/internal/ui/storylist"
	"github.com/fragmede/hnpeek/internal/ui/storyview"
)

// Pane identifies the focused pane.
type Pane int

const (
	PaneStories Pane = iota
	PanePreview
)

// StoryLister loads the top story previews for the list pane.
type StoryLister interface {
	TopStoryPreviews(ctx context.Context, count int) ([]api.StoryItem, error)
}

// App is the root Bubble Tea model.
type App struct {
	focus Pane

	// Child models
	storyList storylist.Model
	preview   storyview.Model
	statusBar statusbar.Model

	// Shared state
	ctx     context.Context
	stories StoryLister
	session *preview.Session
	count   int
	log     *slog.Logger

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model. ctx bounds every load the app
// starts; cancel it when the program exits.
func NewApp(ctx context.Context, stories StoryLister, session *preview.Session, count int, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		focus:     PaneStories,
		storyList: storylist.New(),
		preview:   storyview.New(),
		statusBar: statusbar.New(),
		ctx:       ctx,
		stories:   stories,
		session:   session,
		count:     count,
		log:       logger,
	}
}

// Init starts loading the story list.
func (a *App) Init() tea.Cmd {
	return a.loadStories()
}

func (a *App) loadStories() tea.Cmd {
	ctx, stories, count := a.ctx, a.stories, a.count
	return func() tea.Msg {
		items, err := stories.TopStoryPreviews(ctx, count)
		return messages.StoriesLoadedMsg{Stories: items, Err: err}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, Keys.Focus):
			a.setFocus(1 - a.focus)
			return a, nil
		case key.Matches(msg, Keys.Back) && a.focus == PanePreview:
			a.setFocus(PaneStories)
			return a, nil
		case key.Matches(msg, Keys.OpenURL):
			a.showURL()
			return a, nil
		}

	case messages.StoriesLoadedMsg:
		if msg.Err != nil {
			a.log.Error("ui: loading top stories failed", "error", msg.Err)
			a.statusBar.SetStatus("failed to load top stories: "+msg.Err.Error(), true)
		} else {
			a.statusBar.SetStatus(fmt.Sprintf("%d top stories", len(msg.Stories)), false)
		}
		a.storyList, cmd = a.storyList.Update(msg)
		return a, cmd

	case messages.StorySelectedMsg:
		return a, a.selectStory(msg.StoryID)

	case messages.PreviewDoneMsg:
		return a, a.completePreview(msg.Completion)

	case spinner.TickMsg:
		a.preview, cmd = a.preview.Update(msg)
		return a, cmd
	}

	// Route to the focused pane.
	switch a.focus {
	case PaneStories:
		a.storyList, cmd = a.storyList.Update(msg)
	case PanePreview:
		a.preview, cmd = a.preview.Update(msg)
	}
	return a, cmd
}

// selectStory previews id. Cache hits are shown at once; misses show the
// spinner and resolve off the update goroutine.
func (a *App) selectStory(id int) tea.Cmd {
	st, pending := a.session.Select(id)
	a.log.Debug("ui: story selected", "story_id", id, "state", preview.Describe(st))

	cmd := a.preview.SetState(st)
	a.statusBar.SetCached(a.session.CacheLen())
	if pending == nil {
		return cmd
	}

	ctx := a.ctx
	load := func() tea.Msg {
		return messages.PreviewDoneMsg{Completion: pending.Run(ctx)}
	}
	return tea.Batch(cmd, load)
}

func (a *App) completePreview(c preview.Completion) tea.Cmd {
	stale := c.Generation != a.session.Generation()
	st := a.session.Complete(c)
	a.statusBar.SetCached(a.session.CacheLen())

	switch st := st.(type) {
	case preview.Unset:
		if !stale && c.Err != nil {
			a.statusBar.SetStatus(fmt.Sprintf("story %d: %v", c.StoryID, c.Err), true)
		}
	case preview.Loaded:
		if c.Err == nil && st.Data.ID == c.StoryID {
			a.statusBar.SetStatus(fmt.Sprintf("loaded story %d (%d comments)", c.StoryID, countComments(st.Data)), false)
		}
	}
	return a.preview.SetState(st)
}

func countComments(s api.StoryPageData) int {
	n := 0
	for _, c := range s.Comments {
		n += c.Count()
	}
	return n
}

func (a *App) showURL() {
	s, ok := a.storyList.Selected()
	if !ok {
		return
	}
	if s.URL != nil && *s.URL != "" {
		a.statusBar.SetStatus(*s.URL, false)
		return
	}
	a.statusBar.SetStatus(fmt.Sprintf("https://news.ycombinator.com/item?id=%d", s.ID), false)
}

func (a *App) setFocus(p Pane) {
	a.focus = p
	a.statusBar.SetFocus(int(p))
}

func (a *App) resize(w, h int) {
	a.width = w
	a.height = h
	contentHeight := max(h-1-paneFrame, 1) // Reserve 1 line for status bar.
	listWidth, previewWidth := a.paneWidths()
	a.storyList.SetSize(listWidth, contentHeight)
	a.preview.SetSize(previewWidth, contentHeight)
	a.statusBar.SetSize(w)
}

func (a *App) paneWidths() (int, int) {
	outer := a.width * 2 / 5
	return max(outer-paneFrame, 1), max(a.width-outer-paneFrame, 1)
}

// View renders the application.
func (a *App) View() string {
	listWidth, previewWidth := a.paneWidths()
	contentHeight := max(a.height-1-paneFrame, 1)

	left := a.paneStyle(PaneStories).Width(listWidth).Height(contentHeight).Render(a.storyList.View())
	right := a.paneStyle(PanePreview).Width(previewWidth).Height(contentHeight).Render(a.preview.View())

	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, panes, a.statusBar.View())
}

func (a *App) paneStyle(p Pane) lipgloss.Style {
	if a.focus == p {
		return focusedPaneStyle
	}
	return blurredPaneStyle
}
