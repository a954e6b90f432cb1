package messages

import (
	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/preview"
)

// Selection messages.
type (
	// StorySelectedMsg is sent whenever the story under the list cursor
	// changes.
	StorySelectedMsg struct{ StoryID int }
)

// Data messages.
type (
	StoriesLoadedMsg struct {
		Stories []api.StoryItem
		Err     error
	}

	// PreviewDoneMsg carries a finished preview load back to the update loop.
	PreviewDoneMsg struct {
		Completion preview.Completion
	}
)
