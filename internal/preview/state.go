package preview

import (
	"fmt"

	"github.com/fragmede/hnpeek/internal/api"
)

// State is the preview pane's state: exactly one of Unset, Loading or Loaded.
// The set is closed; switch over it exhaustively.
type State interface {
	isState()
}

// Unset is the initial state, and the state after a failed load.
type Unset struct{}

// Loading means StoryID is being resolved.
type Loading struct {
	StoryID int
}

// Loaded holds a resolved story. Data is shared with the session cache and
// must be treated as read-only.
type Loaded struct {
	Data api.StoryPageData
}

func (Unset) isState()   {}
func (Loading) isState() {}
func (Loaded) isState()  {}

// Describe renders a state for logs and the status bar.
func Describe(st State) string {
	switch st := st.(type) {
	case Unset:
		return "unset"
	case Loading:
		return fmt.Sprintf("loading story %d", st.StoryID)
	case Loaded:
		return fmt.Sprintf("loaded story %d", st.Data.ID)
	default:
		panic(fmt.Sprintf("preview: unknown state %T", st))
	}
}
