package storyview

import "github.com/fragmede/hnpeek/internal/api"

// FlatComment is a comment flattened from the tree for display.
type FlatComment struct {
	Comment     *api.Comment
	Depth       int
	ParentID    int
	IsCollapsed bool
	ChildCount  int
	IsOP        bool
}

// Unloaded is the number of replies that exist but are not in the tree:
// beyond the depth limit, deleted, or failed to load.
func (fc FlatComment) Unloaded() int {
	return max(len(fc.Comment.Kids)-len(fc.Comment.SubComments), 0)
}
