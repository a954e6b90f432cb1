package storyview

import "github.com/fragmede/hnpeek/internal/api"

// CollapseState tracks collapsed comment IDs.
type CollapseState map[int]bool

// FlattenTree converts resolved comment trees into a flat list for display.
// Replies of collapsed comments are skipped but still counted.
func FlattenTree(story api.StoryPageData, cs CollapseState) []FlatComment {
	var result []FlatComment
	op := story.Author

	// walk returns the number of resolved descendants of c.
	var walk func(c *api.Comment, parentID, depth int) int
	walk = func(c *api.Comment, parentID, depth int) int {
		idx := len(result)
		result = append(result, FlatComment{
			Comment:     c,
			Depth:       depth,
			ParentID:    parentID,
			IsCollapsed: cs[c.ID],
			IsOP:        op != "" && c.Author == op,
		})

		descendants := 0
		if cs[c.ID] {
			for i := range c.SubComments {
				descendants += c.SubComments[i].Count()
			}
		} else {
			for i := range c.SubComments {
				descendants += 1 + walk(&c.SubComments[i], c.ID, depth+1)
			}
		}
		result[idx].ChildCount = descendants
		return descendants
	}

	for i := range story.Comments {
		walk(&story.Comments[i], story.ID, 0)
	}
	return result
}

// FindParentIndex returns the index of the parent comment in the flat list.
func FindParentIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	parentID := comments[currentIdx].ParentID
	for i := currentIdx - 1; i >= 0; i-- {
		if comments[i].Comment.ID == parentID {
			return i
		}
	}
	return -1
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Depth
	for i := currentIdx + 1; i < len(comments); i++ {
		if comments[i].Depth < depth {
			return -1
		}
		if comments[i].Depth == depth {
			return i
		}
	}
	return -1
}
