package storylist

import (
	"fmt"
	"strings"
	"time"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/render"
)

// Item wraps a story preview for the bubbles list.
type Item struct {
	Story api.StoryItem
	Index int
}

func (s Item) Title() string {
	if s.Story.Title != "" {
		return s.Story.Title
	}
	return fmt.Sprintf("[%s #%d]", s.Story.Type, s.Story.ID)
}

// Description is the meta line under the title, evaluated against now.
func (s Item) Description(now time.Time) string {
	parts := make([]string, 0, 4)
	parts = append(parts, fmt.Sprintf("%d points", s.Story.Score))
	if s.Story.Author != "" {
		parts = append(parts, "by "+s.Story.Author)
	}
	if ago := render.TimeAgo(s.Story.Time, now); ago != "" {
		parts = append(parts, ago)
	}
	parts = append(parts, fmt.Sprintf("%d comments", s.Story.Descendants))

	desc := strings.Join(parts, " | ")
	if host := render.Host(s.Story.URL); host != "" {
		desc += "  (" + host + ")"
	}
	return desc
}

func (s Item) FilterValue() string {
	return s.Story.Title + " " + s.Story.Author
}
