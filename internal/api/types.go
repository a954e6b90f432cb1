package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// StoryItem is a point-in-time snapshot of a top-level submission.
type StoryItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	URL         *string   `json:"url,omitempty"`
	Text        *string   `json:"text,omitempty"`
	Author      string    `json:"by"`
	Descendants int       `json:"descendants"`
	Score       int       `json:"score"`
	Kids        []int     `json:"kids"`
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
}

// Comment is a discussion node. SubComments is filled in by the resolver,
// never by the API, and is owned exclusively by this node.
type Comment struct {
	ID          int       `json:"id"`
	Author      string    `json:"by"`
	Text        string    `json:"text"`
	Time        time.Time `json:"time"`
	Kids        []int     `json:"kids"`
	SubComments []Comment `json:"sub_comments"`
	Type        string    `json:"type"`
}

// StoryPageData is a story together with its resolved top-level comment
// trees, in kids order.
type StoryPageData struct {
	StoryItem
	Comments []Comment `json:"comments"`
}

// storyWire mirrors the item JSON. Pointer fields are required; a missing
// one means the item does not have the story shape.
type storyWire struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	URL         *string `json:"url,omitempty"`
	Text        *string `json:"text,omitempty"`
	By          string  `json:"by,omitempty"`
	Descendants *int    `json:"descendants"`
	Score       *int    `json:"score"`
	Kids        []int   `json:"kids"`
	Type        *string `json:"type"`
	Time        *int64  `json:"time"`
}

func (w storyWire) item() (StoryItem, error) {
	switch {
	case w.ID == nil:
		return StoryItem{}, missingField("story", "id")
	case w.Title == nil:
		return StoryItem{}, missingField("story", "title")
	case w.Descendants == nil:
		return StoryItem{}, missingField("story", "descendants")
	case w.Score == nil:
		return StoryItem{}, missingField("story", "score")
	case w.Type == nil:
		return StoryItem{}, missingField("story", "type")
	case w.Time == nil:
		return StoryItem{}, missingField("story", "time")
	}
	return StoryItem{
		ID:          *w.ID,
		Title:       *w.Title,
		URL:         w.URL,
		Text:        w.Text,
		Author:      w.By,
		Descendants: *w.Descendants,
		Score:       *w.Score,
		Kids:        nonNil(w.Kids),
		Type:        *w.Type,
		Time:        unixSeconds(*w.Time),
	}, nil
}

func (s StoryItem) wire() storyWire {
	sec := s.Time.Unix()
	return storyWire{
		ID: &s.ID, Title: &s.Title, URL: s.URL, Text: s.Text, By: s.Author,
		Descendants: &s.Descendants, Score: &s.Score, Kids: nonNil(s.Kids),
		Type: &s.Type, Time: &sec,
	}
}

// UnmarshalJSON decodes a story item. Jobs and polls without a comment
// count, deleted stories and comments are rejected.
func (s *StoryItem) UnmarshalJSON(b []byte) error {
	var w storyWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	item, err := w.item()
	if err != nil {
		return err
	}
	*s = item
	return nil
}

// MarshalJSON encodes the item in the API's own shape, time as Unix seconds.
func (s StoryItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// pageWire is a story in item shape plus its resolved comments.
type pageWire struct {
	storyWire
	Comments []Comment `json:"comments"`
}

// UnmarshalJSON decodes a story page, comments included.
func (d *StoryPageData) UnmarshalJSON(b []byte) error {
	var w pageWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	item, err := w.storyWire.item()
	if err != nil {
		return err
	}
	*d = StoryPageData{StoryItem: item, Comments: nonNilComments(w.Comments)}
	return nil
}

// MarshalJSON encodes the story with its comments.
func (d StoryPageData) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageWire{storyWire: d.StoryItem.wire(), Comments: nonNilComments(d.Comments)})
}

type commentWire struct {
	ID          *int      `json:"id"`
	By          string    `json:"by,omitempty"`
	Text        *string   `json:"text"`
	Time        *int64    `json:"time"`
	Kids        []int     `json:"kids"`
	Type        *string   `json:"type"`
	SubComments []Comment `json:"sub_comments,omitempty"`
}

// UnmarshalJSON decodes a comment item. Deleted comments carry no text and
// are rejected, which is how the resolver ends up dropping them.
func (c *Comment) UnmarshalJSON(b []byte) error {
	var w commentWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.ID == nil:
		return missingField("comment", "id")
	case w.Text == nil:
		return missingField("comment", "text")
	case w.Time == nil:
		return missingField("comment", "time")
	case w.Type == nil:
		return missingField("comment", "type")
	}

	*c = Comment{
		ID:          *w.ID,
		Author:      w.By,
		Text:        *w.Text,
		Time:        unixSeconds(*w.Time),
		Kids:        nonNil(w.Kids),
		SubComments: nonNilComments(w.SubComments),
		Type:        *w.Type,
	}
	return nil
}

// MarshalJSON encodes the comment in item shape, time as Unix seconds, with
// any resolved replies under sub_comments.
func (c Comment) MarshalJSON() ([]byte, error) {
	sec := c.Time.Unix()
	return json.Marshal(commentWire{
		ID: &c.ID, By: c.Author, Text: &c.Text, Time: &sec,
		Kids: nonNil(c.Kids), Type: &c.Type, SubComments: c.SubComments,
	})
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (c Comment) Depth() int {
	d := 0
	for _, sc := range c.SubComments {
		if sd := sc.Depth() + 1; sd > d {
			d = sd
		}
	}
	return d
}

// Count returns the number of nodes in the tree rooted at c.
func (c Comment) Count() int {
	n := 1
	for _, sc := range c.SubComments {
		n += sc.Count()
	}
	return n
}

func missingField(shape, field string) error {
	return fmt.Errorf("%s: missing field %q", shape, field)
}

func unixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

func nonNilComments(cs []Comment) []Comment {
	if cs == nil {
		return []Comment{}
	}
	return cs
}
