package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/fragmede/hnpeek/internal/api"
)

// TopStoryIDs returns the full ranked list of top story ids.
func (r *Resolver) TopStoryIDs(ctx context.Context) ([]int, error) {
	ids, err := api.Fetch[[]int](ctx, r.api, api.TopStoriesPath)
	if err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	return ids, nil
}

// StoryPreview fetches a single story item without its comments.
func (r *Resolver) StoryPreview(ctx context.Context, id int) (api.StoryItem, error) {
	s, err := api.Fetch[api.StoryItem](ctx, r.api, api.ItemPath(id))
	if err != nil {
		return api.StoryItem{}, fmt.Errorf("story %d: %w", id, err)
	}
	return s, nil
}

// TopStoryPreviews returns previews for the first count top stories, in rank
// order. Stories that fail to load are left out; only a failure to fetch
// the id list fails the call.
func (r *Resolver) TopStoryPreviews(ctx context.Context, count int) ([]api.StoryItem, error) {
	start := time.Now()
	ids, err := r.TopStoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		count = 0
	}
	if count < len(ids) {
		ids = ids[:count]
	}

	stories := gather(ctx, ids, r.StoryPreview, func(id int, err error) {
		r.log.Debug("resolve: dropped story preview", "story_id", id, "error", err)
	})
	r.log.Info("resolve: top stories loaded",
		"requested", len(ids), "loaded", len(stories), "elapsed", time.Since(start))
	return stories, nil
}

// FullStory fetches story id and resolves a comment tree for each of its
// top-level comments. A failure to fetch the story itself is returned.
func (r *Resolver) FullStory(ctx context.Context, id int) (api.StoryPageData, error) {
	start := time.Now()
	story, err := r.StoryPreview(ctx, id)
	if err != nil {
		return api.StoryPageData{}, err
	}

	comments := gather(ctx, story.Kids, r.CommentTree, func(kid int, err error) {
		r.log.Debug("resolve: dropped comment thread", "comment_id", kid, "story_id", id, "error", err)
	})
	r.log.Debug("resolve: story loaded",
		"story_id", id, "threads", len(comments), "elapsed", time.Since(start))
	return api.StoryPageData{StoryItem: story, Comments: comments}, nil
}
