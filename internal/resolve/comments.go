package resolve

import (
	"context"
	"fmt"

	"github.com/fragmede/hnpeek/internal/api"
)

// CommentTree fetches comment id and its replies down to MaxCommentDepth
// levels. It fails only when the root comment itself cannot be fetched.
func (r *Resolver) CommentTree(ctx context.Context, id int) (api.Comment, error) {
	return r.resolveCommentTree(ctx, id, MaxCommentDepth)
}

func (r *Resolver) resolveCommentTree(ctx context.Context, id, depth int) (api.Comment, error) {
	c, err := api.Fetch[api.Comment](ctx, r.api, api.ItemPath(id))
	if err != nil {
		return api.Comment{}, fmt.Errorf("comment %d: %w", id, err)
	}
	c.SubComments = []api.Comment{}
	if depth <= 0 || len(c.Kids) == 0 {
		return c, nil
	}

	c.SubComments = gather(ctx, c.Kids,
		func(ctx context.Context, kid int) (api.Comment, error) {
			return r.resolveCommentTree(ctx, kid, depth-1)
		},
		func(kid int, err error) {
			r.log.Debug("resolve: dropped reply", "comment_id", kid, "parent_id", id, "error", err)
		},
	)
	return c, nil
}
