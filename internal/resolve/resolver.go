// Package resolve turns HN item ids into stories and bounded comment trees.
//
// Every fan-out launches all child fetches before waiting on any of them and
// drops children that fail; only the named root of an operation can fail it.
package resolve

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fragmede/hnpeek/internal/api"
)

// MaxCommentDepth is how many levels below a top-level comment are expanded.
const MaxCommentDepth = 4

// Resolver fetches stories and comment trees through an api.Fetcher.
type Resolver struct {
	api api.Fetcher
	log *slog.Logger
}

// New creates a Resolver. A nil logger discards output.
func New(f api.Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{api: f, log: logger}
}

// gather calls fn for every id concurrently and returns the successful
// results in id order. Failed ids are reported to onErr and left out.
func gather[T any](ctx context.Context, ids []int, fn func(context.Context, int) (T, error), onErr func(id int, err error)) []T {
	type slot struct {
		val T
		ok  bool
	}
	slots := make([]slot, len(ids))

	// Not errgroup.WithContext: one failed child must not cancel its siblings.
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			v, err := fn(ctx, id)
			if err != nil {
				if onErr != nil {
					onErr(id, err)
				}
				return nil
			}
			slots[i] = slot{val: v, ok: true}
			return nil
		})
	}
	g.Wait()

	out := make([]T, 0, len(ids))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.val)
		}
	}
	return out
}
