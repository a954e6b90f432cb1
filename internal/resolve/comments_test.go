package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/api/apitest"
)

func ids(cs []api.Comment) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// chain registers comments first, first+1, ... first+n-1, each the only
// reply of the previous one.
func chain(f *apitest.Fake, first, n int) {
	for id := first; id < first+n-1; id++ {
		f.Comment(id, id+1)
	}
	f.Comment(first+n-1)
}

func TestCommentTree_DepthZeroFetchesNoChildren(t *testing.T) {
	t.Parallel()

	f := apitest.New().Comment(1, 2, 3).Comment(2).Comment(3)
	r := New(f, nil)

	c, err := r.resolveCommentTree(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, c.Kids)
	require.NotNil(t, c.SubComments)
	require.Empty(t, c.SubComments)
	require.Equal(t, []string{api.ItemPath(1)}, f.Fetched())
}

func TestCommentTree_DepthIsBounded(t *testing.T) {
	t.Parallel()

	for d := 0; d <= 6; d++ {
		f := apitest.New()
		chain(f, 1, 10)
		r := New(f, nil)

		c, err := r.resolveCommentTree(context.Background(), 1, d)
		require.NoError(t, err)
		require.Equal(t, d, c.Depth(), "depth %d", d)
		require.Equal(t, d+1, f.TotalCalls(), "depth %d", d)
	}
}

func TestCommentTree_PublicEntryStopsAtMaxDepth(t *testing.T) {
	t.Parallel()

	f := apitest.New()
	chain(f, 100, 8)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, MaxCommentDepth, c.Depth())

	deepest := c
	for len(deepest.SubComments) > 0 {
		deepest = deepest.SubComments[0]
	}
	require.Equal(t, 100+MaxCommentDepth, deepest.ID)
	require.NotEmpty(t, deepest.Kids, "the leaf still reports its kids")
	require.Empty(t, deepest.SubComments)
	require.Zero(t, f.Calls(api.ItemPath(100+MaxCommentDepth+1)))
}

func TestCommentTree_DropsFailedChildPreservingOrder(t *testing.T) {
	t.Parallel()

	f := apitest.New().
		Comment(1, 10, 20, 30).
		Comment(10).
		Comment(20).
		Comment(30).
		Fail(api.ItemPath(20), nil)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, c.SubComments, 2)
	require.Equal(t, []int{10, 30}, ids(c.SubComments))
}

func TestCommentTree_DropsMissingAndDeletedChildren(t *testing.T) {
	t.Parallel()

	f := apitest.New().
		Comment(1, 10, 11, 12, 13).
		Comment(10).
		Raw(api.ItemPath(11), `{"deleted":true,"id":11,"parent":1,"time":1,"type":"comment"}`).
		Comment(13)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int{10, 13}, ids(c.SubComments))
}

func TestCommentTree_FailedSubtreeDoesNotAffectSiblingsDescendants(t *testing.T) {
	t.Parallel()

	f := apitest.New().
		Comment(1, 2, 3).
		Comment(2, 20).
		Comment(3, 30).
		Comment(30, 300).
		Comment(300).
		Fail(api.ItemPath(20), nil)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, ids(c.SubComments))
	require.Empty(t, c.SubComments[0].SubComments)
	require.Equal(t, []int{30}, ids(c.SubComments[1].SubComments))
	require.Equal(t, []int{300}, ids(c.SubComments[1].SubComments[0].SubComments))
}

func TestCommentTree_RootFailurePropagates(t *testing.T) {
	t.Parallel()

	f := apitest.New().Fail(api.ItemPath(1), nil)
	r := New(f, nil)

	_, err := r.CommentTree(context.Background(), 1)
	require.ErrorIs(t, err, api.ErrTransport)
	require.ErrorIs(t, err, apitest.ErrUnavailable)

	_, err = r.CommentTree(context.Background(), 2)
	require.ErrorIs(t, err, api.ErrDecode)
}

func TestCommentTree_OrderSurvivesOutOfOrderCompletion(t *testing.T) {
	t.Parallel()

	f := apitest.New().
		Comment(1, 10, 20, 30).
		Comment(10).
		Comment(20).
		Comment(30).
		Delay(api.ItemPath(10), 40*time.Millisecond).
		Delay(api.ItemPath(20), 20*time.Millisecond)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 30}, ids(c.SubComments))
}

func TestCommentTree_LaunchesAllSiblingsBeforeWaiting(t *testing.T) {
	t.Parallel()

	kids := []int{10, 11, 12, 13, 14, 15}
	f := apitest.New().Comment(1, kids...)
	paths := make([]string, 0, len(kids))
	for _, k := range kids {
		f.Comment(k)
		paths = append(paths, api.ItemPath(k))
	}
	f.Gate(2*time.Second, paths...)
	r := New(f, nil)

	c, err := r.CommentTree(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, kids, ids(c.SubComments))
	require.True(t, f.GateOpened(), "all siblings should be in flight at once")
}
