package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/api/apitest"
	"github.com/fragmede/hnpeek/internal/resolve"
)

func newSession(f *apitest.Fake) *Session {
	return NewSession(resolve.New(f, nil), nil)
}

func loadedID(t *testing.T, st State) int {
	t.Helper()
	l, ok := st.(Loaded)
	require.Truef(t, ok, "want Loaded, got %s", Describe(st))
	return l.Data.ID
}

func TestSession_StartsUnset(t *testing.T) {
	t.Parallel()

	s := newSession(apitest.New())
	require.Equal(t, Unset{}, s.State())
	require.Zero(t, s.CacheLen())
}

func TestSession_UnsetLoadingLoaded(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1, 10, 11).Comment(10).Comment(11, 12).Comment(12)
	s := newSession(f)

	st, p := s.Select(1)
	require.Equal(t, Loading{StoryID: 1}, st)
	require.NotNil(t, p)
	require.Equal(t, Loading{StoryID: 1}, s.State())
	require.Zero(t, f.TotalCalls())

	st = s.Complete(p.Run(context.Background()))
	require.Equal(t, 1, loadedID(t, st))

	data := st.(Loaded).Data
	require.Len(t, data.Comments, 2)
	require.Equal(t, 10, data.Comments[0].ID)
	require.Equal(t, 12, data.Comments[1].SubComments[0].ID)
	require.Equal(t, 4, f.TotalCalls())

	cached, ok := s.Cached(1)
	require.True(t, ok)
	require.Equal(t, data, cached)
}

func TestSession_UnsetLoadingUnset(t *testing.T) {
	t.Parallel()

	f := apitest.New().Fail(api.ItemPath(1), nil)
	s := newSession(f)

	st, p := s.Select(1)
	require.Equal(t, Loading{StoryID: 1}, st)

	c := p.Run(context.Background())
	require.ErrorIs(t, c.Err, api.ErrTransport)

	require.Equal(t, Unset{}, s.Complete(c))
	_, ok := s.Cached(1)
	require.False(t, ok)
	require.Zero(t, s.CacheLen())
}

func TestSession_FailedLoadIsRetriedOnNextSelect(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1).Fail(api.ItemPath(1), nil)
	s := newSession(f)

	require.Equal(t, Unset{}, s.SelectAndWait(context.Background(), 1))

	f.Heal(api.ItemPath(1))
	require.Equal(t, 1, loadedID(t, s.SelectAndWait(context.Background(), 1)))
	require.Equal(t, 2, f.Calls(api.ItemPath(1)))
}

func TestSession_CacheHitFetchesNothing(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1, 10).Comment(10)
	s := newSession(f)

	first := s.SelectAndWait(context.Background(), 1)
	require.Equal(t, 1, loadedID(t, first))
	calls := f.TotalCalls()

	st, p := s.Select(1)
	require.Nil(t, p)
	require.Equal(t, first, st)
	require.Equal(t, calls, f.TotalCalls())
}

func TestSession_ReselectingWhileLoadingIsNoop(t *testing.T) {
	t.Parallel()

	s := newSession(apitest.New().Story(1))

	_, p1 := s.Select(1)
	require.NotNil(t, p1)

	st, p2 := s.Select(1)
	require.Nil(t, p2)
	require.Equal(t, Loading{StoryID: 1}, st)

	require.Equal(t, 1, loadedID(t, s.Complete(p1.Run(context.Background()))))
}

func TestSession_StaleSuccessFillsCacheOnly(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1).Story(2)
	s := newSession(f)
	ctx := context.Background()

	_, pa := s.Select(1)
	_, pb := s.Select(2)
	require.Equal(t, Loading{StoryID: 2}, s.State())

	require.Equal(t, 2, loadedID(t, s.Complete(pb.Run(ctx))))
	require.Equal(t, 2, loadedID(t, s.Complete(pa.Run(ctx))))

	_, ok := s.Cached(1)
	require.True(t, ok)

	st, p := s.Select(1)
	require.Nil(t, p)
	require.Equal(t, 1, loadedID(t, st))
}

func TestSession_StaleCompletionBeforeCurrentKeepsLoading(t *testing.T) {
	t.Parallel()

	s := newSession(apitest.New().Story(1).Story(2))
	ctx := context.Background()

	_, pa := s.Select(1)
	_, pb := s.Select(2)

	require.Equal(t, Loading{StoryID: 2}, s.Complete(pa.Run(ctx)))
	require.Equal(t, 2, loadedID(t, s.Complete(pb.Run(ctx))))
}

func TestSession_StaleFailureDoesNotUnset(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(2).Fail(api.ItemPath(1), nil)
	s := newSession(f)
	ctx := context.Background()

	_, pa := s.Select(1)
	_, pb := s.Select(2)

	require.Equal(t, 2, loadedID(t, s.Complete(pb.Run(ctx))))
	require.Equal(t, 2, loadedID(t, s.Complete(pa.Run(ctx))))
}

func TestSession_CacheHitSupersedesPendingLoad(t *testing.T) {
	t.Parallel()

	s := newSession(apitest.New().Story(1).Story(2))
	ctx := context.Background()

	require.Equal(t, 2, loadedID(t, s.SelectAndWait(ctx, 2)))

	_, pa := s.Select(1)
	st, pb := s.Select(2)
	require.Nil(t, pb)
	require.Equal(t, 2, loadedID(t, st))

	require.Equal(t, 2, loadedID(t, s.Complete(pa.Run(ctx))))
	require.Equal(t, 2, s.CacheLen())
}

func TestSession_CacheIsWriteOnce(t *testing.T) {
	t.Parallel()

	s := newSession(apitest.New())

	_, p := s.Select(7)
	first := api.StoryPageData{StoryItem: api.StoryItem{ID: 7, Title: "first"}}
	s.Complete(Completion{StoryID: 7, Generation: p.Generation, Data: first})

	second := api.StoryPageData{StoryItem: api.StoryItem{ID: 7, Title: "second"}}
	s.Complete(Completion{StoryID: 7, Generation: p.Generation, Data: second})

	cached, ok := s.Cached(7)
	require.True(t, ok)
	require.Equal(t, "first", cached.Title)
	require.Equal(t, "first", s.State().(Loaded).Data.Title)
}

func TestSession_OverlappingLoadsOfOneStoryShareAFetch(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1).Story(2).Delay(api.ItemPath(1), 100*time.Millisecond)
	s := newSession(f)
	ctx := context.Background()

	_, p1 := s.Select(1)
	_, p2 := s.Select(2)
	_, p3 := s.Select(1)
	require.NotNil(t, p3)
	require.NotEqual(t, p1.Generation, p3.Generation)

	var (
		wg     sync.WaitGroup
		c1, c3 Completion
	)
	wg.Add(2)
	go func() { defer wg.Done(); c1 = p1.Run(ctx) }()
	go func() { defer wg.Done(); c3 = p3.Run(ctx) }()
	wg.Wait()

	require.NoError(t, c1.Err)
	require.NoError(t, c3.Err)
	require.Equal(t, 1, f.Calls(api.ItemPath(1)))

	require.Equal(t, Loading{StoryID: 1}, s.Complete(p2.Run(ctx)))
	require.Equal(t, 1, loadedID(t, s.Complete(c3)))
	require.Equal(t, 1, loadedID(t, s.Complete(c1)))
}

func TestSession_CancelledLoadEndsUnset(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1).Delay(api.ItemPath(1), time.Minute)
	s := newSession(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, Unset{}, s.SelectAndWait(ctx, 1))
}

type failingResolver struct{ err error }

func (r failingResolver) FullStory(context.Context, int) (api.StoryPageData, error) {
	return api.StoryPageData{}, r.err
}

func TestSession_CompletionCarriesResolverError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := NewSession(failingResolver{err: boom}, nil)

	_, p := s.Select(3)
	c := p.Run(context.Background())
	require.ErrorIs(t, c.Err, boom)
	require.Equal(t, 3, c.StoryID)
	require.Equal(t, p.Generation, c.Generation)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{Unset{}, "unset"},
		{Loading{StoryID: 4}, "loading story 4"},
		{Loaded{Data: api.StoryPageData{StoryItem: api.StoryItem{ID: 9}}}, "loaded story 9"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Describe(tt.state))
	}
}

func TestSession_ReturningToALoadingStoryResolvesItOnce(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(1, 10).Comment(10).Story(2)
	s := newSession(f)
	ctx := context.Background()

	_, p1 := s.Select(1)
	_, p2 := s.Select(2)
	_, p3 := s.Select(1)
	require.NotNil(t, p3)

	// The first load is superseded but finishes for the story now on screen.
	st := s.Complete(p1.Run(ctx))
	require.Equal(t, 1, loadedID(t, st))
	calls := f.Calls(api.ItemPath(1))
	require.Equal(t, 1, calls)

	st = s.Complete(p3.Run(ctx))
	require.Equal(t, 1, loadedID(t, st))
	require.Equal(t, calls, f.Calls(api.ItemPath(1)))
	require.Equal(t, 1, f.Calls(api.ItemPath(10)))

	require.Equal(t, 1, loadedID(t, s.Complete(p2.Run(ctx))))
}

func TestSession_StaleFailureForLoadingStoryKeepsLoading(t *testing.T) {
	t.Parallel()

	f := apitest.New().Story(2).Fail(api.ItemPath(1), nil)
	s := newSession(f)
	ctx := context.Background()

	_, p1 := s.Select(1)
	s.Select(2)
	_, p3 := s.Select(1)

	require.Equal(t, Loading{StoryID: 1}, s.Complete(p1.Run(ctx)))
	require.Equal(t, Unset{}, s.Complete(p3.Run(ctx)))
}
