// Package preview tracks which story the preview pane shows and caches every
// story it has resolved for the rest of the session.
package preview

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fragmede/hnpeek/internal/api"
)

// StoryResolver loads a story with its comment forest.
type StoryResolver interface {
	FullStory(ctx context.Context, id int) (api.StoryPageData, error)
}

// Session owns the preview state and the per-story cache. Cache entries are
// written once and never evicted.
//
// Every Select that changes the target starts a new generation. A load
// started in an older generation may still fill the cache when it finishes,
// but it never touches the state, so a slow response for a story the user
// has moved away from cannot overwrite the current preview.
type Session struct {
	resolver StoryResolver
	log      *slog.Logger
	sf       singleflight.Group

	mu    sync.Mutex
	state State
	gen   uint64
	cache map[int]api.StoryPageData
}

// NewSession creates a session in the Unset state. A nil logger discards
// output.
func NewSession(r StoryResolver, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		resolver: r,
		log:      logger,
		state:    Unset{},
		cache:    make(map[int]api.StoryPageData),
	}
}

// Pending is a load issued by Select. Run it off the UI goroutine and hand
// the result to Session.Complete.
type Pending struct {
	StoryID    int
	Generation uint64

	session *Session
}

// Completion is the outcome of a Pending load.
type Completion struct {
	StoryID    int
	Generation uint64
	Data       api.StoryPageData
	Err        error
}

// Run resolves the story. A story that reached the cache after the load was
// issued is returned without fetching, and loads of the same story that
// overlap in time share one resolution.
func (p *Pending) Run(ctx context.Context) Completion {
	s := p.session
	if data, ok := s.Cached(p.StoryID); ok {
		return Completion{StoryID: p.StoryID, Generation: p.Generation, Data: data}
	}
	start := time.Now()
	v, err, shared := s.sf.Do(strconv.Itoa(p.StoryID), func() (any, error) {
		return s.resolver.FullStory(ctx, p.StoryID)
	})
	c := Completion{StoryID: p.StoryID, Generation: p.Generation, Err: err}
	if err == nil {
		c.Data = v.(api.StoryPageData)
	}
	s.log.Debug("preview: load finished",
		"story_id", p.StoryID, "generation", p.Generation,
		"shared", shared, "elapsed", time.Since(start), "error", err)
	return c
}

// Select makes id the previewed story. A cached story is Loaded at once and
// the returned Pending is nil. Selecting the story that is already loading
// is a no-op. Otherwise the state becomes Loading and the caller must run
// the returned Pending.
func (s *Session) Select(id int) (State, *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache[id]; ok {
		s.gen++
		s.transitionLocked(Loaded{Data: data})
		return s.state, nil
	}
	if l, ok := s.state.(Loading); ok && l.StoryID == id {
		return s.state, nil
	}

	s.gen++
	s.transitionLocked(Loading{StoryID: id})
	return s.state, &Pending{StoryID: id, Generation: s.gen, session: s}
}

// Complete applies a finished load and returns the resulting state.
func (s *Session) Complete(c Completion) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Err == nil {
		if _, ok := s.cache[c.StoryID]; !ok {
			s.cache[c.StoryID] = c.Data
		}
	}

	if c.Generation != s.gen {
		// A superseded load still settles a newer Loading of the same story.
		if l, ok := s.state.(Loading); ok && l.StoryID == c.StoryID && c.Err == nil {
			s.transitionLocked(Loaded{Data: s.cache[c.StoryID]})
			return s.state
		}
		s.log.Info("preview: discarded stale load",
			"story_id", c.StoryID, "generation", c.Generation, "current", s.gen, "failed", c.Err != nil)
		return s.state
	}

	if c.Err != nil {
		s.log.Warn("preview: load failed", "story_id", c.StoryID, "error", c.Err)
		s.transitionLocked(Unset{})
		return s.state
	}
	s.transitionLocked(Loaded{Data: s.cache[c.StoryID]})
	return s.state
}

// SelectAndWait selects id and, on a cache miss, resolves it on the calling
// goroutine.
func (s *Session) SelectAndWait(ctx context.Context, id int) State {
	st, p := s.Select(id)
	if p == nil {
		return st
	}
	return s.Complete(p.Run(ctx))
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cached returns the resolved story for id, if any.
func (s *Session) Cached(id int) (api.StoryPageData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.cache[id]
	return data, ok
}

// Generation returns the current selection generation. A Completion whose
// Generation differs is stale.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// CacheLen returns the number of cached stories.
func (s *Session) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Session) transitionLocked(to State) {
	s.log.Debug("preview: transition",
		"from", Describe(s.state), "to", Describe(to), "generation", s.gen)
	s.state = to
}
