// Package apitest provides an in-memory api.Fetcher for tests.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fragmede/hnpeek/internal/api"
)

// ErrUnavailable is the default cause injected by Fail.
var ErrUnavailable = errors.New("apitest: unavailable")

// Fake serves canned JSON bodies keyed by path. Unknown paths answer like
// the real API does for unknown items: a null body, i.e. a decode error.
type Fake struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	delays map[string]time.Duration
	calls  map[string]int
	gate   *gate
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		bodies: make(map[string]string),
		errs:   make(map[string]error),
		delays: make(map[string]time.Duration),
		calls:  make(map[string]int),
	}
}

// Raw registers a literal body for path.
func (f *Fake) Raw(path, body string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[strings.TrimLeft(path, "/")] = body
	return f
}

// TopStories registers the ranked id list.
func (f *Fake) TopStories(ids ...int) *Fake {
	b, _ := json.Marshal(ids)
	return f.Raw(api.TopStoriesPath, string(b))
}

// Story registers a story item with the given kids.
func (f *Fake) Story(id int, kids ...int) *Fake {
	b, _ := json.Marshal(map[string]any{
		"id":          id,
		"type":        "story",
		"by":          fmt.Sprintf("author%d", id),
		"title":       fmt.Sprintf("Story %d", id),
		"url":         fmt.Sprintf("https://example.com/%d", id),
		"score":       id,
		"descendants": len(kids),
		"time":        1700000000 + id,
		"kids":        kids,
	})
	return f.Raw(api.ItemPath(id), string(b))
}

// Comment registers a comment item with the given kids.
func (f *Fake) Comment(id int, kids ...int) *Fake {
	b, _ := json.Marshal(map[string]any{
		"id":   id,
		"type": "comment",
		"by":   fmt.Sprintf("user%d", id),
		"text": fmt.Sprintf("comment %d", id),
		"time": 1700000000 + id,
		"kids": kids,
	})
	return f.Raw(api.ItemPath(id), string(b))
}

// Fail makes every fetch of path return err, or a *api.TransportError
// wrapping ErrUnavailable when err is nil.
func (f *Fake) Fail(path string, err error) *Fake {
	path = strings.TrimLeft(path, "/")
	if err == nil {
		err = &api.TransportError{Path: path, Err: ErrUnavailable}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
	return f
}

// Heal removes an injected failure.
func (f *Fake) Heal(path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, strings.TrimLeft(path, "/"))
	return f
}

// Delay makes fetches of path wait d (or until the context ends) first.
func (f *Fake) Delay(path string, d time.Duration) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[strings.TrimLeft(path, "/")] = d
	return f
}

// Gate holds every fetch of the given paths until all of them have started,
// or until timeout passes. GateOpened reports which of the two happened.
func (f *Fake) Gate(timeout time.Duration, paths ...string) *Fake {
	g := &gate{want: make(map[string]bool), done: make(chan struct{}), timeout: timeout}
	for _, p := range paths {
		g.want[strings.TrimLeft(p, "/")] = true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = g
	return f
}

// GateOpened reports whether every gated path arrived before the timeout.
func (f *Fake) GateOpened() bool {
	f.mu.Lock()
	g := f.gate
	f.mu.Unlock()
	if g == nil {
		return false
	}
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Calls returns how many times path was fetched.
func (f *Fake) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[strings.TrimLeft(path, "/")]
}

// TotalCalls returns the number of fetches across all paths.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Fetched returns the distinct paths fetched so far, sorted.
func (f *Fake) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.calls))
	for p := range f.calls {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FetchJSON implements api.Fetcher.
func (f *Fake) FetchJSON(ctx context.Context, path string, dst any) error {
	path = strings.TrimLeft(path, "/")

	f.mu.Lock()
	f.calls[path]++
	body, ok := f.bodies[path]
	err := f.errs[path]
	delay := f.delays[path]
	g := f.gate
	f.mu.Unlock()

	if g != nil {
		g.arrive(path)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &api.TransportError{Path: path, Err: ctx.Err()}
		}
	}

	if err != nil {
		return err
	}
	if !ok {
		return &api.DecodeError{Path: path, Err: errors.New("response body is null")}
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return &api.DecodeError{Path: path, Err: err}
	}
	return nil
}

type gate struct {
	mu      sync.Mutex
	want    map[string]bool
	done    chan struct{}
	timeout time.Duration
}

func (g *gate) arrive(path string) {
	g.mu.Lock()
	if !g.want[path] {
		g.mu.Unlock()
		return
	}
	delete(g.want, path)
	if len(g.want) == 0 {
		close(g.done)
	}
	g.mu.Unlock()

	select {
	case <-g.done:
	case <-time.After(g.timeout):
	}
}
