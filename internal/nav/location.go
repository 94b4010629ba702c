// Package nav holds the current location of one navigation context and
// tells subscribers when it changes.
package nav

import (
	"net/url"
	"slices"
	"sync"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/urlstate"
)

type subscription struct {
	id int
	fn func(url.Values)
}

// Location is a path plus query parameters. Query keys encode in sorted
// order, so equal states always produce equal URLs.
type Location struct {
	mu     sync.Mutex
	path   string
	params url.Values
	subs   []subscription
	nextID int
}

// New creates a location at path with a copy of params.
func New(path string, params url.Values) *Location {
	return &Location{
		path:   path,
		params: urlstate.Apply(params, nil),
	}
}

// FromURL creates a location from a request URL.
func FromURL(u *url.URL) *Location {
	return New(u.Path, u.Query())
}

// Params returns a copy of the current query parameters.
func (l *Location) Params() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return urlstate.Apply(l.params, nil)
}

// URL returns the current path and encoded query.
func (l *Location) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return buildURL(l.path, l.params)
}

// Href returns the URL Navigate(patch) would move to.
func (l *Location) Href(patch urlstate.Patch) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return buildURL(l.path, urlstate.Apply(l.params, patch))
}

// Navigate applies patch to the current parameters. A navigation that
// leaves the URL unchanged is ignored and reports false. Otherwise every
// subscriber is called, in subscription order, before Navigate returns.
func (l *Location) Navigate(patch urlstate.Patch) bool {
	l.mu.Lock()
	next := urlstate.Apply(l.params, patch)
	if next.Encode() == l.params.Encode() {
		l.mu.Unlock()
		return false
	}
	l.params = next
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(urlstate.Apply(next, nil))
	}
	return true
}

// Subscribe registers fn for future navigations and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (l *Location) Subscribe(fn func(params url.Values)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, subscription{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.subs = slices.DeleteFunc(l.subs, func(s subscription) bool { return s.id == id })
	}
}

func buildURL(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
