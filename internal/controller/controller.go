// Package controller keeps the view state of one search page in step with
// its URL. Every navigation starts a search; only the newest search may
// update the state.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/urlstate"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httpclient"
)

// UnknownError is shown when a failed search carries no message.
const UnknownError = "Unknown error"

var staleResults = promauto.NewCounter(prometheus.CounterOpts{
	Name: "search_stale_results_total",
	Help: "Search results discarded because a newer navigation superseded them",
})

// Searcher runs the paired product and facet search for a state.
type Searcher interface {
	Search(ctx context.Context, state domain.SearchState, pageSize int) (*domain.SearchResult, error)
}

// Navigator is the location the controller reads from and writes to.
type Navigator interface {
	Params() url.Values
	Navigate(patch urlstate.Patch) bool
	Href(patch urlstate.Patch) string
	Subscribe(fn func(params url.Values)) (unsubscribe func())
}

// Controller owns a ViewState. It is safe for concurrent use.
type Controller struct {
	searcher Searcher
	nav      Navigator
	logger   *slog.Logger

	mu          sync.Mutex
	state       ViewState
	gen         uint64
	settled     chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closed      bool
}

// New creates a controller. It does nothing until Start.
func New(searcher Searcher, navigator Navigator, logger *slog.Logger) *Controller {
	settled := make(chan struct{})
	close(settled)
	return &Controller{
		searcher: searcher,
		nav:      navigator,
		logger:   logger,
		state:    newViewState(domain.DefaultPageSize),
		settled:  settled,
	}
}

// Start subscribes to navigations and searches for the current URL.
// Searches run until ctx is done or Close is called. Calling Start again has
// no effect.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil || c.closed {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	unsubscribe := c.nav.Subscribe(c.onNavigate)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.onNavigate(c.nav.Params())
}

// Close stops listening for navigations. Results still in flight are
// dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubscribe, cancel := c.unsubscribe, c.cancel
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) onNavigate(params url.Values) {
	state := urlstate.Decode(params)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	settled := make(chan struct{})
	c.settled = settled

	c.state.Query = state.Query
	c.state.BrandIDs = state.BrandIDs
	c.state.CategoryIDs = state.CategoryIDs
	c.state.Page = state.Page
	c.state.QueryInput = state.Query
	c.state.Loading = true
	c.state.Error = nil
	ctx, pageSize := c.ctx, c.state.PageSize
	c.mu.Unlock()

	go c.fetch(ctx, gen, state, pageSize, settled)
}

func (c *Controller) fetch(ctx context.Context, gen uint64, state domain.SearchState, pageSize int, settled chan struct{}) {
	defer close(settled)

	result, err := c.searcher.Search(ctx, state, pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if gen != c.gen {
		staleResults.Inc()
		c.logger.DebugContext(ctx, "dropping superseded search result",
			slog.Uint64("generation", gen),
			slog.Uint64("latest", c.gen),
		)
		return
	}

	c.state.Loading = false
	if err != nil {
		msg := errorMessage(err)
		c.state.Error = &msg
		c.logger.Log(ctx, failureLevel(err), "search failed",
			slog.String("query", state.Query),
			slog.Int("page", state.Page),
			slog.String("error", err.Error()),
		)
		return
	}
	if result == nil {
		result = &domain.SearchResult{Products: []domain.Product{}, Facets: domain.EmptyFacets()}
	}
	c.state.Products = result.Products
	c.state.TotalCount = result.TotalCount
	c.state.Facets = result.Facets
}

// errorMessage picks the text shown for a failed search: the remote
// message when there is one, then the error text, then UnknownError.
func errorMessage(err error) string {
	var remote *httpclient.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownError
}

// failureLevel logs rejected requests at warn and everything else at error.
func failureLevel(err error) slog.Level {
	var remote *httpclient.RemoteError
	if errors.As(err, &remote) && httpclient.IsClientError(remote.Status) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// Wait blocks until the latest navigation's search has settled, or ctx is
// done, and returns the state at that point.
func (c *Controller) Wait(ctx context.Context) (ViewState, error) {
	for {
		c.mu.Lock()
		settled := c.settled
		c.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}

		c.mu.Lock()
		latest := c.settled == settled
		snapshot := c.state.clone()
		c.mu.Unlock()
		if latest {
			return snapshot, nil
		}
	}
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetQueryInput records what the user typed. It does not navigate.
func (c *Controller) SetQueryInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.QueryInput = s
}

// ApplySearch navigates to the typed query on the first page.
func (c *Controller) ApplySearch() {
	c.mu.Lock()
	patch := searchPatch(c.state.QueryInput)
	c.mu.Unlock()
	c.patchURL(patch)
}

// ToggleBrand adds or removes a brand filter and returns to the first page.
func (c *Controller) ToggleBrand(id int64) {
	c.mu.Lock()
	patch := toggleBrandPatch(c.state, id)
	c.mu.Unlock()
	c.patchURL(patch)
}

// ToggleCategory adds or removes a category filter and returns to the first
// page.
func (c *Controller) ToggleCategory(id int64) {
	c.mu.Lock()
	patch := toggleCategoryPatch(c.state, id)
	c.mu.Unlock()
	c.patchURL(patch)
}

// PrevPage moves one page back. It does nothing on the first page.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	patch, ok := prevPagePatch(c.state)
	c.mu.Unlock()
	if ok {
		c.patchURL(patch)
	}
}

// NextPage moves one page forward. It does nothing on the last page.
func (c *Controller) NextPage() {
	c.mu.Lock()
	patch, ok := nextPagePatch(c.state)
	c.mu.Unlock()
	if ok {
		c.patchURL(patch)
	}
}

// patchURL is the only place interactions reach the navigator.
func (c *Controller) patchURL(patch urlstate.Patch) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.nav.Navigate(patch)
}
