package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/controller"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/nav"
	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httputil"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/logger"
)

// SearchPath is the one page of the storefront.
const SearchPath = "/search"

// SearchHandler serves the search page and its interactions. Each request
// gets its own controller bound to the request URL.
type SearchHandler struct {
	searcher controller.Searcher
	renderer *Renderer
	logger   *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(searcher controller.Searcher, renderer *Renderer, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		renderer: renderer,
		logger:   logger,
	}
}

// searchResponse is the JSON form of the search page.
type searchResponse struct {
	controller.ViewState
	TotalPages int              `json:"total_pages"`
	Links      controller.Links `json:"links"`
}

// noSearch settles navigations instantly. Interaction endpoints use it when
// only the next URL matters.
type noSearch struct{}

func (noSearch) Search(context.Context, domain.SearchState, int) (*domain.SearchResult, error) {
	return &domain.SearchResult{Products: []domain.Product{}, Facets: domain.EmptyFacets()}, nil
}

func (h *SearchHandler) start(r *http.Request, searcher controller.Searcher) (*controller.Controller, *nav.Location) {
	loc := nav.New(SearchPath, r.URL.Query())
	c := controller.New(searcher, loc, h.requestLogger(r))
	c.Start(r.Context())
	return c, loc
}

func (h *SearchHandler) requestLogger(r *http.Request) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		return logger.WithContext(r.Context(), h.logger)
	}
	return l
}

// settled runs the search for the request URL and waits for its result.
func (h *SearchHandler) settled(w http.ResponseWriter, r *http.Request) (*controller.Controller, *nav.Location, controller.ViewState, bool) {
	c, loc := h.start(r, h.searcher)
	v, err := c.Wait(r.Context())
	if err != nil {
		c.Close()
		httputil.WriteError(w, r, apperrors.ServiceUnavailable("search did not complete", err), h.logger)
		return nil, nil, v, false
	}
	return c, loc, v, true
}

// Page handles GET /search. It renders HTML, or JSON when the client asks
// for it.
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	c, _, v, ok := h.settled(w, r)
	if !ok {
		return
	}
	defer c.Close()

	links := c.Links()
	if wantsJSON(r) {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newSearchResponse(v, links)})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, v, links); err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// API handles GET /api/v1/search.
func (h *SearchHandler) API(w http.ResponseWriter, r *http.Request) {
	c, _, v, ok := h.settled(w, r)
	if !ok {
		return
	}
	defer c.Close()

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newSearchResponse(v, c.Links())})
}

// Submit handles POST /search, the search form.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed form body"), h.logger)
		return
	}

	c, loc := h.start(r, noSearch{})
	defer c.Close()

	c.SetQueryInput(r.PostForm.Get("q"))
	c.ApplySearch()
	http.Redirect(w, r, loc.URL(), http.StatusSeeOther)
}

// ToggleBrand handles GET /search/brands/{id}/toggle.
func (h *SearchHandler) ToggleBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.facetID(w, r, "brand id")
	if !ok {
		return
	}
	h.interact(w, r, noSearch{}, func(c *controller.Controller) { c.ToggleBrand(id) })
}

// ToggleCategory handles GET /search/categories/{id}/toggle.
func (h *SearchHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.facetID(w, r, "category id")
	if !ok {
		return
	}
	h.interact(w, r, noSearch{}, func(c *controller.Controller) { c.ToggleCategory(id) })
}

// PrevPage handles GET /search/page/prev.
func (h *SearchHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, noSearch{}, (*controller.Controller).PrevPage)
}

// NextPage handles GET /search/page/next. The last page depends on the
// result count, so the search runs first.
func (h *SearchHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	c, loc, _, ok := h.settled(w, r)
	if !ok {
		return
	}
	defer c.Close()

	c.NextPage()
	http.Redirect(w, r, loc.URL(), http.StatusSeeOther)
}

func (h *SearchHandler) interact(w http.ResponseWriter, r *http.Request, searcher controller.Searcher, action func(*controller.Controller)) {
	c, loc := h.start(r, searcher)
	defer c.Close()

	action(c)
	http.Redirect(w, r, loc.URL(), http.StatusSeeOther)
}

func (h *SearchHandler) facetID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		httputil.WriteError(w, r, apperrors.InvalidParameter(name, raw), h.logger)
		return 0, false
	}
	return id, true
}

// RedirectToSearch sends every other path to the search page.
func RedirectToSearch(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, SearchPath, http.StatusFound)
}

func newSearchResponse(v controller.ViewState, links controller.Links) searchResponse {
	return searchResponse{ViewState: v, TotalPages: v.TotalPages(), Links: links}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
