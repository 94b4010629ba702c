package controller

import (
	"strconv"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/urlstate"
)

func searchPatch(query string) urlstate.Patch {
	return urlstate.Patch{
		urlstate.ParamQuery: query,
		urlstate.ParamPage:  urlstate.EncodePage(0),
	}
}

func toggleBrandPatch(v ViewState, id int64) urlstate.Patch {
	return urlstate.Patch{
		urlstate.ParamBrands: urlstate.EncodeCSV(urlstate.Toggle(v.BrandIDs, id)),
		urlstate.ParamPage:   urlstate.EncodePage(0),
	}
}

func toggleCategoryPatch(v ViewState, id int64) urlstate.Patch {
	return urlstate.Patch{
		urlstate.ParamCategories: urlstate.EncodeCSV(urlstate.Toggle(v.CategoryIDs, id)),
		urlstate.ParamPage:       urlstate.EncodePage(0),
	}
}

func clearFiltersPatch() urlstate.Patch {
	return urlstate.Patch{
		urlstate.ParamBrands:     "",
		urlstate.ParamCategories: "",
		urlstate.ParamPage:       urlstate.EncodePage(0),
	}
}

func prevPagePatch(v ViewState) (urlstate.Patch, bool) {
	if !v.HasPrev() {
		return nil, false
	}
	return urlstate.Patch{urlstate.ParamPage: urlstate.EncodePage(v.Page - 1)}, true
}

func nextPagePatch(v ViewState) (urlstate.Patch, bool) {
	if !v.HasNext() {
		return nil, false
	}
	return urlstate.Patch{urlstate.ParamPage: urlstate.EncodePage(v.Page + 1)}, true
}

// Links are the URLs behind every control on the search page.
type Links struct {
	Self         string            `json:"self"`
	ClearFilters string            `json:"clear_filters"`
	Prev         string            `json:"prev,omitempty"`
	Next         string            `json:"next,omitempty"`
	Brands       map[string]string `json:"brands"`
	Categories   map[string]string `json:"categories"`
}

// BrandHref returns the toggle link for a brand facet.
func (l Links) BrandHref(id int64) string {
	return l.Brands[strconv.FormatInt(id, 10)]
}

// CategoryHref returns the toggle link for a category facet.
func (l Links) CategoryHref(id int64) string {
	return l.Categories[strconv.FormatInt(id, 10)]
}

// Links computes the controls' URLs from the current state, with the same
// patches the interaction methods apply.
func (c *Controller) Links() Links {
	v := c.Snapshot()

	links := Links{
		Self:         c.nav.Href(nil),
		ClearFilters: c.nav.Href(clearFiltersPatch()),
		Brands:       make(map[string]string, len(v.Facets.Brands)),
		Categories:   make(map[string]string, len(v.Facets.Categories)),
	}
	if patch, ok := prevPagePatch(v); ok {
		links.Prev = c.nav.Href(patch)
	}
	if patch, ok := nextPagePatch(v); ok {
		links.Next = c.nav.Href(patch)
	}
	for _, b := range v.Facets.Brands {
		links.Brands[strconv.FormatInt(b.ID, 10)] = c.nav.Href(toggleBrandPatch(v, b.ID))
	}
	for _, cat := range v.Facets.Categories {
		links.Categories[strconv.FormatInt(cat.ID, 10)] = c.nav.Href(toggleCategoryPatch(v, cat.ID))
	}
	return links
}
