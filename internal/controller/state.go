package controller

import (
	"slices"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/pagination"
)

// ViewState is everything the search page renders.
type ViewState struct {
	Query       string  `json:"q"`
	BrandIDs    []int64 `json:"brand_ids"`
	CategoryIDs []int64 `json:"category_ids"`
	Page        int     `json:"page"`

	// QueryInput is the text in the search box, which may differ from Query
	// until the search is applied.
	QueryInput string `json:"query_input"`

	Loading bool `json:"loading"`
	// Error is nil unless the latest search failed.
	Error *string `json:"error"`

	Products   []domain.Product      `json:"products"`
	TotalCount int64                 `json:"total_count"`
	Facets     domain.FacetsResponse `json:"facets"`
	PageSize   int                   `json:"page_size"`
}

func newViewState(pageSize int) ViewState {
	return ViewState{
		BrandIDs:    []int64{},
		CategoryIDs: []int64{},
		Products:    []domain.Product{},
		Facets:      domain.EmptyFacets(),
		PageSize:    pageSize,
	}
}

// TotalPages is the number of result pages, never less than one.
func (v ViewState) TotalPages() int {
	return pagination.TotalPages(v.TotalCount, v.pageSize())
}

// LastPage is the highest zero-based page index.
func (v ViewState) LastPage() int {
	return pagination.LastPage(v.TotalCount, v.pageSize())
}

// HasPrev reports whether a previous page exists.
func (v ViewState) HasPrev() bool {
	return pagination.HasPrev(v.Page)
}

// HasNext reports whether a next page exists.
func (v ViewState) HasNext() bool {
	return pagination.HasNext(v.Page, v.TotalCount, v.pageSize())
}

func (v ViewState) pageSize() int {
	if v.PageSize <= 0 {
		return domain.DefaultPageSize
	}
	return v.PageSize
}

// IsBrandSelected reports whether id is in the brand filter.
func (v ViewState) IsBrandSelected(id int64) bool {
	return slices.Contains(v.BrandIDs, id)
}

// IsCategorySelected reports whether id is in the category filter.
func (v ViewState) IsCategorySelected(id int64) bool {
	return slices.Contains(v.CategoryIDs, id)
}

func (v ViewState) clone() ViewState {
	out := v
	out.BrandIDs = slices.Clone(v.BrandIDs)
	out.CategoryIDs = slices.Clone(v.CategoryIDs)
	out.Products = slices.Clone(v.Products)
	if v.Error != nil {
		msg := *v.Error
		out.Error = &msg
	}
	out.Facets = domain.FacetsResponse{
		Brands:     slices.Clone(v.Facets.Brands),
		Categories: slices.Clone(v.Facets.Categories),
	}
	return out
}
