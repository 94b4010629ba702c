// Package catalog defines the two remote procedures the storefront searches
// with and the parameter shapes they accept.
package catalog

import (
	"context"
	"slices"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
)

// Remote procedure names.
const (
	ProcSearchProducts = "search_products"
	ProcFacetCounts    = "facet_counts"
)

// Client calls the catalog's remote procedures.
type Client interface {
	SearchProducts(ctx context.Context, params SearchProductsParams) ([]domain.Product, error)
	FacetCounts(ctx context.Context, params FacetCountsParams) (*domain.FacetsResponse, error)
}

// Pinger is implemented by clients that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SearchProductsParams are the arguments of search_products. A nil Q or a
// nil id slice means "no filter" and is sent as null.
type SearchProductsParams struct {
	Q           *string `json:"q"`
	BrandIDs    []int64 `json:"brand_ids"`
	CategoryIDs []int64 `json:"category_ids"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
}

// FacetCountsParams are the arguments of facet_counts. Paging does not
// apply to facet counts.
type FacetCountsParams struct {
	Q           *string `json:"q"`
	BrandIDs    []int64 `json:"brand_ids"`
	CategoryIDs []int64 `json:"category_ids"`
}

// NewSearchProductsParams builds search_products arguments for state.
func NewSearchProductsParams(state domain.SearchState, pageSize int) SearchProductsParams {
	return SearchProductsParams{
		Q:           optionalString(state.Query),
		BrandIDs:    optionalIDs(state.BrandIDs),
		CategoryIDs: optionalIDs(state.CategoryIDs),
		Page:        state.Page,
		PageSize:    pageSize,
	}
}

// NewFacetCountsParams builds facet_counts arguments for state.
func NewFacetCountsParams(state domain.SearchState) FacetCountsParams {
	return FacetCountsParams{
		Q:           optionalString(state.Query),
		BrandIDs:    optionalIDs(state.BrandIDs),
		CategoryIDs: optionalIDs(state.CategoryIDs),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}
