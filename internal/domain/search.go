package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultPageSize is the number of products shown per result page.
const DefaultPageSize = 24

// SearchState is the search intent decoded from the URL. It is replaced
// wholesale on every navigation.
type SearchState struct {
	Query       string  `json:"q"`
	BrandIDs    []int64 `json:"brand_ids"`
	CategoryIDs []int64 `json:"category_ids"`
	Page        int     `json:"page"`
}

// Product is a row returned by the search_products procedure. Every row of a
// page carries the same TotalCount: the number of rows matching the query.
type Product struct {
	ID         string  `json:"id" validate:"required"`
	Name       *string `json:"name"`
	Image      *string `json:"image"`
	TotalCount int64   `json:"total_count" validate:"gte=0"`
}

// UnmarshalJSON accepts the id as a JSON string or a JSON number, so
// catalogs keyed by bigint and by uuid decode the same way.
func (p *Product) UnmarshalJSON(data []byte) error {
	type product Product
	var raw struct {
		product
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*p = Product(raw.product)
	p.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("product id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("product id: %w", err)
	}
	return n.String(), nil
}

// FacetItem is one filterable value with the number of matching products.
type FacetItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count" validate:"gte=0"`
}

// FacetsResponse is the payload of the facet_counts procedure.
type FacetsResponse struct {
	Brands     []FacetItem `json:"brands" validate:"dive"`
	Categories []FacetItem `json:"categories" validate:"dive"`
}

// EmptyFacets returns a facet payload with no brands and no categories.
func EmptyFacets() FacetsResponse {
	return FacetsResponse{Brands: []FacetItem{}, Categories: []FacetItem{}}
}

// SearchResult is the joined outcome of one search_products and one
// facet_counts call for the same SearchState.
type SearchResult struct {
	Products   []Product      `json:"products"`
	TotalCount int64          `json:"total_count"`
	Facets     FacetsResponse `json:"facets"`
}

// TotalCountOf returns the denormalized total carried by the first row, or 0
// for an empty page.
func TotalCountOf(rows []Product) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].TotalCount
}
