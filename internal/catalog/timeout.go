package catalog

import (
	"context"
	"time"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
)

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout bounds every call made through c by d. A non-positive d
// returns c unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{next: c, timeout: d}
}

func (t *timeoutClient) SearchProducts(ctx context.Context, params SearchProductsParams) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SearchProducts(ctx, params)
}

func (t *timeoutClient) FacetCounts(ctx context.Context, params FacetCountsParams) (*domain.FacetsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.FacetCounts(ctx, params)
}
