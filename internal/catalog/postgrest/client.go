// Package postgrest calls catalog procedures over the PostgREST RPC
// endpoint of a Supabase project.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httpclient"
)

// ServiceName labels errors and the circuit breaker for this backend.
const ServiceName = "postgrest"

const maxBodySize = 8 << 20

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client implements catalog.Client against {baseURL}/rest/v1/rpc.
type Client struct {
	http    HTTPDoer
	baseURL string
	apiKey  string
}

var (
	_ catalog.Client = (*Client)(nil)
	_ catalog.Pinger = (*Client)(nil)
)

// New creates a PostgREST catalog client. apiKey is sent both as the apikey
// header and as a bearer token.
func New(doer HTTPDoer, baseURL, apiKey string) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SearchProducts calls search_products. A null body yields no rows.
func (c *Client) SearchProducts(ctx context.Context, params catalog.SearchProductsParams) ([]domain.Product, error) {
	var rows []domain.Product
	if err := c.rpc(ctx, catalog.ProcSearchProducts, params, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return rows, nil
}

// FacetCounts calls facet_counts. A null body yields empty facet lists.
func (c *Client) FacetCounts(ctx context.Context, params catalog.FacetCountsParams) (*domain.FacetsResponse, error) {
	var facets *domain.FacetsResponse
	if err := c.rpc(ctx, catalog.ProcFacetCounts, params, &facets); err != nil {
		return nil, err
	}
	if facets == nil {
		empty := domain.EmptyFacets()
		facets = &empty
	}
	return facets, nil
}

// Ping checks that the REST root answers without a server error.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", ServiceName, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return httpclient.ParseResponseError(resp, ServiceName)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) rpc(ctx context.Context, fn string, params, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/rpc/"+fn, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", fn, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, ServiceName)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", fn, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", fn, apperrors.ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
