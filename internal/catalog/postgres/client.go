// Package postgres calls catalog procedures directly on the catalog
// database through pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/database"
	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httpclient"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/pagination"
)

// ServiceName labels errors reported by this backend.
const ServiceName = "postgres"

const (
	searchProductsSQL = `SELECT id::text, coalesce(name, ''), coalesce(image, ''), total_count FROM search_products($1, $2, $3, $4, $5)`
	facetCountsSQL    = `SELECT facet_counts($1, $2, $3)`
)

// DBTX is the subset of *pgxpool.Pool the client needs. pgxmock pools
// satisfy it too.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Client implements catalog.Client with SQL function calls.
type Client struct {
	db DBTX
}

var (
	_ catalog.Client = (*Client)(nil)
	_ catalog.Pinger = (*Client)(nil)
)

// New creates a catalog client over db.
func New(db DBTX) *Client {
	return &Client{db: db}
}

// SearchProducts runs search_products. Empty names and images are reported
// as absent.
func (c *Client) SearchProducts(ctx context.Context, params catalog.SearchProductsParams) (rows []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, catalog.ProcSearchProducts, searchProductsSQL,
		attribute.Int("catalog.page", params.Page),
		attribute.Int("catalog.page_size", params.PageSize),
		attribute.Int("catalog.offset", pagination.Offset(params.Page, params.PageSize)),
	)
	defer func() { end(err) }()

	result, err := c.db.Query(ctx, searchProductsSQL,
		params.Q, params.BrandIDs, params.CategoryIDs, params.Page, params.PageSize)
	if err != nil {
		return nil, remoteError(catalog.ProcSearchProducts, err)
	}
	defer result.Close()

	rows = []domain.Product{}
	for result.Next() {
		var (
			p           domain.Product
			name, image string
		)
		if err := result.Scan(&p.ID, &name, &image, &p.TotalCount); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", catalog.ProcSearchProducts, err)
		}
		p.Name = nonEmpty(name)
		p.Image = nonEmpty(image)
		rows = append(rows, p)
	}
	if err := result.Err(); err != nil {
		return nil, remoteError(catalog.ProcSearchProducts, err)
	}
	return rows, nil
}

// FacetCounts runs facet_counts and decodes its json result. A NULL result
// yields empty facet lists.
func (c *Client) FacetCounts(ctx context.Context, params catalog.FacetCountsParams) (facets *domain.FacetsResponse, err error) {
	ctx, end := database.TraceQuery(ctx, catalog.ProcFacetCounts, facetCountsSQL)
	defer func() { end(err) }()

	var raw []byte
	if err := c.db.QueryRow(ctx, facetCountsSQL, params.Q, params.BrandIDs, params.CategoryIDs).Scan(&raw); err != nil {
		return nil, remoteError(catalog.ProcFacetCounts, err)
	}

	facets = &domain.FacetsResponse{}
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		*facets = domain.EmptyFacets()
		return facets, nil
	}
	if err := json.Unmarshal(raw, facets); err != nil {
		return nil, fmt.Errorf("decode %s result: %w: %w", catalog.ProcFacetCounts, apperrors.ErrInvalidResponse, err)
	}
	return facets, nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}

// remoteError reports server-side failures the same way the PostgREST
// backend does, so callers can show the server's message.
func remoteError(fn string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("call %s: %w", fn, err)
	}
	return &httpclient.RemoteError{
		Service: ServiceName,
		Status:  statusForSQLState(pgErr.Code),
		Code:    pgErr.Code,
		Message: pgErr.Message,
		Details: pgErr.Detail,
		Hint:    pgErr.Hint,
	}
}

func statusForSQLState(code string) int {
	switch {
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "42"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), code == "57014", code == "57P03":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
