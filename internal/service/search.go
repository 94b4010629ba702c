package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/tracing"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/validator"
)

const tracerName = "github.com/nastassia-sauchanka/faceted-product-search/internal/service"

var rpcDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_rpc_duration_seconds",
		Help:    "Duration of catalog remote procedure calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"procedure", "outcome"},
)

// SearchService runs the paired product and facet calls for a search.
type SearchService struct {
	client catalog.Client
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(client catalog.Client, logger *slog.Logger) *SearchService {
	return &SearchService{
		client: client,
		logger: logger,
	}
}

// Search issues search_products and facet_counts for state concurrently and
// joins them. If either call fails the search fails; the products failure is
// reported when both do. Zero rows is a successful, empty result.
func (s *SearchService) Search(ctx context.Context, state domain.SearchState, pageSize int) (*domain.SearchResult, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "SearchService.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.query", state.Query),
		attribute.Int("search.brands", len(state.BrandIDs)),
		attribute.Int("search.categories", len(state.CategoryIDs)),
		attribute.Int("search.page", state.Page),
	)

	var (
		g          errgroup.Group
		rows       []domain.Product
		facets     *domain.FacetsResponse
		productErr error
		facetErr   error
	)
	g.Go(func() error {
		rows, productErr = s.searchProducts(ctx, catalog.NewSearchProductsParams(state, pageSize))
		return productErr
	})
	g.Go(func() error {
		facets, facetErr = s.facetCounts(ctx, catalog.NewFacetCountsParams(state))
		return facetErr
	})

	if err := g.Wait(); err != nil {
		if productErr != nil {
			err = productErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &domain.SearchResult{
		Products:   slices.Clone(rows),
		TotalCount: domain.TotalCountOf(rows),
		Facets:     normalizeFacets(facets),
	}
	span.SetAttributes(attribute.Int64("search.total_count", result.TotalCount))

	s.logger.DebugContext(ctx, "search completed",
		slog.String("query", state.Query),
		slog.Int("page", state.Page),
		slog.Int("rows", len(rows)),
		slog.Int64("total_count", result.TotalCount),
	)
	return result, nil
}

func (s *SearchService) searchProducts(ctx context.Context, params catalog.SearchProductsParams) ([]domain.Product, error) {
	start := time.Now()
	rows, err := s.client.SearchProducts(ctx, params)
	if err == nil {
		if verr := validator.ValidateEach(rows); verr != nil {
			err = fmt.Errorf("%s: %w: %w", catalog.ProcSearchProducts, apperrors.ErrInvalidResponse, verr)
		}
	}
	observe(catalog.ProcSearchProducts, start, err)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return rows, nil
}

func (s *SearchService) facetCounts(ctx context.Context, params catalog.FacetCountsParams) (*domain.FacetsResponse, error) {
	start := time.Now()
	facets, err := s.client.FacetCounts(ctx, params)
	if err == nil && facets != nil {
		if verr := validator.Validate(facets); verr != nil {
			err = fmt.Errorf("%s: %w: %w", catalog.ProcFacetCounts, apperrors.ErrInvalidResponse, verr)
		}
	}
	observe(catalog.ProcFacetCounts, start, err)
	return facets, err
}

func observe(procedure string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcDuration.WithLabelValues(procedure, outcome).Observe(time.Since(start).Seconds())
}

// normalizeFacets copies f, replacing a missing payload or missing lists
// with empty ones.
func normalizeFacets(f *domain.FacetsResponse) domain.FacetsResponse {
	out := domain.EmptyFacets()
	if f == nil {
		return out
	}
	if f.Brands != nil {
		out.Brands = slices.Clone(f.Brands)
	}
	if f.Categories != nil {
		out.Categories = slices.Clone(f.Categories)
	}
	return out
}
