package postgrest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httpclient"
)

type recorded struct {
	path   string
	body   string
	apiKey string
	auth   string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.path = r.URL.Path
		rec.body = string(body)
		rec.apiKey = r.Header.Get("apikey")
		rec.auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	doer := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxConnsPerHost: 4})
	return New(doer, srv.URL+"/", "anon-key"), rec
}

func TestSearchProducts_SendsNullFilters(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK,
		`[{"id":"p1","name":"Red shoe","image":null,"total_count":30}]`)

	rows, err := c.SearchProducts(context.Background(),
		catalog.NewSearchProductsParams(domain.SearchState{Query: "shoe"}, 24))
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/rpc/search_products", rec.path)
	assert.JSONEq(t, `{"q":"shoe","brand_ids":null,"category_ids":null,"page":0,"page_size":24}`, rec.body)
	assert.Equal(t, "anon-key", rec.apiKey)
	assert.Equal(t, "Bearer anon-key", rec.auth)

	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)
	require.NotNil(t, rows[0].Name)
	assert.Equal(t, "Red shoe", *rows[0].Name)
	assert.Nil(t, rows[0].Image)
	assert.Equal(t, int64(30), rows[0].TotalCount)
}

func TestSearchProducts_AcceptsNumericIDs(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK,
		`[{"id":101,"name":"Boot","image":null,"total_count":2},{"id":"102","name":null,"image":null,"total_count":2}]`)

	rows, err := c.SearchProducts(context.Background(), catalog.SearchProductsParams{PageSize: 24})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "101", rows[0].ID)
	assert.Equal(t, "102", rows[1].ID)
}

func TestSearchProducts_NullBodyIsEmpty(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `null`)

	rows, err := c.SearchProducts(context.Background(), catalog.SearchProductsParams{PageSize: 24})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFacetCounts(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK,
		`{"brands":[{"id":3,"name":"Acme","count":12}],"categories":[]}`)

	facets, err := c.FacetCounts(context.Background(),
		catalog.NewFacetCountsParams(domain.SearchState{BrandIDs: []int64{3}}))
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/rpc/facet_counts", rec.path)
	assert.JSONEq(t, `{"q":null,"brand_ids":[3],"category_ids":null}`, rec.body)
	assert.Equal(t, []domain.FacetItem{{ID: 3, Name: "Acme", Count: 12}}, facets.Brands)
	assert.Empty(t, facets.Categories)
}

func TestFacetCounts_NullBodyIsEmpty(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `null`)

	facets, err := c.FacetCounts(context.Background(), catalog.FacetCountsParams{})
	require.NoError(t, err)
	assert.Equal(t, domain.EmptyFacets(), *facets)
}

func TestRPC_ErrorEnvelopeKeepsMessage(t *testing.T) {
	c, _ := newTestServer(t, http.StatusBadRequest,
		`{"code":"42883","message":"function search_products(text) does not exist","details":null,"hint":"No function matches"}`)

	_, err := c.SearchProducts(context.Background(), catalog.SearchProductsParams{})
	require.Error(t, err)

	var remote *httpclient.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "function search_products(text) does not exist", remote.Message)
	assert.Equal(t, "42883", remote.Code)
	assert.Equal(t, ServiceName, remote.Service)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestRPC_MalformedBody(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"not":"an array"}`)

	_, err := c.SearchProducts(context.Background(), catalog.SearchProductsParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidResponse)
}

func TestRPC_ContextCanceled(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FacetCounts(ctx, catalog.FacetCountsParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{}`)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "/rest/v1/", rec.path)

	down, _ := newTestServer(t, http.StatusServiceUnavailable, `upstream down`)
	err := down.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestNew_WithoutAPIKey(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `[]`)
	c.apiKey = ""

	_, err := c.SearchProducts(context.Background(), catalog.SearchProductsParams{})
	require.NoError(t, err)
	assert.Empty(t, rec.apiKey)
	assert.Empty(t, rec.auth)
}
