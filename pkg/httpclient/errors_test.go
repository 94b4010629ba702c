package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_PostgRESTEnvelope(t *testing.T) {
	body := `{"code":"PGRST202","message":"Could not find the function public.search_products","details":null,"hint":"Perhaps you meant facet_counts"}`

	err := ParseResponseError(makeResponse(http.StatusNotFound, body), "catalog")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "PGRST202", remote.Code)
	assert.Equal(t, "Could not find the function public.search_products", remote.Message)
	assert.Equal(t, "", remote.Details)
	assert.Equal(t, "Perhaps you meant facet_counts", remote.Hint)
	assert.Equal(t, http.StatusNotFound, remote.Status)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "catalog returned status 404 (PGRST202): Could not find the function public.search_products", err.Error())
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, "  upstream timed out\n"), "catalog")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "upstream timed out", remote.Message)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}

func TestParseResponseError_EmptyBodyUsesStatusText(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusServiceUnavailable, ""), "catalog")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "Service Unavailable", remote.Message)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestParseResponseError_JSONWithoutMessage(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadRequest, `{"code":"22P02"}`), "catalog")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, `{"code":"22P02"}`, remote.Message)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
}
