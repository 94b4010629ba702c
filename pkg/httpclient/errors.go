package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/nastassia-sauchanka/faceted-product-search/pkg/errors"
)

// RemoteError is a failure reported by a remote procedure endpoint. The
// fields mirror the PostgREST error envelope; Message is the text meant for
// display.
type RemoteError struct {
	Service string `json:"-"`
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s returned status %d", e.Service, e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap maps the remote status onto the shared sentinels so callers can use
// errors.Is and apperrors.HTTPStatus.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.Status == http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	default:
		return apperrors.ErrUpstream
	}
}

// ParseResponseError reads the body of a non-2xx HTTP response and turns it
// into a *RemoteError. A body in the PostgREST envelope keeps its code,
// message, details and hint; any other body becomes the message as is.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	remote := &RemoteError{Service: serviceName, Status: resp.StatusCode}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	if json.Unmarshal(bodyBytes, remote) == nil && remote.Message != "" {
		return remote
	}

	remote.Message = strings.TrimSpace(string(bodyBytes))
	if remote.Message == "" {
		remote.Message = http.StatusText(resp.StatusCode)
	}
	return remote
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
