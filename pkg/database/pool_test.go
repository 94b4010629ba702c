package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff_WithinJitter(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := defaultRetryBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - retryJitterFraction))
		hi := time.Duration(float64(base) * (1 + retryJitterFraction))
		for i := 0; i < 20; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d", attempt)
			assert.LessOrEqual(t, d, hi, "attempt %d", attempt)
		}
	}
}

func TestRetryBackoff_NegativeAttempt(t *testing.T) {
	d := retryBackoff(-3)
	assert.LessOrEqual(t, d, time.Duration(float64(defaultRetryBaseWait)*(1+retryJitterFraction)))
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp 127.0.0.1:5432: connect: connection refused", true},
		{"read: connection reset by peer", true},
		{"write: broken pipe", true},
		{"i/o timeout", true},
		{"unexpected EOF", true},
		{"could not connect to server", true},
		{"ERROR: function search_products(text) does not exist (SQLSTATE 42883)", false},
		{"password authentication failed for user \"anon\"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isConnectionError(errors.New(tt.msg)), tt.msg)
	}
	assert.False(t, isConnectionError(nil))
}

func TestNewPostgresPool_InvalidDSN(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), DefaultPostgresConfig("postgres://u@localhost:notaport/db"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse postgres config")
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig("postgres://localhost/catalog")
	assert.Equal(t, "postgres://localhost/catalog", cfg.DSN)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
}
