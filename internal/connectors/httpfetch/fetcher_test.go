package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

func testConfig() Config {
	// High limits so tests do not sleep in the rate limiter.
	return Config{RequestsPerSecond: 1000, BurstSize: 1000}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.7 content"))
	}))
	defer server.Close()

	fetcher := New(testConfig())

	data, err := fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 content"), data)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	tests := []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError}

	for _, status := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		fetcher := New(testConfig())
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.Error(t, err, "status %d", status)
		assert.ErrorIs(t, err, domain.ErrFetch)
		server.Close()
	}
}

func TestFetch_NetworkFailure(t *testing.T) {
	fetcher := New(testConfig())

	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetch_SizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBytes = 1024
	fetcher := New(cfg)

	_, err := fetcher.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := New(testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
}
