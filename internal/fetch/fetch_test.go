package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="mod.sh">mod.sh</a></body></html>`))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, string(result.Body), `href="mod.sh"`)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_SendsHeaders(t *testing.T) {
	var gotAgent, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Custom")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(&Options{UserAgent: "test-agent", Headers: map[string]string{"X-Custom": "yes"}})
	body, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "test-agent", gotAgent)
	assert.Equal(t, "yes", gotCustom)
}

func TestClient_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	client := NewClient(&Options{MaxBytes: 16})
	_, err := client.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(&Options{Timeout: 50 * time.Millisecond})
	_, err := client.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "expected timeout, got %v", err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&Options{})
	opts := client.Options()
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
	assert.Equal(t, DefaultMaxBytes, opts.MaxBytes)

	assert.Equal(t, opts, NewClient(nil).Options())
}
