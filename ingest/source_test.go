package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineSourceLoad(t *testing.T) {
	body, err := InlineSource("198.51.100.1,198.51.100.2").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.1,198.51.100.2", body)
}

func TestFileSourceLoadMissingFile(t *testing.T) {
	_, err := FileSource("/nonexistent/path/edgerank-test.txt").Load(context.Background())
	assert.Error(t, err)
}

func TestURLSourceLoadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("198.51.100.0/24\n"))
	}))
	defer srv.Close()

	src := URLSource{URL: srv.URL}
	body, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.0/24\n", body)
}

func TestURLSourceLoadPermanentOnClientError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := URLSource{URL: srv.URL}
	_, err := src.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, hits, "a 4xx response is a permanent failure, not retried")
}

func TestURLSourceLoadRetriesOnServerError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	src := URLSource{URL: srv.URL}
	body, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.GreaterOrEqual(t, hits, 2, "a 5xx response is retried")
}
