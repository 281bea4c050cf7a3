package hub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier() *retry.Retrier {
	return retry.NewRetrier(&retry.Config{MaxRetries: 2, BackoffFactor: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond})
}

func TestFetch_DownloadsOnceThenCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/datasets/rachq/rag-ceramics/resolve/main/index.db", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "artifact-bytes")
	}))
	defer srv.Close()

	cache := t.TempDir()
	c := NewClient(srv.URL, "hf_test", cache).WithRetrier(fastRetrier())

	path, err := c.Fetch(context.Background(), "rachq/rag-ceramics", "", "index.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "rachq", "rag-ceramics", "main", "index.db"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "artifact-bytes", string(data))

	again, err := c.Fetch(context.Background(), "rachq/rag-ceramics", "main", "index.db")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.EqualValues(t, 1, calls)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".download-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", t.TempDir()).WithRetrier(fastRetrier())
	_, err := c.Fetch(context.Background(), "rachq/rag-ceramics", "v1", "index.db")
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls)
}

func TestFetch_PermanentFailures(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(code)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", t.TempDir()).WithRetrier(fastRetrier())
			_, err := c.Fetch(context.Background(), "rachq/rag-ceramics", "main", "index.db")
			assert.ErrorIs(t, err, core.ErrIndexUnavailable)
			assert.EqualValues(t, 1, calls)
		})
	}
}

func TestFetch_Validation(t *testing.T) {
	c := NewClient("", "", t.TempDir())
	_, err := c.Fetch(context.Background(), "", "main", "index.db")
	assert.ErrorIs(t, err, core.ErrIndexUnavailable)
}
