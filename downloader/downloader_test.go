package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGet(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := HTTPGet(context.Background(), srv.URL, map[string]string{"X-Api-Key": "sekrit"}, GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), body)
	assert.Equal(t, "sekrit", gotHeader)
}

func TestHTTPGetMaxSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	body, err := HTTPGet(context.Background(), srv.URL, nil, GetOptions{MaxSize: 4})
	require.NoError(t, err)
	assert.Equal(t, []byte("hell"), body)
}

func TestHTTPGetRetriesServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls += 1
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := HTTPGet(context.Background(), srv.URL, nil, GetOptions{Retries: 2})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, 2, calls)
}

func TestHTTPGetClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls += 1
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := HTTPGet(context.Background(), srv.URL, nil, GetOptions{Retries: 3})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestMemoryCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls += 1
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	now := time.Now()
	d := NewMemory()
	d.TimeNow = func() time.Time { return now }

	options := GetOptions{Cache: true, CacheTTL: time.Minute}

	_, err := d.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	_, err = d.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Past the TTL, the entry is refetched.
	now = now.Add(2 * time.Minute)
	_, err = d.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFilesystemCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls += 1
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cache.json")
	options := GetOptions{Cache: true, CacheTTL: time.Hour}

	d, err := NewFilesystem(path)
	require.NoError(t, err)

	body, err := d.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), body)

	_, err = d.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// A fresh instance reloads the cache file.
	d2, err := NewFilesystem(path)
	require.NoError(t, err)
	body, err = d2.Get(context.Background(), srv.URL, nil, options)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), body)
	assert.Equal(t, 1, calls)

	// Without Cache set, the cache is bypassed.
	_, err = d2.Get(context.Background(), srv.URL, nil, GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
