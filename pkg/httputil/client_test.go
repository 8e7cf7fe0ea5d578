package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(fc, nil)
	c.Delay = time.Millisecond
	return c
}

func TestClientFetchCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		_, _ = w.Write([]byte("Year,Entity\n2020,Syria\n"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	for i := 0; i < 2; i++ {
		data, err := c.Fetch(context.Background(), srv.URL+"/refugee.csv")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(data) != "Year,Entity\n2020,Syria\n" {
			t.Errorf("body = %q", data)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}

	c.Refresh = true
	if _, err := c.Fetch(context.Background(), srv.URL+"/refugee.csv"); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("refresh should refetch, calls = %d", n)
	}
}

func TestClientFetchRetries5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	data, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("data=%q calls=%d", data, calls.Load())
	}
}

func TestClientFetchNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t)
	_, err := c.Fetch(context.Background(), srv.URL+"/missing.csv")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, calls = %d", calls.Load())
	}
}

func TestClientFetchInvalidURL(t *testing.T) {
	c := NewClient(nil, nil)
	if _, err := c.Fetch(context.Background(), "ftp://example.org/x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
