package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/normalisers"
	"github.com/custodia-labs/scheme-research/internal/normalisers/html"
	"github.com/custodia-labs/scheme-research/internal/normalisers/plaintext"
)

func newTestLoader(t *testing.T, cfg Config) *Loader {
	t.Helper()
	registry := normalisers.NewRegistry()
	registry.Register(html.New())
	registry.Register(plaintext.New())

	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1000
		cfg.Burst = 100
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = time.Millisecond
	}
	l, err := New(cfg, registry)
	require.NoError(t, err)
	return l
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	l, err := New(Config{}, normalisers.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, l.cfg.Concurrency)
	assert.Equal(t, uint64(DefaultMaxRetries), l.maxRetries)
	assert.Equal(t, DefaultUserAgent, l.cfg.UserAgent)
}

func TestLoad_PreservesOrderAndSkipsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/grant", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>Grant</title></head><body><p>Farm grant details.</p></body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Apply before March."))
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/blank", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	urls := []string{
		server.URL + "/grant",
		server.URL + "/missing",
		"ftp://example.com/file",
		server.URL + "/image",
		server.URL + "/blank",
		server.URL + "/notes.txt",
	}

	docs, err := newTestLoader(t, Config{}).Load(context.Background(), urls)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, urls[0], docs[0].Source)
	assert.Equal(t, "Grant", docs[0].Title)
	assert.Equal(t, "Farm grant details.", docs[0].Content)
	assert.Equal(t, "text/html", docs[0].MIMEType)
	assert.Equal(t, urls[5], docs[1].Source)
	assert.Equal(t, "Apply before March.", docs[1].Content)
}

func TestLoad_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("finally"))
	}))
	defer server.Close()

	docs, err := newTestLoader(t, Config{MaxRetries: 3}).Load(context.Background(), []string{server.URL})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "finally", docs[0].Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoad_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	docs, err := newTestLoader(t, Config{MaxRetries: 3}).Load(context.Background(), []string{server.URL})

	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoad_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	docs, err := newTestLoader(t, Config{MaxRetries: 2}).Load(context.Background(), []string{server.URL})

	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoad_SniffsMissingContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Sniffed</title></head><body><p>Body text</p></body></html>"))
	}))
	defer server.Close()

	docs, err := newTestLoader(t, Config{}).Load(context.Background(), []string{server.URL})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Sniffed", docs[0].Title)
	assert.Equal(t, "text/html", docs[0].MIMEType)
}

func TestLoad_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("never"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t, Config{}).Load(ctx, []string{server.URL})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_EmptyInput(t *testing.T) {
	docs, err := newTestLoader(t, Config{}).Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"https://example.gov/a", false},
		{"  http://example.gov  ", false},
		{"example.gov/a", true},
		{"file:///etc/passwd", true},
		{"https://", true},
		{"://bad", true},
	}
	for _, tc := range tests {
		_, err := validateURL(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
		} else {
			assert.NoError(t, err, tc.in)
		}
	}
}
