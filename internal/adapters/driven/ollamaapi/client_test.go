package ollamaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", time.Second)
}

func tagsHandler(names ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		models := make([]map[string]string, 0, len(names))
		for _, n := range names {
			models = append(models, map[string]string{"name": n})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
	}
}

func TestNewClient_DefaultsAndTrim(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("", time.Second).BaseURL())
	assert.Equal(t, "http://gpu:11434", NewClient("http://gpu:11434/", time.Second).BaseURL())
}

func TestPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	})

	var out map[string]string
	require.NoError(t, c.Post(context.Background(), "/api/echo", map[string]string{"say": "hi"}, &out))

	assert.Equal(t, "hi", out["echo"])
}

func TestPost_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model \"llama9\" not found, try pulling it first"}`, http.StatusNotFound)
	})

	err := c.Post(context.Background(), "/api/generate", map[string]string{}, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.Contains(t, err.Error(), "404")
}

func TestPost_ServerErrorIsNotModelNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	})

	err := c.Post(context.Background(), "/api/generate", map[string]string{}, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFound)
}

func TestModels(t *testing.T) {
	c := newTestClient(t, tagsHandler("llama3.2:latest", "nomic-embed-text:latest"))

	names, err := c.Models(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "nomic-embed-text:latest"}, names)
}

func TestCheckModel(t *testing.T) {
	c := newTestClient(t, tagsHandler("llama3.2:latest", "mistral:7b"))

	tests := []struct {
		model   string
		wantErr bool
	}{
		{"llama3.2", false},
		{"llama3.2:latest", false},
		{"mistral:7b", false},
		{"mistral", true},
		{"phi3", true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			err := c.CheckModel(context.Background(), tt.model)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrModelNotFound)
				assert.Contains(t, err.Error(), "ollama pull "+tt.model)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckModel_Unreachable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.CheckModel(context.Background(), "llama3.2")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFound)
	assert.Contains(t, err.Error(), "ping failed")
}
