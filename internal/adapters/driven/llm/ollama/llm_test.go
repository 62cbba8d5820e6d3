package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"})
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, ollamaapi.DefaultBaseURL, svc.client.BaseURL())
	assert.Equal(t, DefaultKeepAlive, svc.keepAlive)
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "Apply online.", Done: true})
	})

	out, err := svc.Generate(context.Background(), "How do I apply?", driven.GenerateOptions{MaxTokens: 100})

	require.NoError(t, err)
	assert.Equal(t, "Apply online.", out)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, "How do I apply?", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, DefaultKeepAlive, got.KeepAlive)
	require.NotNil(t, got.Options)
	assert.Equal(t, 100, got.Options.NumPredict)
}

func TestGenerate_NoOptions(t *testing.T) {
	var raw map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.NotContains(t, raw, "options")
}

func TestGenerate_TruncatedAnswerIsReturned(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "Farmers who", Done: true, DoneReason: "length", EvalCount: 2})
	})

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{MaxTokens: 2})

	require.NoError(t, err)
	assert.Equal(t, "Farmers who", out)
}

func TestGenerate_ModelNotPulled(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model \"mistral\" not found"}`, http.StatusNotFound)
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ollamaapi.ErrModelNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unavailable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Error(t, svc.Ping(context.Background()))
}
