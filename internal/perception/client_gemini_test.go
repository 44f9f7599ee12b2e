package perception

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

func geminiServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *GeminiClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewGeminiClient(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gemini-test",
		Timeout: 2 * time.Second,
	})
	return srv, client
}

func TestGeminiClient_GenerateJSON(t *testing.T) {
	_, client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, 0.0, req.GenerationConfig.Temperature)
		require.Len(t, req.Contents, 1)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": `{"ok": true}`}}}},
			},
		})
	})

	text, info, err := client.GenerateJSON(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, text)
	assert.Equal(t, "gemini-test", info.Name)
}

func TestGeminiClient_NoAPIKey(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{})
	_, _, err := client.GenerateJSON(context.Background(), "x")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestGeminiClient_RateLimited(t *testing.T) {
	_, client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := client.GenerateJSON(context.Background(), "x")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestGeminiClient_EmptyCompletion(t *testing.T) {
	_, client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, _, err := client.GenerateJSON(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeminiClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	_, client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < breakerThreshold; i++ {
		_, _, err := client.GenerateJSON(context.Background(), "x")
		require.ErrorIs(t, err, ErrLLMUnavailable)
	}
	assert.Equal(t, breakerThreshold, calls)

	// Circuit is open now: the next call fails fast without hitting the server
	_, _, err := client.GenerateJSON(context.Background(), "x")
	require.ErrorIs(t, err, ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, breakerThreshold, calls)
}

func TestGeminiClient_SuccessResetsBreaker(t *testing.T) {
	fail := true
	_, client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "{}"}}}},
			},
		})
	})

	_, _, err := client.GenerateJSON(context.Background(), "x")
	require.Error(t, err)

	fail = false
	_, _, err = client.GenerateJSON(context.Background(), "x")
	require.NoError(t, err)

	client.mu.Lock()
	assert.Equal(t, 0, client.failures)
	client.mu.Unlock()
}
