package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGroqProvider(OpenAIConfig{APIKey: "test-key", Model: "llama3-70b", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestGroqProvider_HappyPath(t *testing.T) {
	var gotBody map[string]any
	p := newTestGroqProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":[]}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), UserPrompt("system", "make a quiz", &Schema{Name: "quiz"}, 256, 0.7))
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, string(resp.Content))
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, "end", resp.StopReason)

	assert.Equal(t, "llama-3.3-70b-versatile", gotBody["model"])
	format, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok, "expected response_format in request")
	assert.Equal(t, "json_object", format["type"])
}

func TestGroqProvider_Truncated(t *testing.T) {
	p := newTestGroqProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":[`, "length"))
	})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 10, 0))
	var maxTok *ErrMaxTokensExceeded
	require.True(t, errors.As(err, &maxTok), "expected ErrMaxTokensExceeded, got %T", err)
}

func TestGroqProvider_RateLimit(t *testing.T) {
	p := newTestGroqProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "tokens", "message": "Rate limit exceeded", "code": "rate_limit_exceeded"},
		})
	})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 10, 0))
	var rl *ErrRateLimit
	require.True(t, errors.As(err, &rl), "expected ErrRateLimit, got %T (%v)", err, err)
}

func TestGroqProvider_ServerError(t *testing.T) {
	p := newTestGroqProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "server_error", "message": "Internal server error"},
		})
	})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 10, 0))
	var unavail *ErrProviderUnavailable
	require.True(t, errors.As(err, &unavail), "expected ErrProviderUnavailable, got %T (%v)", err, err)
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"})
	require.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"llama3-8b", "llama-3.1-8b-instant"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"custom-model", "custom-model"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.input, openaiModels))
	}
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
}
