package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsdoc-builder/ai/llm"
	"github.com/teranos/jsdoc-builder/errors"
)

func TestClient_Configuration(t *testing.T) {
	t.Run("applies default values", func(t *testing.T) {
		client := NewClient(Config{APIKey: "test-key"})
		assert.Equal(t, DefaultModel, client.config.Model)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		require.NotNil(t, client.config.Temperature)
		assert.Equal(t, 0.2, *client.config.Temperature)
		assert.True(t, client.IsConfigured())
	})

	t.Run("preserves custom values", func(t *testing.T) {
		temp := 0.7
		client := NewClient(Config{
			APIKey:      "k",
			Model:       "custom-model",
			BaseURL:     "http://localhost:8080/v1/chat/completions",
			Temperature: &temp,
		})
		assert.Equal(t, "custom-model", client.config.Model)
		assert.Equal(t, "http://localhost:8080/v1/chat/completions", client.baseURL)
		assert.Equal(t, 0.7, *client.config.Temperature)
	})

	t.Run("not configured without key", func(t *testing.T) {
		assert.False(t, NewClient(Config{}).IsConfigured())
	})
}

func TestClient_Chat(t *testing.T) {
	var got ChatCompletionRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  Adds two\nnumbers.  "}}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	client.SetHTTPClient(server.Client())

	resp, err := client.Chat(context.Background(), llm.ChatRequest{
		SystemPrompt: "system text",
		UserPrompt:   "describe sum",
	})
	require.NoError(t, err)
	assert.Equal(t, "Adds two numbers.", resp.Content)
	assert.Equal(t, 12, resp.Usage.TotalTokens)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "system text"}, got.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "describe sum"}, got.Messages[1])
}

func TestClient_ChatFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, errors.ErrProvider},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, errors.ErrProvider},
		{"malformed body", http.StatusOK, `not json`, errors.ErrProvider},
		{"no choices", http.StatusOK, `{"choices":[]}`, errors.ErrEmptyDescription},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, errors.ErrEmptyDescription},
		{"null content", http.StatusOK, `{"choices":[{"message":{"content":null}}]}`, errors.ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
			_, err := client.Chat(context.Background(), llm.ChatRequest{UserPrompt: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestClient_ChatTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, llm.ChatRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
	assert.True(t, errors.IsProviderError(err))
}

func TestClient_ChatWithoutKey(t *testing.T) {
	_, err := NewClient(Config{}).Chat(context.Background(), llm.ChatRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsProviderError(err))
}
