package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/ai/llm"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/internal/httpclient"
	"github.com/teranos/jsdoc-builder/internal/util"
	"github.com/teranos/jsdoc-builder/logger"
)

const (
	// DefaultModel is used when Config.Model is empty.
	// Should match config.DefaultsFor(config.ProviderOpenAI).
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the full chat-completions endpoint.
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 512
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	config     Config
	logger     *zap.SugaredLogger
}

// Config holds client configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string             // Full endpoint URL, requests are POSTed here as is
	Temperature *float64           // nil = use default (0.2)
	Timeout     time.Duration      // 0 = 15s
	Logger      *zap.SugaredLogger // nil = nop logger
}

// NewClient creates a client, filling in defaults for empty fields
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Temperature == nil {
		config.Temperature = util.Ptr(0.2)
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		httpClient: httpclient.ForEndpoint(config.Timeout, config.BaseURL),
		config:     config,
		logger:     log,
	}
}

// ChatCompletionRequest is the wire body of a chat-completions call
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the subset of the response we read
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is the token accounting block
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChatCompletion sends one request. Every failure is marked
// errors.ErrProvider; deadline overruns are also marked errors.ErrTimeout.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to marshal request"), errors.ErrProvider)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create request"), errors.ErrProvider)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "failed to send request"), errors.ErrProvider)
		if ctx.Err() != nil {
			err = errors.Mark(err, errors.ErrTimeout)
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read response"), errors.ErrProvider)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.NewProviderError("API request failed with status %d: %s", resp.StatusCode, truncate(respBody))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal response"), errors.ErrProvider)
	}
	return &chatResp, nil
}

// Chat sends a system+user prompt pair and returns the first choice's text.
// There is no retry: callers fall back on any error.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.apiKey == "" {
		return nil, errors.NewProviderError("OpenAI API key not configured")
	}

	temperature := *c.config.Temperature
	c.logger.Debugw("AI Chat Request",
		"model", c.config.Model,
		"temperature", temperature,
		"url", c.baseURL,
	)
	if logger.ShouldLogTrace(logger.Verbosity) {
		c.logger.Debugw("AI Chat Prompt", "system_prompt", req.SystemPrompt, "user_prompt", req.UserPrompt)
	}

	messages := []Message{{Role: "user", Content: req.UserPrompt}}
	if req.SystemPrompt != "" {
		messages = append([]Message{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}

	start := time.Now()
	resp, err := c.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "OpenAI API error")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.Mark(errors.New("no response choices from OpenAI"), errors.ErrEmptyDescription)
	}
	text := llm.Clean(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.Mark(errors.New("OpenAI returned empty content"), errors.ErrEmptyDescription)
	}

	c.logger.Debugw("OpenAI response",
		"content_length", len(text),
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &llm.ChatResponse{
		Content: text,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// SetHTTPClient overrides the HTTP client. Tests only: the wrapped client
// skips address checks.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.Wrap(client)
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
