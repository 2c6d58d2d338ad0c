// Package gemini is the adapter for the Gemini generateContent endpoint.
// Request and response bodies use the genai SDK's wire types; transport goes
// through internal/httpclient like every other provider.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/teranos/jsdoc-builder/ai/llm"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/internal/httpclient"
	"github.com/teranos/jsdoc-builder/internal/util"
	"github.com/teranos/jsdoc-builder/logger"
)

const (
	// DefaultModel should match config.DefaultsFor(config.ProviderGemini).
	DefaultModel   = "gemini-1.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 512
)

// Client calls <baseURL>/models/<model>:generateContent
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
	BaseURL     string
	Temperature *float64
	Timeout     time.Duration
	Logger      *zap.SugaredLogger
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
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.ForEndpoint(config.Timeout, config.BaseURL),
		config:     config,
		logger:     log,
	}
}

// GenerateContentRequest is the wire body of a generateContent call
type GenerateContentRequest struct {
	SystemInstruction *genai.Content          `json:"systemInstruction,omitempty"`
	Contents          []*genai.Content        `json:"contents"`
	GenerationConfig  *genai.GenerationConfig `json:"generationConfig,omitempty"`
}

// endpoint builds the request URL. The key travels in the query string.
func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return c.baseURL + "/models/" + url.PathEscape(c.config.Model) + ":generateContent?" + q.Encode()
}

// GenerateContent sends one request. Failures are marked errors.ErrProvider.
func (c *Client) GenerateContent(ctx context.Context, req GenerateContentRequest) (*genai.GenerateContentResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to marshal request"), errors.ErrProvider)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create request"), errors.ErrProvider)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// url.Error would echo the key back through the URL
		err = errors.Mark(errors.Newf("failed to send request to %s: %s", c.baseURL, redact(err, c.apiKey)), errors.ErrProvider)
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
		body := string(respBody)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody] + "..."
		}
		return nil, errors.NewProviderError("API request failed with status %d: %s", resp.StatusCode, body)
	}

	var out genai.GenerateContentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal response"), errors.ErrProvider)
	}
	return &out, nil
}

// Chat sends the prompt pair and concatenates the text parts of the first
// candidate.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.apiKey == "" {
		return nil, errors.NewProviderError("Gemini API key not configured")
	}

	c.logger.Debugw("AI Chat Request",
		"model", c.config.Model,
		"temperature", *c.config.Temperature,
		"url", c.baseURL,
	)
	if logger.ShouldLogTrace(logger.Verbosity) {
		c.logger.Debugw("AI Chat Prompt", "system_prompt", req.SystemPrompt, "user_prompt", req.UserPrompt)
	}

	body := GenerateContentRequest{
		Contents: []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.UserPrompt}},
		}},
		GenerationConfig: &genai.GenerationConfig{Temperature: util.Ptr(float32(*c.config.Temperature))},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	start := time.Now()
	resp, err := c.GenerateContent(ctx, body)
	if err != nil {
		return nil, errors.Wrap(err, "Gemini API error")
	}

	text := llm.Clean(firstCandidateText(resp))
	if text == "" {
		return nil, errors.Mark(errors.New("Gemini returned no text"), errors.ErrEmptyDescription)
	}

	out := &llm.ChatResponse{Content: text}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	c.logger.Debugw("Gemini response",
		"content_length", len(text),
		"total_tokens", out.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// SetHTTPClient overrides the HTTP client. Tests only.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.Wrap(client)
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(key), "****")
}
