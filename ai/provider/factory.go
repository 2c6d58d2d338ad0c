// Package provider selects and wraps the AI client used for descriptions.
package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/jsdoc-builder/ai/gemini"
	"github.com/teranos/jsdoc-builder/ai/llm"
	"github.com/teranos/jsdoc-builder/ai/openai"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/internal/util"
	"github.com/teranos/jsdoc-builder/logger"
)

// AIClient is implemented by every provider adapter
type AIClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// NewAIClient builds the client for a normalised AI config. It returns nil
// when AI is disabled or no credential was resolved; callers treat nil as
// "use the fallback description".
func NewAIClient(cfg config.AIConfig) AIClient {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond

	var client AIClient
	switch cfg.Provider {
	case config.ProviderGemini:
		client = gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: util.Ptr(cfg.Temperature),
			Timeout:     timeout,
			Logger:      logger.ComponentLogger("ai.gemini"),
		})
	default:
		client = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: util.Ptr(cfg.Temperature),
			Timeout:     timeout,
			Logger:      logger.ComponentLogger("ai.openai"),
		})
	}

	if cfg.RequestsPerMinute > 0 {
		client = WithRateLimit(client, cfg.RequestsPerMinute)
	}
	return client
}

// RateLimitedClient paces requests to at most N per minute
type RateLimitedClient struct {
	client  AIClient
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// WithRateLimit wraps client so that it issues at most perMinute requests
// per minute. A non-positive rate returns client unchanged.
func WithRateLimit(client AIClient, perMinute int) AIClient {
	if perMinute <= 0 || client == nil {
		return client
	}
	return &RateLimitedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		logger:  logger.ComponentLogger("ai.ratelimit"),
	}
}

// Chat waits for a token, then delegates. Waiting counts against ctx.
func (r *RateLimitedClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "rate limit wait"), errors.ErrTimeout)
	}
	if waited := time.Since(start); waited > 10*time.Millisecond {
		r.logger.Debugw("Request paced", logger.FieldDurationMS, waited.Milliseconds())
	}
	return r.client.Chat(ctx, req)
}

// Verify interfaces are implemented
var _ AIClient = (*openai.Client)(nil)
var _ AIClient = (*gemini.Client)(nil)
var _ AIClient = (*RateLimitedClient)(nil)
