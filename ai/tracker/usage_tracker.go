// Package tracker tallies description requests and token usage for a run.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/teranos/jsdoc-builder/ai/llm"
)

// Chatter is the provider capability being tracked.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// UsageStats summarises the requests seen so far.
type UsageStats struct {
	Requests         int           `json:"requests"`
	Failures         int           `json:"failures"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	TotalTokens      int           `json:"total_tokens"`
	Elapsed          time.Duration `json:"elapsed"`
}

// SuccessRate is the fraction of requests that returned, 0 with no requests.
func (s UsageStats) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Requests-s.Failures) / float64(s.Requests)
}

// UsageTracker wraps a Chatter and records every call. Safe for
// concurrent use.
type UsageTracker struct {
	client Chatter

	mu    sync.Mutex
	stats UsageStats
}

// NewUsageTracker wraps client.
func NewUsageTracker(client Chatter) *UsageTracker {
	return &UsageTracker{client: client}
}

// Chat forwards to the wrapped client and records the outcome.
func (t *UsageTracker) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := t.client.Chat(ctx, req)
	t.TrackUsage(resp, err, time.Since(start))
	return resp, err
}

// TrackUsage records one request.
func (t *UsageTracker) TrackUsage(resp *llm.ChatResponse, err error, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Requests++
	t.stats.Elapsed += elapsed
	if err != nil {
		t.stats.Failures++
		return
	}
	if resp != nil {
		t.stats.PromptTokens += resp.Usage.PromptTokens
		t.stats.CompletionTokens += resp.Usage.CompletionTokens
		t.stats.TotalTokens += resp.Usage.TotalTokens
	}
}

// GetUsageStats returns a snapshot.
func (t *UsageTracker) GetUsageStats() UsageStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
