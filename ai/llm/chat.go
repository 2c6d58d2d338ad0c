// Package llm holds the request and response shapes shared by the AI
// provider adapters.
package llm

import "strings"

// ChatRequest is one description request: a fixed system prompt plus the
// rendered user prompt.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// ChatResponse carries the provider's answer.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Clean trims text and collapses whitespace runs, newlines included, into
// single spaces.
func Clean(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}
