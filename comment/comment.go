// Package comment turns a typed target into doc-comment text.
//
// The description line comes from the configured AI provider when one is
// available; any provider failure degrades to "<name> function" and is
// reported as a warning, never as an error.
package comment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/ai/llm"
	"github.com/teranos/jsdoc-builder/ai/provider"
	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/infer"
	"github.com/teranos/jsdoc-builder/logger"
)

// Synthesizer builds comments for one run.
type Synthesizer struct {
	template config.Template
	withVoid bool
	prompt   string
	timeout  time.Duration
	client   provider.AIClient
	logger   *zap.SugaredLogger
}

// New creates a Synthesizer. client may be nil, in which case every
// description is the fallback.
func New(cfg *config.Config, client provider.AIClient) *Synthesizer {
	timeout := time.Duration(cfg.AI.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = config.DefaultTimeoutMs * time.Millisecond
	}
	prompt := cfg.AI.PromptTemplate
	if prompt == "" {
		prompt = config.DefaultPromptTemplate
	}
	return &Synthesizer{
		template: cfg.Template,
		withVoid: cfg.IncludeReturnsWhenVoid,
		prompt:   prompt,
		timeout:  timeout,
		client:   client,
		logger:   logger.ComponentLogger("comment"),
	}
}

// Fallback is the description used when no provider answer is available.
func Fallback(name string) string {
	return name + " function"
}

// Synthesize describes t and lays out its comment. warn is non-nil when the
// provider failed and the fallback description was used.
func (s *Synthesizer) Synthesize(ctx context.Context, t *collect.Target, sig infer.Signature) (text string, warn error) {
	desc, warn := s.Describe(ctx, t, sig)
	return s.Layout(t, sig, desc), warn
}

// Describe returns the description for t. It issues at most one provider
// request, bounded by the configured timeout.
func (s *Synthesizer) Describe(ctx context.Context, t *collect.Target, sig infer.Signature) (string, error) {
	if s.client == nil {
		return Fallback(t.Name), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Chat(ctx, llm.ChatRequest{
		SystemPrompt: config.SystemPrompt,
		UserPrompt:   s.Prompt(t, sig),
	})
	if err == nil {
		if resp != nil {
			if desc := llm.Clean(resp.Content); desc != "" {
				s.logger.Debugw("Description received",
					logger.FieldTarget, t.Name,
					logger.FieldDurationMS, time.Since(start).Milliseconds())
				return desc, nil
			}
		}
		err = errors.ErrEmptyDescription
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, errors.ErrTimeout) {
		err = errors.Mark(err, errors.ErrTimeout)
	}

	err = errors.Wrapf(err, "describe %s", t.Name)
	s.logger.Warnw("AI description failed, using fallback",
		logger.FieldTarget, t.Name,
		logger.FieldTimeoutMS, s.timeout.Milliseconds(),
		logger.FieldError, err.Error())
	return Fallback(t.Name), err
}

// Prompt renders the prompt template for t and appends its source.
func (s *Synthesizer) Prompt(t *collect.Target, sig infer.Signature) string {
	vars := baseVars(t.Name, len(sig.Params), sig.ReturnType, "")
	var sb strings.Builder
	sb.WriteString(Render(s.prompt, vars))
	sb.WriteString("\n\n```\n")
	sb.WriteString(t.Snippet)
	if !strings.HasSuffix(t.Snippet, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString("```")
	return sb.String()
}

// Lines renders the body lines of the comment, without the delimiters.
func (s *Synthesizer) Lines(t *collect.Target, sig infer.Signature, description string) []string {
	vars := baseVars(t.Name, len(sig.Params), sig.ReturnType, description)

	lines := []string{Render(s.template.DescriptionLine, vars)}
	for _, p := range sig.Params {
		pv := make(Vars, len(vars))
		for k, v := range vars {
			pv[k] = v
		}
		pv[VarType] = p.Type
		pv[VarName] = p.Name
		lines = append(lines, Render(s.template.ParamLine, pv))
	}
	if sig.ReturnType != infer.TypeVoid || s.withVoid {
		lines = append(lines, Render(s.template.ReturnsLine, vars))
	}
	return lines
}

// Layout returns the full comment, ending with a newline and the anchor's
// indentation so the anchor keeps its column once the text is inserted.
func (s *Synthesizer) Layout(t *collect.Target, sig infer.Signature, description string) string {
	nl := t.Newline
	if nl == "" {
		nl = "\n"
	}
	var sb strings.Builder
	sb.WriteString("/**" + nl)
	for _, line := range s.Lines(t, sig, description) {
		for _, part := range strings.Split(line, "\n") {
			part = strings.TrimRight(strings.ReplaceAll(part, "*/", "*\\/"), " \t\r")
			sb.WriteString(t.Indent)
			sb.WriteString(" *")
			if part != "" {
				sb.WriteByte(' ')
				sb.WriteString(part)
			}
			sb.WriteString(nl)
		}
	}
	sb.WriteString(t.Indent)
	sb.WriteString(" */" + nl)
	sb.WriteString(t.Indent)
	return sb.String()
}
