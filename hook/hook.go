// Package hook exposes the pipeline as a build-tool transform plugin.
//
// A bundler calls Transform for every module it loads. The plugin answers
// nil for ids it does not handle and for units that need no comments, so
// the bundler keeps its own text and source map.
package hook

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/source"
)

// Name is the plugin name reported to build tools.
const Name = "jsdoc-builder"

// Phase is the build-tool mode a transform runs in.
type Phase string

const (
	PhaseServe Phase = "serve"
	PhaseBuild Phase = "build"
)

// TransformResult is what a handled unit returns. Map is always null: only
// comment text is inserted, so positions after the insertions move but
// no mapping is produced.
type TransformResult struct {
	Code string `json:"code"`
	Map  any    `json:"map"`
}

// Plugin filters ids and delegates to annotate.Transform.
type Plugin struct {
	Name    string `json:"name"`
	Enforce string `json:"enforce"`

	apply      string
	include    []matcher
	exclude    []matcher
	extensions []string
	opts       annotate.Options
	logger     *zap.SugaredLogger
}

// New resolves the configuration once and returns a plugin that reuses it
// for every unit.
func New(opts annotate.Options) (*Plugin, error) {
	opts, err := annotate.Prepare(opts)
	if err != nil {
		return nil, err
	}
	cfg := opts.Config

	p := &Plugin{
		Name:       Name,
		Enforce:    "pre",
		apply:      cfg.Hook.Apply,
		extensions: cfg.Hook.Extensions,
		opts:       opts,
		logger:     logger.ComponentLogger("hook"),
	}
	if p.apply == "" {
		p.apply = config.DefaultHookApply
	}
	if len(p.extensions) == 0 {
		p.extensions = config.DefaultExtensions
	}
	p.include = compileAll(cfg.Hook.Include, p.logger)
	p.exclude = compileAll(cfg.Hook.Exclude, p.logger)
	return p, nil
}

// Config returns the resolved configuration the plugin runs with.
func (p *Plugin) Config() *config.Config {
	return p.opts.Config
}

// Applies reports whether the plugin runs in phase. An empty phase is
// treated as covered.
func (p *Plugin) Applies(phase Phase) bool {
	if phase == "" || p.apply == "both" {
		return true
	}
	return string(phase) == p.apply
}

// Accepts reports whether id passes the extension and include/exclude
// filters. Matching uses the normalised id.
func (p *Plugin) Accepts(id string) bool {
	clean := source.NormalizeID(id)
	if !source.Recognized(clean, p.extensions) {
		return false
	}
	for _, m := range p.exclude {
		if m.match(clean) {
			return false
		}
	}
	if len(p.include) == 0 {
		return true
	}
	for _, m := range p.include {
		if m.match(clean) {
			return true
		}
	}
	return false
}

// Transform annotates code. It returns nil, nil when the unit is filtered
// out or unchanged.
func (p *Plugin) Transform(ctx context.Context, code, id string, phase Phase) (*TransformResult, error) {
	if !p.Applies(phase) || !p.Accepts(id) {
		return nil, nil
	}

	res, err := annotate.Transform(ctx, id, code, p.opts)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		p.logger.Debugw("Transform warning", logger.FieldFile, id, "warning", w)
	}
	if !res.Changed || res.Code == code {
		return nil, nil
	}
	return &TransformResult{Code: res.Code}, nil
}

// matcher is one include/exclude entry: a substring, or a regular
// expression when written /pattern/.
type matcher struct {
	raw string
	re  *regexp.Regexp
}

func (m matcher) match(id string) bool {
	if m.re != nil {
		return m.re.MatchString(id)
	}
	return strings.Contains(id, m.raw)
}

func compileAll(entries []string, log *zap.SugaredLogger) []matcher {
	out := make([]matcher, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		m := matcher{raw: e}
		if len(e) > 2 && strings.HasPrefix(e, "/") && strings.HasSuffix(e, "/") {
			re, err := regexp.Compile(e[1 : len(e)-1])
			if err != nil {
				log.Warnw("Invalid filter pattern, matching as text", "pattern", e, logger.FieldError, err.Error())
			} else {
				m.re = re
			}
		}
		out = append(out, m)
	}
	return out
}
