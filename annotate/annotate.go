// Package annotate runs the insertion pipeline over source units.
//
// Transform is pure: it takes an id and text and returns the annotated
// text. AnnotateFile and AnnotateFiles add storage on top: read, transform,
// and write back only when something changed.
package annotate

import (
	"context"
	"time"

	"github.com/teranos/jsdoc-builder/ai/provider"
	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/comment"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/infer"
	"github.com/teranos/jsdoc-builder/langserver/tsls"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/patch"
	"github.com/teranos/jsdoc-builder/source"
	"github.com/teranos/jsdoc-builder/syntax"
)

// Options controls one run.
type Options struct {
	ConfigPath string
	Inline     map[string]any
	DisableAI  bool
	Getenv     func(string) string

	// Config, when set, is used as is and resolution is skipped.
	// DisableAI still applies.
	Config *config.Config

	// Describer replaces the provider client built from the config. It is
	// only consulted when the resolved config has AI enabled.
	Describer provider.AIClient

	// OracleFactory replaces the language-server oracle built from the
	// config. Leave nil for the configured behaviour.
	OracleFactory syntax.OracleFactory
}

// TargetInfo describes one documented declaration.
type TargetInfo struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Offset      int                `json:"offset"`
	Params      []infer.TypedParam `json:"params"`
	ReturnType  string             `json:"returnType"`
	Description string             `json:"description,omitempty"`
}

// Result is the outcome of transforming one unit.
type Result struct {
	ID       string       `json:"id"`
	Code     string       `json:"code"`
	Changed  bool         `json:"changed"`
	Targets  []TargetInfo `json:"targets"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Resolve returns the config a run with opts would use.
func Resolve(opts Options) (*config.Config, error) {
	if opts.Config != nil {
		cfg := *opts.Config
		if opts.DisableAI {
			cfg.AI.Enabled = false
		}
		return &cfg, nil
	}
	return config.Resolve(config.Options{
		ConfigPath: opts.ConfigPath,
		Inline:     opts.Inline,
		DisableAI:  opts.DisableAI,
		Getenv:     opts.Getenv,
	})
}

// describer picks the client for a run, nil meaning fallback descriptions.
func describer(cfg *config.Config, opts Options) provider.AIClient {
	if !cfg.AI.Enabled {
		return nil
	}
	if opts.Describer != nil {
		return opts.Describer
	}
	return provider.NewAIClient(cfg.AI)
}

// Prepare resolves the config and provider client of opts once, so that
// repeated runs share them (and the client's rate limit).
func Prepare(opts Options) (Options, error) {
	cfg, err := Resolve(opts)
	if err != nil {
		return opts, err
	}
	shared := opts
	shared.Config = cfg
	shared.DisableAI = false
	shared.Describer = describer(cfg, opts)
	return shared, nil
}

// Transform annotates text in memory. The id selects the dialect and is
// used in logs; nothing is read or written.
func Transform(ctx context.Context, id, text string, opts Options) (Result, error) {
	cfg, err := Resolve(opts)
	if err != nil {
		return Result{}, err
	}
	return transform(ctx, id, text, cfg, describer(cfg, opts), opts.OracleFactory)
}

// ListTargets reports what Transform would document, with fallback
// descriptions and no provider requests.
func ListTargets(ctx context.Context, id, text string, opts Options) ([]TargetInfo, error) {
	cfg, err := Resolve(opts)
	if err != nil {
		return nil, err
	}
	cfg.AI.Enabled = false
	res, err := transform(ctx, id, text, cfg, nil, opts.OracleFactory)
	if err != nil {
		return nil, err
	}
	return res.Targets, nil
}

func transform(ctx context.Context, id, text string, cfg *config.Config, client provider.AIClient, factory syntax.OracleFactory) (Result, error) {
	ctx = logger.WithFile(ctx, id)
	log := logger.LoggerFromContext(ctx)
	start := time.Now()

	res := Result{ID: id, Code: text}
	unit := source.NewUnit(id, text)
	script := source.Extract(unit)
	if !script.Found {
		log.Debugw("No script block, skipping", logger.FieldDialect, unit.Dialect.String())
		return res, nil
	}

	ix, err := syntax.Parse(ctx, script.Text, script.Dialect)
	if err != nil {
		return res, errors.Wrapf(err, "parse %s", id)
	}
	defer ix.Close()

	targets := collect.Collect(ix)
	if len(targets) == 0 {
		log.Debugw("Nothing to document", logger.FieldDurationMS, time.Since(start).Milliseconds())
		return res, nil
	}

	if factory == nil {
		factory = tsls.Factory(cfg.Oracle)
	}
	if oracle := factory(ctx, script.Text, script.Dialect); oracle != nil {
		ix.Oracle = oracle
		defer func() {
			if err := oracle.Close(); err != nil {
				log.Debugw("Oracle shutdown failed", logger.FieldError, err.Error())
			}
		}()
	}

	engine := infer.New(ix)
	synth := comment.New(cfg, client)

	// Descriptions are requested one target at a time, in collection order,
	// and keyed by anchor identity before any text moves.
	comments := make(map[string]string, len(targets))
	for i := range targets {
		t := &targets[i]
		sig := engine.Infer(ctx, t)
		desc, warn := synth.Describe(ctx, t, sig)
		if warn != nil {
			res.Warnings = append(res.Warnings, warn.Error())
		}
		comments[t.Key] = synth.Layout(t, sig, desc)
		res.Targets = append(res.Targets, TargetInfo{
			Key:         t.Key,
			Name:        t.Name,
			Offset:      script.Start + t.Anchor,
			Params:      sig.Params,
			ReturnType:  sig.ReturnType,
			Description: desc,
		})
	}

	ins := make([]patch.Insertion, 0, len(targets))
	for _, t := range targets {
		ins = append(ins, patch.Insertion{Offset: t.Anchor, Text: comments[t.Key]})
	}
	res.Code = patch.Unit(text, script, ins)
	res.Changed = res.Code != text

	log.Infow("Annotated",
		logger.FieldTargets, len(res.Targets),
		logger.FieldChanged, res.Changed,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return res, nil
}
