package tsls

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/source"
	"github.com/teranos/jsdoc-builder/syntax"
)

// Oracle answers type queries with hover results from a language server
type Oracle struct {
	client  *StdioClient
	uri     string
	dir     string
	lines   lineIndex
	timeout time.Duration
	log     *zap.SugaredLogger
}

// Factory returns an OracleFactory for cfg. The factory yields nil when the
// oracle is disabled, the dialect is untyped, or the server cannot start.
func Factory(cfg config.OracleConfig) syntax.OracleFactory {
	return func(ctx context.Context, text string, d source.Dialect) syntax.Oracle {
		if !cfg.Enabled || !d.IsTyped() {
			return nil
		}
		o, err := Start(ctx, cfg, text, d)
		if err != nil {
			logger.ComponentLogger("tsls").Warnw("Type oracle unavailable, using syntax only",
				logger.FieldError, err.Error(),
				"hint", errors.FlattenHints(err))
			return nil
		}
		return o
	}
}

// Start launches the server, opens text as a scratch document and waits
// for initialisation.
func Start(ctx context.Context, cfg config.OracleConfig, text string, d source.Dialect) (*Oracle, error) {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = config.DefaultOracleTimeoutMs * time.Millisecond
	}
	command := cfg.Command
	if command == "" {
		command = config.DefaultOracleCommand
	}

	dir, err := os.MkdirTemp("", "jsdoc-builder-oracle-")
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create oracle workspace"), errors.ErrOracleUnavailable)
	}

	name, languageID := "unit.ts", "typescript"
	if d == source.DialectTypedJSX {
		name, languageID = "unit.tsx", "typescriptreact"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Mark(errors.Wrap(err, "write oracle document"), errors.ErrOracleUnavailable)
	}

	client, err := NewStdioClient(command)
	if err != nil {
		os.RemoveAll(dir)
		return nil, errors.Mark(err, errors.ErrOracleUnavailable)
	}

	initCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Initialize(initCtx, fileURI(dir)); err != nil {
		client.ForceKill()
		os.RemoveAll(dir)
		return nil, errors.Mark(err, errors.ErrOracleUnavailable)
	}

	uri := fileURI(path)
	if err := client.DidOpen(uri, languageID, text); err != nil {
		client.ForceKill()
		os.RemoveAll(dir)
		return nil, errors.Mark(err, errors.ErrOracleUnavailable)
	}

	return &Oracle{
		client:  client,
		uri:     uri,
		dir:     dir,
		lines:   newLineIndex([]byte(text)),
		timeout: timeout,
		log:     logger.ComponentLogger("tsls"),
	}, nil
}

// ResolveType implements syntax.Oracle
func (o *Oracle) ResolveType(ctx context.Context, q syntax.Query) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	hover, err := o.client.Hover(ctx, o.uri, o.lines.position(q.Offset))
	if err != nil {
		o.log.Debugw("Hover failed", logger.FieldOffset, q.Offset, logger.FieldError, err.Error())
		return "", false
	}

	text := hover.GetText()
	var printed string
	switch q.Kind {
	case syntax.QueryParam:
		printed = ParamType(text, q.Name)
	case syntax.QueryReturn:
		printed = ReturnType(text)
	}
	if syntax.Trivial(printed) {
		return "", false
	}
	return printed, true
}

// Close shuts the server down and removes the scratch workspace
func (o *Oracle) Close() error {
	defer os.RemoveAll(o.dir)

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.client.Shutdown(ctx); err != nil {
		o.log.Debugw("Graceful shutdown failed, killing", logger.FieldError, err.Error())
		return o.client.ForceKill()
	}
	return nil
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
