// Package mcpserver exposes the pure transform over the Model Context
// Protocol, so an assistant can annotate a buffer without touching disk.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/logger"
)

// Server wraps an MCP server carrying the annotate tools.
type Server struct {
	opts   annotate.Options
	server *server.MCPServer
	logger *zap.SugaredLogger
}

// New resolves the configuration once and registers the tools.
func New(opts annotate.Options, version string) (*Server, error) {
	opts, err := annotate.Prepare(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:   opts,
		logger: logger.ComponentLogger("mcp"),
		server: server.NewMCPServer(
			"jsdoc-builder",
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.server
}

// ServeStdio serves JSON-RPC on in/out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.server)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Desugar()))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	annotateTool := mcp.NewTool("annotate_source",
		mcp.WithDescription("Insert JSDoc comments before undocumented functions in JavaScript/TypeScript source and return the new text"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("File name or module id; its extension selects the dialect (e.g. src/util.ts, App.vue)"),
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Source text to annotate"),
		),
		mcp.WithBoolean("no_ai",
			mcp.Description("Use fallback descriptions instead of the configured AI provider (default: false)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.server.AddTool(annotateTool, s.handleAnnotate)

	listTool := mcp.NewTool("list_targets",
		mcp.WithDescription("List the functions that annotate_source would document, with their inferred signatures"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("File name or module id"),
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Source text to inspect"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.server.AddTool(listTool, s.handleListTargets)
}

// handleAnnotate handles annotate_source tool calls
func (s *Server) handleAnnotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := s.opts
	opts.DisableAI = request.GetBool("no_ai", false)

	res, err := annotate.Transform(ctx, id, code, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to annotate: %v", err)), nil
	}
	s.logger.Debugw("annotate_source", logger.FieldFile, id, logger.FieldTargets, len(res.Targets))
	return mcp.NewToolResultText(res.Code), nil
}

// handleListTargets handles list_targets tool calls
func (s *Server) handleListTargets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	targets, err := annotate.ListTargets(ctx, id, code, s.opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list targets: %v", err)), nil
	}
	if len(targets) == 0 {
		return mcp.NewToolResultText("No undocumented functions found"), nil
	}

	var sb strings.Builder
	for _, t := range targets {
		sb.WriteString(FormatTarget(t))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// FormatTarget renders a target as name(param: type, ...) -> returnType.
func FormatTarget(t annotate.TargetInfo) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Name + ": " + p.Type
	}
	return fmt.Sprintf("%s(%s) -> %s", t.Name, strings.Join(params, ", "), t.ReturnType)
}
