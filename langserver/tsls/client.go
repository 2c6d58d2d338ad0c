package tsls

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kballard/go-shellquote"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
)

// StdioClient speaks JSON-RPC 2.0 with LSP framing to a child process
type StdioClient struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	log    *zap.SugaredLogger

	nextID   atomic.Int64
	pending  map[int64]chan *jsonrpcMessage
	mu       sync.Mutex
	writeMu  sync.Mutex
	shutdown bool
	done     chan struct{}

	waitOnce sync.Once
	waitErr  error
}

type jsonrpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type jsonrpcReply struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// jsonrpcMessage is anything the server sends: a response, a notification
// or a server-to-client request.
type jsonrpcMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewStdioClient starts command (a shell-quoted command line) and begins
// reading its output.
func NewStdioClient(command string) (*StdioClient, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid language server command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty language server command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create language server stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create language server stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create language server stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to start %s", argv[0]),
			"install it with: npm install -g typescript typescript-language-server",
		)
	}

	client := &StdioClient{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		log:     logger.ComponentLogger("tsls"),
		pending: make(map[int64]chan *jsonrpcMessage),
		done:    make(chan struct{}),
	}

	go client.readLoop()
	go client.stderrLoop()

	return client, nil
}

// Initialize establishes the LSP session rooted at rootURI
func (c *StdioClient) Initialize(ctx context.Context, rootURI string) error {
	root := protocol.DocumentUri(rootURI)
	params := protocol.InitializeParams{
		RootURI: &root,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				Hover: &protocol.HoverClientCapabilities{
					ContentFormat: []protocol.MarkupKind{protocol.MarkupKindMarkdown, protocol.MarkupKindPlainText},
				},
			},
		},
	}

	if err := c.call(ctx, "initialize", params, nil); err != nil {
		return errors.Wrapf(err, "language server initialize failed for %s", rootURI)
	}
	if err := c.notify("initialized", protocol.InitializedParams{}); err != nil {
		return errors.Wrap(err, "initialized notification failed")
	}
	return nil
}

// DidOpen notifies the server that a document was opened
func (c *StdioClient) DidOpen(uri, languageID, text string) error {
	return c.notify("textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
}

// Hover returns hover information at a position
func (c *StdioClient) Hover(ctx context.Context, uri string, pos protocol.Position) (*Hover, error) {
	params := protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
	}

	var result Hover
	if err := c.call(ctx, "textDocument/hover", params, &result); err != nil {
		return nil, errors.Wrapf(err, "hover at %s:%d:%d", uri, pos.Line, pos.Character)
	}
	return &result, nil
}

// Shutdown gracefully closes the LSP session and waits for the process
func (c *StdioClient) Shutdown(ctx context.Context) error {
	if err := c.call(ctx, "shutdown", nil, nil); err != nil {
		return errors.Wrap(err, "shutdown RPC failed")
	}
	_ = c.notify("exit", nil)

	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
	c.stdin.Close()

	waitErr := make(chan error, 1)
	go func() { waitErr <- c.wait() }()

	select {
	case err := <-waitErr:
		if err != nil {
			return errors.Wrap(err, "language server exited with error")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timeout waiting for language server to exit")
	}
}

// ForceKill terminates the process without the shutdown handshake
func (c *StdioClient) ForceKill() error {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()

	c.stdin.Close()
	if c.cmd.Process == nil {
		return errors.New("no language server process to kill")
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrapf(err, "failed to kill language server (pid %d)", c.cmd.Process.Pid)
	}
	_ = c.wait()
	return nil
}

// wait reaps the process exactly once
func (c *StdioClient) wait() error {
	c.waitOnce.Do(func() { c.waitErr = c.cmd.Wait() })
	return c.waitErr
}

// call sends a JSON-RPC request and waits for its response
func (c *StdioClient) call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return errors.New("language server client is shut down")
	}
	id := c.nextID.Add(1)
	responseChan := make(chan *jsonrpcMessage, 1)
	c.pending[id] = responseChan
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := jsonrpcRequest{Jsonrpc: "2.0", ID: id, Method: method, Params: params}
	if err := c.writeMessage(req); err != nil {
		return errors.Wrapf(err, "failed to write request for %s", method)
	}

	select {
	case resp := <-responseChan:
		if resp.Error != nil {
			return errors.Newf("JSON-RPC error %d on %s: %s", resp.Error.Code, method, resp.Error.Message)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return errors.Wrapf(err, "failed to decode %s response", method)
			}
		}
		return nil
	case <-c.done:
		return errors.Mark(errors.Newf("language server exited during %s", method), errors.ErrOracleUnavailable)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *StdioClient) notify(method string, params any) error {
	return c.writeMessage(jsonrpcRequest{Jsonrpc: "2.0", Method: method, Params: params})
}

// writeMessage writes one framed message; header and body go out together.
func (c *StdioClient) writeMessage(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON-RPC message")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	frame := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
	if _, err := io.WriteString(c.stdin, frame); err != nil {
		return errors.Wrap(err, "failed to write LSP message")
	}
	return nil
}

// readLoop dispatches responses to waiting callers and answers
// server-to-client requests with a null result.
func (c *StdioClient) readLoop() {
	defer close(c.done)
	reader := bufio.NewReader(c.stdout)

	for {
		body, err := readFrame(reader)
		if err != nil {
			return
		}
		if body == nil {
			continue
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			c.log.Debugw("Unparseable LSP message", logger.FieldError, err.Error())
			continue
		}

		switch {
		case msg.Method != "" && len(msg.ID) > 0:
			if err := c.writeMessage(jsonrpcReply{Jsonrpc: "2.0", ID: msg.ID, Result: nil}); err != nil {
				c.log.Debugw("Failed to answer server request", "method", msg.Method, logger.FieldError, err.Error())
			}
		case msg.Method != "":
			// notification (logMessage, publishDiagnostics, ...)
		default:
			var id int64
			if err := json.Unmarshal(msg.ID, &id); err != nil {
				continue
			}
			c.mu.Lock()
			if ch, ok := c.pending[id]; ok {
				ch <- &msg
			}
			c.mu.Unlock()
		}
	}
}

// readFrame reads one Content-Length framed body. A frame without a
// length yields nil, nil.
func readFrame(reader *bufio.Reader) ([]byte, error) {
	contentLength := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}
	if contentLength == 0 {
		return nil, nil
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}
	return body, nil
}

// stderrLoop drains stderr so the server never blocks on a full pipe
func (c *StdioClient) stderrLoop() {
	scanner := bufio.NewScanner(c.stderr)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			c.log.Debugw("stderr", "line", line)
		}
	}
}
