// Package stdiotransport runs an MCP server as a child process and exchanges
// newline-delimited JSON-RPC messages over its stdin/stdout.
package stdiotransport

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentic/mcp/transport"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "stdiotransport")

// Lines larger than this are rejected by the reader.
const maxLineSize = 16 * 1024 * 1024

// Transport spawns a server command and speaks JSON-RPC over its pipes.
// The child's stderr is passed through to this process.
type Transport struct {
	command []string
	env     []string

	mu             sync.RWMutex
	messageHandler func(ctx context.Context, message *transport.BaseJsonRpcMessage)
	errorHandler   func(error)
	closeHandler   func()

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	wrMu   sync.Mutex
	done   chan struct{}
}

var _ transport.Transport = (*Transport)(nil)

// New creates a transport for the given server command, e.g.
// ["uvx", "mcp-aktools"]. The process is not started until Start.
func New(command []string, env ...string) *Transport {
	return &Transport{
		command: command,
		env:     env,
	}
}

// Start launches the child process and the reader loop.
func (t *Transport) Start(ctx context.Context) error {
	if len(t.command) == 0 {
		return errors.New("no server command configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cmd != nil {
		return errors.New("transport already started")
	}

	cmd := exec.Command(t.command[0], t.command[1:]...)
	cmd.Env = append(os.Environ(), t.env...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "failed to open stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to open stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start server command %q", t.command[0])
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.done = make(chan struct{})

	go t.readLoop()
	return nil
}

func (t *Transport) readLoop() {
	scanner := bufio.NewScanner(t.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		message, err := transport.Deserialize(line)
		if err != nil {
			t.reportError(errors.WithMessage(err, "failed to parse server message"))
			continue
		}

		t.mu.RLock()
		handler := t.messageHandler
		t.mu.RUnlock()
		if handler != nil {
			handler(context.Background(), message)
		}
	}
	if err := scanner.Err(); err != nil {
		t.reportError(errors.Wrap(err, "failed to read from server"))
	}

	close(t.done)

	t.mu.RLock()
	closeHandler := t.closeHandler
	t.mu.RUnlock()
	if closeHandler != nil {
		closeHandler()
	}
}

func (t *Transport) reportError(err error) {
	t.mu.RLock()
	handler := t.errorHandler
	t.mu.RUnlock()
	if handler != nil {
		handler(err)
	} else {
		logger.KV(xlog.WARNING, "command", t.command[0], "err", err.Error())
	}
}

// Send writes one message followed by a newline delimiter.
func (t *Transport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	data, err := message.MarshalJSON()
	if err != nil {
		return errors.WithMessage(err, "failed to marshal message")
	}

	t.mu.RLock()
	stdin := t.stdin
	t.mu.RUnlock()
	if stdin == nil {
		return errors.New("transport not started")
	}

	// one writer at a time, messages must not interleave
	t.wrMu.Lock()
	defer t.wrMu.Unlock()
	if _, err := stdin.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write to server")
	}
	return nil
}

// Close terminates the child process and waits for the reader to drain.
func (t *Transport) Close() error {
	t.mu.Lock()
	cmd := t.cmd
	stdin := t.stdin
	done := t.done
	t.cmd = nil
	t.stdin = nil
	t.mu.Unlock()

	if cmd == nil {
		return nil
	}

	// closing stdin asks a well-behaved server to exit
	_ = stdin.Close()
	_ = cmd.Process.Kill()
	err := cmd.Wait()
	if done != nil {
		<-done
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return errors.Wrap(err, "failed to stop server")
	}
	return nil
}

// SetErrorHandler implements Transport.SetErrorHandler
func (t *Transport) SetErrorHandler(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorHandler = handler
}

// SetCloseHandler implements Transport.SetCloseHandler
func (t *Transport) SetCloseHandler(handler func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeHandler = handler
}

// SetMessageHandler implements Transport.SetMessageHandler
func (t *Transport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageHandler = handler
}
