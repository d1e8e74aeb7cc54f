// Package mcp implements a client for the Model Context Protocol, enough to
// enumerate a server's tools and invoke them by name.
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentic/mcp/transport"
	"github.com/tessellate-ai/agentic/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "mcp")

// DefaultRequestTimeout bounds a single request round trip.
const DefaultRequestTimeout = 60 * time.Second

// ClientVersion is reported to servers during the initialize handshake.
const ClientVersion = "0.1.0"

type responseEnvelope struct {
	result json.RawMessage
	err    error
}

// Client drives one MCP session over a transport. It is safe for concurrent
// requests; responses are correlated by request id.
type Client struct {
	name      string
	transport transport.Transport
	timeout   time.Duration

	mu         sync.Mutex
	nextID     transport.RequestId
	pending    map[transport.RequestId]chan *responseEnvelope
	connected  bool
	serverInfo Implementation
}

// NewClient creates a client for the given transport. The name identifies the
// server in logs and metrics and is used as the default tool name prefix.
func NewClient(name string, tr transport.Transport) *Client {
	return &Client{
		name:      name,
		transport: tr,
		timeout:   DefaultRequestTimeout,
		pending:   make(map[transport.RequestId]chan *responseEnvelope),
	}
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// Name returns the configured server name.
func (c *Client) Name() string {
	return c.name
}

// ServerInfo returns the server identity reported during the handshake.
func (c *Client) ServerInfo() Implementation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverInfo
}

// Connect starts the transport and performs the initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.transport.SetMessageHandler(func(ctx context.Context, message *transport.BaseJsonRpcMessage) {
		switch message.Type {
		case transport.BaseMessageTypeJSONRPCResponseType:
			c.settle(message.JsonRpcResponse.Id, &responseEnvelope{result: message.JsonRpcResponse.Result})
		case transport.BaseMessageTypeJSONRPCErrorType:
			detail := message.JsonRpcError.Error
			c.settle(message.JsonRpcError.Id, &responseEnvelope{
				err: errors.Newf("RPC error %d: %s", detail.Code, detail.Message),
			})
		case transport.BaseMessageTypeJSONRPCNotificationType:
			logger.ContextKV(ctx, xlog.DEBUG,
				"server", c.name,
				"notification", message.JsonRpcNotification.Method,
			)
		case transport.BaseMessageTypeJSONRPCRequestType:
			// server-initiated requests (sampling etc.) are not supported
			logger.ContextKV(ctx, xlog.DEBUG,
				"server", c.name,
				"unsupported_request", message.JsonRpcRequest.Method,
			)
		}
	})
	c.transport.SetErrorHandler(func(err error) {
		logger.KV(xlog.WARNING, "server", c.name, "err", err.Error())
	})
	c.transport.SetCloseHandler(func() {
		c.failPending(errors.New("connection closed"))
	})

	if err := c.transport.Start(ctx); err != nil {
		return errors.WithMessagef(err, "failed to start transport for %q", c.name)
	}

	raw, err := c.request(ctx, "initialize", initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      Implementation{Name: "agentic", Version: ClientVersion},
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to initialize %q", c.name)
	}
	var res initializeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return errors.Wrapf(err, "invalid initialize result from %q", c.name)
	}

	if err := c.notify(ctx, "notifications/initialized"); err != nil {
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.serverInfo = res.ServerInfo
	c.mu.Unlock()

	logger.ContextKV(ctx, xlog.DEBUG,
		"server", c.name,
		"server_name", res.ServerInfo.Name,
		"server_version", res.ServerInfo.Version,
	)
	return nil
}

// Close terminates the session and fails all in-flight requests.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return c.transport.Close()
}

func (c *Client) settle(id transport.RequestId, envelope *responseEnvelope) {
	c.mu.Lock()
	ch := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if ch != nil {
		ch <- envelope
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[transport.RequestId]chan *responseEnvelope)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- &responseEnvelope{err: err}
	}
}

func (c *Client) request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	marshalled, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal params")
	}

	ch := make(chan *responseEnvelope, 1)
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg := transport.NewBaseMessageRequest(&transport.BaseJSONRPCRequest{
		Jsonrpc: "2.0",
		Id:      id,
		Method:  method,
		Params:  marshalled,
	})
	if err := c.transport.Send(ctx, msg); err != nil {
		return nil, errors.WithMessagef(err, "failed to send %q", method)
	}

	select {
	case envelope := <-ch:
		if envelope.err != nil {
			return nil, envelope.err
		}
		return envelope.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.timeout):
		return nil, errors.Newf("request %q timed out after %v", method, c.timeout)
	}
}

func (c *Client) notify(ctx context.Context, method string) error {
	msg := transport.NewBaseMessageNotification(&transport.BaseJSONRPCNotification{
		Jsonrpc: "2.0",
		Method:  method,
	})
	if err := c.transport.Send(ctx, msg); err != nil {
		return errors.WithMessagef(err, "failed to send %q", method)
	}
	return nil
}

// ListTools enumerates the server's tools.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	raw, err := c.request(ctx, "tools/list", map[string]any{})
	if err != nil {
		return nil, err
	}
	var res listToolsResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrapf(err, "invalid tools/list result from %q", c.name)
	}
	return res.Tools, nil
}

// CallTool invokes a named tool and returns the concatenated text content.
// A tool-side rejection (isError) is returned as an error carrying the
// server's message.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (string, error) {
	started := time.Now()
	defer metricskey.PerfMCPCall.MeasureSince(started, c.name)

	if arguments == nil {
		arguments = map[string]any{}
	}
	raw, err := c.request(ctx, "tools/call", callToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		metricskey.StatsMCPCallsFailed.IncrCounter(1, c.name, name)
		return "", err
	}

	var res callToolResult
	if err := json.Unmarshal(raw, &res); err != nil {
		metricskey.StatsMCPCallsFailed.IncrCounter(1, c.name, name)
		return "", errors.Wrapf(err, "invalid tools/call result from %q", c.name)
	}

	var sb strings.Builder
	for _, item := range res.Content {
		if item.Type == "text" {
			sb.WriteString(item.Text)
		}
	}
	if res.IsError {
		metricskey.StatsMCPCallsFailed.IncrCounter(1, c.name, name)
		return "", errors.Newf("tool %q failed: %s", name, sb.String())
	}
	metricskey.StatsMCPCallsSucceeded.IncrCounter(1, c.name, name)
	return sb.String(), nil
}

// Execute dispatches a uniform call request. It is the server-side of the
// calling convention used by wrapped tools.
func (c *Client) Execute(ctx context.Context, req *CallRequest) (string, error) {
	switch req.Action {
	case ActionCallTool:
		return c.CallTool(ctx, req.ToolName, req.Arguments)
	default:
		return "", errors.Newf("unsupported action %q", req.Action)
	}
}
