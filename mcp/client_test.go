package mcp_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/mcp"
	"github.com/tessellate-ai/agentic/mcp/transport"
)

// mockTransport answers requests from a scripted method table.
type mockTransport struct {
	mu             sync.Mutex
	messageHandler func(ctx context.Context, message *transport.BaseJsonRpcMessage)
	closeHandler   func()
	sent           []*transport.BaseJsonRpcMessage
	handlers       map[string]func(req *transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail)
	silent         bool
}

func newMockTransport() *mockTransport {
	m := &mockTransport{
		handlers: map[string]func(req *transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail){},
	}
	m.handlers["initialize"] = func(*transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		return map[string]any{
			"protocolVersion": mcp.ProtocolVersion,
			"serverInfo":      map[string]any{"name": "mock", "version": "1.0"},
		}, nil
	}
	return m
}

func (m *mockTransport) Start(ctx context.Context) error { return nil }

func (m *mockTransport) Close() error {
	if m.closeHandler != nil {
		m.closeHandler()
	}
	return nil
}

func (m *mockTransport) SetErrorHandler(func(error)) {}

func (m *mockTransport) SetCloseHandler(handler func()) {
	m.closeHandler = handler
}

func (m *mockTransport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	m.messageHandler = handler
}

func (m *mockTransport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, message)
	m.mu.Unlock()

	if message.Type != transport.BaseMessageTypeJSONRPCRequestType || m.silent {
		return nil
	}
	req := message.JsonRpcRequest
	handler, ok := m.handlers[req.Method]
	if !ok {
		return nil
	}
	result, detail := handler(req)
	go func() {
		if detail != nil {
			m.messageHandler(ctx, transport.NewBaseMessageError(&transport.BaseJSONRPCError{
				Jsonrpc: "2.0",
				Id:      req.Id,
				Error:   *detail,
			}))
			return
		}
		data, _ := json.Marshal(result)
		m.messageHandler(ctx, transport.NewBaseMessageResponse(&transport.BaseJSONRPCResponse{
			Jsonrpc: "2.0",
			Id:      req.Id,
			Result:  data,
		}))
	}()
	return nil
}

func (m *mockTransport) sentMethods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var methods []string
	for _, msg := range m.sent {
		switch msg.Type {
		case transport.BaseMessageTypeJSONRPCRequestType:
			methods = append(methods, msg.JsonRpcRequest.Method)
		case transport.BaseMessageTypeJSONRPCNotificationType:
			methods = append(methods, msg.JsonRpcNotification.Method)
		}
	}
	return methods
}

func TestClient_Connect(t *testing.T) {
	tr := newMockTransport()
	client := mcp.NewClient("mockserver", tr)

	err := client.Connect(context.Background())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, []string{"initialize", "notifications/initialized"}, tr.sentMethods())
	assert.Equal(t, mcp.Implementation{Name: "mock", Version: "1.0"}, client.ServerInfo())
	assert.Equal(t, "mockserver", client.Name())
}

func TestClient_ListTools(t *testing.T) {
	tr := newMockTransport()
	tr.handlers["tools/list"] = func(*transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		return map[string]any{
			"tools": []map[string]any{
				{
					"name":        "read_file",
					"description": "Read a file",
					"inputSchema": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"path": map[string]any{"type": "string"},
						},
						"required": []string{"path"},
					},
				},
			},
		}, nil
	}
	client := mcp.NewClient("mockserver", tr)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "read_file", tools[0].Name)
	require.NotNil(t, tools[0].InputSchema)
	assert.Equal(t, []string{"path"}, tools[0].InputSchema.Required)
}

func TestClient_CallTool(t *testing.T) {
	tr := newMockTransport()
	var gotArgs map[string]any
	tr.handlers["tools/call"] = func(req *transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		var params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		_ = json.Unmarshal(req.Params, &params)
		gotArgs = params.Arguments
		return map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "line one\n"},
				{"type": "image", "data": "ignored"},
				{"type": "text", "text": "line two"},
			},
		}, nil
	}
	client := mcp.NewClient("mockserver", tr)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	out, err := client.CallTool(context.Background(), "read_file", map[string]any{"path": "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", out)
	assert.Equal(t, map[string]any{"path": "a.txt"}, gotArgs)
}

func TestClient_CallToolError(t *testing.T) {
	tr := newMockTransport()
	tr.handlers["tools/call"] = func(*transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		return map[string]any{
			"content": []map[string]any{{"type": "text", "text": "no such file"}},
			"isError": true,
		}, nil
	}
	client := mcp.NewClient("mockserver", tr)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	_, err := client.CallTool(context.Background(), "read_file", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}

func TestClient_RPCError(t *testing.T) {
	tr := newMockTransport()
	tr.handlers["tools/call"] = func(*transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		return nil, &transport.JSONRPCErrorDetail{Code: -32601, Message: "method not found"}
	}
	client := mcp.NewClient("mockserver", tr)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	_, err := client.CallTool(context.Background(), "unknown", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestClient_Execute(t *testing.T) {
	tr := newMockTransport()
	var gotName string
	tr.handlers["tools/call"] = func(req *transport.BaseJSONRPCRequest) (any, *transport.JSONRPCErrorDetail) {
		var params struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(req.Params, &params)
		gotName = params.Name
		return map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		}, nil
	}
	client := mcp.NewClient("mockserver", tr)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	out, err := client.Execute(context.Background(), &mcp.CallRequest{
		Action:    mcp.ActionCallTool,
		ToolName:  "stock_prices",
		Arguments: map[string]any{"symbol": "300058"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "stock_prices", gotName)

	_, err = client.Execute(context.Background(), &mcp.CallRequest{Action: "drop_tool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported action "drop_tool"`)
}

func TestClient_Timeout(t *testing.T) {
	tr := newMockTransport()
	client := mcp.NewClient("mockserver", tr).WithTimeout(50 * time.Millisecond)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	tr.silent = true
	_, err := client.CallTool(context.Background(), "read_file", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
