package stdiotransport_test

import (
	"context"
	"encoding/json"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/mcp/transport"
	"github.com/tessellate-ai/agentic/mcp/transport/stdiotransport"
)

func TestTransport_Echo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires cat")
	}

	// cat echoes every line back, so a sent request comes back as a
	// received request
	tr := stdiotransport.New([]string{"cat"})
	received := make(chan *transport.BaseJsonRpcMessage, 1)
	tr.SetMessageHandler(func(_ context.Context, message *transport.BaseJsonRpcMessage) {
		received <- message
	})

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	msg := transport.NewBaseMessageRequest(&transport.BaseJSONRPCRequest{
		Jsonrpc: "2.0",
		Id:      42,
		Method:  "tools/list",
		Params:  json.RawMessage(`{}`),
	})
	require.NoError(t, tr.Send(context.Background(), msg))

	select {
	case got := <-received:
		require.Equal(t, transport.BaseMessageTypeJSONRPCRequestType, got.Type)
		assert.Equal(t, transport.RequestId(42), got.JsonRpcRequest.Id)
		assert.Equal(t, "tools/list", got.JsonRpcRequest.Method)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestTransport_CloseHandler(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires cat")
	}

	tr := stdiotransport.New([]string{"cat"})
	closed := make(chan struct{})
	tr.SetCloseHandler(func() {
		close(closed)
	})

	require.NoError(t, tr.Start(context.Background()))
	require.NoError(t, tr.Close())

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close handler not invoked")
	}
}

func TestTransport_NotStarted(t *testing.T) {
	tr := stdiotransport.New([]string{"cat"})
	err := tr.Send(context.Background(), transport.NewBaseMessageNotification(&transport.BaseJSONRPCNotification{
		Jsonrpc: "2.0",
		Method:  "notifications/initialized",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")

	assert.NoError(t, tr.Close())

	empty := stdiotransport.New(nil)
	require.Error(t, empty.Start(context.Background()))
}
