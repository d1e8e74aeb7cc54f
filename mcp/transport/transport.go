// Package transport defines the JSON-RPC message framing shared by MCP
// transports.
package transport

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// RequestId is a JSON-RPC request identifier.
type RequestId int64

type BaseJSONRPCRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      RequestId       `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type BaseJSONRPCNotification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type BaseJSONRPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      RequestId       `json:"id"`
	Result  json.RawMessage `json:"result"`
}

type JSONRPCErrorDetail struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type BaseJSONRPCError struct {
	Jsonrpc string             `json:"jsonrpc"`
	Id      RequestId          `json:"id"`
	Error   JSONRPCErrorDetail `json:"error"`
}

type BaseMessageType string

const (
	BaseMessageTypeJSONRPCRequestType      BaseMessageType = "request"
	BaseMessageTypeJSONRPCNotificationType BaseMessageType = "notification"
	BaseMessageTypeJSONRPCResponseType     BaseMessageType = "response"
	BaseMessageTypeJSONRPCErrorType        BaseMessageType = "error"
)

// BaseJsonRpcMessage is a tagged union over the four JSON-RPC message kinds.
type BaseJsonRpcMessage struct {
	Type                BaseMessageType
	JsonRpcRequest      *BaseJSONRPCRequest
	JsonRpcNotification *BaseJSONRPCNotification
	JsonRpcResponse     *BaseJSONRPCResponse
	JsonRpcError        *BaseJSONRPCError
}

func NewBaseMessageRequest(request *BaseJSONRPCRequest) *BaseJsonRpcMessage {
	return &BaseJsonRpcMessage{
		Type:           BaseMessageTypeJSONRPCRequestType,
		JsonRpcRequest: request,
	}
}

func NewBaseMessageNotification(notification *BaseJSONRPCNotification) *BaseJsonRpcMessage {
	return &BaseJsonRpcMessage{
		Type:                BaseMessageTypeJSONRPCNotificationType,
		JsonRpcNotification: notification,
	}
}

func NewBaseMessageResponse(response *BaseJSONRPCResponse) *BaseJsonRpcMessage {
	return &BaseJsonRpcMessage{
		Type:            BaseMessageTypeJSONRPCResponseType,
		JsonRpcResponse: response,
	}
}

func NewBaseMessageError(errorResponse *BaseJSONRPCError) *BaseJsonRpcMessage {
	return &BaseJsonRpcMessage{
		Type:         BaseMessageTypeJSONRPCErrorType,
		JsonRpcError: errorResponse,
	}
}

// MarshalJSON emits the wire form of whichever message kind is set.
func (m *BaseJsonRpcMessage) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case BaseMessageTypeJSONRPCRequestType:
		return json.Marshal(m.JsonRpcRequest)
	case BaseMessageTypeJSONRPCNotificationType:
		return json.Marshal(m.JsonRpcNotification)
	case BaseMessageTypeJSONRPCResponseType:
		return json.Marshal(m.JsonRpcResponse)
	case BaseMessageTypeJSONRPCErrorType:
		return json.Marshal(m.JsonRpcError)
	}
	return nil, errors.Newf("unknown message type: %q", m.Type)
}

// Deserialize classifies a raw JSON-RPC message by its fields: a method with
// an id is a request, a method without an id is a notification, an error
// member is an error, anything else with an id is a response.
func Deserialize(body []byte) (*BaseJsonRpcMessage, error) {
	var probe struct {
		Id     *RequestId          `json:"id"`
		Method *string             `json:"method"`
		Error  *JSONRPCErrorDetail `json:"error"`
		Result json.RawMessage     `json:"result"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, errors.Wrap(err, "invalid json-rpc message")
	}

	switch {
	case probe.Method != nil && probe.Id != nil:
		var request BaseJSONRPCRequest
		if err := json.Unmarshal(body, &request); err != nil {
			return nil, errors.Wrap(err, "invalid json-rpc request")
		}
		return NewBaseMessageRequest(&request), nil
	case probe.Method != nil:
		var notification BaseJSONRPCNotification
		if err := json.Unmarshal(body, &notification); err != nil {
			return nil, errors.Wrap(err, "invalid json-rpc notification")
		}
		return NewBaseMessageNotification(&notification), nil
	case probe.Error != nil:
		var errorResponse BaseJSONRPCError
		if err := json.Unmarshal(body, &errorResponse); err != nil {
			return nil, errors.Wrap(err, "invalid json-rpc error")
		}
		return NewBaseMessageError(&errorResponse), nil
	case probe.Id != nil:
		var response BaseJSONRPCResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, errors.Wrap(err, "invalid json-rpc response")
		}
		return NewBaseMessageResponse(&response), nil
	}
	return nil, errors.New("unrecognized json-rpc message")
}

// Transport is an abstract MCP transport.
type Transport interface {
	// Start begins processing messages, including any connection steps.
	Start(ctx context.Context) error

	// Send sends a JSON-RPC message (request, notification or response).
	Send(ctx context.Context, message *BaseJsonRpcMessage) error

	// Close closes the connection.
	Close() error

	// SetErrorHandler sets the callback for when an error occurs.
	// Note that errors are not necessarily fatal; they are used for reporting
	// any kind of exceptional condition out of band.
	SetErrorHandler(handler func(error))

	// SetCloseHandler sets the callback for when the connection is closed
	// for any reason.
	SetCloseHandler(handler func())

	// SetMessageHandler sets the callback for when a message (request,
	// notification or response) is received over the connection.
	SetMessageHandler(handler func(ctx context.Context, message *BaseJsonRpcMessage))
}
