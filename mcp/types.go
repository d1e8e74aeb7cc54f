package mcp

import (
	"github.com/tessellate-ai/agentic/schema"
)

const ProtocolVersion = "2024-11-05"

// Implementation identifies one side of an MCP session.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      Implementation `json:"clientInfo"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      Implementation `json:"serverInfo"`
}

// ToolInfo is one entry of a server's capability enumeration.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *schema.Definition `json:"inputSchema,omitempty"`
}

type listToolsResult struct {
	Tools      []ToolInfo `json:"tools"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Content is one item of a tool response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type callToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// ActionCallTool invokes a named tool with keyword arguments.
const ActionCallTool = "call_tool"

// CallRequest is the uniform call envelope produced by tool adapters.
type CallRequest struct {
	Action    string         `json:"action"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}
