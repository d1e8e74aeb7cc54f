// Package mcptool exposes every tool of an MCP server as an independent
// agentic tool, so agents can call remote tools without knowing about the
// protocol underneath.
package mcptool

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/tessellate-ai/agentic/mcp"
	"github.com/tessellate-ai/agentic/schema"
	"github.com/tessellate-ai/agentic/tools"
)

// InputKey is the reserved key of the calling convention that passes one
// opaque string instead of structured keyword arguments.
const InputKey = "input"

// Executor forwards a call request to the remote tool and returns its text
// result. *mcp.Client implements it; the tool holds a non-owning reference
// and never closes it.
type Executor interface {
	Execute(ctx context.Context, req *mcp.CallRequest) (string, error)
}

// Tool wraps a single remote tool behind the uniform tool interface.
// It is immutable after construction and safe for concurrent calls as long
// as the shared executor tolerates concurrent dispatch.
type Tool struct {
	executor    Executor
	remoteName  string
	name        string
	description string
	params      []schema.Parameter
}

var (
	_ tools.ITool  = (*Tool)(nil)
	_ tools.Runner = (*Tool)(nil)
)

// New wraps one remote tool. An optional prefix disambiguates tools from
// multiple servers sharing one namespace, e.g. "filesystem_".
func New(executor Executor, info mcp.ToolInfo, prefix string) *Tool {
	description := info.Description
	if description == "" {
		description = "MCP tool: " + info.Name
	}
	return &Tool{
		executor:    executor,
		remoteName:  info.Name,
		name:        prefix + info.Name,
		description: description,
		params:      schema.ParseParameters(info.InputSchema),
	}
}

// Name returns the name of the Tool.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the description of the tool, to be used in the prompt.
func (t *Tool) Description() string {
	return t.description
}

// Parameters returns the parameter definitions of the remote tool.
func (t *Tool) Parameters() []schema.Parameter {
	return t.params
}

// Call executes the tool with a single opaque string, the convention used by
// the tool registry.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return t.Run(ctx, map[string]any{InputKey: input})
}

// Run normalizes the given arguments against the declared parameters and
// dispatches the call to the remote executor. The reply text is returned
// verbatim; failures raised by the executor propagate unchanged.
func (t *Tool) Run(ctx context.Context, args map[string]any) (string, error) {
	return t.executor.Execute(ctx, &mcp.CallRequest{
		Action:    mcp.ActionCallTool,
		ToolName:  t.remoteName,
		Arguments: t.normalize(args),
	})
}

// normalize reconciles the three calling conventions (structured keyword
// arguments, one opaque string, and a JSON-encoded string) against the
// declared parameters. It never fails: malformed input degrades to a
// best-effort guess, and the remote tool is left to reject what it cannot
// use.
func (t *Tool) normalize(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	// only the {input: <string>} envelope needs unwrapping, anything else is
	// treated as already-normalized keyword arguments
	if len(args) != 1 {
		return args
	}
	value, ok := args[InputKey]
	if !ok {
		return args
	}

	candidate, isString := value.(string)
	if !isString && value != nil {
		// only the string convention is defined for the reserved key
		return args
	}
	if candidate == "" {
		return map[string]any{}
	}

	if parsed, ok := parseObject(candidate); ok {
		return parsed
	}

	// Unstructured string: hand it to the first required parameter, or the
	// first declared one. Tools with no parameters at all get the envelope
	// as-is; unused keys are the remote side's to ignore.
	target, ok := t.targetParameter()
	if !ok {
		return args
	}
	return map[string]any{target.Name: candidate}
}

func parseObject(candidate string) (map[string]any, bool) {
	if !gjson.Valid(candidate) || !gjson.Parse(candidate).IsObject() {
		return nil, false
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func (t *Tool) targetParameter() (schema.Parameter, bool) {
	if len(t.params) == 0 {
		return schema.Parameter{}, false
	}
	for _, p := range t.params {
		if p.Required {
			return p, true
		}
	}
	return t.params[0], true
}
