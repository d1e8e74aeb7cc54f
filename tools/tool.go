package tools

import (
	"context"

	"github.com/tessellate-ai/agentic/schema"
)

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameter definitions of the tool, in declared
	// order, to be used in the prompt.
	Parameters() []schema.Parameter

	// Call executes the tool with the given raw input and returns the result.
	Call(context.Context, string) (string, error)
}

type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

// Runner is a tool that also accepts structured keyword arguments, bypassing
// the string calling convention.
type Runner interface {
	ITool
	Run(ctx context.Context, args map[string]any) (string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}
