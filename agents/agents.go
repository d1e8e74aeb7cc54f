// Package agents runs LLM-driven agents that reason step by step and
// invoke registered tools.
package agents

import (
	"context"

	"github.com/tessellate-ai/agentic/tools"
)

// IAgent is an agent that answers a question, possibly by calling tools.
type IAgent interface {
	// Name returns the name of the agent.
	Name() string
	// Description returns the description of the agent.
	Description() string

	// Run executes the agent until it produces a final answer.
	Run(ctx context.Context, input string) (string, error)
}

// Callback receives agent and tool lifecycle events.
type Callback interface {
	tools.Callback

	OnAgentStart(ctx context.Context, agent IAgent, input string)
	OnAgentEnd(ctx context.Context, agent IAgent, input, output string)
	OnAgentError(ctx context.Context, agent IAgent, input string, err error)
	// OnAgentLLMParseError is called when a model response does not follow
	// the expected format and the step is retried.
	OnAgentLLMParseError(ctx context.Context, agent IAgent, response string, err error)
}
