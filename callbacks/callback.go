// Package callbacks provides ready-made handlers for agent and tool
// lifecycle events.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/xlog"

	"github.com/tessellate-ai/agentic/agents"
	"github.com/tessellate-ai/agentic/tools"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agents.Callback = (*Noop)(nil)
	_ tools.Callback  = (*Noop)(nil)
	_ agents.Callback = (*Printer)(nil)
	_ tools.Callback  = (*Printer)(nil)
	_ agents.Callback = (*PackageLogger)(nil)
	_ tools.Callback  = (*PackageLogger)(nil)
	_ agents.Callback = (*Fanout)(nil)
	_ tools.Callback  = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agents.Callback
}

func NewFanout(callbacks ...agents.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agents.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnAgentStart(ctx context.Context, agent agents.IAgent, input string) {
	for _, callback := range l.callbacks {
		callback.OnAgentStart(ctx, agent, input)
	}
}

func (l *Fanout) OnAgentEnd(ctx context.Context, agent agents.IAgent, input, output string) {
	for _, callback := range l.callbacks {
		callback.OnAgentEnd(ctx, agent, input, output)
	}
}

func (l *Fanout) OnAgentError(ctx context.Context, agent agents.IAgent, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnAgentError(ctx, agent, input, err)
	}
}

func (l *Fanout) OnAgentLLMParseError(ctx context.Context, agent agents.IAgent, response string, err error) {
	for _, callback := range l.callbacks {
		callback.OnAgentLLMParseError(ctx, agent, response, err)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, input)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, input, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, input, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnAgentStart(ctx context.Context, agent agents.IAgent, input string) {}
func (l *Noop) OnAgentEnd(ctx context.Context, agent agents.IAgent, input, output string) {
}
func (l *Noop) OnAgentError(ctx context.Context, agent agents.IAgent, input string, err error) {}
func (l *Noop) OnAgentLLMParseError(ctx context.Context, agent agents.IAgent, response string, err error) {
}
func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, input string)       {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnAgentStart(ctx context.Context, agent agents.IAgent, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent Start: %s\n", agent.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnAgentEnd(ctx context.Context, agent agents.IAgent, input, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent End: %s\n", agent.Name())
	if l.Mode == ModeVerbose {
		fmt.Fprintln(l.Out, output)
	}
}

func (l *Printer) OnAgentError(ctx context.Context, agent agents.IAgent, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent Error: %s: %s\n", agent.Name(), err.Error())
}

func (l *Printer) OnAgentLLMParseError(ctx context.Context, agent agents.IAgent, response string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent LLM Parse Error: %s: %s\n", agent.Name(), err.Error())
	fmt.Fprintf(l.Out, "Response: %s\n", response)
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", output)
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

// PackageLogger is a callback handler that logs the events with the
// package logger.
type PackageLogger struct{}

func NewPackageLogger() *PackageLogger {
	return &PackageLogger{}
}

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "callbacks")

func (l *PackageLogger) OnAgentStart(ctx context.Context, agent agents.IAgent, input string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", agent.Name(),
		"status", "started",
		"input", input,
	)
}

func (l *PackageLogger) OnAgentEnd(ctx context.Context, agent agents.IAgent, input, output string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", agent.Name(),
		"status", "completed",
	)
}

func (l *PackageLogger) OnAgentError(ctx context.Context, agent agents.IAgent, input string, err error) {
	logger.ContextKV(ctx, xlog.ERROR,
		"agent", agent.Name(),
		"status", "failed",
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnAgentLLMParseError(ctx context.Context, agent agents.IAgent, response string, err error) {
	logger.ContextKV(ctx, xlog.WARNING,
		"agent", agent.Name(),
		"status", "parse_error",
		"response", response,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", tool.Name(),
		"status", "started",
		"input", input,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", tool.Name(),
		"status", "completed",
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	logger.ContextKV(ctx, xlog.ERROR,
		"tool", tool.Name(),
		"status", "failed",
		"err", err.Error(),
	)
}
