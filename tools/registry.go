package tools

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentic/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "tools")

// ErrToolNotFound is returned by Registry.Execute for unknown tool names.
var ErrToolNotFound = errors.New("tool not found")

// Registry keeps tools by name, in registration order.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]ITool
	names    []string
	callback Callback
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]ITool),
	}
}

// WithCallback sets the callback invoked around every Execute.
func (r *Registry) WithCallback(callback Callback) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callback = callback
	return r
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool ITool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, ok := r.byName[name]; ok {
		return errors.Newf("tool %q is already registered", name)
	}
	r.byName[name] = tool
	r.names = append(r.names, name)
	return nil
}

// Unregister removes a tool by name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Get returns a tool by name, or nil.
func (r *Registry) Get(name string) ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]ITool, 0, len(r.names))
	for _, name := range r.names {
		list = append(list, r.byName[name])
	}
	return list
}

// Describe renders the registered tools for a prompt.
func (r *Registry) Describe() string {
	return GetDescriptions(r.Tools()...)
}

// Execute looks up a tool by name and calls it with the raw input.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	r.mu.RLock()
	tool := r.byName[name]
	callback := r.callback
	r.mu.RUnlock()

	if tool == nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool", name,
		)
		return "", errors.WithMessagef(ErrToolNotFound, "%q", name)
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	if callback != nil {
		callback.OnToolStart(ctx, tool, input)
	}
	out, err := tool.Call(ctx, input)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		if callback != nil {
			callback.OnToolError(ctx, tool, input, err)
		}
		return "", err
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if callback != nil {
		callback.OnToolEnd(ctx, tool, input, out)
	}
	return out, nil
}
