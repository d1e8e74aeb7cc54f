package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/nikolalohinski/gonja"
	"github.com/tidwall/gjson"

	"github.com/tessellate-ai/agentic/llm"
	"github.com/tessellate-ai/agentic/metricskey"
	"github.com/tessellate-ai/agentic/store"
	"github.com/tessellate-ai/agentic/tools"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "agents")

// DefaultMaxSteps limits the reasoning loop when not overridden.
const DefaultMaxSteps = 5

// DefaultReActPrompt drives the reason-act loop. The template variables are
// `tools`, `question` and `history`.
const DefaultReActPrompt = `You are an assistant that answers questions by reasoning step by step and calling tools.

Available tools:
{{ tools }}

Use exactly the following format:

Thought: think about what to do next.
Action: the action to take, in one of the forms:
- no arguments: ` + "`tool_name[]`" + `
- single argument: ` + "`tool_name[value]`" + `
- multiple arguments: ` + "`tool_name[{\"param1\": \"value1\", \"param2\": \"value2\"}]`" + ` (must be JSON)
- final answer: ` + "`Finish[answer]`" + `

Question: {{ question }}
{{ history }}`

var (
	actionRe = regexp.MustCompile(`Action:\s*` + "`?" + `([\w-]+)\[((?s).*)\]`)
	finishRe = regexp.MustCompile(`Finish\[((?s).*)\]`)
)

// ReActAgent answers a question by alternating model calls and tool
// invocations until the model emits a final answer.
type ReActAgent struct {
	name        string
	description string
	model       llm.Model
	registry    *tools.Registry

	prompt   string
	maxSteps int
	callback Callback
	store    store.MessageStore
	chatID   string
	callOpts []llm.Option
}

// NewReActAgent creates an agent over the model and tool registry.
func NewReActAgent(name string, model llm.Model, registry *tools.Registry) *ReActAgent {
	return &ReActAgent{
		name:     name,
		model:    model,
		registry: registry,
		prompt:   DefaultReActPrompt,
		maxSteps: DefaultMaxSteps,
	}
}

func (a *ReActAgent) WithDescription(description string) *ReActAgent {
	a.description = description
	return a
}

// WithPrompt replaces the default prompt template. The template must accept
// the `tools`, `question` and `history` variables.
func (a *ReActAgent) WithPrompt(prompt string) *ReActAgent {
	a.prompt = prompt
	return a
}

func (a *ReActAgent) WithMaxSteps(maxSteps int) *ReActAgent {
	if maxSteps > 0 {
		a.maxSteps = maxSteps
	}
	return a
}

func (a *ReActAgent) WithCallback(callback Callback) *ReActAgent {
	a.callback = callback
	return a
}

// WithStore enables conversation memory. If chatID is empty, a new chat is
// started.
func (a *ReActAgent) WithStore(st store.MessageStore, chatID string) *ReActAgent {
	a.store = st
	if chatID == "" {
		chatID = uuid.NewString()
	}
	a.chatID = chatID
	return a
}

// WithCallOptions sets the options passed to every model call.
func (a *ReActAgent) WithCallOptions(opts ...llm.Option) *ReActAgent {
	a.callOpts = opts
	return a
}

func (a *ReActAgent) Name() string {
	return a.name
}

func (a *ReActAgent) Description() string {
	return a.description
}

// ChatID returns the conversation ID when a store is configured.
func (a *ReActAgent) ChatID() string {
	return a.chatID
}

var _ IAgent = (*ReActAgent)(nil)

// Run executes the reason-act loop until the model finishes or the step
// limit is reached.
func (a *ReActAgent) Run(ctx context.Context, input string) (string, error) {
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	runID := uuid.NewString()
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.name,
		"run", runID,
		"status", "started",
	)
	if a.callback != nil {
		a.callback.OnAgentStart(ctx, a, input)
	}

	answer, err := a.run(ctx, input)
	if err != nil {
		metricskey.StatsAgentRunsFailed.IncrCounter(1, a.name)
		logger.ContextKV(ctx, xlog.ERROR,
			"agent", a.name,
			"run", runID,
			"status", "failed",
			"err", err.Error(),
		)
		if a.callback != nil {
			a.callback.OnAgentError(ctx, a, input, err)
		}
		return "", err
	}

	metricskey.StatsAgentRunsSucceeded.IncrCounter(1, a.name)
	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.name,
		"run", runID,
		"status", "completed",
	)
	if a.callback != nil {
		a.callback.OnAgentEnd(ctx, a, input, answer)
	}
	return answer, nil
}

func (a *ReActAgent) run(ctx context.Context, input string) (string, error) {
	tpl, err := gonja.FromString(a.prompt)
	if err != nil {
		return "", errors.Wrap(err, "invalid prompt template")
	}

	var scratchpad strings.Builder
	if prior := a.priorConversation(ctx); prior != "" {
		scratchpad.WriteString(prior)
	}

	toolsDescription := a.registry.Describe()

	for step := 0; step < a.maxSteps; step++ {
		prompt, err := tpl.Execute(gonja.Context{
			"tools":    toolsDescription,
			"question": input,
			"history":  scratchpad.String(),
		})
		if err != nil {
			return "", errors.Wrap(err, "failed to render prompt")
		}

		response, err := a.model.Generate(ctx, []llm.Message{llm.UserMessage(prompt)}, a.callOpts...)
		if err != nil {
			return "", errors.WithMessage(err, "model call failed")
		}

		if m := finishRe.FindStringSubmatch(response); m != nil {
			answer := strings.TrimSpace(m[1])
			a.remember(ctx, input, answer)
			return answer, nil
		}

		m := actionRe.FindStringSubmatch(response)
		if m == nil {
			metricskey.StatsAgentParseErrors.IncrCounter(1, a.name)
			parseErr := errors.New("response contains no Action or Finish directive")
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"status", "parse_error",
				"response", response,
			)
			if a.callback != nil {
				a.callback.OnAgentLLMParseError(ctx, a, response, parseErr)
			}
			scratchpad.WriteString("Observation: your response did not follow the required format, reply with an Action or Finish directive\n")
			continue
		}

		toolName := m[1]
		toolInput := canonicalArguments(strings.TrimSpace(m[2]))

		scratchpad.WriteString(fmt.Sprintf("Action: %s[%s]\n", toolName, toolInput))

		observation, err := a.registry.Execute(ctx, toolName, toolInput)
		if err != nil {
			observation = "Error: " + err.Error()
		}
		scratchpad.WriteString("Observation: " + observation + "\n")
	}

	return "", errors.Newf("no final answer after %d steps", a.maxSteps)
}

// canonicalArguments re-encodes JSON object arguments, tolerating the loose
// JSON that models emit, such as trailing commas or unquoted keys. Anything
// else passes through unchanged.
func canonicalArguments(raw string) string {
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		var args map[string]any
		if err := ljson.Unmarshal([]byte(raw), &args); err != nil || args == nil {
			return raw
		}
		data, err := json.Marshal(args)
		if err != nil {
			return raw
		}
		return string(data)
	}
	return raw
}

func (a *ReActAgent) priorConversation(ctx context.Context) string {
	if a.store == nil {
		return ""
	}
	messages := a.store.Messages(ctx, a.chatID)
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range messages {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *ReActAgent) remember(ctx context.Context, question, answer string) {
	if a.store == nil {
		return
	}
	if err := a.store.Add(ctx, a.chatID, llm.UserMessage(question)); err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "store question", "err", err.Error())
		return
	}
	if err := a.store.Add(ctx, a.chatID, llm.AssistantMessage(answer)); err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "store answer", "err", err.Error())
	}
}
