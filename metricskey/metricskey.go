// Package metricskey declares the metrics emitted by this module.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total calls to unknown tools",
		RequiredTags: []string{"tool"},
	}

	StatsAgentRunsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_succeeded",
		Help:         "stats_agent_runs_succeeded provides total agent runs succeeded",
		RequiredTags: []string{"agent"},
	}

	StatsAgentRunsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_failed",
		Help:         "stats_agent_runs_failed provides total agent runs failed",
		RequiredTags: []string{"agent"},
	}

	StatsAgentParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_parse_errors",
		Help:         "stats_agent_parse_errors provides total unparseable LLM responses",
		RequiredTags: []string{"agent"},
	}

	StatsMCPCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mcp_calls_succeeded",
		Help:         "stats_mcp_calls_succeeded provides total MCP tool calls succeeded",
		RequiredTags: []string{"server", "tool"},
	}

	StatsMCPCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mcp_calls_failed",
		Help:         "stats_mcp_calls_failed provides total MCP tool calls failed",
		RequiredTags: []string{"server", "tool"},
	}
)

// Perf
var (
	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides duration of an agent run",
		RequiredTags: []string{"agent"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of a tool call",
		RequiredTags: []string{"tool"},
	}

	PerfMCPCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_mcp_call",
		Help:         "perf_mcp_call provides duration of an MCP round trip",
		RequiredTags: []string{"server"},
	}
)

// Metrics returns all described metrics for registration.
func Metrics() []*metrics.Describe {
	return []*metrics.Describe{
		&StatsToolCallsSucceeded,
		&StatsToolCallsFailed,
		&StatsToolCallsNotFound,
		&StatsAgentRunsSucceeded,
		&StatsAgentRunsFailed,
		&StatsAgentParseErrors,
		&StatsMCPCallsSucceeded,
		&StatsMCPCallsFailed,
		&PerfAgentRun,
		&PerfToolCall,
		&PerfMCPCall,
	}
}
