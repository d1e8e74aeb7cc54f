package mcptool

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentic/mcp"
)

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentic", "mcptool")

// Client is the subset of *mcp.Client needed to expand a server's tools.
type Client interface {
	Executor
	ListTools(ctx context.Context) ([]mcp.ToolInfo, error)
}

// Expand enumerates the server's tools once and wraps each of them, all
// sharing the one client handle. The wrapped tools do not own the client;
// closing it is the caller's concern.
func Expand(ctx context.Context, client Client, prefix string) ([]*Tool, error) {
	infos, err := client.ListTools(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to enumerate server tools")
	}

	wrapped := make([]*Tool, 0, len(infos))
	for _, info := range infos {
		tool := New(client, info, prefix)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_expanded",
			"tool", tool.Name(),
			"params", len(tool.Parameters()),
		)
		wrapped = append(wrapped, tool)
	}
	return wrapped, nil
}
