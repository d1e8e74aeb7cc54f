package tools

import (
	"github.com/tessellate-ai/agentic/llmutils"
	"github.com/tessellate-ai/agentic/schema"
)

type toolDescription struct {
	Name        string             `json:"Name" yaml:"Name"`
	Description string             `json:"Description" yaml:"Description"`
	Parameters  []schema.Parameter `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions renders the tools with their parameters as a fenced JSON
// block for inclusion in a prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
