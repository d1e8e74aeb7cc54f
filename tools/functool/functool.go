// Package functool turns a plain Go function into a tool, deriving its
// parameter definitions from the request struct.
package functool

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentic/llmutils"
	"github.com/tessellate-ai/agentic/schema"
	"github.com/tessellate-ai/agentic/tools"
)

// Tool adapts fn to the tool interface. The request type I must be a struct;
// its fields become the tool's parameters.
type Tool[I any, O any] struct {
	name        string
	description string
	params      []schema.Parameter
	fn          func(context.Context, *I) (*O, error)
}

// New builds a tool from a function.
func New[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (*Tool[I, O], error) {
	var req I
	def, err := schema.Reflect(reflect.TypeOf(req))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to build schema for tool %q", name)
	}
	return &Tool[I, O]{
		name:        name,
		description: description,
		params:      schema.ParseParameters(def),
		fn:          fn,
	}, nil
}

var _ tools.Tool[struct{}, struct{}] = (*Tool[struct{}, struct{}])(nil)

func (t *Tool[I, O]) Name() string {
	return t.name
}

func (t *Tool[I, O]) Description() string {
	return t.description
}

func (t *Tool[I, O]) Parameters() []schema.Parameter {
	return t.params
}

// Run executes the underlying function with a typed request.
func (t *Tool[I, O]) Run(ctx context.Context, req *I) (*O, error) {
	return t.fn(ctx, req)
}

// Call executes the tool with a raw string input. JSON input is decoded into
// the request struct; an unstructured string is assigned to the first
// required parameter, or the first declared one, matching the normalization
// applied to remote tools.
func (t *Tool[I, O]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if input != "" {
		cleaned := llmutils.CleanJSON([]byte(input))
		if err := json.Unmarshal(cleaned, &req); err != nil {
			if req, err = t.reqFromString(input); err != nil {
				return "", err
			}
		}
	}

	out, err := t.fn(ctx, &req)
	if err != nil {
		return "", err
	}

	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

func (t *Tool[I, O]) reqFromString(input string) (I, error) {
	var req I
	if len(t.params) == 0 {
		return req, errors.Newf("tool %q: failed to unmarshal input", t.name)
	}
	target := t.params[0]
	for _, p := range t.params {
		if p.Required {
			target = p
			break
		}
	}
	bs, err := json.Marshal(map[string]any{target.Name: input})
	if err != nil {
		return req, errors.Wrap(err, "failed to marshal input")
	}
	if err := json.Unmarshal(bs, &req); err != nil {
		return req, errors.Newf("tool %q: failed to unmarshal input", t.name)
	}
	return req, nil
}
