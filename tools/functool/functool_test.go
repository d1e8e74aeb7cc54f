package functool_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/tools/functool"
)

type greetRequest struct {
	Name     string `json:"name" jsonschema:"description=Who to greet"`
	Shouting bool   `json:"shouting,omitempty"`
}

type greetResult struct {
	Greeting string `json:"greeting"`
}

func greet(_ context.Context, req *greetRequest) (*greetResult, error) {
	if req.Name == "" {
		return nil, errors.New("empty name")
	}
	greeting := "hello, " + req.Name
	if req.Shouting {
		greeting = strings.ToUpper(greeting)
	}
	return &greetResult{Greeting: greeting}, nil
}

func TestNew(t *testing.T) {
	tool, err := functool.New("greet", "Greets someone.", greet)
	require.NoError(t, err)

	assert.Equal(t, "greet", tool.Name())
	assert.Equal(t, "Greets someone.", tool.Description())

	params := tool.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "name", params[0].Name)
	assert.True(t, params[0].Required)
	assert.Equal(t, "shouting", params[1].Name)
	assert.False(t, params[1].Required)
}

func TestCall_JSONInput(t *testing.T) {
	tool, err := functool.New("greet", "Greets someone.", greet)
	require.NoError(t, err)

	out, err := tool.Call(context.Background(), `{"name": "ada", "shouting": true}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting": "HELLO, ADA"}`, out)

	// fenced JSON from an LLM
	out, err = tool.Call(context.Background(), "```json\n{\"name\": \"ada\"}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting": "hello, ada"}`, out)
}

func TestCall_StringFallback(t *testing.T) {
	tool, err := functool.New("greet", "Greets someone.", greet)
	require.NoError(t, err)

	// unstructured input lands on the first required parameter
	out, err := tool.Call(context.Background(), "ada")
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting": "hello, ada"}`, out)
}

func TestCall_FunctionError(t *testing.T) {
	tool, err := functool.New("greet", "Greets someone.", greet)
	require.NoError(t, err)

	_, err = tool.Call(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestRun_Typed(t *testing.T) {
	tool, err := functool.New("greet", "Greets someone.", greet)
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &greetRequest{Name: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "hello, ada", res.Greeting)
}
