package calctool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/tools/calctool"
)

func Test_Tool(t *testing.T) {
	tool, err := calctool.New()
	require.NoError(t, err)

	assert.Equal(t, calctool.ToolName, tool.Name())
	params := tool.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "expression", params[0].Name)
	assert.True(t, params[0].Required)

	ctx := context.Background()

	out, err := tool.Call(ctx, "2+3*4")
	require.NoError(t, err)
	assert.Equal(t, "14", out)

	out, err = tool.Call(ctx, `{"expression": "sqrt(16)"}`)
	require.NoError(t, err)
	assert.Equal(t, "4", out)

	out, err = tool.Call(ctx, "sin(pi/2)")
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	_, err = tool.Call(ctx, "not a formula !!")
	require.Error(t, err)

	_, err = tool.Call(ctx, "")
	require.Error(t, err)
}

func TestFunctions_IntegerArguments(t *testing.T) {
	tool, err := calctool.New()
	require.NoError(t, err)

	ctx := context.Background()

	// integer literals reach the functions as int, not float64
	out, err := tool.Call(ctx, "sqrt(16)")
	require.NoError(t, err)
	assert.Equal(t, "4", out)

	out, err = tool.Call(ctx, "pow(2, 10)")
	require.NoError(t, err)
	assert.Equal(t, "1024", out)

	out, err = tool.Call(ctx, "abs(-3)")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	out, err = tool.Call(ctx, "floor(2.9) + ceil(1)")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	_, err = tool.Call(ctx, `sqrt("sixteen")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a number")
}

func TestRun_Typed(t *testing.T) {
	tool, err := calctool.New()
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), &calctool.CalcRequest{Expression: "pow(2, 10)"})
	require.NoError(t, err)
	assert.Equal(t, "1024", res.Result)
}
