// Package calctool provides a math expression tool.
package calctool

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/tessellate-ai/agentic/llmutils"
	"github.com/tessellate-ai/agentic/schema"
	"github.com/tessellate-ai/agentic/tools"
)

const ToolName = "calculate"

// CalcRequest represents the tool input.
type CalcRequest struct {
	Expression string `json:"expression" jsonschema:"description=The math expression to evaluate"`
}

// CalcResult represents the evaluation result.
type CalcResult struct {
	Result string `json:"result"`
}

// Tool evaluates arithmetic expressions, e.g. "2+3*4", "sqrt(16)" or
// "sin(pi/2)".
type Tool struct {
	name        string
	description string
	params      []schema.Parameter
}

var _ tools.Tool[CalcRequest, CalcResult] = (*Tool)(nil)

// fn1 adapts a float64 function so that integer arguments, which expr
// passes as int, are coerced instead of failing reflection.
func fn1(f func(float64) float64) func(any) (float64, error) {
	return func(x any) (float64, error) {
		v, err := toFloat(x)
		if err != nil {
			return 0, err
		}
		return f(v), nil
	}
}

func fn2(f func(float64, float64) float64) func(any, any) (float64, error) {
	return func(x, y any) (float64, error) {
		vx, err := toFloat(x)
		if err != nil {
			return 0, err
		}
		vy, err := toFloat(y)
		if err != nil {
			return 0, err
		}
		return f(vx, vy), nil
	}
}

func toFloat(x any) (float64, error) {
	switch v := x.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, errors.Newf("expected a number, got %T", x)
	}
}

var env = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  fn1(math.Sqrt),
	"abs":   fn1(math.Abs),
	"sin":   fn1(math.Sin),
	"cos":   fn1(math.Cos),
	"tan":   fn1(math.Tan),
	"log":   fn1(math.Log),
	"log10": fn1(math.Log10),
	"exp":   fn1(math.Exp),
	"pow":   fn2(math.Pow),
	"floor": fn1(math.Floor),
	"ceil":  fn1(math.Ceil),
	"round": fn1(math.Round),
}

func New() (*Tool, error) {
	def, err := schema.Reflect(reflect.TypeOf(CalcRequest{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Evaluates math expressions. Supports basic operators and functions, e.g. 2+3*4, sqrt(16), sin(pi/2).",
		params:      schema.ParseParameters(def),
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() []schema.Parameter {
	return t.params
}

func (t *Tool) Run(ctx context.Context, req *CalcRequest) (*CalcResult, error) {
	if req.Expression == "" {
		return nil, errors.New("invalid request: empty expression")
	}

	out, err := expr.Eval(req.Expression, env)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate %q", req.Expression)
	}

	return &CalcResult{Result: formatValue(out)}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req CalcRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		// unstructured input is the expression itself
		req.Expression = input
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return out.Result, nil
}

func formatValue(val any) string {
	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return llmutils.ToJSON(v)
	}
}
