// Package mealmath evaluates arithmetic over ingredient values, so calorie
// and price totals come from computation instead of model estimation.
package mealmath

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/Joelfranklin96/nutrition-copilot/tools"
)

// Input Tool for evaluating arithmetic over meal data. Supports basic
// operations like addition, subtraction, multiplication, and division, plus
// round, min and max. Use this tool to total calories or prices.
type Input struct {
	// Expression arithmetic expression to evaluate. For example, '[oats] + [milk]'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Arithmetic expression to evaluate. For example, '[oats] + [milk]'." validate:"required"`
	// Params represents the expression's named values.
	Params map[string]interface{} `json:"params,omitempty" jsonschema:"title=params,description=Named values for the expression."`
}

func NewInput(exp string, params map[string]interface{}) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// NewTotalInput builds an input that sums the given values. Addends are
// keyed by position, so repeated or bracket-containing ingredient names
// cannot collapse or corrupt the expression.
func NewTotalInput(values []float64) *Input {
	terms := make([]string, 0, len(values))
	params := make(map[string]interface{}, len(values))
	for i, v := range values {
		name := fmt.Sprintf("item_%d", i)
		terms = append(terms, "["+name+"]")
		params[name] = v
	}
	return NewInput(strings.Join(terms, " + "), params)
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Output Schema for the output of the meal math tool.
type Output struct {
	// Result result of the calculation.
	Result float64 `json:"result" jsonschema:"title=result,description=Result of the calculation."`
}

func NewOutput(result float64) *Output {
	return &Output{Result: result}
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

var mealFunctions = map[string]govaluate.ExpressionFunction{
	"round": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("round expects 1 argument, got %d", len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("round expects a number, got %T", args[0])
		}
		return math.Round(v*100) / 100, nil
	},
	"min": func(args ...interface{}) (interface{}, error) {
		return fold(args, math.Min)
	},
	"max": func(args ...interface{}) (interface{}, error) {
		return fold(args, math.Max)
	},
}

func fold(args []interface{}, f func(float64, float64) float64) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expects at least 1 argument")
	}
	acc, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("expects numbers, got %T", args[0])
	}
	for _, arg := range args[1:] {
		v, ok := arg.(float64)
		if !ok {
			return nil, fmt.Errorf("expects numbers, got %T", arg)
		}
		acc = f(acc, v)
	}
	return acc, nil
}

type Tool struct {
	tools.Config
}

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("MealMathTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Evaluate arithmetic over meal data, such as calorie or price totals.")
	}
	return ret
}

// Run evaluates the expression with the given parameters.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, mealFunctions)
	if err != nil {
		return nil, err
	}
	params := make(map[string]interface{}, len(input.Params))
	for k, v := range input.Params {
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, err
	}
	value, ok := result.(float64)
	if !ok {
		return nil, fmt.Errorf("expression did not produce a number: %v", result)
	}
	return NewOutput(value), nil
}
