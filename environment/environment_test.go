package environment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csvagent/action"
)

var sumParams = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"a": map[string]any{"type": "number"},
		"b": map[string]any{"type": "number"},
	},
	"required": []string{"a", "b"},
}

func TestExecuteSuccess(t *testing.T) {
	sum := action.NewFuncAction("sum", "Add numbers", sumParams,
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		})

	env := New()
	res, err := env.Execute(context.Background(), sum, map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "sum", res.Tool)
	assert.Equal(t, 5.0, res.Result)
	assert.Empty(t, res.Error)
}

func TestExecuteInvalidArgumentsSkipsFunction(t *testing.T) {
	invoked := false
	sum := action.NewFuncAction("sum", "Add numbers", sumParams,
		func(_ context.Context, _ map[string]any) (any, error) {
			invoked = true
			return nil, nil
		})

	env := New()
	res, err := env.Execute(context.Background(), sum, map[string]any{"a": 1.0})
	require.Error(t, err)
	var invalid *InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "sum", invalid.Tool)
	assert.False(t, invoked, "function must not run on validation failure")
	assert.False(t, res.OK())
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestExecuteWrapsFunctionError(t *testing.T) {
	boom := errors.New("disk on fire")
	failing := action.NewFuncAction("read_project_file", "Read a file",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, boom
		})

	env := New()
	res, err := env.Execute(context.Background(), failing, nil)
	require.Error(t, err)
	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, execErr, boom)
	assert.False(t, res.OK())
	assert.Equal(t, map[string]any{}, res.Args)
}

func TestExecuteRecoversPanic(t *testing.T) {
	panicking := action.NewFuncAction("clean_csv_file", "Clean a file",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			panic("index out of range")
		})

	env := New()

	var res Result
	var err error
	require.NotPanics(t, func() {
		res, err = env.Execute(context.Background(), panicking, map[string]any{})
	})
	require.Error(t, err)
	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, res.Error, "panic")
}

func TestResultUniformShape(t *testing.T) {
	// Success and failure results carry the same tool/args envelope so memory
	// replay renders both identically.
	ok := Result{Tool: "say", Args: map[string]any{"message": "hi"}, Result: "hi"}
	fail := Result{Tool: "say", Args: map[string]any{"message": "hi"}, Error: "boom"}
	assert.True(t, ok.OK())
	assert.False(t, fail.OK())
	assert.Equal(t, ok.Tool, fail.Tool)
	assert.Equal(t, ok.Args, fail.Args)
}
