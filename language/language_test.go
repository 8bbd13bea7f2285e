package language

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csvagent/action"
	"github.com/hupe1980/csvagent/core"
	"github.com/hupe1980/csvagent/memory"
	"github.com/hupe1980/csvagent/model"
)

func testRegistry(t *testing.T) *action.Registry {
	t.Helper()
	reg := action.NewRegistry()
	reg.MustRegister(
		action.NewFuncAction("list_csv_files", "List all CSV files in a directory", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dir": map[string]any{"type": "string"},
			},
		}, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil }),
		action.NewFuncAction("terminate", "End the session with a final message", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []string{"message"},
		}, func(_ context.Context, args map[string]any) (any, error) { return args["message"], nil },
			func(o *action.Options) { o.Terminal = true }),
	)
	return reg
}

func testGoals() []core.Goal {
	return []core.Goal{
		{Priority: 2, Name: "Analyze CSV Files", Description: "Count, match, and inspect columns."},
		{Priority: 1, Name: "Explore Files", Description: "Navigate folders and list available CSV files."},
	}
}

func TestConstructPromptShape(t *testing.T) {
	mem := memory.New()
	mem.AddContent(memory.TypeUser, "List all CSV files in input_csvs")
	mem.AddContent(memory.TypeAssistant, map[string]any{"tool": "list_csv_files", "args": map[string]any{"dir": "input_csvs"}})
	mem.AddContent(memory.TypeEnvironment, []string{"a.csv", "b.csv"})

	lang := NewFunctionCalling()
	req := lang.ConstructPrompt(testGoals(), testRegistry(t), mem)

	require.Len(t, req.Messages, 4)
	assert.Equal(t, "system", req.Messages[0].Role)
	// Goals render by ascending priority regardless of slice order.
	assert.Regexp(t, `(?s)Explore Files.*Analyze CSV Files`, req.Messages[0].Content)

	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "List all CSV files in input_csvs", req.Messages[1].Content)
	assert.Equal(t, "assistant", req.Messages[2].Role)
	assert.Equal(t, "user", req.Messages[3].Role)
	assert.Contains(t, req.Messages[3].Content, "Tool result: ")

	require.Len(t, req.Tools, 2)
	assert.Equal(t, "list_csv_files", req.Tools[0].Function.Name)
	assert.Equal(t, "terminate", req.Tools[1].Function.Name)
}

func TestConstructPromptDeterministic(t *testing.T) {
	mem := memory.New()
	mem.AddContent(memory.TypeUser, "count csv files")
	mem.AddContent(memory.TypeEnvironment, map[string]any{"z": 1, "a": 2, "m": []any{"x"}})

	lang := NewFunctionCalling()
	reg := testRegistry(t)
	goals := testGoals()

	first, err := json.Marshal(lang.ConstructPrompt(goals, reg, mem))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(lang.ConstructPrompt(goals, reg, mem))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestParseResponseNormalizedToolCall(t *testing.T) {
	lang := NewFunctionCalling()
	reply, err := lang.ParseResponse(model.Response{
		ToolCall: &model.ToolCall{Name: "list_csv_files", Arguments: json.RawMessage(`{"dir":"input_csvs"}`)},
	})
	require.NoError(t, err)
	call, ok := reply.(ToolCallReply)
	require.True(t, ok)
	assert.Equal(t, "list_csv_files", call.Tool)
	assert.Equal(t, map[string]any{"dir": "input_csvs"}, call.Args)
}

func TestParseResponseWireToolCallRoundTrip(t *testing.T) {
	lang := NewFunctionCalling()
	reply, err := lang.ParseResponse(model.Response{
		Text: `{"tool": "list_csv_files", "args": {"dir": "input_csvs"}}`,
	})
	require.NoError(t, err)
	call, ok := reply.(ToolCallReply)
	require.True(t, ok)
	assert.Equal(t, "list_csv_files", call.Tool)
	assert.Equal(t, map[string]any{"dir": "input_csvs"}, call.Args)
}

func TestParseResponseWireToolCallWithoutArgs(t *testing.T) {
	lang := NewFunctionCalling()
	reply, err := lang.ParseResponse(model.Response{Text: `{"tool": "list_csv_files"}`})
	require.NoError(t, err)
	call, ok := reply.(ToolCallReply)
	require.True(t, ok)
	assert.Empty(t, call.Args)
}

func TestParseResponseFreeText(t *testing.T) {
	lang := NewFunctionCalling()
	for _, text := range []string{
		"All CSV files are cleaned and consolidated.",
		`{"summary": "not a tool call"}`, // JSON object without a tool field
		"{not even json",
	} {
		reply, err := lang.ParseResponse(model.Response{Text: text})
		require.NoError(t, err, text)
		_, ok := reply.(TextReply)
		assert.True(t, ok, "expected TextReply for %q", text)
	}
}

func TestParseResponseMalformed(t *testing.T) {
	lang := NewFunctionCalling()

	cases := []model.Response{
		// Tool call with no name.
		{ToolCall: &model.ToolCall{Name: "", Arguments: json.RawMessage(`{}`)}},
		// Arguments that are not an object.
		{ToolCall: &model.ToolCall{Name: "list_csv_files", Arguments: json.RawMessage(`[1,2]`)}},
		{ToolCall: &model.ToolCall{Name: "list_csv_files", Arguments: json.RawMessage(`{"dir":`)}},
		// Wire shape with a non-string tool field.
		{Text: `{"tool": 7, "args": {}}`},
		// Wire shape with non-object args.
		{Text: `{"tool": "list_csv_files", "args": "input_csvs"}`},
	}

	for _, resp := range cases {
		_, err := lang.ParseResponse(resp)
		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed, "%+v", resp)
	}
}

func TestParseResponseEmptyArguments(t *testing.T) {
	lang := NewFunctionCalling()
	reply, err := lang.ParseResponse(model.Response{
		ToolCall: &model.ToolCall{Name: "list_csv_files"},
	})
	require.NoError(t, err)
	call, ok := reply.(ToolCallReply)
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, call.Args)
}
