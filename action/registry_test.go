package action

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoAction(name string, optFns ...func(o *Options)) *FuncAction {
	return NewFuncAction(name, "echo "+name, map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(_ context.Context, _ map[string]any) (any, error) {
		return name, nil
	}, optFns...)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	a := echoAction("list_csv_files")

	require.NoError(t, reg.Register(a))

	got, err := reg.Get("list_csv_files")
	require.NoError(t, err)
	assert.Same(t, Action(a), got)
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoAction("terminate")))

	err := reg.Register(echoAction("terminate"))
	require.Error(t, err)
	var dup *DuplicateActionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "terminate", dup.Name)
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("does_not_exist")
	require.Error(t, err)
	var unknown *UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "does_not_exist", unknown.Name)
}

func TestRegistryActionsPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	names := []string{"delta", "alpha", "charlie", "bravo"}
	for _, n := range names {
		require.NoError(t, reg.Register(echoAction(n)))
	}

	// Repeated listing must be restartable and stable.
	for i := 0; i < 3; i++ {
		var got []string
		for _, a := range reg.Actions() {
			got = append(got, a.Name())
		}
		assert.Equal(t, names, got)
	}
}

func TestRegistryActionsTagFilter(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		echoAction("list_csv_files", func(o *Options) { o.Tags = []string{"file_operations", "list"} }),
		echoAction("clean_csv_file", func(o *Options) { o.Tags = []string{"file_operations", "clean"} }),
		echoAction("terminate", func(o *Options) { o.Terminal = true; o.Tags = []string{"system"} }),
	)

	var got []string
	for _, a := range reg.Actions("system", "clean") {
		got = append(got, a.Name())
	}
	assert.Equal(t, []string{"clean_csv_file", "terminate"}, got)

	assert.Empty(t, reg.Actions("no_such_tag"))
	assert.Len(t, reg.Actions(), 3)
}

func TestFuncActionMetadata(t *testing.T) {
	a := NewFuncAction("say", "Respond conversationally", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
		},
		"required": []string{"message"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["message"], nil
	}, func(o *Options) { o.Tags = []string{"system"} })

	assert.Equal(t, "say", a.Name())
	assert.Equal(t, "Respond conversationally", a.Description())
	assert.False(t, a.Terminal())
	assert.Equal(t, []string{"system"}, a.Tags())

	out, err := a.Call(context.Background(), map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestNewFuncActionFromStruct(t *testing.T) {
	type args struct {
		Dir string `json:"dir" description:"Directory to scan"`
	}
	a := NewFuncActionFromStruct("count_csv_files", "Count CSVs", args{},
		func(_ context.Context, _ map[string]any) (any, error) { return 0, nil })

	props, ok := a.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "dir")
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoAction("say"))
	assert.Panics(t, func() { reg.MustRegister(echoAction("say")) })
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, `action "x" is already registered`, (&DuplicateActionError{Name: "x"}).Error())
	assert.Equal(t, fmt.Sprintf("unknown action %q", "y"), (&UnknownActionError{Name: "y"}).Error())
}
