package action

import (
	"context"

	"github.com/hupe1980/csvagent/internal/schema"
)

// Func is the signature of a callable backing a FuncAction. Arguments arrive
// schema-validated by the environment; the returned value can be any type the
// prompt layer can serialize.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FuncAction is a generic adapter that exposes a plain Go function as an
// Action. It holds a lightweight JSON-Schema-like parameter schema and
// the metadata the registry and prompt layer need; it performs no validation
// itself (see environment.Environment).
//
// A FuncAction has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FuncAction struct {
	name        string
	description string
	parameters  map[string]any
	terminal    bool
	tags        []string
	fn          Func
}

// Options configure optional FuncAction metadata.
type Options struct {
	// Terminal marks the action as session-ending when executed.
	Terminal bool
	// Tags groups the action for registry filtering.
	Tags []string
}

// NewFuncAction constructs a FuncAction from explicit schema and function.
//
// Example:
//
//	listCSV := action.NewFuncAction(
//	  "list_csv_files",
//	  "List all CSV files in a directory",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "dir": map[string]any{"type": "string"},
//	    },
//	  },
//	  listCSVFiles,
//	  func(o *action.Options) { o.Tags = []string{"file_operations", "list"} },
//	)
func NewFuncAction(
	name, description string,
	parameters map[string]any,
	fn Func,
	optFns ...func(o *Options),
) *FuncAction {
	opts := Options{}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	return &FuncAction{
		name:        name,
		description: description,
		parameters:  parameters,
		terminal:    opts.Terminal,
		tags:        opts.Tags,
		fn:          fn,
	}
}

// NewFuncActionFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers.
//
// Example:
//
//	type cleanArgs struct {
//	  File string `json:"file" description:"CSV file to clean"`
//	}
//
//	clean := action.NewFuncActionFromStruct(
//	  "clean_csv_file", "Clean and standardize a CSV file", cleanArgs{}, cleanCSV)
func NewFuncActionFromStruct(
	name, description string,
	structType any,
	fn Func,
	optFns ...func(o *Options),
) *FuncAction {
	return NewFuncAction(name, description, schema.FromStruct(structType), fn, optFns...)
}

// Name returns the unique action name used in tool-call declarations and routing.
func (a *FuncAction) Name() string { return a.name }

// Description returns the short natural language description exposed to models.
func (a *FuncAction) Description() string { return a.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (a *FuncAction) Parameters() map[string]any { return a.parameters }

// Terminal reports whether this action ends the session when executed.
func (a *FuncAction) Terminal() bool { return a.terminal }

// Tags returns the grouping labels attached at construction.
func (a *FuncAction) Tags() []string { return a.tags }

// Call invokes the wrapped function.
func (a *FuncAction) Call(ctx context.Context, args map[string]any) (any, error) {
	return a.fn(ctx, args)
}
