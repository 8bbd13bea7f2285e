// Package environment executes registered actions against live arguments,
// capturing success and failure in one uniform result shape. A misbehaving
// action function must never crash the loop: validation failures, returned
// errors and panics all become structured error results the agent can reason
// about in the next iteration.
package environment

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/csvagent/action"
	"github.com/hupe1980/csvagent/internal/schema"
	"github.com/hupe1980/csvagent/logging"
)

// Result is the uniform execution record appended to memory regardless of
// outcome. Exactly one of Result and Error is meaningful; Error empty means
// success.
type Result struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// OK reports whether the execution succeeded.
func (r Result) OK() bool { return r.Error == "" }

// InvalidArgumentsError indicates the supplied arguments did not satisfy the
// action's declared parameter schema. The underlying function is not invoked.
type InvalidArgumentsError struct {
	Tool  string
	Cause error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Cause)
}

func (e *InvalidArgumentsError) Unwrap() error { return e.Cause }

// ToolExecutionError wraps an error (or recovered panic) raised by the
// underlying action function. It is always caught at the environment boundary
// and never propagated raw.
type ToolExecutionError struct {
	Tool  string
	Cause error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *ToolExecutionError) Unwrap() error { return e.Cause }

// Options configure an Environment.
type Options struct {
	Logger logging.Logger
}

// Environment validates and runs actions. It holds no state between calls.
type Environment struct {
	logger logging.Logger
}

// New constructs an Environment with optional overrides.
func New(optFns ...func(o *Options)) *Environment {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Environment{logger: opts.Logger}
}

// Execute validates args against the action's parameter schema, invokes the
// function inside a guarded scope and returns the uniform Result. The
// returned error, when non-nil, is always an *InvalidArgumentsError or
// *ToolExecutionError and is also reflected in the Result's Error field so
// callers can append the Result and branch on the error independently.
func (e *Environment) Execute(ctx context.Context, a action.Action, args map[string]any) (Result, error) {
	if args == nil {
		args = map[string]any{}
	}

	res := Result{Tool: a.Name(), Args: args}

	if err := schema.Validate(args, a.Parameters()); err != nil {
		invalid := &InvalidArgumentsError{Tool: a.Name(), Cause: err}
		e.logger.Warn("environment.validation_failed", "tool", a.Name(), "error", err.Error())
		res.Error = invalid.Error()
		return res, invalid
	}

	start := time.Now()
	out, err := e.callGuarded(ctx, a, args)
	dur := time.Since(start)

	if err != nil {
		execErr := &ToolExecutionError{Tool: a.Name(), Cause: err}
		e.logger.Error("environment.execute_failed",
			"tool", a.Name(), "duration_ms", dur.Milliseconds(), "error", err.Error())
		res.Error = execErr.Error()
		return res, execErr
	}

	e.logger.Info("environment.executed",
		"tool", a.Name(), "duration_ms", dur.Milliseconds())
	res.Result = out
	return res, nil
}

// callGuarded runs the action with panic recovery.
func (e *Environment) callGuarded(ctx context.Context, a action.Action, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("environment.panic", "tool", a.Name(), "recover", fmt.Sprint(r))
			out = nil
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return a.Call(ctx, args)
}
