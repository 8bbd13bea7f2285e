// Package action implements the bounded action vocabulary an agent may invoke:
// schema described operations backed by plain Go callables, collected in a
// registry that is populated once at startup and read only during the loop.
package action

import (
	"context"
	"fmt"
)

// Action is the contract a capability must satisfy to be registered with an
// agent. Implementations should:
//   - Provide clear, descriptive names (snake_case recommended) and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use if the registry is shared across sessions
type Action interface {
	// Name returns the unique identifier for this action.
	Name() string

	// Description returns a human-readable description of what this action
	// does. It is provided to the model to help it choose the right action.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Terminal reports whether executing this action ends the agent session.
	Terminal() bool

	// Tags returns the grouping labels used to select action subsets at
	// registration time and when rendering prompts.
	Tags() []string

	// Call executes the action with already-validated arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// DuplicateActionError indicates a registration under an already-taken name.
type DuplicateActionError struct {
	Name string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("action %q is already registered", e.Name)
}

// UnknownActionError indicates a lookup for a name the registry never saw.
// The loop converts it into an error memory item so the model can correct
// itself instead of crashing the session.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}
