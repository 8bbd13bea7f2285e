package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Message is one entry of the rendered prompt in provider-neutral form.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"` // JSON object of arguments
}

// ToolDefinition declaratively exposes a callable action to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (action) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the prompt layer.
type Request struct {
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// Response is the normalized reply consumed by response parsing: either free
// text, a tool call, or both (some providers emit commentary alongside the
// call). Providers signalling multiple calls have all but the first dropped;
// the loop executes one action per iteration.
type Response struct {
	Text     string    `json:"text,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// Generator is the opaque request/response boundary to the LLM service. It
// must not retry internally; retry policy belongs to the agent loop.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// TimeoutError indicates the model call exceeded its deadline. It is a
// first-class failure the loop handles every iteration, never a silent retry.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model call exceeded %s deadline", e.Timeout)
}

// timeoutGenerator decorates a Generator with a per-call deadline.
type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout wraps g so every Generate call is bounded by timeout. A
// non-positive timeout returns g unchanged. Deadline hits surface as
// *TimeoutError regardless of how the underlying client reports them.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return g
	}
	return &timeoutGenerator{inner: g, timeout: timeout}
}

func (t *timeoutGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(ctx, req)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return Response{}, &TimeoutError{Timeout: t.timeout}
	}
	return resp, err
}
