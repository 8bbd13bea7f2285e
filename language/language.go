// Package language translates between the agent's world and the model's. One
// direction renders goals, available actions and accumulated memory into a
// model request; the other parses the model's reply into either a structured
// tool invocation or plain text. Rendering is pure: identical inputs produce
// an identical request, byte for byte.
package language

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/csvagent/action"
	"github.com/hupe1980/csvagent/core"
	"github.com/hupe1980/csvagent/memory"
	"github.com/hupe1980/csvagent/model"
)

// Reply is the tagged union produced by response parsing. Concrete reply
// types implement the unexported isReply marker enabling a closed set.
type Reply interface{ isReply() }

// TextReply is free-form model output with no action to take.
type TextReply struct {
	Text string
}

func (TextReply) isReply() {}

// ToolCallReply is a structured request naming an action and its arguments.
type ToolCallReply struct {
	Tool string
	Args map[string]any
}

func (ToolCallReply) isReply() {}

// MalformedResponseError indicates a reply that claimed to be a structured
// tool call but could not be decoded into the expected shape. It is surfaced
// to the agent's loop control, never swallowed.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

// Language is the prompt/response translation contract the agent drives.
type Language interface {
	ConstructPrompt(goals []core.Goal, reg *action.Registry, mem *memory.Memory) model.Request
	ParseResponse(resp model.Response) (Reply, error)
}

// FunctionCalling renders prompts in the native function-calling shape of the
// model boundary: goals become the system message, memory replays as the
// conversation, and actions are attached as tool definitions.
type FunctionCalling struct{}

// NewFunctionCalling constructs the default translation layer.
func NewFunctionCalling() *FunctionCalling {
	return &FunctionCalling{}
}

const goalSeparator = "\n-------------------\n"

// ConstructPrompt implements Language. It performs no I/O and is
// deterministic for identical inputs: goals render in priority order, memory
// in insertion order and actions in registration order.
func (l *FunctionCalling) ConstructPrompt(goals []core.Goal, reg *action.Registry, mem *memory.Memory) model.Request {
	messages := make([]model.Message, 0, mem.Len()+1)
	messages = append(messages, model.Message{Role: "system", Content: formatGoals(goals)})
	messages = append(messages, formatMemory(mem)...)

	return model.Request{
		Messages: messages,
		Tools:    formatActions(reg),
	}
}

func formatGoals(goals []core.Goal) string {
	sorted := core.SortGoals(goals)
	parts := make([]string, 0, len(sorted))
	for _, g := range sorted {
		parts = append(parts, g.Name+":"+goalSeparator+g.Description+goalSeparator)
	}
	return strings.Join(parts, "\n\n")
}

func formatMemory(mem *memory.Memory) []model.Message {
	items := mem.Items()
	messages := make([]model.Message, 0, len(items))
	for _, item := range items {
		content := renderContent(item.Content)
		switch item.Type {
		case memory.TypeAssistant:
			messages = append(messages, model.Message{Role: "assistant", Content: content})
		case memory.TypeEnvironment:
			messages = append(messages, model.Message{Role: "user", Content: "Tool result: " + content})
		default:
			// User input and loop-control (system) items both replay as user
			// turns so every provider sees them.
			messages = append(messages, model.Message{Role: "user", Content: content})
		}
	}
	return messages
}

// renderContent serializes arbitrary payloads for replay. json.Marshal sorts
// map keys, which keeps rendering byte-deterministic.
func renderContent(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(raw)
}

func formatActions(reg *action.Registry) []model.ToolDefinition {
	actions := reg.Actions()
	defs := make([]model.ToolDefinition, 0, len(actions))
	for _, a := range actions {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        a.Name(),
				Description: truncate(a.Description(), 1024),
				Parameters:  a.Parameters(),
			},
		})
	}
	return defs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ParseResponse implements Language. Two shapes are recognized: a normalized
// tool call from the generator, or free text. Free text that is itself a JSON
// object with a "tool" field round-trips the wire form {"tool": ..., "args":
// {...}} into a ToolCallReply. A claimed tool call that cannot be decoded
// fails with *MalformedResponseError; there is no fallback guessing.
func (l *FunctionCalling) ParseResponse(resp model.Response) (Reply, error) {
	if resp.ToolCall != nil {
		return parseToolCall(resp.ToolCall)
	}

	text := strings.TrimSpace(resp.Text)
	if wire, ok := decodeWireToolCall(text); ok {
		return wire()
	}

	return TextReply{Text: resp.Text}, nil
}

func parseToolCall(tc *model.ToolCall) (Reply, error) {
	if tc.Name == "" {
		return nil, &MalformedResponseError{
			Reason: "tool call missing name",
			Raw:    string(tc.Arguments),
		}
	}

	args := map[string]any{}
	if len(tc.Arguments) > 0 {
		if err := json.Unmarshal(tc.Arguments, &args); err != nil {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("tool %s arguments are not a JSON object: %v", tc.Name, err),
				Raw:    string(tc.Arguments),
			}
		}
	}

	return ToolCallReply{Tool: tc.Name, Args: args}, nil
}

// decodeWireToolCall detects the serialized {"tool": ..., "args": ...} shape.
// The second return is false when text is not a JSON object claiming to be a
// tool call, in which case the caller treats it as plain text.
func decodeWireToolCall(text string) (func() (Reply, error), bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	rawTool, ok := obj["tool"]
	if !ok {
		return nil, false
	}

	return func() (Reply, error) {
		var tool string
		if err := json.Unmarshal(rawTool, &tool); err != nil || tool == "" {
			return nil, &MalformedResponseError{
				Reason: "tool field is not a non-empty string",
				Raw:    text,
			}
		}

		args := map[string]any{}
		if rawArgs, ok := obj["args"]; ok {
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return nil, &MalformedResponseError{
					Reason: fmt.Sprintf("args for tool %s are not a JSON object", tool),
					Raw:    text,
				}
			}
		}

		return ToolCallReply{Tool: tool, Args: args}, nil
	}, true
}
