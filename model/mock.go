package model

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockGenerator is a lightweight in-memory Generator useful for tests and
// examples. Responses are replayed in the order they were scripted; requests
// beyond the script fail loudly instead of hanging the loop.
type MockGenerator struct {
	mu        sync.Mutex
	scripted  []Response
	errs      []error
	requests  []Request
	callCount int
}

// NewMockGenerator constructs an empty mock.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// AddTextResponse scripts a free-text reply.
func (m *MockGenerator) AddTextResponse(text string) *MockGenerator {
	return m.add(Response{Text: text}, nil)
}

// AddToolCallResponse scripts a structured tool-call reply. Args are
// marshalled once so scripting errors surface at setup time.
func (m *MockGenerator) AddToolCallResponse(name string, args map[string]any) *MockGenerator {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("mock tool args for %s: %v", name, err))
	}
	return m.add(Response{ToolCall: &ToolCall{Name: name, Arguments: raw}}, nil)
}

// AddRawToolCallResponse scripts a tool call with verbatim (possibly invalid)
// argument bytes, for exercising malformed-response handling.
func (m *MockGenerator) AddRawToolCallResponse(name string, rawArgs string) *MockGenerator {
	return m.add(Response{ToolCall: &ToolCall{Name: name, Arguments: json.RawMessage(rawArgs)}}, nil)
}

// AddError scripts a failed generation (e.g. a *TimeoutError).
func (m *MockGenerator) AddError(err error) *MockGenerator {
	return m.add(Response{}, err)
}

func (m *MockGenerator) add(resp Response, err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, resp)
	m.errs = append(m.errs, err)
	return m
}

// Generate implements Generator by replaying the script.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.callCount >= len(m.scripted) {
		return Response{}, fmt.Errorf("mock generator exhausted after %d calls", m.callCount)
	}
	resp := m.scripted[m.callCount]
	err := m.errs[m.callCount]
	m.callCount++
	return resp, err
}

// Requests returns every request seen so far, in call order.
func (m *MockGenerator) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
