// Package memory implements the append-only conversation and execution log a
// session accumulates. Insertion order is the conversation order and is
// replayed verbatim into every subsequent prompt; no entry is ever mutated,
// reordered or removed for the life of the session.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ItemType classifies who produced a memory item.
type ItemType string

const (
	// TypeUser marks input injected by the human driving the session.
	TypeUser ItemType = "user"
	// TypeAssistant marks model output (reasoning or a tool-call request).
	TypeAssistant ItemType = "assistant"
	// TypeEnvironment marks a tool execution result.
	TypeEnvironment ItemType = "environment"
	// TypeSystem marks loop-control entries such as retryable errors.
	TypeSystem ItemType = "system"
)

// Item is one entry in the log. Content is an arbitrary structured payload;
// the prompt layer decides how to render it.
type Item struct {
	ID        string    `json:"id"`
	Type      ItemType  `json:"type"`
	Content   any       `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItem constructs an item with a fresh ID and UTC timestamp.
func NewItem(t ItemType, content any) Item {
	return Item{
		ID:        uuid.NewString(),
		Type:      t,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Memory is the ordered log of one session. It is safe for concurrent access,
// although the loop itself is strictly sequential; the mutex covers hosts
// that inspect memory from another goroutine while a session runs.
type Memory struct {
	mu    sync.RWMutex
	items []Item
}

// New constructs an empty memory.
func New() *Memory {
	return &Memory{}
}

// Add appends an item to the log.
func (m *Memory) Add(item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// AddContent is shorthand for Add(NewItem(t, content)).
func (m *Memory) AddContent(t ItemType, content any) Item {
	item := NewItem(t, content)
	m.Add(item)
	return item
}

// Items returns the log in insertion order as a defensive copy. With types
// given, only items of those types are included (order preserved).
func (m *Memory) Items(types ...ItemType) []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(types) == 0 {
		out := make([]Item, len(m.items))
		copy(out, m.items)
		return out
	}

	wanted := make(map[ItemType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		if _, ok := wanted[item.Type]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of stored items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Last returns the most recent item and true, or the zero item and false when
// the log is empty.
func (m *Memory) Last() (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.items) == 0 {
		return Item{}, false
	}
	return m.items[len(m.items)-1], true
}
