package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.AddContent(TypeUser, "list all CSV files")
	m.AddContent(TypeAssistant, map[string]any{"tool": "list_csv_files"})
	m.AddContent(TypeEnvironment, []string{"a.csv", "b.csv"})
	m.AddContent(TypeUser, "clean them")

	items := m.Items()
	require.Len(t, items, 4)
	assert.Equal(t, TypeUser, items[0].Type)
	assert.Equal(t, TypeAssistant, items[1].Type)
	assert.Equal(t, TypeEnvironment, items[2].Type)
	assert.Equal(t, TypeUser, items[3].Type)
	assert.Equal(t, "list all CSV files", items[0].Content)
}

func TestMemoryTypeFilter(t *testing.T) {
	m := New()
	m.AddContent(TypeUser, "hello")
	m.AddContent(TypeSystem, "timeout, retrying")
	m.AddContent(TypeAssistant, "hi")
	m.AddContent(TypeSystem, "malformed reply")

	system := m.Items(TypeSystem)
	require.Len(t, system, 2)
	assert.Equal(t, "timeout, retrying", system[0].Content)
	assert.Equal(t, "malformed reply", system[1].Content)

	conv := m.Items(TypeUser, TypeAssistant)
	require.Len(t, conv, 2)
	assert.Equal(t, "hello", conv[0].Content)
	assert.Equal(t, "hi", conv[1].Content)
}

func TestMemoryItemsReturnsCopy(t *testing.T) {
	m := New()
	m.AddContent(TypeUser, "original")

	items := m.Items()
	items[0].Content = "mutated"

	again := m.Items()
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryLastAndLen(t *testing.T) {
	m := New()
	_, ok := m.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	m.AddContent(TypeUser, "first")
	item := m.AddContent(TypeEnvironment, "second")

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, item.ID, last.ID)
	assert.Equal(t, 2, m.Len())
}

func TestNewItemAssignsIDs(t *testing.T) {
	a := NewItem(TypeUser, "x")
	b := NewItem(TypeUser, "x")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
