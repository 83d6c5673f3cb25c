package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) Entry {
	return Entry{Kind: EntryNew, ID: id}
}

func TestHistoryCursor(t *testing.T) {
	h := NewHistory(3)
	assert.Equal(t, -1, h.Cursor())
	assert.False(t, h.CanUndo())

	h.Append(entry("a"))
	h.Append(entry("b"))
	assert.Equal(t, 1, h.Cursor())

	e, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "b", e.ID)
	e, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, "a", e.ID)
	_, ok = h.Undo()
	assert.False(t, ok)
	assert.Equal(t, -1, h.Cursor())

	e, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, "a", e.ID)
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		h.Append(entry(id))
	}
	require.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())

	var ids []string
	for _, e := range h.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "d", "e"}, ids)
}

func TestHistoryAppendTruncates(t *testing.T) {
	h := NewHistory(10)
	h.Append(entry("a"))
	h.Append(entry("b"))
	h.Append(entry("c"))
	h.Undo()
	h.Undo()

	h.Append(entry("x"))
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo())
	assert.Equal(t, "x", h.Entries()[1].ID)
}

func TestHistoryDefaults(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, NewHistory(0).Limit())
	h := NewHistory(-4)
	h.Append(entry("a"))
	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Cursor())
}
