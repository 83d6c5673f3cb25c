package editor

import "pagesmith/internal/component"

// DefaultHistoryLimit caps the undo log when no limit is configured.
const DefaultHistoryLimit = 100

type EntryKind string

const (
	EntryNew    EntryKind = "new"
	EntryRemove EntryKind = "remove"
	EntryUpdate EntryKind = "update"
)

// Entry is one reversible change. New entries carry the created component in
// After, remove entries the removed one in Before, updates both sides.
// Index is the component's position in the registry when it was created or
// removed.
type Entry struct {
	Kind   EntryKind
	ID     string
	Index  int
	Before component.Snapshot
	After  component.Snapshot
}

// History is a bounded linear undo log. The cursor points at the last
// applied entry; -1 means nothing is applied.
type History struct {
	entries []Entry
	cursor  int
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{cursor: -1, limit: limit}
}

// Append records e after the cursor, dropping any undone entries and
// evicting the oldest once the limit is exceeded.
func (h *History) Append(e Entry) {
	h.entries = append(h.entries[:h.cursor+1], e)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]Entry(nil), h.entries[over:]...)
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps the cursor back and returns the entry to revert.
func (h *History) Undo() (Entry, bool) {
	if h.cursor < 0 {
		return Entry{}, false
	}
	e := h.entries[h.cursor]
	h.cursor--
	return e, true
}

// Redo steps the cursor forward and returns the entry to reapply.
func (h *History) Redo() (Entry, bool) {
	if h.cursor >= len(h.entries)-1 {
		return Entry{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) CanUndo() bool { return h.cursor >= 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) Limit() int    { return h.limit }

func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}
