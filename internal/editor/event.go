package editor

import (
	"errors"

	"pagesmith/internal/component"
)

var (
	ErrNotFound        = errors.New("component not found")
	ErrDuplicateID     = errors.New("component id already registered")
	ErrNilComponent    = errors.New("nil component")
	ErrInvalidListener = errors.New("listener is not callable")
	ErrListenerFailure = errors.New("listener failed")
)

type EventType string

const (
	EventNew              EventType = "new"
	EventUpdate           EventType = "update"
	EventRemove           EventType = "remove"
	EventSelect           EventType = "select"
	EventUnselect         EventType = "unselect"
	EventSelectionRemoved EventType = "selectionRemoved"
	EventEditMode         EventType = "editMode"
	EventUndo             EventType = "undo"
	EventRedo             EventType = "redo"
	EventCommit           EventType = "commit"
	EventLoad             EventType = "loadJSON"
	EventReset            EventType = "resetState"
)

// Event describes a state change delivered to listeners. Only the fields
// relevant to Type are set.
type Event struct {
	Type      EventType
	ID        string
	Component component.Component
	Patch     *component.Patch
	// Preview marks updates made during a gesture that are not logged.
	Preview bool
	// Previous holds the selection cleared by a selectionRemoved event.
	Previous []string
	EditMode bool
	Entry    *Entry
}

// Listener observes editor events. A returned error or a panic is logged
// and does not reach the caller or other listeners.
type Listener func(Event) error

// ListenerID identifies a registration for RemoveListener.
type ListenerID uint64

type registration struct {
	id ListenerID
	fn Listener
}
