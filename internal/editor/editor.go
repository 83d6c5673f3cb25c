// Package editor holds the authoritative state of a page being edited:
// the component registry, the selection, the edit-mode flag and the undo
// log. Every mutation notifies registered listeners.
//
// An Editor is not safe for concurrent use. Hosts drive it from a single
// event loop; anything running elsewhere must hand its result back to that
// loop before touching the editor.
package editor

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"pagesmith/internal/component"
)

type Editor struct {
	components map[string]component.Component
	order      []string
	selected   []string
	editMode   bool
	history    *History

	listeners    []registration
	nextListener ListenerID

	logger *zap.Logger
}

type Option func(*Editor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithHistoryLimit caps the undo log at n entries.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.history = NewHistory(n) }
}

func New(opts ...Option) *Editor {
	e := &Editor{
		components: map[string]component.Component{},
		history:    NewHistory(DefaultHistoryLimit),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewComponent registers c, logs its creation and notifies listeners.
func (e *Editor) NewComponent(c component.Component) error {
	if c == nil {
		return ErrNilComponent
	}
	id := c.ID()
	if _, ok := e.components[id]; ok {
		return fmt.Errorf("new component %s: %w", id, ErrDuplicateID)
	}
	e.register(c)
	e.history.Append(Entry{Kind: EntryNew, ID: id, Index: len(e.order) - 1, After: c.Snapshot()})
	e.notify(Event{Type: EventNew, ID: id, Component: c})
	return nil
}

// UpdateComponent applies p to the component and logs the change.
func (e *Editor) UpdateComponent(id string, p component.Patch) (component.Component, error) {
	c, ok := e.components[id]
	if !ok {
		e.logger.Warn("update of unknown component", zap.String("id", id))
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("update %s: %w", id, err)
	}
	before := c.Snapshot()
	e.configure(c, p)
	e.history.Append(Entry{Kind: EntryUpdate, ID: id, Before: before, After: c.Snapshot()})
	e.notify(Event{Type: EventUpdate, ID: id, Component: c, Patch: &p})
	return c, nil
}

// BeginUpdate captures the state a gesture starts from.
func (e *Editor) BeginUpdate(id string) (component.Snapshot, error) {
	c, ok := e.components[id]
	if !ok {
		return component.Snapshot{}, fmt.Errorf("begin update %s: %w", id, ErrNotFound)
	}
	return c.Snapshot(), nil
}

// PreviewUpdate applies p and notifies listeners without logging. Gestures
// call it on every pointer move and log the net change with CommitUpdate.
func (e *Editor) PreviewUpdate(id string, p component.Patch) error {
	c, ok := e.components[id]
	if !ok {
		return fmt.Errorf("preview %s: %w", id, ErrNotFound)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("preview %s: %w", id, err)
	}
	e.configure(c, p)
	e.notify(Event{Type: EventUpdate, ID: id, Component: c, Patch: &p, Preview: true})
	return nil
}

// CommitUpdate logs one update from before to the current state. It reports
// false and logs nothing when the component did not change.
func (e *Editor) CommitUpdate(id string, before component.Snapshot) (bool, error) {
	c, ok := e.components[id]
	if !ok {
		return false, fmt.Errorf("commit %s: %w", id, ErrNotFound)
	}
	after := c.Snapshot()
	if after.Equal(before) {
		return false, nil
	}
	entry := Entry{Kind: EntryUpdate, ID: id, Before: before, After: after}
	e.history.Append(entry)
	e.notify(Event{Type: EventCommit, ID: id, Component: c, Entry: &entry})
	return true, nil
}

// RemoveComponent hides and unregisters the component. The log keeps its
// snapshot so undo can bring it back.
func (e *Editor) RemoveComponent(id string) error {
	c, ok := e.components[id]
	if !ok {
		e.logger.Warn("remove of unknown component", zap.String("id", id))
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	snap := c.Snapshot()
	snap.Selected = false
	index := slices.Index(e.order, id)
	e.drop(id)
	e.history.Append(Entry{Kind: EntryRemove, ID: id, Index: index, Before: snap})
	e.notify(Event{Type: EventRemove, ID: id, Component: c})
	return nil
}

func (e *Editor) Component(id string) (component.Component, bool) {
	c, ok := e.components[id]
	return c, ok
}

// Components returns the registry in insertion order.
func (e *Editor) Components() []component.Component {
	out := make([]component.Component, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.components[id])
	}
	return out
}

func (e *Editor) Len() int { return len(e.components) }

// SelectComponent adds id to the selection, replacing it unless additive.
// Unknown and locked components are refused.
func (e *Editor) SelectComponent(id string, additive bool) bool {
	c, ok := e.components[id]
	if !ok || c.Attrs().Locked {
		return false
	}
	if !additive {
		e.ClearSelection()
	}
	if e.IsSelected(id) {
		return true
	}
	e.selected = append(e.selected, id)
	c.SetSelected(true)
	e.notify(Event{Type: EventSelect, ID: id, Component: c})
	return true
}

func (e *Editor) UnselectComponent(id string) bool {
	i := slices.Index(e.selected, id)
	if i < 0 {
		return false
	}
	e.selected = slices.Delete(e.selected, i, i+1)
	c, ok := e.components[id]
	if ok {
		c.SetSelected(false)
	}
	e.notify(Event{Type: EventUnselect, ID: id, Component: c})
	return true
}

// ClearSelection empties the selection. It reports whether anything was
// selected.
func (e *Editor) ClearSelection() bool {
	if len(e.selected) == 0 {
		return false
	}
	previous := e.selected
	e.selected = nil
	for _, id := range previous {
		if c, ok := e.components[id]; ok {
			c.SetSelected(false)
		}
	}
	e.notify(Event{Type: EventSelectionRemoved, Previous: previous})
	return true
}

func (e *Editor) IsSelected(id string) bool {
	return slices.Contains(e.selected, id)
}

// Selected returns the selected ids in selection order.
func (e *Editor) Selected() []string {
	return slices.Clone(e.selected)
}

func (e *Editor) SelectedComponents() []component.Component {
	out := make([]component.Component, 0, len(e.selected))
	for _, id := range e.selected {
		if c, ok := e.components[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Primary is the first selected component, the one the UI decorates.
func (e *Editor) Primary() (component.Component, bool) {
	for _, id := range e.selected {
		if c, ok := e.components[id]; ok {
			return c, true
		}
	}
	return nil, false
}

// SetEditMode switches between viewing and editing. It reports false when
// the mode is unchanged.
func (e *Editor) SetEditMode(on bool) bool {
	if e.editMode == on {
		return false
	}
	e.editMode = on
	e.notify(Event{Type: EventEditMode, EditMode: on})
	return true
}

func (e *Editor) EditMode() bool { return e.editMode }

// Undo reverts the entry under the cursor directly against the registry.
func (e *Editor) Undo() bool {
	entry, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.replay(entry, false)
	e.notify(Event{Type: EventUndo, ID: entry.ID, Entry: &entry})
	return true
}

// Redo reapplies the entry after the cursor.
func (e *Editor) Redo() bool {
	entry, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.replay(entry, true)
	e.notify(Event{Type: EventRedo, ID: entry.ID, Entry: &entry})
	return true
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// History exposes the undo log for inspection.
func (e *Editor) History() *History { return e.history }

// ToDocument serialises the editor.
func (e *Editor) ToDocument() *Document {
	doc := &Document{
		Components:  make(map[string]component.Snapshot, len(e.components)),
		SelectedIDs: slices.Clone(e.selected),
		EditMode:    e.editMode,
	}
	if doc.SelectedIDs == nil {
		doc.SelectedIDs = []string{}
	}
	for id, c := range e.components {
		doc.Components[id] = c.Snapshot()
	}
	return doc
}

// LoadDocument replaces the whole state with doc and resets the log. A nil
// document loads as empty.
func (e *Editor) LoadDocument(doc *Document) {
	e.clear()
	if doc == nil {
		doc = &Document{}
	}
	ids := make([]string, 0, len(doc.Components))
	for key := range doc.Components {
		ids = append(ids, key)
	}
	slices.Sort(ids)
	for _, key := range ids {
		snap := doc.Components[key]
		if snap.ID == "" {
			snap.ID = key
		}
		snap.Selected = false
		c := component.FromSnapshot(snap)
		if _, dup := e.components[c.ID()]; dup {
			e.logger.Warn("duplicate component id in document", zap.String("id", c.ID()))
			continue
		}
		e.register(c)
	}
	for _, id := range doc.SelectedIDs {
		c, ok := e.components[id]
		if !ok || c.Attrs().Locked || e.IsSelected(id) {
			continue
		}
		e.selected = append(e.selected, id)
		c.SetSelected(true)
	}
	e.editMode = doc.EditMode
	e.notify(Event{Type: EventLoad, EditMode: e.editMode})
}

// Reset removes every component and clears the log.
func (e *Editor) Reset() {
	e.clear()
	e.notify(Event{Type: EventReset})
}

// AddListener registers fn and returns a handle for RemoveListener.
func (e *Editor) AddListener(fn Listener) (ListenerID, error) {
	if fn == nil {
		e.logger.Error("rejected listener", zap.Error(ErrInvalidListener))
		return 0, ErrInvalidListener
	}
	e.nextListener++
	e.listeners = append(e.listeners, registration{id: e.nextListener, fn: fn})
	return e.nextListener, nil
}

func (e *Editor) RemoveListener(id ListenerID) bool {
	i := slices.IndexFunc(e.listeners, func(r registration) bool { return r.id == id })
	if i < 0 {
		return false
	}
	e.listeners = slices.Delete(e.listeners, i, i+1)
	return true
}

func (e *Editor) notify(ev Event) {
	for _, r := range slices.Clone(e.listeners) {
		if err := e.call(r, ev); err != nil {
			e.logger.Error("listener failed",
				zap.Uint64("listener", uint64(r.id)),
				zap.String("event", string(ev.Type)),
				zap.Error(err))
		}
	}
}

func (e *Editor) call(r registration, ev Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrListenerFailure, p)
		}
	}()
	if err := r.fn(ev); err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailure, err)
	}
	return nil
}

// configure patches c and rebuilds its markup once when variant fields
// changed, keeping the selection class.
func (e *Editor) configure(c component.Component, p component.Patch) {
	selected := c.Attrs().Selected
	c.Configure(p)
	if c.DisplayChanged(p) {
		component.Rerender(c)
	}
	c.SetSelected(selected)
}

func (e *Editor) replay(entry Entry, forward bool) {
	switch entry.Kind {
	case EntryNew:
		if forward {
			e.restore(entry.After, entry.Index)
		} else {
			e.drop(entry.ID)
		}
	case EntryRemove:
		if forward {
			e.drop(entry.ID)
		} else {
			e.restore(entry.Before, entry.Index)
		}
	case EntryUpdate:
		c, ok := e.components[entry.ID]
		if !ok {
			e.logger.Warn("replay of update for missing component", zap.String("id", entry.ID))
			return
		}
		target := entry.Before
		if forward {
			target = entry.After
		}
		e.configure(c, target.Patch())
	}
}

// restore rebuilds snap at position index of the registry, clamped to its
// bounds, replacing any component already holding the id.
func (e *Editor) restore(snap component.Snapshot, index int) {
	snap.Selected = false
	if old, ok := e.components[snap.ID]; ok {
		old.Hide()
		e.drop(snap.ID)
	}
	c := component.FromSnapshot(snap)
	e.components[c.ID()] = c
	index = max(0, min(index, len(e.order)))
	e.order = slices.Insert(e.order, index, c.ID())
}

func (e *Editor) register(c component.Component) {
	e.components[c.ID()] = c
	e.order = append(e.order, c.ID())
}

// drop hides and unregisters id without logging or notifying.
func (e *Editor) drop(id string) {
	c, ok := e.components[id]
	if !ok {
		return
	}
	c.Hide()
	delete(e.components, id)
	if i := slices.Index(e.order, id); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	if i := slices.Index(e.selected, id); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
	}
}

func (e *Editor) clear() {
	for _, c := range e.components {
		c.Hide()
	}
	e.components = map[string]component.Component{}
	e.order = nil
	e.selected = nil
	e.history.Reset()
}
