// Package surface mounts an editor into a host node tree. It builds the
// toolbar, canvas, component palette and property panel, turns pointer and
// keyboard input into editor calls and keeps the tree in step with editor
// events. It is the only writer of the mounted tree.
package surface

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
	"pagesmith/internal/editor"
)

var (
	ErrNoContainer = errors.New("mount container not found")
	ErrNoField     = errors.New("form field not found")
	ErrViewing     = errors.New("editor is not in edit mode")
	ErrNoSaver     = errors.New("no saver configured")
	ErrLocked      = errors.New("component is locked")
)

// Options configures a Surface.
type Options struct {
	Logger *zap.Logger
	// Confirm asks the user before destructive actions and calls proceed
	// only when they agree. A nil Confirm proceeds immediately.
	Confirm func(prompt string, proceed func())
	// Saver persists the document when the save button is pressed.
	Saver func(ctx context.Context, doc *editor.Document) error
}

type Surface struct {
	ed        *editor.Editor
	container *html.Node
	logger    *zap.Logger
	confirm   func(string, func())
	saver     func(context.Context, *editor.Document) error
	listener  editor.ListenerID
	editable  bool

	root, toolbar, canvas, notice        *html.Node
	palette, paletteContainer            *html.Node
	properties, propertiesContainer      *html.Node
	noSelection, form, imagePanel, ghost *html.Node

	canvasRect Rect
	scrollX    float64
	scrollY    float64
	placed     []placement

	gesture *gesture
}

// New mounts ed into container. A nil container is logged and reported as
// ErrNoContainer; nothing is mounted.
func New(container *html.Node, ed *editor.Editor, opts Options) (*Surface, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if container == nil {
		logger.Error("cannot mount editor", zap.Error(ErrNoContainer))
		return nil, ErrNoContainer
	}
	s := &Surface{
		ed:        ed,
		container: container,
		logger:    logger,
		confirm:   opts.Confirm,
		saver:     opts.Saver,
		editable:  true,
	}
	s.mount()
	id, err := ed.AddListener(s.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe surface: %w", err)
	}
	s.listener = id
	s.rerender()
	s.rebuildProperties()
	s.setEditUI(ed.EditMode())
	s.updateButtons()
	return s, nil
}

// Close unsubscribes from the editor. The mounted tree is left in place.
func (s *Surface) Close() {
	s.ed.RemoveListener(s.listener)
}

func (s *Surface) Editor() *editor.Editor { return s.ed }
func (s *Surface) Root() *html.Node       { return s.root }
func (s *Surface) Canvas() *html.Node     { return s.canvas }
func (s *Surface) Toolbar() *html.Node    { return s.toolbar }
func (s *Surface) Palette() *html.Node    { return s.palette }
func (s *Surface) Properties() *html.Node { return s.properties }

// handle translates editor events into targeted tree patches. Only load,
// reset, undo and redo rebuild the canvas.
func (s *Surface) handle(ev editor.Event) error {
	switch ev.Type {
	case editor.EventNew:
		s.renderComponent(ev.Component)
	case editor.EventRemove:
		s.refreshHandles()
		s.rebuildProperties()
	case editor.EventUpdate, editor.EventCommit:
		if ev.Component != nil && ev.Component.Node() == nil {
			s.renderComponent(ev.Component)
		}
		s.refreshHandles()
		s.syncForm(ev.Component)
	case editor.EventSelect, editor.EventUnselect, editor.EventSelectionRemoved:
		s.refreshHandles()
		s.rebuildProperties()
	case editor.EventEditMode:
		s.setEditUI(ev.EditMode)
	case editor.EventUndo, editor.EventRedo:
		s.rerender()
		s.rebuildProperties()
	case editor.EventLoad, editor.EventReset:
		s.rerender()
		s.rebuildProperties()
		s.setEditUI(s.ed.EditMode())
	}
	s.updateButtons()
	return nil
}

func (s *Surface) renderComponent(c component.Component) {
	if c == nil {
		return
	}
	n := c.Render(s.canvas)
	s.pointerEvents(n)
}

func (s *Surface) pointerEvents(n *html.Node) {
	if s.ed.EditMode() {
		dom.SetStyle(n, "pointer-events", "auto")
	} else {
		dom.SetStyle(n, "pointer-events", "none")
	}
}

// rerender rebuilds the canvas from the registry.
func (s *Surface) rerender() {
	if s.ghost != nil {
		dom.Detach(s.ghost)
	}
	dom.Clear(s.canvas)
	for _, c := range s.ed.Components() {
		s.renderComponent(c)
	}
	s.refreshHandles()
}

// setEditUI shows or hides the editing chrome for the mode.
func (s *Surface) setEditUI(on bool) {
	dom.ToggleClass(s.root, "edit-mode", on)
	display := "none"
	if on {
		display = "flex"
	}
	dom.SetStyle(s.paletteContainer, "display", display)
	dom.SetStyle(s.propertiesContainer, "display", display)

	toggle := dom.FindByID(s.toolbar, ButtonEditMode)
	if on {
		dom.SetText(toggle, "Edit Mode: ON")
	} else {
		dom.SetText(toggle, "Edit Mode: OFF")
	}
	dom.ToggleClass(toggle, "active", on)
	if s.editable {
		dom.SetStyle(toggle, "display", "inline-block")
	} else {
		dom.SetStyle(toggle, "display", "none")
	}
	for b := s.toolbar.FirstChild; b != nil; b = b.NextSibling {
		if b.Data != "button" || b == toggle {
			continue
		}
		if on {
			dom.SetStyle(b, "display", "inline-block")
		} else {
			dom.SetStyle(b, "display", "none")
		}
	}

	for _, c := range s.ed.Components() {
		if n := c.Node(); n != nil {
			s.pointerEvents(n)
			dom.ToggleClass(n, "selected", on && c.Attrs().Selected)
		}
	}
	if !on {
		s.CloseImagePanel()
	}
	s.refreshHandles()
	s.rebuildProperties()
}

func (s *Surface) updateButtons() {
	dom.SetBoolAttr(dom.FindByID(s.toolbar, ButtonUndo), "disabled", !s.ed.CanUndo())
	dom.SetBoolAttr(dom.FindByID(s.toolbar, ButtonRedo), "disabled", !s.ed.CanRedo())
}

// ButtonEnabled reports whether a toolbar button is shown and enabled.
func (s *Surface) ButtonEnabled(id string) bool {
	b := dom.FindByID(s.root, id)
	if b == nil {
		return false
	}
	return !dom.HasAttr(b, "disabled") && dom.Style(b, "display") != "none"
}

// Notice shows a status message in the toolbar. An empty text hides it.
func (s *Surface) Notice(text string, failed bool) {
	if text == "" {
		dom.SetStyle(s.notice, "display", "none")
		dom.SetText(s.notice, "")
		return
	}
	dom.SetText(s.notice, text)
	dom.ToggleClass(s.notice, "error", failed)
	dom.SetStyle(s.notice, "display", "inline")
}

// NoticeText returns the toolbar message, empty when hidden.
func (s *Surface) NoticeText() string {
	if dom.Style(s.notice, "display") == "none" {
		return ""
	}
	return dom.TextContent(s.notice)
}

// SetEditable grants or withdraws the right to edit. Withdrawing it leaves
// edit mode.
func (s *Surface) SetEditable(on bool) {
	s.editable = on
	if !on {
		s.ed.SetEditMode(false)
	}
	s.setEditUI(s.ed.EditMode())
}

func (s *Surface) Editable() bool { return s.editable }

// ToggleEditMode flips edit mode when editing is allowed. Leaving edit
// mode clears the selection.
func (s *Surface) ToggleEditMode() bool {
	if !s.editable {
		return false
	}
	on := !s.ed.EditMode()
	if !on {
		s.ed.ClearSelection()
	}
	s.ed.SetEditMode(on)
	return on
}

// Press activates the button with the given id.
func (s *Surface) Press(ctx context.Context, id string) error {
	if id == ButtonEditMode {
		s.ToggleEditMode()
		return nil
	}
	if !s.ed.EditMode() {
		return ErrViewing
	}
	switch id {
	case ButtonAddComponent:
		_, err := s.AddComponent(component.KindCard, component.Patch{})
		return err
	case ButtonAddImage:
		s.OpenImagePanel()
	case ButtonUndo:
		s.ed.Undo()
	case ButtonRedo:
		s.ed.Redo()
	case ButtonSave:
		return s.Save(ctx)
	case ButtonDelete:
		primary, ok := s.ed.Primary()
		if !ok {
			return fmt.Errorf("%s: %w", id, ErrNoField)
		}
		if primary.Attrs().Locked {
			return fmt.Errorf("%s: %w", primary.ID(), ErrLocked)
		}
		target := primary.ID()
		s.ask("Are you sure you want to delete this component?", func() {
			if c, ok := s.ed.Component(target); !ok || c.Attrs().Locked {
				return
			}
			if err := s.ed.RemoveComponent(target); err != nil {
				s.logger.Warn("delete component", zap.Error(err))
			}
		})
	case ButtonImageSubmit:
		_, err := s.SubmitImagePanel()
		return err
	case ButtonImageClose:
		s.CloseImagePanel()
	default:
		s.logger.Warn("unknown button", zap.String("id", id))
		return fmt.Errorf("button %s: %w", id, ErrNoField)
	}
	return nil
}

func (s *Surface) ask(prompt string, proceed func()) {
	if s.confirm == nil {
		proceed()
		return
	}
	s.confirm(prompt, proceed)
}

// AddComponent creates a component of kind centred in the visible canvas,
// with p applied on top, and selects it.
func (s *Surface) AddComponent(kind component.Kind, p component.Patch) (component.Component, error) {
	if !s.ed.EditMode() {
		return nil, ErrViewing
	}
	if p.Left == nil || p.Top == nil {
		def := component.Defaults(kind)
		w, h := def.Width, def.Height
		if p.Width != nil {
			w = *p.Width
		}
		if p.Height != nil {
			h = *p.Height
		}
		if p.Left == nil {
			p.Left = component.Ptr(max(0, s.canvasRect.W/2-w/2+s.scrollX))
		}
		if p.Top == nil {
			p.Top = component.Ptr(max(0, s.canvasRect.H/2-h/2+s.scrollY))
		}
	}
	c, err := component.New(kind, p)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", kind, err)
	}
	if err := s.ed.NewComponent(c); err != nil {
		return nil, err
	}
	s.ed.SelectComponent(c.ID(), false)
	return c, nil
}

// Duplicate adds a copy of snap under a fresh id, offset by 20px.
func (s *Surface) Duplicate(snap component.Snapshot) (component.Component, error) {
	if !s.ed.EditMode() {
		return nil, ErrViewing
	}
	p := snap.Patch()
	p.Left = component.Ptr(snap.Left + 20)
	p.Top = component.Ptr(snap.Top + 20)
	p.Locked = component.Ptr(false)
	return s.AddComponent(snap.Type, p)
}

func (s *Surface) OpenImagePanel() {
	if !s.ed.EditMode() {
		return
	}
	dom.SetStyle(s.imagePanel, "display", "block")
}

func (s *Surface) CloseImagePanel() {
	dom.SetStyle(s.imagePanel, "display", "none")
}

func (s *Surface) ImagePanelOpen() bool {
	return dom.Style(s.imagePanel, "display") == "block"
}

func (s *Surface) resetImagePanel() {
	for _, f := range imagePanelFields {
		if n := dom.FindByID(s.imagePanel, f.id); n != nil {
			setInputValue(n, "")
		}
	}
	setInputValue(dom.FindByID(s.imagePanel, "image-fit"), component.FitContain)
}

// SubmitImagePanel adds an image from the panel inputs, then closes and
// clears the panel.
func (s *Surface) SubmitImagePanel() (component.Component, error) {
	if !s.ImagePanelOpen() {
		return nil, fmt.Errorf("image panel: %w", ErrNoField)
	}
	src, _ := s.FieldValue("image-url")
	alt, _ := s.FieldValue("image-alt-text")
	fit, _ := s.FieldValue("image-fit")
	if src == "" {
		return nil, fmt.Errorf("image url is required: %w", component.ErrValidation)
	}
	p := component.Patch{Src: &src, ObjectFit: &fit}
	if alt != "" {
		p.Alt = &alt
	}
	c, err := s.AddComponent(component.KindImage, p)
	if err != nil {
		return nil, err
	}
	s.CloseImagePanel()
	s.resetImagePanel()
	return c, nil
}

// Save hands the current document to the saver and reports the outcome in
// the toolbar.
func (s *Surface) Save(ctx context.Context) error {
	if s.saver == nil {
		s.SaveFinished(ErrNoSaver)
		return ErrNoSaver
	}
	err := s.saver(ctx, s.ed.ToDocument())
	s.SaveFinished(err)
	return err
}

// SaveFinished shows the result of a save the host ran itself.
func (s *Surface) SaveFinished(err error) {
	if err != nil {
		s.logger.Error("save failed", zap.Error(err))
		s.Notice("Save failed", true)
		return
	}
	s.Notice("Saved", false)
}
