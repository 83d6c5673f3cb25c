package surface

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

// Handles lists the eight resize handle positions.
var Handles = []string{
	"top-left", "top", "top-right",
	"left", "right",
	"bottom-left", "bottom", "bottom-right",
}

// HandleSize is the side of the square hit area around a handle point.
const HandleSize = 16

type gestureKind int

const (
	gestureDrag gestureKind = iota
	gestureResize
	gesturePalette
)

// gesture is the pointer capture held between PointerDown and PointerUp.
type gesture struct {
	kind    gestureKind
	id      string
	handle  string
	start   component.Snapshot
	x, y    float64
	origin  Rect
	palette component.Kind
}

// Rect is an axis-aligned box in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains treats the right and bottom edges as outside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ResizeRect applies a pointer delta to start for the given handle. Each
// axis is clamped to component.MinSize; when a left or top edge is
// dragged past the minimum the opposite edge stays where it was.
func ResizeRect(handle string, start Rect, dx, dy float64) Rect {
	r := start
	if strings.Contains(handle, "right") {
		r.W = start.W + dx
	}
	if strings.Contains(handle, "bottom") {
		r.H = start.H + dy
	}
	if strings.Contains(handle, "left") {
		r.W = start.W - dx
		r.X = start.X + dx
	}
	if strings.Contains(handle, "top") {
		r.H = start.H - dy
		r.Y = start.Y + dy
	}
	if r.W < component.MinSize {
		r.W = component.MinSize
		if strings.Contains(handle, "left") {
			r.X = start.X + start.W - component.MinSize
		}
	}
	if r.H < component.MinSize {
		r.H = component.MinSize
		if strings.Contains(handle, "top") {
			r.Y = start.Y + start.H - component.MinSize
		}
	}
	return r
}

func handlePoint(pos string, r Rect) (float64, float64) {
	x, y := r.X+r.W/2, r.Y+r.H/2
	if strings.Contains(pos, "left") {
		x = r.X
	}
	if strings.Contains(pos, "right") {
		x = r.X + r.W
	}
	if strings.Contains(pos, "top") {
		y = r.Y
	}
	if strings.Contains(pos, "bottom") {
		y = r.Y + r.H
	}
	return x, y
}

// HandleRect is the hit area of a handle in canvas coordinates.
func HandleRect(pos string, r Rect) Rect {
	x, y := handlePoint(pos, r)
	return Rect{X: x - HandleSize/2, Y: y - HandleSize/2, W: HandleSize, H: HandleSize}
}

func geometry(c component.Component) Rect {
	a := c.Attrs()
	return Rect{X: a.Left, Y: a.Top, W: a.Width, H: a.Height}
}

// refreshHandles puts the eight handles on the primary selection and
// removes them everywhere else.
func (s *Surface) refreshHandles() {
	for _, h := range dom.FindAllClass(s.canvas, "resize-handle") {
		dom.Detach(h)
	}
	if !s.ed.EditMode() {
		return
	}
	primary, ok := s.ed.Primary()
	if !ok || primary.Attrs().Locked {
		return
	}
	n := primary.Node()
	if n == nil || n.Parent != s.canvas {
		return
	}
	for _, pos := range Handles {
		n.AppendChild(dom.Element("div", "class", "resize-handle resize-"+pos, "data-handle", pos))
	}
}

// componentAt returns the component owning node n in the canvas.
func (s *Surface) componentAt(n *html.Node) (component.Component, *html.Node) {
	el := dom.Closest(n, "editor-component")
	if el == nil || !dom.Contains(s.canvas, el) {
		return nil, nil
	}
	id, _ := dom.Attr(el, "component-id")
	c, ok := s.ed.Component(id)
	if !ok {
		return nil, nil
	}
	return c, el
}

// PointerDown starts a drag, resize or palette gesture. It reports whether
// the pointer is now captured.
func (s *Surface) PointerDown(ev PointerEvent) bool {
	if !s.ed.EditMode() || s.gesture != nil {
		return false
	}
	target := s.target(ev)
	if target == nil {
		return false
	}
	if item := dom.Closest(target, "component"); item != nil && dom.Contains(s.palette, item) {
		kind, _ := dom.Attr(item, "data-type")
		s.startPalette(component.Kind(kind), ev)
		return true
	}
	c, el := s.componentAt(target)
	if c == nil || c.Attrs().Locked {
		return false
	}
	if dom.HasClass(target, "resize-handle") {
		return s.startResize(c, el, target, ev)
	}
	return s.startDrag(c, el, ev)
}

func (s *Surface) startDrag(c component.Component, el *html.Node, ev PointerEvent) bool {
	if !s.ed.IsSelected(c.ID()) {
		s.ed.SelectComponent(c.ID(), ev.Shift)
	}
	before, err := s.ed.BeginUpdate(c.ID())
	if err != nil {
		s.logger.Warn("drag start", zap.Error(err))
		return false
	}
	s.gesture = &gesture{kind: gestureDrag, id: c.ID(), start: before, x: ev.X, y: ev.Y, origin: geometry(c)}
	dom.AddClass(el, "dragging")
	return true
}

func (s *Surface) startResize(c component.Component, el, handle *html.Node, ev PointerEvent) bool {
	pos, _ := dom.Attr(handle, "data-handle")
	before, err := s.ed.BeginUpdate(c.ID())
	if err != nil {
		s.logger.Warn("resize start", zap.Error(err))
		return false
	}
	s.gesture = &gesture{kind: gestureResize, id: c.ID(), handle: pos, start: before, x: ev.X, y: ev.Y, origin: geometry(c)}
	dom.AddClass(el, "resizing")
	return true
}

func (s *Surface) startPalette(kind component.Kind, ev PointerEvent) {
	s.ghost = dom.Element("div", "class", "temp-component")
	dom.SetText(s.ghost, string(kind))
	dom.SetStyle(s.ghost, "position", "absolute")
	dom.SetStyle(s.ghost, "z-index", "1000")
	dom.SetStyle(s.ghost, "opacity", "0.8")
	dom.SetStyle(s.ghost, "pointer-events", "none")
	s.moveGhost(ev.X, ev.Y)
	s.root.AppendChild(s.ghost)
	s.gesture = &gesture{kind: gesturePalette, palette: kind, x: ev.X, y: ev.Y}
}

func (s *Surface) moveGhost(x, y float64) {
	dom.SetStyle(s.ghost, "left", pxs(x))
	dom.SetStyle(s.ghost, "top", pxs(y))
}

// PointerMove feeds the captured gesture. Moves are previewed, not logged.
func (s *Surface) PointerMove(ev PointerEvent) bool {
	g := s.gesture
	if g == nil {
		return false
	}
	dx, dy := ev.X-g.x, ev.Y-g.y
	var err error
	switch g.kind {
	case gestureDrag:
		err = s.ed.PreviewUpdate(g.id, component.Patch{
			Left: component.Ptr(g.origin.X + dx),
			Top:  component.Ptr(g.origin.Y + dy),
		})
	case gestureResize:
		r := ResizeRect(g.handle, g.origin, dx, dy)
		err = s.ed.PreviewUpdate(g.id, component.Patch{
			Left: &r.X, Top: &r.Y, Width: &r.W, Height: &r.H,
		})
	case gesturePalette:
		s.moveGhost(ev.X, ev.Y)
	}
	if err != nil {
		s.logger.Warn("gesture update", zap.String("id", g.id), zap.Error(err))
	}
	return true
}

// PointerUp ends the captured gesture and logs its net change. The capture
// is released whatever happens to the commit.
func (s *Surface) PointerUp(ev PointerEvent) bool {
	g := s.gesture
	if g == nil {
		return false
	}
	s.gesture = nil

	switch g.kind {
	case gestureDrag, gestureResize:
		if c, ok := s.ed.Component(g.id); ok && c.Node() != nil {
			dom.RemoveClass(c.Node(), "dragging")
			dom.RemoveClass(c.Node(), "resizing")
		}
		if _, err := s.ed.CommitUpdate(g.id, g.start); err != nil {
			s.logger.Warn("gesture commit", zap.String("id", g.id), zap.Error(err))
		}
	case gesturePalette:
		dom.Detach(s.ghost)
		s.ghost = nil
		if !s.canvasRect.Contains(ev.X, ev.Y) {
			return true
		}
		x, y := s.toCanvas(ev.X, ev.Y)
		if _, err := s.AddComponent(g.palette, component.Patch{Left: &x, Top: &y}); err != nil {
			s.logger.Warn("palette drop", zap.String("type", string(g.palette)), zap.Error(err))
		}
	}
	return true
}

// Capturing reports whether a gesture holds the pointer.
func (s *Surface) Capturing() bool { return s.gesture != nil }

func pxs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
