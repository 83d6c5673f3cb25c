package surface

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

// PointerEvent is a pointer action at page coordinates X, Y. A nil Target
// is resolved with HitTest.
type PointerEvent struct {
	X, Y   float64
	Target *html.Node
	Shift  bool
}

// KeyEvent is a key press. InInput is set while focus is in a text input.
type KeyEvent struct {
	Key     string
	InInput bool
}

type placement struct {
	node *html.Node
	rect Rect
}

// SetCanvasRect tells the surface where the canvas sits on the page.
func (s *Surface) SetCanvasRect(r Rect) { s.canvasRect = r }

func (s *Surface) CanvasRect() Rect { return s.canvasRect }

// SetScroll records how far the canvas content is scrolled.
func (s *Surface) SetScroll(x, y float64) {
	s.scrollX, s.scrollY = x, y
}

// Place records where the host drew a node outside the canvas, such as a
// toolbar button or a palette item, so HitTest can find it. Later
// placements win over earlier ones.
func (s *Surface) Place(n *html.Node, r Rect) {
	s.placed = append(s.placed, placement{node: n, rect: r})
}

func (s *Surface) ClearPlacements() { s.placed = s.placed[:0] }

func (s *Surface) toCanvas(x, y float64) (float64, float64) {
	return x - s.canvasRect.X + s.scrollX, y - s.canvasRect.Y + s.scrollY
}

// HitTest returns the topmost node under the page point: a placed node, a
// resize handle of the primary selection, a visible component or the
// canvas. It returns nil outside all of them.
func (s *Surface) HitTest(x, y float64) *html.Node {
	for i := len(s.placed) - 1; i >= 0; i-- {
		if p := s.placed[i]; p.rect.Contains(x, y) && dom.Contains(s.root, p.node) {
			return p.node
		}
	}
	if !s.canvasRect.Contains(x, y) {
		return nil
	}
	lx, ly := s.toCanvas(x, y)

	if primary, ok := s.ed.Primary(); ok && primary.Node() != nil {
		g := geometry(primary)
		for _, h := range dom.FindAllClass(primary.Node(), "resize-handle") {
			pos, _ := dom.Attr(h, "data-handle")
			if HandleRect(pos, g).Contains(lx, ly) {
				return h
			}
		}
	}
	if c := s.topmost(lx, ly); c != nil {
		return c.Node()
	}
	return s.canvas
}

// topmost picks the rendered, visible component under a canvas point with
// the highest z-index, preferring later components on ties.
func (s *Surface) topmost(x, y float64) component.Component {
	var best component.Component
	for _, c := range slices.Backward(s.ed.Components()) {
		a := c.Attrs()
		if c.Node() == nil || !a.Visible || !geometry(c).Contains(x, y) {
			continue
		}
		if best == nil || a.ZIndex > best.Attrs().ZIndex {
			best = c
		}
	}
	return best
}

func (s *Surface) target(ev PointerEvent) *html.Node {
	if ev.Target != nil {
		return ev.Target
	}
	return s.HitTest(ev.X, ev.Y)
}

// Click handles a press and release on the same spot: buttons, panel
// toggles, component selection and clearing the selection from the empty
// canvas.
func (s *Surface) Click(ctx context.Context, ev PointerEvent) error {
	target := s.target(ev)
	if target == nil {
		return nil
	}
	if b := closestTag(target, "button"); b != nil && dom.Contains(s.root, b) {
		return s.Press(ctx, dom.ID(b))
	}
	if t := dom.Closest(target, "image-panel-close"); t != nil {
		s.CloseImagePanel()
		return nil
	}
	if t := dom.Closest(target, "panel-toggle"); t != nil {
		panel, _ := dom.Attr(t, "data-panel")
		s.TogglePanel(panel)
		return nil
	}
	if !s.ed.EditMode() {
		return nil
	}
	if target == s.canvas {
		s.ed.ClearSelection()
		return nil
	}
	if c, _ := s.componentAt(target); c != nil && !c.Attrs().Locked {
		s.ed.SelectComponent(c.ID(), ev.Shift)
	}
	return nil
}

func closestTag(n *html.Node, tag string) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

// KeyDown handles editor shortcuts. Delete and Backspace remove the
// selection after confirmation, only in edit mode and never while typing.
func (s *Surface) KeyDown(ev KeyEvent) bool {
	if !s.ed.EditMode() || ev.InInput {
		return false
	}
	switch ev.Key {
	case "Delete", "Backspace":
		var ids []string
		for _, c := range s.ed.SelectedComponents() {
			if !c.Attrs().Locked {
				ids = append(ids, c.ID())
			}
		}
		if len(ids) == 0 {
			return false
		}
		s.ask("Are you sure you want to delete selected components?", func() {
			for _, id := range ids {
				if c, ok := s.ed.Component(id); !ok || c.Attrs().Locked {
					continue
				}
				if err := s.ed.RemoveComponent(id); err != nil {
					s.logger.Warn("delete selection", zap.String("id", id), zap.Error(err))
				}
			}
		})
		return true
	}
	return false
}
