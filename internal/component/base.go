package component

import (
	"strconv"

	"golang.org/x/net/html"

	"pagesmith/internal/dom"
)

// Base is the plain styled box every variant builds on.
type Base struct {
	Common
	node *html.Node
}

func NewBase(s Snapshot) *Base {
	return &Base{Common: s.Common}
}

func (b *Base) ID() string       { return b.Common.ID }
func (b *Base) Kind() Kind       { return b.Type }
func (b *Base) Attrs() *Common   { return &b.Common }
func (b *Base) Node() *html.Node { return b.node }

func (b *Base) Render(parent *html.Node) *html.Node {
	return b.renderFrame(parent)
}

func (b *Base) Configure(p Patch) {
	b.configureFrame(p)
}

func (b *Base) Snapshot() Snapshot {
	return Snapshot{Common: b.Common}
}

func (b *Base) DisplayChanged(Patch) bool { return false }

func (b *Base) Hide() {
	dom.Detach(b.node)
	b.node = nil
}

func (b *Base) SetSelected(on bool) {
	b.Selected = on
	if b.node != nil {
		dom.ToggleClass(b.node, "selected", on)
	}
}

func (b *Base) renderFrame(parent *html.Node) *html.Node {
	if b.node != nil && b.node.Parent == parent {
		b.writeFrame(b.node)
		return b.node
	}
	dom.Detach(b.node)

	n := dom.Element("div",
		"class", "editor-component "+string(b.Type),
		"component-id", b.Common.ID,
		"component-type", string(b.Type),
	)
	b.writeFrame(n)
	b.node = n
	parent.AppendChild(n)
	return n
}

func (b *Base) writeFrame(n *html.Node) {
	dom.SetStyle(n, "position", "absolute")
	dom.SetStyle(n, "left", px(b.Left))
	dom.SetStyle(n, "top", px(b.Top))
	dom.SetStyle(n, "width", px(b.Width))
	dom.SetStyle(n, "height", px(b.Height))
	dom.SetStyle(n, "z-index", strconv.Itoa(b.ZIndex))
	dom.SetStyle(n, "background-color", b.BackgroundColor)
	dom.SetStyle(n, "border-color", b.BorderColor)
	dom.SetStyle(n, "border-radius", px(b.BorderRadius))
	dom.SetStyle(n, "border-width", px(b.BorderWidth))
	dom.SetStyle(n, "border-style", "solid")
	dom.SetStyle(n, "box-shadow", b.BoxShadow)
	dom.SetStyle(n, "opacity", num(b.Opacity))
	dom.SetStyle(n, "display", display(b.Visible))
	dom.ToggleClass(n, "selected", b.Selected)
}

// configureFrame merges the common fields of p and restyles only what p
// touched.
func (b *Base) configureFrame(p Patch) {
	if p.Left != nil {
		b.Left = *p.Left
	}
	if p.Top != nil {
		b.Top = *p.Top
	}
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
	if p.ZIndex != nil {
		b.ZIndex = *p.ZIndex
	}
	if p.BackgroundColor != nil {
		b.BackgroundColor = *p.BackgroundColor
	}
	if p.BorderColor != nil {
		b.BorderColor = *p.BorderColor
	}
	if p.BorderRadius != nil {
		b.BorderRadius = *p.BorderRadius
	}
	if p.BorderWidth != nil {
		b.BorderWidth = *p.BorderWidth
	}
	if p.BoxShadow != nil {
		b.BoxShadow = *p.BoxShadow
	}
	if p.Opacity != nil {
		b.Opacity = *p.Opacity
	}
	if p.Visible != nil {
		b.Visible = *p.Visible
	}
	if p.Locked != nil {
		b.Locked = *p.Locked
	}

	n := b.node
	if n == nil || n.Parent == nil {
		return
	}
	if p.Left != nil {
		dom.SetStyle(n, "left", px(b.Left))
	}
	if p.Top != nil {
		dom.SetStyle(n, "top", px(b.Top))
	}
	if p.Width != nil {
		dom.SetStyle(n, "width", px(b.Width))
	}
	if p.Height != nil {
		dom.SetStyle(n, "height", px(b.Height))
	}
	if p.ZIndex != nil {
		dom.SetStyle(n, "z-index", strconv.Itoa(b.ZIndex))
	}
	if p.BackgroundColor != nil {
		dom.SetStyle(n, "background-color", b.BackgroundColor)
	}
	if p.BorderColor != nil {
		dom.SetStyle(n, "border-color", b.BorderColor)
	}
	if p.BorderRadius != nil {
		dom.SetStyle(n, "border-radius", px(b.BorderRadius))
	}
	if p.BorderWidth != nil {
		dom.SetStyle(n, "border-width", px(b.BorderWidth))
	}
	if p.BoxShadow != nil {
		dom.SetStyle(n, "box-shadow", b.BoxShadow)
	}
	if p.Opacity != nil {
		dom.SetStyle(n, "opacity", num(b.Opacity))
	}
	if p.Visible != nil {
		dom.SetStyle(n, "display", display(b.Visible))
	}
}

func display(visible bool) string {
	if visible {
		return "block"
	}
	return "none"
}
