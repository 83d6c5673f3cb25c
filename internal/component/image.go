package component

import (
	"golang.org/x/net/html"

	"pagesmith/internal/dom"
)

// Image shows a picture scaled by its object-fit mode.
type Image struct {
	Base
	ImageFields
}

func NewImage(s Snapshot) *Image {
	s.Type = KindImage
	return &Image{Base: Base{Common: s.Common}, ImageFields: s.ImageFields}
}

func (m *Image) Render(parent *html.Node) *html.Node {
	n := m.renderFrame(parent)
	img := m.img()
	if img == nil {
		img = dom.Element("img")
		n.InsertBefore(img, n.FirstChild)
	}
	dom.SetAttr(img, "src", m.Src)
	dom.SetAttr(img, "alt", m.Alt)
	dom.SetStyle(img, "width", "100%")
	dom.SetStyle(img, "height", "100%")
	dom.SetStyle(img, "object-fit", m.ObjectFit)
	return n
}

func (m *Image) Configure(p Patch) {
	m.configureFrame(p)
	if p.Src != nil {
		m.Src = *p.Src
	}
	if p.Alt != nil {
		m.Alt = *p.Alt
	}
	if p.ObjectFit != nil {
		m.ObjectFit = *p.ObjectFit
	}

	if m.node == nil || m.node.Parent == nil {
		return
	}
	img := m.img()
	if img == nil {
		return
	}
	if p.Src != nil {
		dom.SetAttr(img, "src", m.Src)
	}
	if p.Alt != nil {
		dom.SetAttr(img, "alt", m.Alt)
	}
	if p.ObjectFit != nil {
		dom.SetStyle(img, "object-fit", m.ObjectFit)
	}
}

func (m *Image) Snapshot() Snapshot {
	return Snapshot{Common: m.Common, ImageFields: m.ImageFields}
}

func (m *Image) DisplayChanged(p Patch) bool {
	return p.Src != nil || p.Alt != nil || p.ObjectFit != nil
}

func (m *Image) img() *html.Node {
	if m.node == nil {
		return nil
	}
	for c := m.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" {
			return c
		}
	}
	return nil
}
