package component

import (
	"golang.org/x/net/html"

	"pagesmith/internal/dom"
)

// Card is a box with a title header and a text body.
type Card struct {
	Base
	CardFields
}

func NewCard(s Snapshot) *Card {
	s.Type = KindCard
	return &Card{Base: Base{Common: s.Common}, CardFields: s.CardFields}
}

func (c *Card) Render(parent *html.Node) *html.Node {
	n := c.renderFrame(parent)
	c.writeBody(n)
	return n
}

func (c *Card) Configure(p Patch) {
	c.configureFrame(p)
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.HeaderBGColor != nil {
		c.HeaderBGColor = *p.HeaderBGColor
	}
	if p.HeaderTextColor != nil {
		c.HeaderTextColor = *p.HeaderTextColor
	}
	if p.ContentColor != nil {
		c.ContentColor = *p.ContentColor
	}

	n := c.node
	if n == nil || n.Parent == nil {
		return
	}
	header := dom.FindClass(n, "card-header")
	title := dom.FindClass(n, "card-title")
	body := dom.FindClass(n, "card-content")
	if title != nil {
		if p.Title != nil {
			dom.SetText(title, c.Title)
		}
		if p.HeaderTextColor != nil {
			dom.SetStyle(title, "color", c.HeaderTextColor)
		}
	}
	if header != nil {
		if p.HeaderBGColor != nil {
			dom.SetStyle(header, "background-color", c.HeaderBGColor)
		}
		if p.HeaderTextColor != nil {
			dom.SetStyle(header, "color", c.HeaderTextColor)
		}
		if p.BorderColor != nil {
			dom.SetStyle(header, "border-bottom", "1px solid "+c.BorderColor)
		}
	}
	if body != nil {
		if p.Content != nil {
			if para := body.FirstChild; para != nil {
				dom.SetText(para, c.Content)
			}
		}
		if p.ContentColor != nil {
			dom.SetStyle(body, "color", c.ContentColor)
		}
	}
}

func (c *Card) Snapshot() Snapshot {
	return Snapshot{Common: c.Common, CardFields: c.CardFields}
}

func (c *Card) DisplayChanged(p Patch) bool {
	return p.Title != nil || p.Content != nil || p.HeaderBGColor != nil ||
		p.HeaderTextColor != nil || p.ContentColor != nil
}

// writeBody builds the header and content blocks on first render and
// refreshes them afterwards. Other children, such as resize handles, are
// left in place.
func (c *Card) writeBody(n *html.Node) {
	header := dom.FindClass(n, "card-header")
	if header == nil {
		header = dom.Element("div", "class", "card-header")
		header.AppendChild(dom.Element("h2", "class", "card-title"))
		header.AppendChild(dom.Element("div", "class", "card-controls"))
		body := dom.Element("div", "class", "card-content")
		body.AppendChild(dom.Element("p"))
		n.InsertBefore(body, n.FirstChild)
		n.InsertBefore(header, body)
	}
	dom.SetStyle(header, "background-color", c.HeaderBGColor)
	dom.SetStyle(header, "color", c.HeaderTextColor)
	dom.SetStyle(header, "border-bottom", "1px solid "+c.BorderColor)
	dom.SetStyle(header, "padding", "10px")
	dom.SetStyle(header, "display", "flex")
	dom.SetStyle(header, "align-items", "center")
	dom.SetStyle(header, "justify-content", "space-between")

	title := dom.FindClass(header, "card-title")
	dom.SetText(title, c.Title)
	dom.SetStyle(title, "color", c.HeaderTextColor)

	body := dom.FindClass(n, "card-content")
	dom.SetStyle(body, "color", c.ContentColor)
	dom.SetText(body.FirstChild, c.Content)
}
