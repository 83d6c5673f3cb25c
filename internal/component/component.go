// Package component models the visual entities placed on a profile page.
//
// Every variant (Base, Card, Image) owns its geometry, style and
// type-specific fields, renders itself into an html node tree, applies
// partial patches and produces a Snapshot for storage. Variants are looked up
// by their type tag, so new ones plug in through Register without touching
// the editor.
package component

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/net/html"

	"pagesmith/internal/idgen"
)

// Kind is the type discriminator stored in snapshots.
type Kind string

const (
	KindBase  Kind = "base"
	KindCard  Kind = "card"
	KindImage Kind = "image"
)

// MinSize is the smallest width or height a resize can produce.
const MinSize = 20

// Component is a placed visual element.
type Component interface {
	ID() string
	Kind() Kind
	// Attrs exposes the live common attributes. Callers must go through
	// Configure to change them.
	Attrs() *Common
	// Node is the rendered element, nil before the first render or after
	// Hide.
	Node() *html.Node
	// Render creates or updates the element under parent. The element is
	// reused when it is still attached to parent.
	Render(parent *html.Node) *html.Node
	// Configure merges p and patches only the touched parts of the element.
	Configure(p Patch)
	// Hide detaches and releases the element.
	Hide()
	SetSelected(on bool)
	Snapshot() Snapshot
	// DisplayChanged reports whether p touches variant fields whose markup
	// has to be rebuilt.
	DisplayChanged(p Patch) bool
}

// Factory builds a variant from its snapshot.
type Factory func(Snapshot) Component

var (
	mu       sync.RWMutex
	registry = map[Kind]Factory{
		KindBase:  func(s Snapshot) Component { return NewBase(s) },
		KindCard:  func(s Snapshot) Component { return NewCard(s) },
		KindImage: func(s Snapshot) Component { return NewImage(s) },
	}
)

// Register installs the factory for kind, replacing any previous one.
func Register(kind Kind, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = f
}

// FromSnapshot rebuilds the variant named by s.Type. Unknown tags fall back
// to the base variant and keep their tag.
func FromSnapshot(s Snapshot) Component {
	if s.ID == "" {
		s.ID = idgen.New()
	}
	if s.Type == "" {
		s.Type = KindBase
	}
	mu.RLock()
	f, ok := registry[s.Type]
	mu.RUnlock()
	if !ok {
		return NewBase(s)
	}
	return f(s)
}

// New creates a component of kind with a fresh id and p applied over the
// defaults.
func New(kind Kind, p Patch) (Component, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := Defaults(kind)
	s.ID = idgen.New()
	c := FromSnapshot(s)
	c.Configure(p)
	return c, nil
}

// Rerender renders c again into the parent it is attached to. It reports
// false when c has no attached element.
func Rerender(c Component) bool {
	n := c.Node()
	if n == nil || n.Parent == nil {
		return false
	}
	c.Render(n.Parent)
	return true
}

// Label is a short human description used by hosts.
func Label(c Component) string {
	s := c.Snapshot()
	switch s.Type {
	case KindCard:
		return fmt.Sprintf("card %q", s.Title)
	case KindImage:
		return fmt.Sprintf("image %q", s.Alt)
	}
	return string(s.Type)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
