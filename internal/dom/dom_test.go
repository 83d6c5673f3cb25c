package dom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestClasses(t *testing.T) {
	n := Element("div", "class", "editor-component card")
	assert.True(t, HasClass(n, "card"))
	assert.False(t, HasClass(n, "selected"))

	AddClass(n, "selected")
	AddClass(n, "selected")
	assert.Equal(t, []string{"editor-component", "card", "selected"}, Classes(n))

	RemoveClass(n, "card")
	assert.Equal(t, []string{"editor-component", "selected"}, Classes(n))

	ToggleClass(n, "dragging", true)
	assert.True(t, HasClass(n, "dragging"))
	ToggleClass(n, "dragging", false)
	assert.False(t, HasClass(n, "dragging"))
}

func TestSetStyleKeepsOtherDeclarations(t *testing.T) {
	n := Element("div", "style", "left: 10px; top: 20px")

	SetStyle(n, "left", "30px")
	SetStyle(n, "opacity", "0.5")
	assert.Equal(t, "left: 30px; top: 20px; opacity: 0.5", mustAttr(t, n, "style"))

	SetStyle(n, "top", "")
	assert.Equal(t, "", Style(n, "top"))
	assert.Equal(t, "30px", Style(n, "left"))
}

func TestParseStyleDropsMalformed(t *testing.T) {
	decls := ParseStyle("left:1px;;junk; Box-Shadow: 0 2px 4px rgba(0,0,0,0.1)")
	require.Len(t, decls, 2)
	assert.Equal(t, Decl{Prop: "box-shadow", Value: "0 2px 4px rgba(0,0,0,0.1)"}, decls[1])
}

func TestDetachAndAppend(t *testing.T) {
	a := Element("div", "id", "a")
	b := Element("div", "id", "b")
	child := Element("span")

	Append(a, child)
	assert.Same(t, a, child.Parent)

	Append(b, child)
	assert.Same(t, b, child.Parent)
	assert.Nil(t, a.FirstChild)

	assert.True(t, Detach(child))
	assert.False(t, Detach(child))
}

func TestLookups(t *testing.T) {
	root := Element("div")
	inner := Append(root, Element("div", "class", "card-header"))
	title := Append(inner, Element("h2", "id", "t", "class", "card-title"))
	SetText(title, "Hello")

	assert.Same(t, title, FindByID(root, "t"))
	assert.Same(t, inner, FindClass(root, "card-header"))
	assert.Same(t, inner, Closest(title, "card-header"))
	assert.True(t, Contains(root, title))
	assert.Equal(t, "Hello", TextContent(root))

	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, root))
	assert.Contains(t, buf.String(), `<h2 id="t" class="card-title">Hello</h2>`)
}

func mustAttr(t *testing.T, n *html.Node, key string) string {
	t.Helper()
	v, ok := Attr(n, key)
	require.True(t, ok, "attribute %s missing", key)
	return v
}
