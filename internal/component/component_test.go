package component

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"pagesmith/internal/dom"
)

func TestDefaultsFillMissingKeys(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","type":"card","left":10}`), &s))

	assert.Equal(t, "c1", s.ID)
	assert.Equal(t, KindCard, s.Type)
	assert.Equal(t, 10.0, s.Left)
	assert.Equal(t, 300.0, s.Width)
	assert.Equal(t, 1.0, s.Opacity)
	assert.True(t, s.Visible)
	assert.Equal(t, "Custom Card", s.Title)
	assert.Equal(t, "#f0f0f0", s.HeaderBGColor)
}

func TestSnapshotJSONOnlyWritesOwnVariantKeys(t *testing.T) {
	card := Defaults(KindCard)
	card.ID = "c1"
	data, err := json.Marshal(card)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "title")
	assert.Contains(t, raw, "headerBGColor")
	assert.NotContains(t, raw, "src")
	assert.Equal(t, "card", raw["type"])
	assert.Contains(t, raw, "zIndex")

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, card, back)
}

func TestEmptyCardTitleSurvivesRoundTrip(t *testing.T) {
	card := Defaults(KindCard)
	card.ID = "c1"
	card.Title = ""
	data, err := json.Marshal(card)
	require.NoError(t, err)

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "", back.Title)
}

func TestFromSnapshotDispatchesOnType(t *testing.T) {
	assert.IsType(t, &Card{}, FromSnapshot(Defaults(KindCard)))
	assert.IsType(t, &Image{}, FromSnapshot(Defaults(KindImage)))
	assert.IsType(t, &Base{}, FromSnapshot(Defaults(KindBase)))
}

func TestUnknownTypeFallsBackToBase(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"id":"legacy","type":"default","width":50}`), &s))

	c := FromSnapshot(s)
	require.IsType(t, &Base{}, c)
	assert.Equal(t, Kind("default"), c.Kind())
	assert.Equal(t, Kind("default"), c.Snapshot().Type)
	assert.Equal(t, 50.0, c.Attrs().Width)
}

func TestFromSnapshotAssignsMissingID(t *testing.T) {
	c := FromSnapshot(Snapshot{})
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, KindBase, c.Kind())
}

func TestRegisterNewVariant(t *testing.T) {
	const kind Kind = "banner"
	Register(kind, func(s Snapshot) Component { return NewBase(s) })
	defer func() {
		mu.Lock()
		delete(registry, kind)
		mu.Unlock()
	}()

	s := Defaults(kind)
	s.ID = "b1"
	c := FromSnapshot(s)
	assert.Equal(t, kind, c.Kind())
}

func TestRenderReusesNodeUnderSameParent(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindBase, Patch{Left: Ptr(5.0)})
	require.NoError(t, err)

	first := c.Render(parent)
	assert.Equal(t, "5px", dom.Style(first, "left"))
	assert.Equal(t, c.ID(), attr(t, first, "component-id"))

	c.Attrs().Left = 40
	second := c.Render(parent)
	assert.Same(t, first, second)
	assert.Equal(t, "40px", dom.Style(second, "left"))
	assert.Equal(t, 1, countChildren(parent))
}

func TestRenderMovesToNewParent(t *testing.T) {
	a, b := dom.Element("div"), dom.Element("div")
	c, err := New(KindCard, Patch{})
	require.NoError(t, err)

	first := c.Render(a)
	second := c.Render(b)
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, countChildren(a))
	assert.Equal(t, 1, countChildren(b))
}

func TestConfigurePatchesOnlyTouchedStyles(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindBase, Patch{})
	require.NoError(t, err)
	n := c.Render(parent)

	// Poke a style by hand; a patch that does not touch it must leave it.
	dom.SetStyle(n, "background-color", "hand-edited")
	c.Configure(Patch{Width: Ptr(120.0), Visible: Ptr(false)})

	assert.Equal(t, "120px", dom.Style(n, "width"))
	assert.Equal(t, "none", dom.Style(n, "display"))
	assert.Equal(t, "hand-edited", dom.Style(n, "background-color"))
	assert.Equal(t, 120.0, c.Attrs().Width)
}

func TestConfigureWithoutNodeOnlyUpdatesFields(t *testing.T) {
	c, err := New(KindImage, Patch{})
	require.NoError(t, err)
	c.Configure(Patch{Src: Ptr("a.png"), ObjectFit: Ptr(FitCover)})

	s := c.Snapshot()
	assert.Equal(t, "a.png", s.Src)
	assert.Equal(t, FitCover, s.ObjectFit)
	assert.Nil(t, c.Node())
}

func TestCardRendersHeaderAndContent(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindCard, Patch{Title: Ptr("Picks"), Content: Ptr("Lakers -3")})
	require.NoError(t, err)
	n := c.Render(parent)

	assert.Equal(t, "Picks", dom.TextContent(dom.FindClass(n, "card-title")))
	assert.Equal(t, "Lakers -3", dom.TextContent(dom.FindClass(n, "card-content")))

	handle := dom.Element("div", "class", "resize-handle")
	n.AppendChild(handle)
	c.Configure(Patch{Title: Ptr("Bets"), HeaderBGColor: Ptr("#111111")})
	c.Render(parent)

	assert.Equal(t, "Bets", dom.TextContent(dom.FindClass(n, "card-title")))
	assert.Equal(t, "#111111", dom.Style(dom.FindClass(n, "card-header"), "background-color"))
	assert.Same(t, n, handle.Parent, "re-render must keep foreign children")
	assert.Len(t, dom.FindAllClass(n, "card-header"), 1)
}

func TestImageRendersImgWithFit(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindImage, Patch{Src: Ptr("x.png"), Alt: Ptr("logo"), ObjectFit: Ptr(FitFill)})
	require.NoError(t, err)
	n := c.Render(parent)

	img := dom.Find(n, func(x *html.Node) bool { return x.Data == "img" })
	require.NotNil(t, img)
	assert.Equal(t, "x.png", attr(t, img, "src"))
	assert.Equal(t, "logo", attr(t, img, "alt"))
	assert.Equal(t, FitFill, dom.Style(img, "object-fit"))

	c.Configure(Patch{Alt: Ptr("crest")})
	assert.Equal(t, "crest", attr(t, img, "alt"))
}

func TestHideDetachesButKeepsState(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindCard, Patch{})
	require.NoError(t, err)
	c.Render(parent)

	c.Hide()
	assert.Nil(t, c.Node())
	assert.Equal(t, 0, countChildren(parent))
	assert.Equal(t, "Custom Card", c.Snapshot().Title)
	assert.False(t, Rerender(c))
}

func TestSetSelectedTogglesClass(t *testing.T) {
	parent := dom.Element("div")
	c, err := New(KindBase, Patch{})
	require.NoError(t, err)
	n := c.Render(parent)

	c.SetSelected(true)
	assert.True(t, dom.HasClass(n, "selected"))
	assert.True(t, c.Snapshot().Selected)
	c.SetSelected(false)
	assert.False(t, dom.HasClass(n, "selected"))
}

func TestDisplayChanged(t *testing.T) {
	card := FromSnapshot(Defaults(KindCard))
	img := FromSnapshot(Defaults(KindImage))
	base := FromSnapshot(Defaults(KindBase))

	assert.True(t, card.DisplayChanged(Patch{Title: Ptr("x")}))
	assert.False(t, card.DisplayChanged(Patch{Left: Ptr(1.0)}))
	assert.True(t, img.DisplayChanged(Patch{Src: Ptr("x")}))
	assert.False(t, img.DisplayChanged(Patch{Title: Ptr("x")}))
	assert.False(t, base.DisplayChanged(Patch{Title: Ptr("x")}))
}

func TestPatchValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Patch
		ok   bool
	}{
		{"empty", Patch{}, true},
		{"geometry", Patch{Left: Ptr(-10.0), Width: Ptr(30.0)}, true},
		{"nan", Patch{Left: Ptr(math.NaN())}, false},
		{"inf", Patch{Height: Ptr(math.Inf(1))}, false},
		{"negative width", Patch{Width: Ptr(-1.0)}, false},
		{"opacity high", Patch{Opacity: Ptr(1.5)}, false},
		{"opacity ok", Patch{Opacity: Ptr(0.0)}, true},
		{"fit", Patch{ObjectFit: Ptr("stretch")}, false},
		{"hex colour", Patch{BackgroundColor: Ptr("#1a2b3c"), BorderColor: Ptr("#fff")}, true},
		{"named colour", Patch{HeaderTextColor: Ptr("rebeccapurple")}, true},
		{"rgba colour", Patch{ContentColor: Ptr("rgba(0, 0, 0, 0.5)")}, true},
		{"bad hex", Patch{BackgroundColor: Ptr("#zzzzzz")}, false},
		{"extra declaration", Patch{BackgroundColor: Ptr("red;display:none")}, false},
		{"shadow", Patch{BoxShadow: Ptr("0 2px 4px rgba(0,0,0,0.1)")}, true},
		{"shadow breakout", Patch{BoxShadow: Ptr("none; position: fixed")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestNewRejectsInvalidPatch(t *testing.T) {
	_, err := New(KindBase, Patch{Opacity: Ptr(2.0)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSnapshotPatchRestoresEverything(t *testing.T) {
	before := Defaults(KindImage)
	before.ID = "i1"
	c := FromSnapshot(before)
	c.Configure(Patch{Left: Ptr(99.0), Src: Ptr("new.png"), Locked: Ptr(true)})
	require.False(t, c.Snapshot().Equal(before))

	c.Configure(before.Patch())
	assert.True(t, c.Snapshot().Equal(before))
}

func attr(t *testing.T, n *html.Node, key string) string {
	t.Helper()
	v, ok := dom.Attr(n, key)
	require.True(t, ok, "missing attribute %s", key)
	return v
}

func countChildren(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}
