package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Decl is one inline style declaration.
type Decl struct {
	Prop  string
	Value string
}

// ParseStyle splits an inline style attribute into declarations, keeping
// their order. Malformed entries are dropped.
func ParseStyle(s string) []Decl {
	var out []Decl
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		out = append(out, Decl{Prop: prop, Value: value})
	}
	return out
}

func FormatStyle(decls []Decl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Prop+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

func Styles(n *html.Node) []Decl {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// Style returns the inline value of prop, or "" when unset.
func Style(n *html.Node, prop string) string {
	for _, d := range Styles(n) {
		if d.Prop == prop {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets one inline declaration, leaving every other one untouched.
// An empty value removes the declaration.
func SetStyle(n *html.Node, prop, value string) {
	decls := Styles(n)
	idx := -1
	for i, d := range decls {
		if d.Prop == prop {
			idx = i
			break
		}
	}
	switch {
	case value == "" && idx >= 0:
		decls = append(decls[:idx], decls[idx+1:]...)
	case value == "":
		return
	case idx >= 0:
		decls[idx].Value = value
	default:
		decls = append(decls, Decl{Prop: prop, Value: value})
	}
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", FormatStyle(decls))
}
