package persist

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"pagesmith/internal/component"
	"pagesmith/internal/editor"
)

var strict = bluemonday.StrictPolicy()

// clean strips markup from user text. The policy escapes entities, which
// the renderer would escape again, so they are decoded afterwards.
func clean(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

// cleanURL keeps http, https, data and relative image sources.
func cleanURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "data":
		return s
	}
	return ""
}

// cleanColor strips markup and falls back to def when what is left is not a
// single colour value.
func cleanColor(s, def string) string {
	s = clean(s)
	if !component.ValidColor(s) {
		return def
	}
	return s
}

// Sanitize returns a copy of doc with markup removed from every user
// supplied string and unsafe image sources dropped.
func Sanitize(doc *editor.Document) *editor.Document {
	out := &editor.Document{
		Components:  make(map[string]component.Snapshot, doc.Len()),
		SelectedIDs: []string{},
		EditMode:    doc.EditMode,
	}
	for key, s := range doc.Components {
		key = clean(key)
		s.ID = clean(s.ID)
		s.Type = component.Kind(clean(string(s.Type)))
		def := component.Defaults(s.Type)
		s.BackgroundColor = cleanColor(s.BackgroundColor, def.BackgroundColor)
		s.BorderColor = cleanColor(s.BorderColor, def.BorderColor)
		s.BoxShadow = clean(s.BoxShadow)
		if !component.ValidStyleValue(s.BoxShadow) {
			s.BoxShadow = def.BoxShadow
		}
		s.Title = clean(s.Title)
		s.Content = clean(s.Content)
		s.HeaderBGColor = cleanColor(s.HeaderBGColor, def.HeaderBGColor)
		s.HeaderTextColor = cleanColor(s.HeaderTextColor, def.HeaderTextColor)
		s.ContentColor = cleanColor(s.ContentColor, def.ContentColor)
		s.Src = cleanURL(s.Src)
		s.Alt = clean(s.Alt)
		if !component.ValidFit(s.ObjectFit) && s.Type == component.KindImage {
			s.ObjectFit = component.FitContain
		}
		out.Components[key] = s
	}
	for _, id := range doc.SelectedIDs {
		out.SelectedIDs = append(out.SelectedIDs, clean(id))
	}
	return out
}
