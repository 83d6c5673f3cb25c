package main

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

// copySelection puts the selected components on the system clipboard as a
// JSON array of snapshots.
func (m *model) copySelection() (int, error) {
	selected := m.page.State().SelectedComponents()
	if len(selected) == 0 {
		return 0, errors.New("nothing selected")
	}
	snaps := make([]component.Snapshot, len(selected))
	for i, c := range selected {
		snaps[i] = c.Snapshot()
	}
	data, err := json.Marshal(snaps)
	if err != nil {
		return 0, err
	}
	return len(snaps), clipboard.WriteAll(string(data))
}

// pasteClipboard adds copies of the snapshots on the clipboard, offset from
// the originals.
func (m *model) pasteClipboard() (int, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return 0, err
	}
	snaps, err := parseSnapshots(text)
	if err != nil {
		return 0, err
	}
	s := m.page.Surface()
	for i, snap := range snaps {
		if _, err := s.Duplicate(snap); err != nil {
			m.report(err)
			return i, err
		}
	}
	return len(snaps), nil
}

func parseSnapshots(text string) ([]component.Snapshot, error) {
	text = strings.TrimSpace(text)
	var snaps []component.Snapshot
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &snaps); err != nil {
			return nil, err
		}
	} else {
		var one component.Snapshot
		if err := json.Unmarshal([]byte(text), &one); err != nil {
			return nil, errors.New("clipboard does not hold components")
		}
		snaps = append(snaps, one)
	}
	if len(snaps) == 0 {
		return nil, errors.New("clipboard does not hold components")
	}
	return snaps, nil
}

// cleanClipboardText flattens pasted markup to its text and keeps only
// printable runes, tabs and newlines.
func cleanClipboardText(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		if doc, err := html.Parse(strings.NewReader(text)); err == nil {
			text = dom.TextContent(doc)
		}
	}
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
}
