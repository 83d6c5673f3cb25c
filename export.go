package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

func withExtension(name string, op FileOperation) string {
	ext := map[FileOperation]string{
		FileOpSavePNG:      ".png",
		FileOpSaveHTML:     ".html",
		FileOpSaveMarkdown: ".md",
		FileOpSaveText:     ".txt",
	}[op]
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

func (m *model) export(path string) error {
	switch m.fileOp {
	case FileOpSavePNG:
		return ExportToPNG(path, m.snapshots())
	case FileOpSaveHTML:
		return m.exportHTML(path)
	case FileOpSaveMarkdown:
		return m.exportMarkdown(path)
	default:
		return m.exportVisualTXT(path)
	}
}

func (m *model) snapshots() []component.Snapshot {
	comps := m.page.State().Components()
	out := make([]component.Snapshot, len(comps))
	for i, c := range comps {
		out[i] = c.Snapshot()
	}
	return out
}

// pageHTML renders the canvas as a standalone page. Editor decoration is
// stripped from the copy.
func (m *model) pageHTML() (string, error) {
	canvas := cloneNode(m.page.Surface().Canvas())
	for _, h := range dom.FindAllClass(canvas, "resize-handle") {
		dom.Detach(h)
	}
	dom.Walk(canvas, func(n *html.Node) bool {
		dom.RemoveClass(n, "selected")
		return true
	})

	body := dom.Element("body")
	title := dom.Element("h1")
	title.AppendChild(dom.Text("@" + m.username))
	body.AppendChild(title)
	body.AppendChild(canvas)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	if err := html.Render(&buf, body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	c.Attr = append(c.Attr, n.Attr...)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

func (m *model) exportHTML(path string) error {
	page, err := m.pageHTML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(page), 0o644)
}

func (m *model) exportMarkdown(path string) error {
	page, err := m.pageHTML()
	if err != nil {
		return err
	}
	md, err := mdConverter.ConvertString(page)
	if err != nil {
		return fmt.Errorf("convert to markdown: %w", err)
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(md)+"\n"), 0o644)
}

// exportVisualTXT writes the page as it appears on screen, without the
// toolbar, side panel and status line.
func (m *model) exportVisualTXT(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	sc := NewCanvas(max(m.width, 1), max(m.height, 3))
	m.syncLayout()
	m.drawPage(sc, false)
	for _, line := range sc.Lines()[1 : sc.height-1] {
		fmt.Fprintln(file, line)
	}
	return nil
}
