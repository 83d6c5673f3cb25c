package surface

import (
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

// Toolbar button ids.
const (
	ButtonEditMode     = "edit-mode-toggle"
	ButtonAddComponent = "add-component"
	ButtonAddImage     = "add-image"
	ButtonUndo         = "undo"
	ButtonRedo         = "redo"
	ButtonSave         = "save"
	ButtonDelete       = "delete-component"
	ButtonImageSubmit  = "image-submit"
	ButtonImageClose   = "image-close"
)

// Panel names accepted by TogglePanel.
const (
	PanelComponents = "components"
	PanelProperties = "properties"
)

func button(id, label string, extra ...string) *html.Node {
	class := "editor-button"
	for _, c := range extra {
		class += " " + c
	}
	b := dom.Element("button", "id", id, "class", class)
	b.AppendChild(dom.Text(label))
	return b
}

func heading(tag, class, text string) *html.Node {
	n := dom.Element(tag, "class", class)
	n.AppendChild(dom.Text(text))
	return n
}

func panelToggle(panel, arrow string) *html.Node {
	n := heading("div", "panel-toggle "+panel+"-toggle", arrow)
	dom.SetAttr(n, "data-panel", panel)
	return n
}

// mount replaces the container content with the editor layout.
func (s *Surface) mount() {
	dom.Clear(s.container)

	s.root = dom.Element("div", "class", "editor-container")
	s.toolbar = dom.Element("div", "class", "editor-toolbar")
	pane := dom.Element("div", "class", "editor-main")
	s.canvas = dom.Element("div", "class", "editor-canvas")
	dom.SetStyle(s.canvas, "position", "relative")

	s.paletteContainer = dom.Element("div", "class", "editor-components-container")
	s.palette = dom.Element("div", "class", "editor-components")
	s.paletteContainer.AppendChild(s.palette)
	s.paletteContainer.AppendChild(panelToggle(PanelComponents, "›"))

	s.propertiesContainer = dom.Element("div", "class", "editor-properties-container")
	s.properties = dom.Element("div", "class", "editor-properties")
	s.propertiesContainer.AppendChild(panelToggle(PanelProperties, "‹"))
	s.propertiesContainer.AppendChild(s.properties)

	pane.AppendChild(s.canvas)
	pane.AppendChild(s.paletteContainer)
	pane.AppendChild(s.propertiesContainer)
	s.root.AppendChild(s.toolbar)
	s.root.AppendChild(pane)
	s.container.AppendChild(s.root)

	s.buildToolbar()
	s.buildPalette()
	s.buildProperties()
	s.buildImagePanel()
}

func (s *Surface) buildToolbar() {
	s.toolbar.AppendChild(button(ButtonEditMode, "Edit Mode: OFF", "prim"))
	s.toolbar.AppendChild(button(ButtonAddComponent, "Add Component"))
	s.toolbar.AppendChild(button(ButtonAddImage, "Add Image"))
	spacer := dom.Element("div", "class", "toolbar-spacer")
	dom.SetStyle(spacer, "flex", "1")
	s.toolbar.AppendChild(spacer)
	s.toolbar.AppendChild(button(ButtonUndo, "Undo"))
	s.toolbar.AppendChild(button(ButtonRedo, "Redo"))
	s.toolbar.AppendChild(button(ButtonSave, "Save"))
	s.notice = dom.Element("span", "class", "editor-notice")
	dom.SetStyle(s.notice, "display", "none")
	s.toolbar.AppendChild(s.notice)
}

type paletteItem struct {
	kind        component.Kind
	title, hint string
}

var paletteItems = []paletteItem{
	{component.KindCard, "Card", "Add a card component"},
	{component.KindImage, "Image", "Add an image component"},
}

func (s *Surface) buildPalette() {
	s.palette.AppendChild(heading("h3", "component-title", "Components"))
	s.palette.AppendChild(heading("p", "component-description", "Drag and drop components to the canvas"))
	for _, it := range paletteItems {
		item := dom.Element("div", "class", "component", "data-type", string(it.kind))
		item.AppendChild(heading("h4", "component-name", it.title))
		item.AppendChild(heading("p", "component-hint", it.hint))
		s.palette.AppendChild(item)
	}
}

func (s *Surface) buildProperties() {
	s.properties.AppendChild(heading("h3", "component-title", "Properties"))
	s.noSelection = heading("div", "component-description", "No selected component")
	dom.SetAttr(s.noSelection, "id", "no-selection")
	s.form = dom.Element("div", "id", "properties-form")
	dom.SetStyle(s.form, "display", "none")
	s.properties.AppendChild(s.noSelection)
	s.properties.AppendChild(s.form)
}

// buildImagePanel creates the hidden dialog used by the add-image button.
func (s *Surface) buildImagePanel() {
	s.imagePanel = dom.Element("div", "id", "add-image-panel", "class", "image-panel")
	dom.SetStyle(s.imagePanel, "display", "none")

	content := dom.Element("div", "class", "image-panel-content")
	header := dom.Element("div", "class", "image-panel-header")
	header.AppendChild(heading("h3", "image-panel-title", "Add Image"))
	closer := heading("span", "image-panel-close", "×")
	dom.SetAttr(closer, "id", ButtonImageClose)
	header.AppendChild(closer)
	content.AppendChild(header)

	body := dom.Element("div", "class", "image-panel-body")
	for _, f := range imagePanelFields {
		body.AppendChild(f.row(""))
	}
	submit := dom.Element("div", "class", "property-row")
	submit.AppendChild(button(ButtonImageSubmit, "Add Image"))
	body.AppendChild(submit)
	content.AppendChild(body)

	s.imagePanel.AppendChild(content)
	s.root.AppendChild(s.imagePanel)
	s.resetImagePanel()
}

// TogglePanel collapses or expands the palette or the property panel.
func (s *Surface) TogglePanel(name string) bool {
	var box *html.Node
	var open, closed string
	switch name {
	case PanelComponents:
		box, open, closed = s.paletteContainer, "›", "‹"
	case PanelProperties:
		box, open, closed = s.propertiesContainer, "‹", "›"
	default:
		s.logger.Warn("unknown panel")
		return false
	}
	collapsed := !dom.HasClass(box, "collapsed")
	dom.ToggleClass(box, "collapsed", collapsed)
	toggle := dom.FindClass(box, "panel-toggle")
	if collapsed {
		dom.SetText(toggle, closed)
	} else {
		dom.SetText(toggle, open)
	}
	return collapsed
}

func (s *Surface) Collapsed(name string) bool {
	switch name {
	case PanelComponents:
		return dom.HasClass(s.paletteContainer, "collapsed")
	case PanelProperties:
		return dom.HasClass(s.propertiesContainer, "collapsed")
	}
	return false
}
