package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
	"pagesmith/internal/surface"
)

const (
	toneButton tone = iota + toneMuted + 1
	toneActive
	toneDisabled
	toneError
	toneNotice
	toneFocus
	toneHeading
)

var styles = map[tone]lipgloss.Style{
	toneBorder:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	toneSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	toneHandle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	toneTitle:    lipgloss.NewStyle().Bold(true),
	toneMuted:    lipgloss.NewStyle().Faint(true),
	toneButton:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
	toneActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("42")).Bold(true),
	toneDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("236")),
	toneError:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	toneNotice:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	toneFocus:    lipgloss.NewStyle().Reverse(true),
	toneHeading:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
}

func cellPx(col, row, w int) surface.Rect {
	return surface.Rect{X: float64(col * cellWidth), Y: float64(row * cellHeight), W: float64(w * cellWidth), H: cellHeight}
}

// canvasCols is the width of the page area; the side panel takes the rest
// in edit mode.
func (m model) canvasCols() int {
	if m.page.State().EditMode() && m.width > sidePanelWidth+20 {
		return m.width - sidePanelWidth - 1
	}
	return m.width
}

func (m model) canvasRows() int {
	return max(m.height-2, 1)
}

// syncLayout tells the surface where the canvas sits and how far it is
// scrolled.
func (m model) syncLayout() {
	s := m.page.Surface()
	s.SetCanvasRect(surface.Rect{X: 0, Y: cellHeight, W: float64(m.canvasCols() * cellWidth), H: float64(m.canvasRows() * cellHeight)})
	s.SetScroll(float64(m.scrollX), float64(m.scrollY))
}

// screen draws the whole terminal and records every clickable cell range
// with the surface.
func (m model) screen() *Canvas {
	s := m.page.Surface()
	s.ClearPlacements()
	m.syncLayout()

	sc := NewCanvas(m.width, m.height)
	m.drawPage(sc, m.page.State().EditMode())
	m.drawToolbar(sc)
	if m.page.State().EditMode() && m.canvasCols() < m.width {
		m.drawSidePanel(sc, m.canvasCols())
	}
	m.drawGhost(sc)
	m.drawStatus(sc)
	return sc
}

// drawPage draws the visible components. decorate adds the selection
// borders and the resize handles of the primary selection.
func (m model) drawPage(sc *Canvas, decorate bool) {
	st := m.page.State()
	edit := decorate
	comps := st.Components()
	slices.SortStableFunc(comps, func(a, b component.Component) int {
		return a.Attrs().ZIndex - b.Attrs().ZIndex
	})
	ox, oy := float64(m.scrollX), float64(m.scrollY-cellHeight)
	for _, c := range comps {
		a := c.Attrs()
		if c.Node() == nil || !a.Visible {
			continue
		}
		r := toCells(a.Left, a.Top, a.Width, a.Height, ox, oy)
		sc.DrawComponent(c.Snapshot(), r, edit && a.Selected)
	}

	primary, ok := st.Primary()
	if !edit || !ok || primary.Node() == nil {
		return
	}
	a := primary.Attrs()
	r := toCells(a.Left, a.Top, a.Width, a.Height, ox, oy)
	cols, rows := m.canvasCols(), m.canvasRows()
	for _, h := range dom.FindAllClass(primary.Node(), "resize-handle") {
		pos, _ := dom.Attr(h, "data-handle")
		p := handleCell(pos, r)
		if p.X < 0 || p.X >= cols || p.Y < 1 || p.Y > rows {
			continue
		}
		sc.set(p.X, p.Y, '■', toneHandle)
		m.page.Surface().Place(h, cellPx(p.X, p.Y, 1))
	}
}

// button draws a bracketed label and places n on it.
func (m model) button(sc *Canvas, n *html.Node, x, y, limit int, t tone) int {
	label := "[" + dom.TextContent(n) + "]"
	w := sc.write(x, y, label, limit, t)
	m.page.Surface().Place(n, cellPx(x, y, w))
	return w
}

func (m model) drawToolbar(sc *Canvas) {
	s := m.page.Surface()
	for x := 0; x < sc.width; x++ {
		sc.set(x, 0, ' ', toneText)
	}
	x := 0
	for b := s.Toolbar().FirstChild; b != nil; b = b.NextSibling {
		if b.Type != html.ElementNode || b.Data != "button" || dom.Style(b, "display") == "none" {
			continue
		}
		t := toneButton
		switch {
		case dom.HasAttr(b, "disabled"):
			t = toneDisabled
		case dom.HasClass(b, "active"):
			t = toneActive
		}
		x += m.button(sc, b, x, 0, sc.width-x, t) + 1
	}
	if notice := s.NoticeText(); notice != "" {
		t := toneNotice
		if n := dom.FindClass(s.Toolbar(), "editor-notice"); dom.HasClass(n, "error") {
			t = toneError
		}
		x += sc.write(x+1, 0, notice, sc.width-x-1, t) + 1
	}
	user := "@" + m.username
	if m.loading {
		user = "loading " + user
	}
	if len(user) < sc.width-x-1 {
		sc.write(sc.width-len(user), 0, user, len(user), toneMuted)
	}
}

// fieldIDs lists the inputs tab cycles through: the add-image panel first
// when it is open, then the property form.
func (m model) fieldIDs() []string {
	s := m.page.Surface()
	return append(s.ImagePanelFields(), s.Fields()...)
}

func (m model) focusedID() string {
	ids := m.fieldIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[m.focusedField%len(ids)]
}

func (m model) drawSidePanel(sc *Canvas, left int) {
	s := m.page.Surface()
	root := s.Root()
	for y := 1; y < sc.height-1; y++ {
		for x := left; x < sc.width; x++ {
			sc.set(x, y, ' ', toneText)
		}
		sc.set(left, y, '│', toneBorder)
	}
	x0 := left + 2
	width := sc.width - x0
	y := 1
	line := func(text string, t tone) {
		if y < sc.height-1 {
			sc.write(x0, y, text, width, t)
		}
		y++
	}
	place := func(n *html.Node, w int) {
		if y-1 < sc.height-1 && n != nil {
			s.Place(n, cellPx(x0, y-1, w))
		}
	}
	focused := m.focusedID()
	fieldRow := func(id string) {
		value, _ := s.FieldValue(id)
		if m.mode == ModeFieldInput && id == focused {
			value = m.editText
		}
		value = strings.ReplaceAll(value, "\n", " ")
		t := toneText
		if id == focused {
			t = toneFocus
		}
		line(fmt.Sprintf("%s %s", s.FieldLabel(id)+":", value), t)
		place(dom.FindByID(root, id), width)
	}

	if s.ImagePanelOpen() {
		line("Add Image", toneHeading)
		sc.write(sc.width-2, y-1, "×", 1, toneError)
		if y-1 < sc.height-1 {
			s.Place(dom.FindByID(root, surface.ButtonImageClose), cellPx(sc.width-2, y-1, 1))
		}
		for _, id := range s.ImagePanelFields() {
			fieldRow(id)
		}
		if submit := dom.FindByID(root, surface.ButtonImageSubmit); submit != nil && y < sc.height-1 {
			m.button(sc, submit, x0, y, width, toneButton)
			y++
		}
		y++
	}

	toggle := dom.FindClass(s.Palette().Parent, "panel-toggle")
	line("Components "+dom.TextContent(toggle), toneHeading)
	place(toggle, width)
	if !s.Collapsed(surface.PanelComponents) {
		for _, item := range dom.FindAllClass(s.Palette(), "component") {
			name := dom.TextContent(dom.FindClass(item, "component-name"))
			line("  ▸ "+name+"  (drag to canvas)", toneText)
			place(item, width)
		}
	}
	y++

	toggle = dom.FindClass(s.Properties().Parent, "panel-toggle")
	line("Properties "+dom.TextContent(toggle), toneHeading)
	place(toggle, width)
	if s.Collapsed(surface.PanelProperties) {
		return
	}
	ids := s.Fields()
	if len(ids) == 0 {
		line("No selected component", toneMuted)
		return
	}
	if primary, ok := m.page.State().Primary(); ok {
		line(component.Label(primary), toneMuted)
	}
	for _, id := range ids {
		fieldRow(id)
	}
	if del := dom.FindByID(s.Properties(), surface.ButtonDelete); del != nil && y < sc.height-1 {
		m.button(sc, del, x0, y, width, toneError)
	}
}

func (m model) drawGhost(sc *Canvas) {
	ghost := dom.FindClass(m.page.Surface().Root(), "temp-component")
	if ghost == nil || m.press == nil {
		return
	}
	sc.write(m.press.lastCol, m.press.lastRow, "+ "+dom.TextContent(ghost), sc.width-m.press.lastCol, toneActive)
}

func (m model) drawStatus(sc *Canvas) {
	y := sc.height - 1
	if y < 1 {
		return
	}
	for x := 0; x < sc.width; x++ {
		sc.set(x, y, ' ', toneText)
	}
	sc.write(0, y, m.statusLine(), sc.width, toneMuted)
}

func (m model) statusLine() string {
	st := m.page.State()
	switch m.mode {
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmSurface:
			message = m.prompt.text
		case ConfirmQuit:
			message = "Quit pagesmith?"
		case ConfirmOverwriteFile:
			message = fmt.Sprintf("File %s already exists. Overwrite?", m.filename)
		}
		return fmt.Sprintf("Mode: CONFIRM | %s (y/n)", message)
	case ModeFileInput:
		return fmt.Sprintf("Mode: FILE | %s filename: %s_ | Enter to save, Esc to cancel", m.fileOpName(), m.filename)
	case ModeFieldInput:
		return fmt.Sprintf("Mode: FIELD | %s | Enter to apply, Esc to cancel, Ctrl+V to paste", m.page.Surface().FieldLabel(m.focusedID()))
	}

	modeStr := "VIEW"
	if st.EditMode() {
		modeStr = "EDIT"
	}
	status := fmt.Sprintf("Mode: %s | Components: %d", modeStr, st.Len())
	if sel := st.Selected(); len(sel) > 0 {
		status += fmt.Sprintf(" | Selected: %d", len(sel))
	}
	if m.scrollX != 0 || m.scrollY != 0 {
		status += fmt.Sprintf(" | Scroll: (%d,%d)", m.scrollX, m.scrollY)
	}
	if m.successMessage != "" {
		status += " | " + m.successMessage
	}
	if m.errorMessage != "" {
		status += " | ERROR: " + m.errorMessage
	} else if m.successMessage == "" {
		status += " | ? for help | q to quit"
	}
	return status
}

func (m model) fileOpName() string {
	switch m.fileOp {
	case FileOpSaveHTML:
		return "HTML"
	case FileOpSaveMarkdown:
		return "Markdown"
	case FileOpSaveText:
		return "Text"
	default:
		return "PNG"
	}
}
