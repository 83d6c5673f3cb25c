package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
	"pagesmith/internal/logging"
	"pagesmith/internal/persist"
	"pagesmith/internal/profile"
	"pagesmith/internal/surface"
)

const requestTimeout = 15 * time.Second

func main() {
	config, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
	logger, err := logging.New(config.LogLevel, config.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	bridge, closeStores, err := openBridge(config, logger)
	if err != nil {
		logger.Error("open stores", zap.Error(err))
		log.Fatal(err)
	}
	defer closeStores()

	m, err := initialModel(config, logger, bridge)
	if err != nil {
		log.Fatal(err)
	}
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		log.Fatal(err)
	}
}

// openBridge builds the remote store when a service URL is configured and
// the local cache, sqlite on disk or in memory.
func openBridge(config *Config, logger *zap.Logger) (*persist.Bridge, func(), error) {
	var remote, cache persist.Store
	if config.RemoteURL != "" {
		remote = persist.NewRemoteStore(config.RemoteURL, config.RemoteToken, nil)
	}
	closer := func() {}
	if config.CachePath == "" {
		cache = persist.NewMemoryStore()
	} else {
		db, err := persist.OpenSQLite(config.CachePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := persist.NewSQLStore(context.Background(), db, persist.SQLite, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		cache = store
		closer = func() { db.Close() }
	}
	return persist.NewBridge(remote, cache, logger), closer, nil
}

func initialModel(config *Config, logger *zap.Logger, bridge *persist.Bridge) (model, error) {
	pr := &prompt{}
	confirm := func(text string, proceed func()) {
		if !config.Confirmations {
			proceed()
			return
		}
		pr.ask(text, proceed)
	}
	page, err := profile.New(dom.Element("div", "id", "profile-editor"), config.Editable,
		profile.WithLogger(logger),
		profile.WithHistoryLimit(config.HistoryLimit),
		profile.WithConfirm(confirm),
		profile.WithBridge(bridge, config.Username),
	)
	if err != nil {
		return model{}, err
	}
	return model{
		width:    80,
		height:   24,
		page:     page,
		bridge:   bridge,
		username: config.Username,
		config:   config,
		logger:   logger,
		prompt:   pr,
		loading:  bridge != nil,
	}, nil
}

func (m model) Init() tea.Cmd {
	if m.bridge == nil {
		if err := m.page.Apply(nil); err != nil {
			m.logger.Error("default content", zap.Error(err))
		}
		return nil
	}
	return m.loadCmd()
}

func (m model) loadCmd() tea.Cmd {
	bridge, user := m.bridge, m.username
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		doc, src, err := bridge.Load(ctx, user)
		return loadedMsg{doc: doc, src: src, err: err}
	}
}

// saveCmd snapshots the page on the update loop and stores it off it.
func (m *model) saveCmd() tea.Cmd {
	if !m.page.State().EditMode() {
		m.errorMessage = "Enter edit mode to save"
		return nil
	}
	bridge, user := m.bridge, m.username
	doc := m.page.State().ToDocument()
	return func() tea.Msg {
		if bridge == nil {
			return savedMsg{err: surface.ErrNoSaver}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		saved, err := bridge.Save(ctx, user, doc)
		return savedMsg{saved: saved, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncLayout()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.applyLoaded(msg)
		return m, nil

	case savedMsg:
		m.page.Surface().SaveFinished(msg.err)
		m.errorMessage, m.successMessage = "", ""
		switch {
		case msg.err != nil:
			m.errorMessage = fmt.Sprintf("Save failed: %s", msg.err)
		case !msg.saved:
			m.successMessage = "No changes to save"
		default:
			m.successMessage = "Saved profile for @" + m.username
		}
		return m, nil

	case tea.MouseMsg:
		if m.help || m.mode != ModeNormal {
			return m, nil
		}
		cmd := m.handleMouse(msg)
		m.checkPrompt()
		return m, cmd

	case tea.KeyMsg:
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		var cmd tea.Cmd
		switch m.mode {
		case ModeConfirm:
			cmd = m.handleConfirm(msg.String())
		case ModeFieldInput:
			m.handleFieldInput(msg)
		case ModeFileInput:
			m.handleFileInput(msg)
		default:
			cmd = m.handleKey(msg)
		}
		m.checkPrompt()
		return m, cmd
	}
	return m, nil
}

func (m *model) applyLoaded(msg loadedMsg) {
	m.errorMessage, m.successMessage = "", ""
	if msg.err != nil {
		m.logger.Warn("load profile", zap.String("user", m.username), zap.Error(msg.err))
		m.errorMessage = "Could not load profile, showing the default page"
		msg.doc = nil
	}
	if err := m.page.Apply(msg.doc); err != nil {
		m.errorMessage = err.Error()
		return
	}
	switch msg.src {
	case persist.SourceRemote:
		m.successMessage = "Loaded @" + m.username
	case persist.SourceCache:
		m.successMessage = "Offline, loaded the cached copy"
	}
}

// checkPrompt switches to confirm mode when the surface asked a question.
func (m *model) checkPrompt() {
	if m.prompt.pending() && m.mode != ModeConfirm {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmSurface
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	s := m.page.Surface()
	ev := surface.PointerEvent{
		X:     float64(msg.X*cellWidth + cellWidth/2),
		Y:     float64(msg.Y*cellHeight + cellHeight/2),
		Shift: msg.Shift,
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(0, -scrollStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(0, scrollStep)
	case msg.Button == tea.MouseButtonWheelLeft:
		m.scroll(-scrollStep, 0)
	case msg.Button == tea.MouseButtonWheelRight:
		m.scroll(scrollStep, 0)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.errorMessage, m.successMessage = "", ""
		m.press = &press{col: msg.X, row: msg.Y, lastCol: msg.X, lastRow: msg.Y, shift: msg.Shift}
		m.press.captured = s.PointerDown(ev)
	case msg.Action == tea.MouseActionMotion:
		if m.press == nil {
			return nil
		}
		if msg.X != m.press.col || msg.Y != m.press.row {
			m.press.moved = true
		}
		m.press.lastCol, m.press.lastRow = msg.X, msg.Y
		s.PointerMove(ev)
	case msg.Action == tea.MouseActionRelease:
		pr := m.press
		m.press = nil
		if pr == nil {
			return nil
		}
		s.PointerUp(ev)
		if !pr.moved {
			ev.Shift = pr.shift
			return m.click(ev)
		}
	}
	return nil
}

// click routes a press and release on one cell. Save runs off the update
// loop and field rows start editing; everything else goes to the surface.
func (m *model) click(ev surface.PointerEvent) tea.Cmd {
	s := m.page.Surface()
	target := s.HitTest(ev.X, ev.Y)
	if target == nil {
		return nil
	}
	id := dom.ID(target)
	if id == surface.ButtonSave {
		return m.saveCmd()
	}
	for i, fid := range m.fieldIDs() {
		if fid == id {
			m.focusedField = i
			m.beginFieldEdit()
			return nil
		}
	}
	ev.Target = target
	m.report(s.Click(context.Background(), ev))
	if s.ImagePanelOpen() {
		m.focusedField = 0
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.page.Surface()
	st := m.page.State()
	ctx := context.Background()
	key := msg.String()
	m.errorMessage = ""
	if key != "?" {
		m.successMessage = ""
	}

	switch key {
	case "q", "ctrl+c":
		if !m.config.Confirmations {
			return tea.Quit
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "e":
		if !s.Editable() {
			m.errorMessage = "This page is read only"
			return nil
		}
		if s.ToggleEditMode() {
			m.successMessage = "Editing"
		}
		m.focusedField = 0
	case "c":
		m.report(s.Press(ctx, surface.ButtonAddComponent))
	case "i":
		if err := s.Press(ctx, surface.ButtonAddImage); err != nil {
			m.report(err)
			return nil
		}
		m.focusedField = 0
		m.beginFieldEdit()
	case "A":
		if !s.ImagePanelOpen() {
			return nil
		}
		if c, err := s.SubmitImagePanel(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Added " + component.Label(c)
		}
	case "u":
		m.undo()
	case "U", "ctrl+r":
		m.redo()
	case "s":
		return m.saveCmd()
	case "S":
		m.startFileInput(FileOpSavePNG)
	case "H":
		m.startFileInput(FileOpSaveHTML)
	case "M":
		m.startFileInput(FileOpSaveMarkdown)
	case "T":
		m.startFileInput(FileOpSaveText)
	case "y":
		if n, err := m.copySelection(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = fmt.Sprintf("Copied %d component(s)", n)
		}
	case "p":
		if n, err := m.pasteClipboard(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = fmt.Sprintf("Pasted %d component(s)", n)
		}
	case "tab":
		if ids := m.fieldIDs(); len(ids) > 0 {
			m.focusedField = (m.focusedField + 1) % len(ids)
		}
	case "shift+tab":
		if ids := m.fieldIDs(); len(ids) > 0 {
			m.focusedField = (m.focusedField - 1 + len(ids)) % len(ids)
		}
	case "enter":
		m.beginFieldEdit()
	case "delete", "backspace":
		if !s.KeyDown(surface.KeyEvent{Key: "Delete"}) && st.EditMode() {
			m.errorMessage = "Nothing to delete"
		}
	case "esc":
		if s.ImagePanelOpen() {
			s.CloseImagePanel()
			return nil
		}
		st.ClearSelection()
	case "pgup":
		m.scroll(0, -m.canvasRows()*cellHeight)
	case "pgdown":
		m.scroll(0, m.canvasRows()*cellHeight)
	default:
		m.handleNavigation(key)
	}
	return nil
}

// report shows a failed toolbar action in the status line.
func (m *model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, surface.ErrViewing):
		m.errorMessage = "Press e to enter edit mode"
	case errors.Is(err, surface.ErrLocked):
		m.errorMessage = "Unlock the component to delete it"
	default:
		m.errorMessage = err.Error()
	}
}

func (m *model) handleConfirm(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmSurface:
			if proceed := m.prompt.take(); proceed != nil {
				proceed()
			}
		case ConfirmQuit:
			return tea.Quit
		case ConfirmOverwriteFile:
			m.finishExport(m.filename)
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
		if m.confirmAction == ConfirmSurface {
			m.prompt.take()
		}
	}
	return nil
}

// beginFieldEdit edits the focused field. Checkboxes toggle and selects
// step to their next option without entering input mode.
func (m *model) beginFieldEdit() {
	s := m.page.Surface()
	id := m.focusedID()
	if id == "" {
		return
	}
	value, _ := s.FieldValue(id)
	switch s.FieldInput(id) {
	case surface.InputCheckbox:
		m.setField(id, fmt.Sprint(value != "true"))
		return
	case surface.InputSelect:
		opts := s.FieldOptions(id)
		next := opts[0]
		for i, o := range opts {
			if o == value {
				next = opts[(i+1)%len(opts)]
			}
		}
		m.setField(id, next)
		return
	}
	m.mode = ModeFieldInput
	m.editText = value
	m.editCursorPos = len([]rune(value))
}

func (m *model) setField(id, value string) {
	if err := m.page.Surface().SetField(id, value); err != nil {
		m.errorMessage = err.Error()
	}
}

func (m *model) handleFieldInput(msg tea.KeyMsg) {
	runes := []rune(m.editText)
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.setField(m.focusedID(), m.editText)
		return
	case "esc":
		m.mode = ModeNormal
		return
	case "left":
		m.editCursorPos = max(m.editCursorPos-1, 0)
	case "right":
		m.editCursorPos = min(m.editCursorPos+1, len(runes))
	case "home", "ctrl+a":
		m.editCursorPos = 0
	case "end", "ctrl+e":
		m.editCursorPos = len(runes)
	case "backspace":
		if m.editCursorPos > 0 {
			runes = append(runes[:m.editCursorPos-1], runes[m.editCursorPos:]...)
			m.editCursorPos--
		}
	case "delete":
		if m.editCursorPos < len(runes) {
			runes = append(runes[:m.editCursorPos], runes[m.editCursorPos+1:]...)
		}
	case "ctrl+v":
		text, err := clipboard.ReadAll()
		if err != nil {
			m.errorMessage = "Clipboard: " + err.Error()
			return
		}
		in := []rune(cleanClipboardText(text))
		runes = insertRunes(runes, m.editCursorPos, in)
		m.editCursorPos += len(in)
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			in := msg.Runes
			if msg.Type == tea.KeySpace {
				in = []rune{' '}
			}
			runes = insertRunes(runes, m.editCursorPos, in)
			m.editCursorPos += len(in)
		}
	}
	m.editText = string(runes)
}

func insertRunes(dst []rune, at int, in []rune) []rune {
	out := make([]rune, 0, len(dst)+len(in))
	out = append(out, dst[:at]...)
	out = append(out, in...)
	return append(out, dst[at:]...)
}

func (m *model) startFileInput(op FileOperation) {
	if m.page.State().Len() == 0 {
		m.errorMessage = "Nothing to export"
		return
	}
	m.mode = ModeFileInput
	m.fileOp = op
	m.filename = m.username
}

func (m *model) handleFileInput(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.filename = ""
	case "enter":
		if strings.TrimSpace(m.filename) == "" {
			m.errorMessage = "Please enter a filename"
			return
		}
		path := m.config.GetSavePath(withExtension(m.filename, m.fileOp))
		m.filename = path
		if _, err := os.Stat(path); err == nil && m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
		m.mode = ModeNormal
		m.finishExport(path)
	case "backspace":
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.filename += string(msg.Runes)
		}
	}
}

func (m *model) finishExport(path string) {
	if err := m.export(path); err != nil {
		m.errorMessage = fmt.Sprintf("Error exporting: %s", err)
		return
	}
	m.successMessage = "Exported to " + path
}

func (m *model) scroll(dx, dy int) {
	m.scrollX = max(m.scrollX+dx, 0)
	m.scrollY = max(m.scrollY+dy, 0)
	m.syncLayout()
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	sc := m.screen()
	return strings.Join(sc.Styled(styles), "\n")
}

var helpLines = []string{
	"pagesmith Help",
	"==============",
	"",
	"Mouse:",
	"------",
	"  Click            Press toolbar buttons, select components, focus fields",
	"  Shift+Click      Add a component to the selection",
	"  Drag component   Move it",
	"  Drag ■ handle    Resize the selected component",
	"  Drag palette     Drop a new card or image on the canvas",
	"  Wheel            Scroll the canvas",
	"",
	"Editing:",
	"--------",
	"  e                Toggle edit mode (page owner only)",
	"  c                Add a card in the middle of the canvas",
	"  i                Open the add-image panel",
	"  A                Add the image described in the panel",
	"  h/←/j/↓/k/↑/l/→  Nudge the selected component one cell",
	"  Shift+arrows     Nudge by one pixel",
	"  Delete/Backspace Delete the selected components",
	"  Esc              Close the image panel or clear the selection",
	"",
	"Properties:",
	"-----------",
	"  Tab/Shift+Tab    Focus the next or previous field",
	"  Enter            Edit the focused field (toggles and choices step)",
	"  Ctrl+V           Paste into the field being edited",
	"",
	"Clipboard:",
	"----------",
	"  y                Copy the selected components",
	"  p                Paste copied components",
	"",
	"Files:",
	"------",
	"  s                Save the profile",
	"  S                Export as PNG image",
	"  H                Export as HTML",
	"  M                Export as Markdown",
	"  T                Export the screen as text",
	"",
	"General:",
	"  u                Undo last change",
	"  U/Ctrl+R         Redo last undone change",
	"  PgUp/PgDn        Scroll the canvas",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		if m.helpScroll < len(helpLines)-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	startLine := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	result += "\n" + fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result
}
