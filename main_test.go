package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagesmith/internal/component"
	"pagesmith/internal/persist"
)

func newTestModel(t *testing.T, config *Config, bridge *persist.Bridge) model {
	t.Helper()
	m, err := initialModel(config, zap.NewNop(), bridge)
	require.NoError(t, err)
	if cmd := m.Init(); cmd != nil {
		m = update(t, m, cmd())
	}
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func testConfig(t *testing.T) *Config {
	return &Config{
		Username:      "alice",
		Editable:      true,
		HistoryLimit:  100,
		SaveDirectory: t.TempDir(),
	}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pressKeys(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, key(k))
	}
	return m
}

func defaultCard(t *testing.T, m model) component.Component {
	t.Helper()
	comps := m.page.State().Components()
	require.Len(t, comps, 1)
	return comps[0]
}

func TestInitShowsDefaultCard(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	assert.Equal(t, 1, m.page.State().Len())
	assert.False(t, m.page.State().EditMode())

	view := m.View()
	assert.Contains(t, view, "My Card")
	assert.Contains(t, view, "Mode: VIEW")
}

func TestViewModeRejectsEditing(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "c")
	assert.Equal(t, 1, m.page.State().Len())
	assert.Equal(t, "Press e to enter edit mode", m.errorMessage)
}

func TestReadOnlyPage(t *testing.T) {
	config := testConfig(t)
	config.Editable = false
	m := newTestModel(t, config, nil)
	m = pressKeys(t, m, "e")
	assert.False(t, m.page.State().EditMode())
	assert.Equal(t, "This page is read only", m.errorMessage)
}

func TestAddUndoRedo(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e", "c")
	assert.Equal(t, 2, m.page.State().Len())
	assert.Contains(t, m.View(), "Mode: EDIT")

	m = pressKeys(t, m, "u")
	assert.Equal(t, 1, m.page.State().Len())
	m = pressKeys(t, m, "U")
	assert.Equal(t, 2, m.page.State().Len())

	m = pressKeys(t, m, "U")
	assert.Equal(t, "Nothing to redo", m.errorMessage)
}

func TestDeleteAsksFirst(t *testing.T) {
	config := testConfig(t)
	config.Confirmations = true
	m := newTestModel(t, config, nil)
	m = pressKeys(t, m, "e")
	card := defaultCard(t, m)
	m.page.State().SelectComponent(card.ID(), false)

	m = pressKeys(t, m, "delete")
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.statusLine(), "Are you sure")
	m = pressKeys(t, m, "n")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, 1, m.page.State().Len())

	m = pressKeys(t, m, "delete", "y")
	assert.Equal(t, 0, m.page.State().Len())
}

func TestDragMovesCard(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e")
	_ = m.View()
	card := defaultCard(t, m)

	m = update(t, m, tea.MouseMsg{X: 20, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 25, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 25, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	a := card.Attrs()
	assert.InDelta(t, 140, a.Left, 0.001)
	assert.InDelta(t, 100, a.Top, 0.001)
	assert.Equal(t, []string{card.ID()}, m.page.State().Selected())
	assert.Nil(t, m.press)

	m = pressKeys(t, m, "u")
	restored, ok := m.page.State().Component(card.ID())
	require.True(t, ok)
	assert.InDelta(t, 100, restored.Attrs().Left, 0.001)
}

func TestWheelScrolls(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, scrollStep, m.scrollY)
	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 0, m.scrollY)
}

func TestNudge(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e")
	card := defaultCard(t, m)
	m.page.State().SelectComponent(card.ID(), false)

	m = pressKeys(t, m, "l")
	assert.InDelta(t, 108, card.Attrs().Left, 0.001)
	m = pressKeys(t, m, "shift+right")
	assert.InDelta(t, 109, card.Attrs().Left, 0.001)
	m = pressKeys(t, m, "j")
	assert.InDelta(t, 116, card.Attrs().Top, 0.001)
	assert.Zero(t, m.scrollY)
}

func TestNavigationScrollsWithoutSelection(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "j", "l")
	assert.Equal(t, scrollStep, m.scrollY)
	assert.Equal(t, scrollStep, m.scrollX)
	m = pressKeys(t, m, "h", "h")
	assert.Zero(t, m.scrollX)
}

func TestEditTitleField(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e")
	card := defaultCard(t, m)
	m.page.State().SelectComponent(card.ID(), false)

	m.focusedField = slices.Index(m.fieldIDs(), "card-title")
	require.GreaterOrEqual(t, m.focusedField, 0)
	m = pressKeys(t, m, "enter")
	require.Equal(t, ModeFieldInput, m.mode)
	assert.Equal(t, "My Card", m.editText)

	m = pressKeys(t, m, "backspace", "backspace", "backspace", "backspace", "Page", "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "My Page", card.Snapshot().Title)
	assert.True(t, m.page.State().CanUndo())
}

func TestCheckboxFieldToggles(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e")
	card := defaultCard(t, m)
	m.page.State().SelectComponent(card.ID(), false)

	m.focusedField = slices.Index(m.fieldIDs(), "locked")
	m = pressKeys(t, m, "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.True(t, card.Attrs().Locked)
}

func TestLockedCardCannotBeDeleted(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e")
	card := defaultCard(t, m)
	m.page.State().SelectComponent(card.ID(), false)
	m.focusedField = slices.Index(m.fieldIDs(), "locked")
	m = pressKeys(t, m, "enter", "delete")
	assert.Equal(t, 1, m.page.State().Len())
	assert.Equal(t, "Nothing to delete", m.errorMessage)
}

func TestImagePanelFromKeyboard(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "e", "i")
	require.True(t, m.page.Surface().ImagePanelOpen())
	require.Equal(t, ModeFieldInput, m.mode)
	assert.Equal(t, "image-url", m.focusedID())

	m = pressKeys(t, m, "https://example.com/logo.png", "enter", "A")
	assert.Equal(t, 2, m.page.State().Len())
	assert.False(t, m.page.Surface().ImagePanelOpen())
	assert.Contains(t, m.successMessage, "Added")
}

func TestSaveWithoutBridge(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "s")
	assert.Equal(t, "Enter edit mode to save", m.errorMessage)

	m = pressKeys(t, m, "e")
	next, cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	m = update(t, next.(model), cmd())
	assert.Contains(t, m.errorMessage, "Save failed")
}

func TestSaveThroughBridge(t *testing.T) {
	cache := persist.NewMemoryStore()
	bridge := persist.NewBridge(nil, cache, zap.NewNop())
	m := newTestModel(t, testConfig(t), bridge)
	assert.False(t, m.loading)
	assert.Equal(t, 1, m.page.State().Len())

	m = pressKeys(t, m, "e")
	save := func() model {
		next, cmd := m.Update(key("s"))
		require.NotNil(t, cmd)
		return update(t, next.(model), cmd())
	}
	m = save()
	assert.Equal(t, "Saved profile for @alice", m.successMessage)
	assert.Equal(t, "Saved", m.page.Surface().NoticeText())

	m = save()
	assert.Equal(t, "No changes to save", m.successMessage)

	m2 := newTestModel(t, testConfig(t), bridge)
	assert.Equal(t, "Offline, loaded the cached copy", m2.successMessage)
	assert.Equal(t, 1, m2.page.State().Len())
}

func TestExports(t *testing.T) {
	config := testConfig(t)
	m := newTestModel(t, config, nil)

	m = pressKeys(t, m, "H")
	require.Equal(t, ModeFileInput, m.mode)
	assert.Equal(t, "alice", m.filename)
	m = pressKeys(t, m, "enter")
	data, err := os.ReadFile(filepath.Join(config.SaveDirectory, "alice.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "My Card")
	assert.Contains(t, string(data), "@alice")
	assert.NotContains(t, string(data), "resize-handle")

	m = pressKeys(t, m, "M", "enter")
	data, err = os.ReadFile(filepath.Join(config.SaveDirectory, "alice.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "My Card")

	m = pressKeys(t, m, "T", "enter")
	data, err = os.ReadFile(filepath.Join(config.SaveDirectory, "alice.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "My Card")

	m = pressKeys(t, m, "S", "enter")
	_, err = os.Stat(filepath.Join(config.SaveDirectory, "alice.png"))
	assert.NoError(t, err)
	assert.Empty(t, m.errorMessage)
}

func TestExportAsksBeforeOverwrite(t *testing.T) {
	config := testConfig(t)
	m := newTestModel(t, config, nil)
	path := filepath.Join(config.SaveDirectory, "alice.html")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	m.config.Confirmations = true
	m = pressKeys(t, m, "H", "enter")
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.statusLine(), "already exists")
	m = pressKeys(t, m, "y")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))
}

func TestHelpScreen(t *testing.T) {
	m := newTestModel(t, testConfig(t), nil)
	m = pressKeys(t, m, "?")
	assert.Contains(t, m.View(), "pagesmith Help")
	m = pressKeys(t, m, "c")
	assert.Equal(t, 1, m.page.State().Len())
	m = pressKeys(t, m, "esc")
	assert.False(t, m.help)
}

func TestToCells(t *testing.T) {
	r := toCells(100, 100, 200, 300, 0, -cellHeight)
	assert.Equal(t, cellRect{X0: 12, Y0: 7, X1: 36, Y1: 25}, r)

	tiny := toCells(0, 0, 1, 1, 0, 0)
	assert.Equal(t, tiny.X0+1, tiny.X1)
	assert.Equal(t, tiny.Y0+1, tiny.Y1)
}

func TestHandleCell(t *testing.T) {
	r := cellRect{X0: 2, Y0: 4, X1: 10, Y1: 8}
	assert.Equal(t, point{2, 4}, handleCell("top-left", r))
	assert.Equal(t, point{10, 6}, handleCell("right", r))
	assert.Equal(t, point{6, 8}, handleCell("bottom", r))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 7))
	assert.Equal(t, []string{"a", "", "b"}, wrapText("a\n\nb", 10))
	assert.Nil(t, wrapText("x", 0))
}

func TestCanvasDrawsCard(t *testing.T) {
	sc := NewCanvas(20, 8)
	snap := component.Defaults(component.KindCard)
	snap.Title = "Picks"
	snap.Content = "Lakers by 5"
	sc.DrawComponent(snap, cellRect{X0: 0, Y0: 0, X1: 19, Y1: 7}, true)
	lines := sc.Lines()
	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.Contains(t, lines[1], "Picks")
	assert.Contains(t, lines[2], "├")
	assert.Contains(t, lines[3], "Lakers by 5")
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "page.html", withExtension("page", FileOpSaveHTML))
	assert.Equal(t, "page.PNG", withExtension("page.PNG", FileOpSavePNG))
	assert.Equal(t, "page.txt.md", withExtension("page.txt", FileOpSaveMarkdown))
}

func TestParseSnapshots(t *testing.T) {
	snaps, err := parseSnapshots(`[{"id":"a","type":"card","title":"A"},{"id":"b","type":"image","src":"x.png"}]`)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "A", snaps[0].Title)
	assert.Equal(t, component.KindImage, snaps[1].Type)

	snaps, err = parseSnapshots(` {"id":"a","type":"card"} `)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)

	_, err = parseSnapshots("hello")
	assert.Error(t, err)
	_, err = parseSnapshots("[]")
	assert.Error(t, err)
}

func TestCleanClipboardText(t *testing.T) {
	assert.Equal(t, "plain", cleanClipboardText("plain"))
	assert.Equal(t, "Hi there", cleanClipboardText("<div>Hi <b>there</b></div>"))
	assert.Equal(t, "ab\nc\nd", cleanClipboardText("a\x01b\r\nc\rd"))
	assert.Equal(t, "", cleanClipboardText(""))
}

func TestInsertRunes(t *testing.T) {
	assert.Equal(t, "abXYc", string(insertRunes([]rune("abc"), 2, []rune("XY"))))
	assert.Equal(t, "XYabc", string(insertRunes([]rune("abc"), 0, []rune("XY"))))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PAGESMITH_USERNAME":      "bob",
		"PAGESMITH_REMOTE_URL":    "https://picks.example.com",
		"PAGESMITH_CONFIRMATIONS": "false",
		"PAGESMITH_EDITABLE":      "nope",
		"PAGESMITH_HISTORY_LIMIT": "25",
	}
	config := defaultConfig("/home/bob")
	config.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "bob", config.Username)
	assert.Equal(t, "https://picks.example.com", config.RemoteURL)
	assert.False(t, config.Confirmations)
	assert.True(t, config.Editable)
	assert.Equal(t, 25, config.HistoryLimit)
	assert.Equal(t, filepath.Join("/home/bob", ".pagesmith", "cache.db"), config.CachePath)
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, ":memory:", expandPath(":memory:", "/home/bob"))
	assert.Equal(t, "", expandPath("", "/home/bob"))
	assert.Equal(t, filepath.Join("/home/bob", "pages"), expandPath("~/pages", "/home/bob"))
}
