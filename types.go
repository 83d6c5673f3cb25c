package main

import (
	"go.uber.org/zap"

	"pagesmith/internal/editor"
	"pagesmith/internal/persist"
	"pagesmith/internal/profile"
)

type model struct {
	width  int
	height int

	page     *profile.Editor
	bridge   *persist.Bridge
	username string
	config   *Config
	logger   *zap.Logger

	mode       Mode
	help       bool
	helpScroll int

	// Pan offset of the canvas in page pixels.
	scrollX int
	scrollY int

	focusedField  int
	editText      string
	editCursorPos int

	filename      string
	fileOp        FileOperation
	confirmAction ConfirmAction
	prompt        *prompt

	press *press

	loading        bool
	errorMessage   string
	successMessage string
}

// prompt carries a confirmation raised by the surface across model copies.
type prompt struct {
	text    string
	proceed func()
}

func (p *prompt) ask(text string, proceed func()) {
	p.text = text
	p.proceed = proceed
}

func (p *prompt) pending() bool { return p.proceed != nil }

func (p *prompt) take() func() {
	fn := p.proceed
	p.text, p.proceed = "", nil
	return fn
}

// press remembers where the left button went down so release can tell a
// click from a drag.
type press struct {
	col, row         int
	lastCol, lastRow int
	shift            bool
	moved            bool
	captured         bool
}

type point struct {
	X, Y int
}

type loadedMsg struct {
	doc *editor.Document
	src persist.Source
	err error
}

type savedMsg struct {
	saved bool
	err   error
}
