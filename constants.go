package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeFieldInput
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSavePNG FileOperation = iota
	FileOpSaveHTML
	FileOpSaveMarkdown
	FileOpSaveText
)

type ConfirmAction int

const (
	// ConfirmSurface answers a prompt raised by the editor surface.
	ConfirmSurface ConfirmAction = iota
	ConfirmQuit
	ConfirmOverwriteFile
)

const (
	// One terminal cell covers cellWidth x cellHeight page pixels.
	cellWidth  = 8
	cellHeight = 16

	sidePanelWidth = 34
	scrollStep     = 32
)
