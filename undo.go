package main

import (
	"context"

	"pagesmith/internal/surface"
)

func (m *model) undo() {
	st := m.page.State()
	if st.EditMode() && !st.CanUndo() {
		m.errorMessage = "Nothing to undo"
		return
	}
	if err := m.page.Surface().Press(context.Background(), surface.ButtonUndo); err != nil {
		m.report(err)
		return
	}
	m.focusedField = 0
}

func (m *model) redo() {
	st := m.page.State()
	if st.EditMode() && !st.CanRedo() {
		m.errorMessage = "Nothing to redo"
		return
	}
	if err := m.page.Surface().Press(context.Background(), surface.ButtonRedo); err != nil {
		m.report(err)
		return
	}
	m.focusedField = 0
}
