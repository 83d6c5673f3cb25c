package main

import "pagesmith/internal/component"

func (m *model) handleNavigation(key string) {
	dx, dy := direction(key)
	if dx == 0 && dy == 0 {
		return
	}
	if m.nudge(key, dx, dy) {
		return
	}
	m.scroll(dx*scrollStep, dy*scrollStep)
}

func direction(key string) (int, int) {
	switch key {
	case "h", "left", "shift+left":
		return -1, 0
	case "l", "right", "shift+right":
		return 1, 0
	case "k", "up", "shift+up":
		return 0, -1
	case "j", "down", "shift+down":
		return 0, 1
	}
	return 0, 0
}

// nudge moves the primary selection one cell, or one pixel with shift. Each
// nudge is a logged update. It reports false when there is nothing to move.
func (m *model) nudge(key string, dx, dy int) bool {
	st := m.page.State()
	if !st.EditMode() {
		return false
	}
	primary, ok := st.Primary()
	if !ok || primary.Attrs().Locked {
		return false
	}
	stepX, stepY := float64(cellWidth), float64(cellHeight)
	if m.getMoveSpeed(key) == 1 {
		stepX, stepY = 1, 1
	}
	a := primary.Attrs()
	left := max(a.Left+float64(dx)*stepX, 0)
	top := max(a.Top+float64(dy)*stepY, 0)
	if _, err := st.UpdateComponent(primary.ID(), component.Patch{Left: &left, Top: &top}); err != nil {
		m.errorMessage = err.Error()
	}
	return true
}

// getMoveSpeed is 1 for fine pixel steps and 2 for whole cells.
func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 1
	default:
		return 2
	}
}
