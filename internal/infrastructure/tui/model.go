package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// row is one selectable line of the preferences view
type row struct {
	section string
	toggle  *extension.ToggleRow
	action  *extension.ActionRow
	value   bool
}

// model adapts Host to the bubbletea program loop
type model struct {
	host   *Host
	width  int
	height int
}

// Init marks the host ready once the program is processing messages
func (m model) Init() tea.Cmd {
	return func() tea.Msg { return startedMsg{} }
}

// Update implements the Bubble Tea update method
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		m.host.markStarted()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "p":
			if m.host.Location() != ports.PreferencesPath {
				m.host.Navigate(ports.PreferencesPath)
			}
			return m, nil

		case "esc", "h":
			if m.host.Location() != HomePath {
				m.host.Navigate(HomePath)
			}
			return m, nil

		case "up", "k":
			m.host.moveCursor(-1)
			return m, nil

		case "down", "j":
			m.host.moveCursor(1)
			return m, nil

		case " ", "enter":
			m.host.activate()
			return m, nil
		}
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m model) View() string {
	return m.host.render(m.height)
}

// rowsLocked flattens the visible sections; h.mu must be held
func (h *Host) rowsLocked() []row {
	var rows []row
	for _, id := range h.order {
		s := h.sections[id]
		if s.hidden || s.model == nil {
			continue
		}
		for i := range s.model.Toggles {
			t := &s.model.Toggles[i]
			rows = append(rows, row{section: id, toggle: t, value: s.values[t.ID]})
		}
		rows = append(rows, row{section: id, action: &s.model.Commit})
	}
	return rows
}

func (h *Host) moveCursor(delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.location != ports.PreferencesPath {
		return
	}
	n := len(h.rowsLocked())
	if n == 0 {
		h.cursor = 0
		return
	}
	h.cursor = min(max(h.cursor+delta, 0), n-1)
}

// activate flips the selected toggle or presses the selected action
func (h *Host) activate() {
	h.mu.Lock()
	if h.location != ports.PreferencesPath {
		h.mu.Unlock()
		return
	}
	rows := h.rowsLocked()
	if h.cursor >= len(rows) {
		h.mu.Unlock()
		return
	}
	r := rows[h.cursor]

	if r.toggle != nil {
		next := !r.value
		h.sections[r.section].values[r.toggle.ID] = next
		h.mu.Unlock()
		if r.toggle.OnChange != nil {
			r.toggle.OnChange(next)
		}
		return
	}
	h.mu.Unlock()

	if r.action != nil && r.action.OnClick != nil {
		action := *r.action
		go func() {
			if err := action.OnClick(); err != nil {
				fmt.Fprintf(h.LogWriter(), "%s failed: %v\n", action.Caption, err)
			}
		}()
	}
}
