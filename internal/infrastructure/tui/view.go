package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kilometers.ai/loader/internal/core/ports"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginTop(1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("240"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// render draws the current view and records that it has been laid out
func (h *Host) render(height int) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render(h.title),
		"  ",
		locationStyle.Render(h.location),
	)
	divider := dividerStyle.Render(strings.Repeat("─", 40))

	var body string
	switch h.location {
	case ports.PreferencesPath:
		body = h.renderPreferencesLocked()
		h.laidOut = true
	default:
		body = h.renderLogsLocked(height)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, divider, body, divider, h.renderFooterLocked())
}

func (h *Host) renderLogsLocked(height int) string {
	if len(h.logs) == 0 {
		return mutedStyle.Render("\n  Waiting for loader output...\n")
	}
	lines := h.logs
	if maxRows := height - 5; maxRows > 0 && len(lines) > maxRows {
		lines = lines[len(lines)-maxRows:]
	}
	return strings.Join(lines, "\n")
}

func (h *Host) renderPreferencesLocked() string {
	rows := h.rowsLocked()
	if len(rows) == 0 {
		return mutedStyle.Render("\n  No settings available.\n")
	}

	var out []string
	current := ""
	for i, r := range rows {
		if r.section != current {
			current = r.section
			out = append(out, sectionStyle.Render(h.sections[current].model.Title))
		}

		var line string
		if r.toggle != nil {
			box := "[ ]"
			if r.value {
				box = "[x]"
			}
			line = fmt.Sprintf("%s%s", box, r.toggle.Label)
		} else {
			line = fmt.Sprintf("%s  %s", buttonStyle.Render("[ "+r.action.Caption+" ]"), mutedStyle.Render(r.action.Description))
		}

		if i == h.cursor {
			line = selectedStyle.Render(line)
		}
		out = append(out, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (h *Host) renderFooterLocked() string {
	if h.location == ports.PreferencesPath {
		return footerStyle.Render("Controls: [↑↓] Move | [Space] Toggle/Press | [Esc] Back | [q] Quit")
	}
	return footerStyle.Render("Controls: [p] Preferences | [q] Quit")
}
