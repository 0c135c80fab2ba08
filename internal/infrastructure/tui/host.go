package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// HomePath is the location showing the loader log
const HomePath = "/"

const maxLogLines = 500

// refreshMsg asks the program to redraw after state changed off the UI goroutine
type refreshMsg struct{}

// startedMsg is delivered once the program processes its first command
type startedMsg struct{}

// Host is a terminal host: a bubbletea program with a navigable log view
// and a preferences view holding settings sections.
type Host struct {
	title string

	mu        sync.Mutex
	program   *tea.Program
	started   bool
	location  string
	laidOut   bool
	listeners map[int]func(string)
	nextID    int
	sections  map[string]*section
	order     []string
	cursor    int
	logs      []string
	partial   string
	reload    bool
}

// New creates a host that becomes ready once Run starts the program
func New(title string) *Host {
	return &Host{
		title:     title,
		location:  HomePath,
		listeners: make(map[int]func(string)),
		sections:  make(map[string]*section),
	}
}

// Run drives the program until the user quits, ctx ends, or Reload is
// requested. reload reports the latter.
func (h *Host) Run(ctx context.Context, opts ...tea.ProgramOption) (reload bool, err error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model{host: h}, opts...)

	h.mu.Lock()
	h.program = program
	h.mu.Unlock()

	_, err = program.Run()

	h.mu.Lock()
	reload = h.reload
	h.started = false
	h.program = nil
	h.mu.Unlock()

	if err != nil && ctx.Err() != nil {
		return reload, nil
	}
	if err != nil {
		return reload, fmt.Errorf("terminal host failed: %w", err)
	}
	return reload, nil
}

func (h *Host) markStarted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
}

// send delivers msg without blocking the caller
func (h *Host) send(msg tea.Msg) {
	h.mu.Lock()
	program := h.program
	h.mu.Unlock()
	if program != nil {
		go program.Send(msg)
	}
}

// Navigator implements ports.Host; it is available once the program runs
func (h *Host) Navigator() (ports.Navigator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return nil, false
	}
	return h, true
}

// Surface implements ports.Host
func (h *Host) Surface() ports.SettingsSurface {
	return h
}

// Reload stops the program; the caller re-executes the process afterwards
func (h *Host) Reload() error {
	h.mu.Lock()
	h.reload = true
	program := h.program
	h.mu.Unlock()

	if program != nil {
		go program.Quit()
	}
	return nil
}

func (h *Host) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

// Navigate switches view and notifies listeners on the caller's goroutine
func (h *Host) Navigate(path string) {
	h.mu.Lock()
	h.location = path
	h.laidOut = false
	h.cursor = 0
	fns := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
	h.send(refreshMsg{})
}

func (h *Host) Listen(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// AnchorReady reports whether the preferences view has been drawn
func (h *Host) AnchorReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location == ports.PreferencesPath && h.laidOut
}

func (h *Host) Section(id string) (ports.SettingsSection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sections[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *Host) CreateSection(id string) (ports.SettingsSection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.sections[id]; exists {
		return nil, fmt.Errorf("settings section %q already exists", id)
	}
	s := &section{id: id, host: h}
	h.sections[id] = s
	h.order = append(h.order, id)
	return s, nil
}

// LogWriter returns a writer whose lines appear in the log view
func (h *Host) LogWriter() io.Writer {
	return logWriter{h}
}

// Logs returns the buffered log lines
func (h *Host) Logs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.logs))
	copy(out, h.logs)
	return out
}

type logWriter struct{ h *Host }

func (w logWriter) Write(p []byte) (int, error) {
	w.h.mu.Lock()
	text := w.h.partial + string(p)
	lines := strings.Split(text, "\n")
	w.h.partial = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		w.h.logs = append(w.h.logs, line)
	}
	if over := len(w.h.logs) - maxLogLines; over > 0 {
		w.h.logs = append([]string(nil), w.h.logs[over:]...)
	}
	w.h.mu.Unlock()

	w.h.send(refreshMsg{})
	return len(p), nil
}

// section is one settings block of the preferences view
type section struct {
	id   string
	host *Host

	model  *extension.SettingsModel
	values map[string]bool
	hidden bool
}

func (s *section) ID() string { return s.id }

// Render shows model; toggle values start from the model
func (s *section) Render(model *extension.SettingsModel) error {
	if model == nil {
		return fmt.Errorf("nil settings model")
	}
	s.host.mu.Lock()
	s.model = model
	s.values = make(map[string]bool, len(model.Toggles))
	for _, t := range model.Toggles {
		s.values[t.ID] = t.Value
	}
	s.hidden = false
	s.host.mu.Unlock()

	s.host.send(refreshMsg{})
	return nil
}

func (s *section) Hide() {
	s.host.mu.Lock()
	s.hidden = true
	s.host.mu.Unlock()

	s.host.send(refreshMsg{})
}

var (
	_ ports.Host            = (*Host)(nil)
	_ ports.Navigator       = (*Host)(nil)
	_ ports.SettingsSurface = (*Host)(nil)
	_ ports.SettingsSection = (*section)(nil)
)
