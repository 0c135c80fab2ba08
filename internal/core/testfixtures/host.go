package testfixtures

import (
	"sync"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// FakeNavigator is an in-memory ports.Navigator
type FakeNavigator struct {
	mu        sync.Mutex
	location  string
	listeners map[int]func(string)
	nextID    int
}

// NewFakeNavigator starts at location
func NewFakeNavigator(location string) *FakeNavigator {
	return &FakeNavigator{location: location, listeners: make(map[int]func(string))}
}

func (n *FakeNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Navigate changes location and notifies listeners synchronously
func (n *FakeNavigator) Navigate(path string) {
	n.mu.Lock()
	n.location = path
	fns := make([]func(string), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}

func (n *FakeNavigator) Listen(fn func(string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// ListenerCount reports how many listeners are registered
func (n *FakeNavigator) ListenerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// FakeSection records what was rendered into it
type FakeSection struct {
	id string

	mu      sync.Mutex
	model   *extension.SettingsModel
	renders int
	hidden  bool
}

func (s *FakeSection) ID() string { return s.id }

func (s *FakeSection) Render(model *extension.SettingsModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.renders++
	s.hidden = false
	return nil
}

func (s *FakeSection) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = true
}

// Model returns the last rendered model
func (s *FakeSection) Model() *extension.SettingsModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Renders counts Render calls
func (s *FakeSection) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Hidden reports whether the last call was Hide
func (s *FakeSection) Hidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// FakeSurface is an in-memory ports.SettingsSurface
type FakeSurface struct {
	mu       sync.Mutex
	anchor   bool
	sections map[string]*FakeSection
	created  int
}

// NewFakeSurface creates a surface whose anchor is initially present or not
func NewFakeSurface(anchor bool) *FakeSurface {
	return &FakeSurface{anchor: anchor, sections: make(map[string]*FakeSection)}
}

// SetAnchor toggles anchor presence
func (s *FakeSurface) SetAnchor(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = ready
}

func (s *FakeSurface) AnchorReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

func (s *FakeSurface) Section(id string) (ports.SettingsSection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[id]
	if !ok {
		return nil, false
	}
	return sec, true
}

func (s *FakeSurface) CreateSection(id string) (ports.SettingsSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := &FakeSection{id: id}
	s.sections[id] = sec
	s.created++
	return sec, nil
}

// Get returns the concrete section for assertions
func (s *FakeSurface) Get(id string) *FakeSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections[id]
}

// Created counts CreateSection calls
func (s *FakeSurface) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// FakeHost is an in-memory ports.Host
type FakeHost struct {
	mu        sync.Mutex
	nav       *FakeNavigator
	ready     bool
	surface   *FakeSurface
	reloads   int
	reloadErr error
}

// NewFakeHost creates a host that is ready at "/" with an anchored surface
func NewFakeHost() *FakeHost {
	return &FakeHost{
		nav:     NewFakeNavigator("/"),
		ready:   true,
		surface: NewFakeSurface(true),
	}
}

// SetReady controls whether Navigator reports availability
func (h *FakeHost) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// SetReloadError makes Reload fail
func (h *FakeHost) SetReloadError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloadErr = err
}

func (h *FakeHost) Navigator() (ports.Navigator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return nil, false
	}
	return h.nav, true
}

func (h *FakeHost) Surface() ports.SettingsSurface { return h.surface }

func (h *FakeHost) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return h.reloadErr
}

// Nav returns the concrete navigator
func (h *FakeHost) Nav() *FakeNavigator { return h.nav }

// FakeSurface returns the concrete surface
func (h *FakeHost) FakeSurface() *FakeSurface { return h.surface }

// Reloads counts Reload calls
func (h *FakeHost) Reloads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloads
}

var (
	_ ports.Host            = (*FakeHost)(nil)
	_ ports.Navigator       = (*FakeNavigator)(nil)
	_ ports.SettingsSurface = (*FakeSurface)(nil)
	_ ports.SettingsSection = (*FakeSection)(nil)
)
