package host

import (
	"errors"
	"sync"

	"kilometers.ai/loader/internal/core/ports"
)

// ErrNoSurface is returned by a host that cannot show settings
var ErrNoSurface = errors.New("host has no settings surface")

// Headless is a host without a UI: always ready, at "/" until a module
// navigates, and never showing the preferences anchor.
type Headless struct {
	reload func() error

	mu        sync.Mutex
	location  string
	listeners map[int]func(string)
	nextID    int
}

// NewHeadless creates a headless host; reload is invoked by Reload
func NewHeadless(reload func() error) *Headless {
	return &Headless{
		reload:    reload,
		location:  "/",
		listeners: make(map[int]func(string)),
	}
}

func (h *Headless) Navigator() (ports.Navigator, bool) { return h, true }

func (h *Headless) Surface() ports.SettingsSurface { return noSurface{} }

func (h *Headless) Reload() error {
	if h.reload == nil {
		return nil
	}
	return h.reload()
}

func (h *Headless) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

func (h *Headless) Navigate(path string) {
	h.mu.Lock()
	h.location = path
	fns := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}

func (h *Headless) Listen(fn func(string)) func() {
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

type noSurface struct{}

func (noSurface) AnchorReady() bool { return false }

func (noSurface) Section(string) (ports.SettingsSection, bool) { return nil, false }

func (noSurface) CreateSection(string) (ports.SettingsSection, error) { return nil, ErrNoSurface }

var (
	_ ports.Host      = (*Headless)(nil)
	_ ports.Navigator = (*Headless)(nil)
)
